package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chartviz/engine/internal/api"
	"github.com/chartviz/engine/internal/api/handlers"
	"github.com/chartviz/engine/internal/chat"
	"github.com/chartviz/engine/internal/repository"
	"github.com/chartviz/engine/internal/services"
	"github.com/chartviz/engine/pkg/config"
	"github.com/chartviz/engine/pkg/database"
	"github.com/chartviz/engine/pkg/logger"

	_ "github.com/chartviz/engine/docs"
)

// @title           Chartviz API
// @version         1.0
// @description     Nested-square chart rendering, square customization and chart chat.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Initialize logger
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("starting chartviz engine",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("db_driver", cfg.DBDriver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.Options{
		Driver: cfg.DBDriver,
		DSN:    cfg.DatabaseURL,
		Debug:  cfg.AppEnv == "development",
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)
	log.Info("database connected")

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to get sql db", zap.Error(err))
	}
	checks := map[string]handlers.Pinger{"database": sqlDB}

	// Snapshot requests are logged and skipped without redis.
	var queue services.Enqueuer
	if cfg.RedisEnabled() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		checks["redis"] = redisPinger{rdb}

		client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer client.Close()
		queue = client
	} else {
		log.Warn("REDIS_ADDR not set, snapshot rendering disabled")
	}

	// JWT secret; config validation requires it in production.
	jwtSecret := []byte(cfg.JWTSecret)
	if len(jwtSecret) == 0 {
		log.Warn("JWT_SECRET not set, using default (INSECURE for production)")
		jwtSecret = []byte("change-me-in-production-please")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	chartRepo := repository.NewChartRepository(db)
	custRepo := repository.NewCustomizationRepository(db)
	detailRepo := repository.NewDetailingRepository(db)
	snapRepo := repository.NewSnapshotRepository(db)

	// Services
	defaults := services.RenderDefaults{
		Width:  float64(cfg.CanvasWidth),
		Height: float64(cfg.CanvasHeight),
		Theme:  cfg.DefaultTheme,
	}
	authSvc := services.NewAuthService(userRepo, jwtSecret)
	chartSvc := services.NewChartService(chartRepo, custRepo, defaults)
	custSvc := services.NewCustomizationService(chartSvc, custRepo, detailRepo)
	snapSvc := services.NewSnapshotService(chartSvc, chartRepo, custRepo, snapRepo, queue, defaults)

	hub := chat.NewHub(cfg.Origins())

	var reg *prometheus.Registry
	if cfg.MetricsEnabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewDBStatsCollector(sqlDB, cfg.DBDriver),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: "chartviz",
				Subsystem: "chat",
				Name:      "dropped_messages_total",
				Help:      "Chat messages dropped because a member could not keep up.",
			}, func() float64 { return float64(hub.Dropped()) }),
		)
	}

	router := api.NewRouter(api.Dependencies{
		Tokens:                authSvc,
		AllowedOrigins:        cfg.Origins(),
		Registry:              reg,
		RateLimit:             cfg.RateLimitRPS,
		RateBurst:             cfg.RateLimitBurst,
		HealthHandler:         handlers.NewHealthHandler(checks),
		AuthHandler:           handlers.NewAuthHandler(authSvc),
		ChartsHandler:         handlers.NewChartsHandler(chartSvc),
		CustomizationsHandler: handlers.NewCustomizationsHandler(custSvc),
		SnapshotsHandler:      handlers.NewSnapshotsHandler(snapSvc),
		ChatHandler:           handlers.NewChatHandler(hub, chartSvc),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("server exited gracefully")
}

type redisPinger struct{ rdb *redis.Client }

func (p redisPinger) PingContext(ctx context.Context) error { return p.rdb.Ping(ctx).Err() }
