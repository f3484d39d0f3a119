package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chartviz/engine/internal/queue/tasks"
	"github.com/chartviz/engine/internal/repository"
	"github.com/chartviz/engine/internal/services"
	"github.com/chartviz/engine/pkg/config"
	"github.com/chartviz/engine/pkg/database"
	"github.com/chartviz/engine/pkg/logger"
)

func main() {
	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if !cfg.RedisEnabled() {
		log.Fatal("REDIS_ADDR is required to run the worker")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	_ = rdb.Close()

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		},
		asynq.Config{
			Concurrency: cfg.AsynqConcurrency,
			Logger:      log.Sugar(),
		},
	)

	// Initialize DB and repositories for task handlers
	ctx := context.Background()
	db, err := database.Open(ctx, database.Options{Driver: cfg.DBDriver, DSN: cfg.DatabaseURL})
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close(db)

	chartRepo := repository.NewChartRepository(db)
	custRepo := repository.NewCustomizationRepository(db)
	defaults := services.RenderDefaults{
		Width:  float64(cfg.CanvasWidth),
		Height: float64(cfg.CanvasHeight),
		Theme:  cfg.DefaultTheme,
	}

	// the worker never enqueues, so the snapshot service runs without a client
	chartSvc := services.NewChartService(chartRepo, custRepo, defaults)
	snapSvc := services.NewSnapshotService(chartSvc, chartRepo, custRepo, repository.NewSnapshotRepository(db), nil, defaults)

	mux := asynq.NewServeMux()
	tasks.NewSnapshotTaskHandler(snapSvc).Register(mux)

	errCh := make(chan error, 1)
	go func() {
		log.Info("asynq worker starting", zap.Int("concurrency", cfg.AsynqConcurrency))
		if err := srv.Run(mux); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("worker stopped with error", zap.Error(err))
	}

	// asynq.Server.Shutdown waits for in-flight tasks.
	srv.Shutdown()
}
