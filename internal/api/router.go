package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/chartviz/engine/internal/api/handlers"
	mw "github.com/chartviz/engine/internal/api/middleware"
)

type Dependencies struct {
	Tokens         mw.TokenParser
	AllowedOrigins []string
	// Registry receives the HTTP metrics and backs /metrics. Nil disables both.
	Registry *prometheus.Registry
	// RateLimit is requests per second per client IP; zero disables limiting.
	RateLimit float64
	RateBurst int

	HealthHandler         *handlers.HealthHandler
	AuthHandler           *handlers.AuthHandler
	ChartsHandler         *handlers.ChartsHandler
	CustomizationsHandler *handlers.CustomizationsHandler
	SnapshotsHandler      *handlers.SnapshotsHandler
	ChatHandler           *handlers.ChatHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	// Built-in middleware
	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	if dep.Registry != nil {
		r.Use(mw.NewMetrics(dep.Registry).Handler)
	}
	r.Use(mw.Logging)
	r.Use(mw.CORS(dep.AllowedOrigins))
	if dep.RateLimit > 0 {
		r.Use(mw.RateLimit(dep.RateLimit, dep.RateBurst))
	}
	r.Use(chimid.Compress(5, "application/json", "image/svg+xml"))

	// Health endpoints
	hh := dep.HealthHandler
	if hh == nil {
		hh = handlers.NewHealthHandler(nil)
	}
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)

	if dep.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(dep.Registry, promhttp.HandlerOpts{Registry: dep.Registry}))
	}

	// Swagger documentation
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// Target of the editor's detailings link.
	r.Get("/square-form", dep.CustomizationsHandler.SquareForm)

	// Persistence endpoints used by the square editor.
	r.Group(func(pr chi.Router) {
		pr.Use(mw.Auth(dep.Tokens))
		pr.Post("/api/square-customization", dep.CustomizationsHandler.Save)
		pr.Get("/api/square-customization/{chartId}", dep.CustomizationsHandler.List)
		pr.Post("/api/square-detailing", dep.CustomizationsHandler.SaveDetailing)
		pr.Get("/api/square-detailing/{chartId}", dep.CustomizationsHandler.ListDetailings)
	})

	r.Route("/api/v1", func(api chi.Router) {
		// Auth routes (public)
		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", dep.AuthHandler.Register)
			ar.Post("/login", dep.AuthHandler.Login)
			ar.Post("/logout", dep.AuthHandler.Logout)
		})

		// Protected routes
		api.Group(func(protected chi.Router) {
			protected.Use(mw.Auth(dep.Tokens))

			protected.Route("/charts", func(cr chi.Router) {
				cr.Get("/", dep.ChartsHandler.List)
				cr.Post("/", dep.ChartsHandler.Create)
				cr.Route("/{id}", func(one chi.Router) {
					one.Get("/", dep.ChartsHandler.Get)
					one.Put("/", dep.ChartsHandler.Update)
					one.Delete("/", dep.ChartsHandler.Delete)

					one.Get("/render", dep.ChartsHandler.Render)
					one.Get("/scene", dep.ChartsHandler.Scene)
					one.Get("/hit", dep.ChartsHandler.HitTest)
					one.Get("/squares/{node}", dep.ChartsHandler.GetSquare)
					one.Put("/squares/{node}", dep.ChartsHandler.UpdateSquare)

					one.Get("/snapshots", dep.SnapshotsHandler.List)
					one.Post("/snapshots", dep.SnapshotsHandler.Create)
					one.Get("/snapshots/current", dep.SnapshotsHandler.Current)

					if dep.ChatHandler != nil {
						one.Get("/chat", dep.ChatHandler.Connect)
					}
				})
			})
		})
	})

	return r
}
