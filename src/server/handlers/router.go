package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/highway-to-peak/server/src/server/metrics"
	"github.com/highway-to-peak/server/src/server/middleware"
	"github.com/highway-to-peak/server/src/server/service"
	"github.com/highway-to-peak/server/src/server/storage"
)

type RouterConfig struct {
	Service *service.Service
	Store   any // checked for Pinger by /health
	Storage storage.ObjectStorage
	Metrics *metrics.Metrics

	CORSOrigins []string
	// Auth guards mutating routes when set.
	Auth func(http.Handler) http.Handler
	// RateLimit wraps every API route when set.
	RateLimit func(http.Handler) http.Handler
	// Exports serves locally stored report exports under /exports.
	Exports http.Handler
	// ExportURLExpiry bounds presigned links to exported reports.
	ExportURLExpiry time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	expeditions := &ExpeditionHandler{Service: cfg.Service}
	reports := &ReportHandler{Service: cfg.Service, Storage: cfg.Storage, URLExpiry: cfg.ExportURLExpiry}
	health := &HealthHandler{Store: cfg.Store, Storage: cfg.Storage}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", health.Check)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}
	if cfg.Exports != nil {
		r.Handle("/exports/*", http.StripPrefix("/exports", cfg.Exports))
	}

	r.Group(func(r chi.Router) {
		if cfg.RateLimit != nil {
			r.Use(cfg.RateLimit)
		}

		r.Get("/peaks", expeditions.ListPeaks)
		r.Get("/climbers/{name}", expeditions.GetClimber)
		r.Get("/attempts", expeditions.ListAttempts)
		r.Get("/camp", reports.Camp)
		r.Get("/statistics", reports.Statistics)

		r.Group(func(r chi.Router) {
			if cfg.Auth != nil {
				r.Use(cfg.Auth)
			}
			r.Post("/peaks", expeditions.RegisterPeak)
			r.Post("/climbers", expeditions.RegisterClimber)
			r.Post("/attempts", expeditions.AttemptPeak)
			r.Post("/recoveries", expeditions.Recover)
			r.Post("/statistics/export", reports.ExportStatistics)
		})
	})

	return r
}
