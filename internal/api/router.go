// Package api exposes input validation, migration, schedule preview, and
// the input registry over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/polarmd/dpinput/internal/config"
	"github.com/polarmd/dpinput/internal/inputstore"
)

// Server wires the HTTP handlers to their dependencies.
type Server struct {
	cfg   config.ServiceConfig
	store inputstore.Store
}

// NewServer constructs the API server.
func NewServer(cfg config.ServiceConfig, store inputstore.Store) *Server {
	return &Server{cfg: cfg, store: store}
}

// Router builds the chi router with the canonical middleware stack:
// recoverer outermost, then request correlation, logging, and rate
// limiting; metrics attach per route group.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(Recoverer)
	r.Use(RequestID)
	r.Use(Logging)
	r.Use(RateLimit(s.cfg.RateLimitRPS, s.cfg.RateLimitBurst))

	r.Get("/healthz", s.handleHealthz)
	if s.cfg.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.With(Metrics("validate")).Post("/validate", s.handleValidate)
		r.With(Metrics("migrate")).Post("/migrate", s.handleMigrate)
		r.With(Metrics("preview")).Post("/schedule/preview", s.handlePreview)

		r.Route("/inputs", func(r chi.Router) {
			r.With(Metrics("inputs")).Post("/", s.handleRegister)
			r.With(Metrics("inputs")).Get("/", s.handleList)
			r.With(Metrics("inputs")).Get("/{id}", s.handleGet)
		})
	})

	return r
}
