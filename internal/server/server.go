// Package server wires the HTTP API: routing, auth, rate limiting, and the
// translation between wire requests and the core validate/access/query calls.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/itihaas-labs/timeline-server/internal/config"
	"github.com/itihaas-labs/timeline-server/internal/query"
	"github.com/itihaas-labs/timeline-server/internal/store"
	"github.com/itihaas-labs/timeline-server/internal/validate"
)

// Server holds the API dependencies.
type Server struct {
	store    store.Store
	resolver *query.Resolver
	rules    validate.Rules
	domain   config.DomainConfig
	auth     config.AuthConfig
	router   chi.Router
}

// New assembles the API server around a store.
func New(st store.Store, cfg *config.Config) *Server {
	s := &Server{
		store:    st,
		resolver: query.NewResolver(st, cfg.Domain.DefaultLimit),
		rules:    validate.Rules{ModernEraYear: cfg.Domain.ModernEraYear},
		domain:   cfg.Domain,
		auth:     cfg.Auth,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	if cfg.Server.RateLimitRPS > 0 {
		r.Use(newIPLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst).middleware)
	}

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/periods", s.handleListPeriods)
		r.Get("/events", s.handleListEvents)
		r.Get("/events/{id}", s.handleGetEvent)
		r.Get("/subscriptions/me", s.handleMySubscriptions)

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/events", s.handleCreateEvent)
			r.Put("/events/{id}", s.handleUpdateEvent)
			r.Delete("/events/{id}", s.handleDeleteEvent)
			r.Post("/periods", s.handleCreatePeriod)
			r.Put("/periods/{id}", s.handleUpdatePeriod)
			r.Delete("/periods/{id}", s.handleDeletePeriod)
			r.Post("/subscriptions", s.handleCreateSubscription)
		})
	})

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
