package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vkarpenko/gitpulse/internal/insights"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	Cache   CacheInfo
	Service *insights.Service
}

// NewRouter creates and configures the HTTP router.
func NewRouter(cfg *RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware)

	r.Get("/api/health", NewHealthHandler(cfg.Cache))

	h := NewInsightsHandler(cfg.Service)
	r.Route("/api/insights", func(r chi.Router) {
		r.Get("/pulse", h.Pulse)
		r.Get("/graph", h.Graph)
		r.Get("/sunburst", h.Sunburst)
		r.Get("/reviewers", h.Reviewers)
		r.Get("/triage", h.Triage)
		r.Get("/board", h.Board)
		r.Get("/mix", h.Mix)
		r.Get("/milestones", h.Milestones)
	})

	return r
}
