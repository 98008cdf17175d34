package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/exec-dashboard/internal/config"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers, cfg config.ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Liveness check, no auth
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		// Dashboard - all data in one call
		r.Get("/dashboard", h.GetDashboard)
		r.Get("/executive-summary", h.GetExecutiveSummary)

		r.Route("/kpis", func(r chi.Router) {
			r.Get("/", h.GetKPIs)
			r.Get("/{id}", h.GetKPI)
			r.Get("/{id}/insights", h.GetKPIInsights)
		})

		r.Get("/health-score", h.GetHealthScore)

		r.Route("/insights", func(r chi.Router) {
			r.Get("/", h.GetInsights)
			r.Put("/{id}", h.UpdateInsight)
		})

		r.Get("/recommendations", h.GetRecommendations)
		r.Get("/history", h.GetHistory)
		r.Post("/refresh", h.TriggerRefresh)
	})

	return r
}
