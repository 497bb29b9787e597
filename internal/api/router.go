package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vidforge/vidforge/internal/api/handler"
	mw "github.com/vidforge/vidforge/internal/api/middleware"
)

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(
	acquisitionHandler *handler.AcquisitionHandler,
	cookieHandler *handler.CookieHandler,
	collectionHandler *handler.CollectionHandler,
	healthHandler *handler.HealthHandler,
	apiKey string,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath) // Normalize paths (e.g., //ready -> /ready)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	// Acquisitions run in workers; requests themselves stay short except
	// file serving, hence the generous cap.
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Use(mw.CORS)

	// Probes and metrics (no auth)
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 (authenticated)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(apiKey))

		r.Post("/acquisitions", acquisitionHandler.Submit)
		r.Get("/acquisitions", acquisitionHandler.List)
		r.Get("/acquisitions/{jobID}", acquisitionHandler.Get)
		r.Get("/acquisitions/{jobID}/file", acquisitionHandler.ServeFile)
		r.Get("/history", acquisitionHandler.History)

		r.Post("/cookies", cookieHandler.Install)
		r.Get("/cookies/status", cookieHandler.Status)

		r.Post("/collections/expand", collectionHandler.Expand)
	})

	return r
}
