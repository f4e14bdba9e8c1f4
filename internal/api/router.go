package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/swapdesk/swapdesk/internal/api/handlers"
	"github.com/swapdesk/swapdesk/internal/api/middleware"
	"github.com/swapdesk/swapdesk/internal/config"
)

// NewRouter creates the HTTP router with all API routes.
func NewRouter(cfg *config.Config, h *handlers.Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.Logger)
	r.Use(middleware.Telemetry)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "X-Trace-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health & info
	r.Get("/health", healthHandler)
	r.Get("/version", versionHandler(cfg))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Complaints — triage pipeline
		r.Route("/complaints", func(r chi.Router) {
			r.Get("/", h.ListComplaints)
			r.Post("/", h.SubmitComplaint)
			r.Route("/{complaintId}", func(r chi.Router) {
				r.Get("/", h.GetComplaint)
				r.Get("/workflow", h.GetComplaintWorkflow)
			})
		})

		// Intake queue
		r.Route("/queue", func(r chi.Router) {
			r.Get("/", h.GetComplaintQueue)
			r.Post("/", h.EnqueueComplaint)
		})

		// Aggregate metrics
		r.Get("/metrics", h.GetMetrics)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "swapdesk",
	})
}

func versionHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"version": cfg.Version,
			"service": "swapdesk",
		})
	}
}
