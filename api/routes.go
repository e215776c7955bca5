package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) setupRoutes() {
	// Middleware stack
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(middleware.Recoverer)

	// API versioning group
	s.router.Route("/api/v1", func(r chi.Router) {
		// Health check endpoint
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK")) // Best effort write
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/preferences", s.handleGetPreferences)   // assembled form spec
			r.Post("/preferences", s.handleSavePreferences) // form submission
			r.Get("/config", s.handleGetClientConfig)       // client runtime metadata
		})

		r.Get("/features/counts", s.handleGetCounts)
	})
}
