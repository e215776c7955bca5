// Package api provides HTTP handlers, middleware, and routing for the beta
// features service.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	betafeatures "github.com/tinajohnson/mediawiki-extensions-BetaFeatures"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	engine     *betafeatures.Engine
	counter    *betafeatures.Counter
	users      betafeatures.UserStore
	logger     betafeatures.Logger
	router     *chi.Mux
	httpServer *http.Server
}

// Config holds configuration for the API server.
type Config struct {
	ListenAddress string
	Engine        *betafeatures.Engine
	Counter       *betafeatures.Counter
	Users         betafeatures.UserStore
	Logger        betafeatures.Logger
}

// NewServer creates and configures a new API server instance.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if cfg.Users == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = betafeatures.NewDefaultLogger()
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":8080"
	}

	s := &Server{
		engine:  cfg.Engine,
		counter: cfg.Counter,
		users:   cfg.Users,
		logger:  cfg.Logger,
		router:  chi.NewRouter(),
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: s.router,
		// Configure timeouts to prevent resource exhaustion
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Router exposes the configured router, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins listening for requests. It blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("API server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
