// Package server implements the HTTP server of the API gateway.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sevigo/git-sentinel/internal/config"
	"github.com/sevigo/git-sentinel/internal/core"
)

// Server wraps an HTTP server with graceful shutdown capabilities.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates the gateway HTTP server with the given configuration,
// job queue, and event bus.
func NewServer(cfg *config.Config, queue core.JobQueue, bus core.EventBus, logger *slog.Logger) *Server {
	router := NewRouter(cfg, queue, bus, logger)

	return &Server{
		server: &http.Server{
			Addr:        ":" + cfg.ServerPort,
			Handler:     router,
			ReadTimeout: 10 * time.Second,
			// No WriteTimeout: the live stream connections write for as
			// long as the observer stays connected.
			IdleTimeout: 120 * time.Second,
		},
		logger: logger,
	}
}

// Start starts the HTTP server and blocks until shutdown or error.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "address", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server with a 30-second timeout.
func (s *Server) Stop() error {
	s.logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}
