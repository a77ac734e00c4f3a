// Package app initializes and orchestrates the main components of the
// Git Sentinel application. It wires together the configuration, the queue
// backend, and the gateway or worker process on top of it.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/git-sentinel/internal/config"
	"github.com/sevigo/git-sentinel/internal/queue"
	"github.com/sevigo/git-sentinel/internal/server"
)

// Gateway is the webhook ingestion process: it admits jobs onto the queue
// and serves the live event stream.
type Gateway struct {
	cfg        *config.Config
	server     *server.Server
	logger     *slog.Logger
	closeQueue func() error
}

// NewGateway sets up the gateway with all its dependencies.
func NewGateway(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	logger.Info("initializing API gateway",
		"queue_backend", cfg.QueueBackend,
		"queue", cfg.QueueName,
		"events_channel", cfg.EventsChannel,
		"verify_webhooks", cfg.WebhookVerify)

	jobQueue, bus, closeQueue, err := queue.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize queue backend: %w", err)
	}

	httpServer := server.NewServer(cfg, jobQueue, bus, logger)

	return &Gateway{
		cfg:        cfg,
		server:     httpServer,
		logger:     logger,
		closeQueue: closeQueue,
	}, nil
}

// Start runs the HTTP server and blocks until shutdown or error.
func (g *Gateway) Start() error {
	g.logger.Info("starting Git Sentinel gateway", "port", g.cfg.ServerPort)
	return g.server.Start()
}

// Stop shuts the gateway down cleanly: server first so no new requests
// arrive, then the queue backend connection.
func (g *Gateway) Stop() error {
	g.logger.Info("shutting down gateway")

	serverErr := g.server.Stop()
	if serverErr != nil {
		g.logger.Error("error during HTTP server shutdown", "error", serverErr)
	}

	if err := g.closeQueue(); err != nil {
		g.logger.Error("error closing queue backend", "error", err)
	}

	return serverErr
}
