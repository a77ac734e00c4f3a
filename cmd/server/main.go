package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sevigo/git-sentinel/internal/app"
	"github.com/sevigo/git-sentinel/internal/config"
	"github.com/sevigo/git-sentinel/internal/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("gateway failed to run", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, nil)

	gateway, err := app.NewGateway(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize gateway: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- gateway.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	return gateway.Stop()
}
