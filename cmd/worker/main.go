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
		slog.Error("worker failed to run", "error", err)
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

	worker, err := app.NewWorker(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize worker: %w", err)
	}

	// Cancel the worker context on the first termination signal; the
	// pipeline finishes its current job before exiting.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		log.Info("received shutdown signal, stopping after current job", "signal", sig.String())
		cancel()
	}()

	return worker.Run(ctx)
}
