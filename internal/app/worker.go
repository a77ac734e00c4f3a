package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/git-sentinel/internal/config"
	"github.com/sevigo/git-sentinel/internal/core"
	"github.com/sevigo/git-sentinel/internal/github"
	"github.com/sevigo/git-sentinel/internal/jobs"
	"github.com/sevigo/git-sentinel/internal/llm"
	"github.com/sevigo/git-sentinel/internal/queue"
)

// Worker is the review process: it consumes jobs from the shared queue and
// drives each one through the review pipeline.
type Worker struct {
	pipeline   *jobs.Pipeline
	logger     *slog.Logger
	closeQueue func() error
}

// NewWorker sets up the worker with all its dependencies. The code host is
// optional when no GitHub credentials are configured; such a worker can
// still process manual jobs.
func NewWorker(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Worker, error) {
	logger.Info("initializing review worker",
		"queue_backend", cfg.QueueBackend,
		"queue", cfg.QueueName,
		"workers", cfg.MaxWorkers,
		"llm_provider", cfg.LLMProvider)

	jobQueue, bus, closeQueue, err := queue.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize queue backend: %w", err)
	}

	engine, err := llm.NewEngine(ctx, cfg, logger)
	if err != nil {
		_ = closeQueue()
		return nil, fmt.Errorf("failed to initialize review engine: %w", err)
	}

	var host core.CodeHost
	if cfg.GitHubToken != "" || cfg.GitHubAppID != 0 {
		host, err = github.NewCodeHost(ctx, cfg, logger)
		if err != nil {
			_ = closeQueue()
			return nil, fmt.Errorf("failed to initialize code host: %w", err)
		}
	} else {
		logger.Warn("no GitHub credentials configured, only manual jobs can be processed")
	}

	pipeline := jobs.NewPipeline(cfg, jobQueue, bus, host, engine, logger)

	return &Worker{
		pipeline:   pipeline,
		logger:     logger,
		closeQueue: closeQueue,
	}, nil
}

// Run starts the pipeline workers and blocks until ctx is cancelled and all
// in-flight jobs have finished.
func (w *Worker) Run(ctx context.Context) error {
	w.pipeline.Start(ctx)
	w.pipeline.Wait()

	if err := w.closeQueue(); err != nil {
		w.logger.Error("error closing queue backend", "error", err)
		return err
	}
	return nil
}
