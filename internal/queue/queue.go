// Package queue provides the job queue and event bus implementations. The
// backend is selected once at startup from configuration; the rest of the
// application only sees the core.JobQueue and core.EventBus interfaces.
package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/git-sentinel/internal/config"
	"github.com/sevigo/git-sentinel/internal/core"
)

// New constructs the job queue and event bus for the configured backend and
// returns them together with a teardown function that releases the backend
// connection. The handle is owned by the caller for the process lifetime;
// there is no ambient global client.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (core.JobQueue, core.EventBus, func() error, error) {
	switch cfg.QueueBackend {
	case config.BackendRedis:
		client, err := Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		logger.Info("connected to redis", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return NewRedisQueue(client, cfg.QueueName), NewRedisBus(client, logger), client.Close, nil

	case config.BackendMemory:
		logger.Warn("using in-memory queue backend, jobs will not survive a restart")
		broker := NewMemoryBroker()
		return broker.Queue(cfg.QueueName), broker, func() error { return nil }, nil

	default:
		return nil, nil, nil, fmt.Errorf("unsupported queue backend %q", cfg.QueueBackend)
	}
}
