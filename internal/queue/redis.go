package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sevigo/git-sentinel/internal/core"
)

// subscriberBuffer is how many events a single subscriber may fall behind
// before deliveries to it are dropped. The bus gives no delivery guarantee,
// so a slow subscriber loses events rather than stalling the relay.
const subscriberBuffer = 64

// Connect opens a Redis client and verifies the connection with a ping.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           db,
		DialTimeout:  5 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// redisQueue implements core.JobQueue over a single Redis list. Producers
// LPUSH to the tail and consumers BRPOP from the head, giving strict FIFO
// with each job delivered to exactly one of any number of consumers.
type redisQueue struct {
	client *redis.Client
	name   string
}

// NewRedisQueue returns a job queue backed by the named Redis list.
func NewRedisQueue(client *redis.Client, name string) core.JobQueue {
	return &redisQueue{client: client, name: name}
}

func (q *redisQueue) Push(ctx context.Context, job *core.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	if err := q.client.LPush(ctx, q.name, payload).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrQueueUnavailable, err)
	}
	return nil
}

func (q *redisQueue) Pop(ctx context.Context, timeout time.Duration) (*core.Job, error) {
	vals, err := q.client.BRPop(ctx, timeout, q.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Timed out with the queue empty. Not an error.
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", core.ErrQueueUnavailable, err)
	}
	// BRPop returns [key, value].
	if len(vals) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of length %d", len(vals))
	}

	var job core.Job
	if err := json.Unmarshal([]byte(vals[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to decode job payload: %w", err)
	}
	return &job, nil
}

func (q *redisQueue) Len(ctx context.Context) (int64, error) {
	depth, err := q.client.LLen(ctx, q.name).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrQueueUnavailable, err)
	}
	return depth, nil
}

// redisBus implements core.EventBus over Redis PUBLISH/SUBSCRIBE. Each
// subscription holds its own PubSub connection so a slow or blocked
// subscriber cannot stall the shared pool.
type redisBus struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisBus returns an event bus backed by Redis pub/sub.
func NewRedisBus(client *redis.Client, logger *slog.Logger) core.EventBus {
	return &redisBus{client: client, logger: logger}
}

func (b *redisBus) Publish(ctx context.Context, channel string, event *core.ProgressEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode progress event: %w", err)
	}
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrQueueUnavailable, err)
	}
	return nil
}

func (b *redisBus) Subscribe(ctx context.Context, channel string) (core.Subscription, error) {
	ps := b.client.Subscribe(ctx, channel)

	// Wait for the subscription confirmation so no event published after
	// Subscribe returns is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("%w: %v", core.ErrQueueUnavailable, err)
	}

	sub := &redisSubscription{
		ps:     ps,
		events: make(chan core.ProgressEvent, subscriberBuffer),
	}
	go sub.relay(b.logger, channel)
	return sub, nil
}

type redisSubscription struct {
	ps     *redis.PubSub
	events chan core.ProgressEvent
}

// relay decodes raw pub/sub messages into progress events until the
// underlying PubSub is closed.
func (s *redisSubscription) relay(logger *slog.Logger, channel string) {
	defer close(s.events)
	for msg := range s.ps.Channel() {
		var event core.ProgressEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			logger.Warn("discarding malformed progress event", "channel", channel, "error", err)
			continue
		}
		select {
		case s.events <- event:
		default:
			logger.Warn("dropping progress event for slow subscriber", "channel", channel)
		}
	}
}

func (s *redisSubscription) Events() <-chan core.ProgressEvent {
	return s.events
}

func (s *redisSubscription) Close() error {
	return s.ps.Close()
}
