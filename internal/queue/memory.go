package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sevigo/git-sentinel/internal/core"
)

// memoryQueueCapacity bounds the in-memory queue. The Redis backend is
// unbounded; in-process we need some limit to keep Push non-blocking.
const memoryQueueCapacity = 1024

// MemoryBroker is a process-local queue and event bus for development and
// tests. It mirrors the Redis backend's semantics (FIFO delivery to exactly
// one consumer, fan-out pub/sub with no replay) but offers no durability.
type MemoryBroker struct {
	mu     sync.Mutex
	queues map[string]chan core.Job
	subs   map[string][]*memorySubscription
}

// NewMemoryBroker creates an empty in-process broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		queues: make(map[string]chan core.Job),
		subs:   make(map[string][]*memorySubscription),
	}
}

// Queue returns the named FIFO queue, creating it on first use.
func (b *MemoryBroker) Queue(name string) core.JobQueue {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.queues[name]
	if !ok {
		ch = make(chan core.Job, memoryQueueCapacity)
		b.queues[name] = ch
	}
	return &memoryQueue{jobs: ch}
}

type memoryQueue struct {
	jobs chan core.Job
}

func (q *memoryQueue) Push(_ context.Context, job *core.Job) error {
	select {
	case q.jobs <- *job:
		return nil
	default:
		return fmt.Errorf("%w: in-memory queue is full", core.ErrQueueUnavailable)
	}
}

func (q *memoryQueue) Pop(ctx context.Context, timeout time.Duration) (*core.Job, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case job := <-q.jobs:
		return &job, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *memoryQueue) Len(_ context.Context) (int64, error) {
	return int64(len(q.jobs)), nil
}

// Publish fans the event out to every current subscriber of channel. A
// subscriber whose buffer is full loses the event; the publisher never
// blocks.
func (b *MemoryBroker) Publish(_ context.Context, channel string, event *core.ProgressEvent) error {
	// The sends are non-blocking, so fanning out under the lock is cheap
	// and keeps Publish from racing a concurrent Close.
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs[channel] {
		select {
		case sub.events <- *event:
		default:
		}
	}
	return nil
}

// Subscribe opens a dedicated subscription on channel.
func (b *MemoryBroker) Subscribe(_ context.Context, channel string) (core.Subscription, error) {
	sub := &memorySubscription{
		broker:  b,
		channel: channel,
		events:  make(chan core.ProgressEvent, subscriberBuffer),
	}
	b.mu.Lock()
	b.subs[channel] = append(b.subs[channel], sub)
	b.mu.Unlock()
	return sub, nil
}

type memorySubscription struct {
	broker  *MemoryBroker
	channel string
	events  chan core.ProgressEvent
	once    sync.Once
}

func (s *memorySubscription) Events() <-chan core.ProgressEvent {
	return s.events
}

func (s *memorySubscription) Close() error {
	s.once.Do(func() {
		b := s.broker
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[s.channel]
		for i, sub := range subs {
			if sub == s {
				b.subs[s.channel] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		close(s.events)
	})
	return nil
}
