package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/git-sentinel/internal/core"
)

func TestMemoryQueueRoundTrip(t *testing.T) {
	q := NewMemoryBroker().Queue("review_jobs")
	ctx := context.Background()

	pushed := &core.Job{Source: core.SourceManual, Code: "x = 1"}
	require.NoError(t, q.Push(ctx, pushed))

	popped, err := q.Pop(ctx, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, pushed, popped)
}

func TestMemoryQueuePopTimeout(t *testing.T) {
	q := NewMemoryBroker().Queue("review_jobs")

	start := time.Now()
	job, err := q.Pop(context.Background(), 50*time.Millisecond)
	require.NoError(t, err, "pop timeout is idle, not an error")
	assert.Nil(t, job)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestMemoryQueuePopCancellation(t *testing.T) {
	q := NewMemoryBroker().Queue("review_jobs")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := q.Pop(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryQueueFIFO(t *testing.T) {
	q := NewMemoryBroker().Queue("review_jobs")
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, q.Push(ctx, &core.Job{Source: core.SourceGitHub, RepoName: "org/repo", PRNumber: i}))
	}
	for i := 1; i <= 5; i++ {
		job, err := q.Pop(ctx, 100*time.Millisecond)
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, i, job.PRNumber)
	}
}

// Concurrent consumers must each receive a job exactly once.
func TestMemoryQueueSingleDelivery(t *testing.T) {
	broker := NewMemoryBroker()
	q := broker.Queue("review_jobs")
	ctx := context.Background()

	const jobCount = 20
	for i := 1; i <= jobCount; i++ {
		require.NoError(t, q.Push(ctx, &core.Job{Source: core.SourceGitHub, RepoName: "org/repo", PRNumber: i}))
	}

	var mu sync.Mutex
	seen := make(map[int]int)
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Both consumers share the same named queue.
			consumer := broker.Queue("review_jobs")
			for {
				job, err := consumer.Pop(ctx, 20*time.Millisecond)
				if err != nil || job == nil {
					return
				}
				mu.Lock()
				seen[job.PRNumber]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, jobCount)
	for pr, count := range seen {
		assert.Equal(t, 1, count, "job %d delivered %d times", pr, count)
	}
}

func TestMemoryBusFanOut(t *testing.T) {
	broker := NewMemoryBroker()
	ctx := context.Background()

	first, err := broker.Subscribe(ctx, "sentinel_events")
	require.NoError(t, err)
	defer first.Close()
	second, err := broker.Subscribe(ctx, "sentinel_events")
	require.NoError(t, err)
	defer second.Close()

	event := &core.ProgressEvent{Type: core.EventLog, Message: "Analyzing changes", Repo: "org/repo", PR: 7}
	require.NoError(t, broker.Publish(ctx, "sentinel_events", event))

	for _, sub := range []core.Subscription{first, second} {
		select {
		case got := <-sub.Events():
			assert.Equal(t, *event, got)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestMemoryBusNoReplay(t *testing.T) {
	broker := NewMemoryBroker()
	ctx := context.Background()

	// Published with no subscribers: lost by design.
	require.NoError(t, broker.Publish(ctx, "sentinel_events", &core.ProgressEvent{Type: core.EventLog, Message: "before"}))

	sub, err := broker.Subscribe(ctx, "sentinel_events")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, broker.Publish(ctx, "sentinel_events", &core.ProgressEvent{Type: core.EventLog, Message: "after"}))

	got := <-sub.Events()
	assert.Equal(t, "after", got.Message)
}

func TestMemorySubscriptionCloseIsIdempotent(t *testing.T) {
	broker := NewMemoryBroker()
	sub, err := broker.Subscribe(context.Background(), "sentinel_events")
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	_, open := <-sub.Events()
	assert.False(t, open, "events channel should be closed")
}
