package queue

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/git-sentinel/internal/core"
)

func newTestRedis(t *testing.T) (core.JobQueue, core.EventBus) {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRedisQueue(client, "review_jobs"), NewRedisBus(client, logger)
}

func TestRedisQueueRoundTrip(t *testing.T) {
	q, _ := newTestRedis(t)
	ctx := context.Background()

	pushed := &core.Job{
		Source:         core.SourceGitHub,
		RepoName:       "org/repo",
		PRNumber:       7,
		InstallationID: 42,
	}
	require.NoError(t, q.Push(ctx, pushed))

	popped, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, pushed, popped)
}

func TestRedisQueueFIFO(t *testing.T) {
	q, _ := newTestRedis(t)
	ctx := context.Background()

	first := &core.Job{Source: core.SourceGitHub, RepoName: "org/repo", PRNumber: 1}
	second := &core.Job{Source: core.SourceGitHub, RepoName: "org/repo", PRNumber: 2}
	require.NoError(t, q.Push(ctx, first))
	require.NoError(t, q.Push(ctx, second))

	depth, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), depth)

	got, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, got.PRNumber)

	got, err = q.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, got.PRNumber)

	depth, err = q.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, depth)
}

func TestRedisQueuePopTimeout(t *testing.T) {
	q, _ := newTestRedis(t)

	// BRPOP resolution is one second; anything shorter is rounded up.
	job, err := q.Pop(context.Background(), time.Second)
	require.NoError(t, err, "pop timeout is idle, not an error")
	assert.Nil(t, job)
}

// Concurrent consumers on the same queue must each receive a job exactly once.
func TestRedisQueueSingleDelivery(t *testing.T) {
	q, _ := newTestRedis(t)
	ctx := context.Background()

	const jobCount = 10
	for i := 1; i <= jobCount; i++ {
		require.NoError(t, q.Push(ctx, &core.Job{Source: core.SourceGitHub, RepoName: "org/repo", PRNumber: i}))
	}

	var mu sync.Mutex
	seen := make(map[int]int)
	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				job, err := q.Pop(ctx, time.Second)
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

func TestRedisBusPublishSubscribe(t *testing.T) {
	_, bus := newTestRedis(t)
	ctx := context.Background()

	sub, err := bus.Subscribe(ctx, "sentinel_events")
	require.NoError(t, err)
	defer sub.Close()

	published := &core.ProgressEvent{
		Type:    core.EventSuccess,
		Message: "Review completed for org/repo#7",
		Repo:    "org/repo",
		PR:      7,
		Review:  "LGTM!",
	}
	require.NoError(t, bus.Publish(ctx, "sentinel_events", published))

	select {
	case got := <-sub.Events():
		assert.Equal(t, *published, got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published event")
	}
}

func TestRedisBusSubscriberIsolation(t *testing.T) {
	_, bus := newTestRedis(t)
	ctx := context.Background()

	first, err := bus.Subscribe(ctx, "sentinel_events")
	require.NoError(t, err)
	second, err := bus.Subscribe(ctx, "sentinel_events")
	require.NoError(t, err)
	defer second.Close()

	// Closing one subscription must not affect the other.
	require.NoError(t, first.Close())

	event := &core.ProgressEvent{Type: core.EventLog, Message: "Analyzing changes"}
	require.NoError(t, bus.Publish(ctx, "sentinel_events", event))

	select {
	case got := <-second.Events():
		assert.Equal(t, *event, got)
	case <-time.After(2 * time.Second):
		t.Fatal("surviving subscriber did not receive the event")
	}
}
