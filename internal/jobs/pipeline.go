// Package jobs implements the review pipeline: worker loops that consume
// queued jobs and drive each one through the processing state machine.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sevigo/git-sentinel/internal/config"
	"github.com/sevigo/git-sentinel/internal/core"
)

// Outcome is the terminal state a job reaches. Every job fed into the
// pipeline ends in exactly one of these.
type Outcome int

const (
	// OutcomeCompleted means a review was produced and, for GitHub jobs,
	// posted back to the pull request.
	OutcomeCompleted Outcome = iota
	// OutcomeSkipped means there were no reviewable changes. Terminal,
	// not an error.
	OutcomeSkipped
	// OutcomeFailed means a stage failed; the job is abandoned and the
	// worker moves on. There is no retry.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Pipeline consumes jobs from the queue and processes them with the code
// host and review engine, broadcasting progress on the event bus.
type Pipeline struct {
	cfg    *config.Config
	queue  core.JobQueue
	bus    core.EventBus
	host   core.CodeHost
	engine core.ReviewEngine
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewPipeline wires a review pipeline. All dependencies are required except
// the code host, which manual-only deployments may leave nil.
func NewPipeline(cfg *config.Config, queue core.JobQueue, bus core.EventBus, host core.CodeHost, engine core.ReviewEngine, logger *slog.Logger) *Pipeline {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if queue == nil {
		panic("job queue cannot be nil")
	}
	if bus == nil {
		panic("event bus cannot be nil")
	}
	if engine == nil {
		panic("review engine cannot be nil")
	}
	return &Pipeline{
		cfg:    cfg,
		queue:  queue,
		bus:    bus,
		host:   host,
		engine: engine,
		logger: logger,
	}
}

// Start launches the worker loops. They run until ctx is cancelled; an
// in-flight job finishes before its worker exits.
func (p *Pipeline) Start(ctx context.Context) {
	for i := range p.cfg.MaxWorkers {
		p.wg.Add(1)
		go p.runWorker(ctx, i)
	}
}

// Wait blocks until all workers have stopped.
func (p *Pipeline) Wait() {
	p.wg.Wait()
	p.logger.Info("all review workers have stopped")
}

// runWorker is a single consumer loop. The blocking pop uses a bounded
// timeout so the loop can periodically re-check for shutdown; a pop timeout
// is normal idle, not an error. Infrastructure and processing failures are
// logged, broadcast where applicable, and followed by a brief backoff so a
// broken backend cannot spin the loop.
func (p *Pipeline) runWorker(ctx context.Context, workerID int) {
	defer p.wg.Done()
	p.logger.Info("starting review worker", "id", workerID, "queue", p.cfg.QueueName)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down review worker", "id", workerID)
			return
		default:
		}

		job, err := p.queue.Pop(ctx, p.cfg.PopTimeout)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("shutting down review worker", "id", workerID)
				return
			}
			p.logger.Error("failed to pop job from queue", "id", workerID, "error", err)
			p.backoff(ctx)
			continue
		}
		if job == nil {
			// Queue empty, idle until the next pop.
			continue
		}

		if depth, err := p.queue.Len(ctx); err == nil {
			p.logger.Info("worker picked up job",
				"id", workerID,
				"source", job.Source,
				"repo", job.RepoName,
				"pr", job.PRNumber,
				"queue_depth", depth)
		}

		// Shutdown cancellation only stops the pop loop. The job that is
		// already in flight runs to its terminal state under a context
		// that survives the shutdown signal.
		outcome, err := p.Process(context.WithoutCancel(ctx), job)
		if err != nil {
			p.logger.Error("job processing failed",
				"id", workerID,
				"repo", job.RepoName,
				"pr", job.PRNumber,
				"outcome", outcome.String(),
				"error", err)
			p.backoff(ctx)
			continue
		}
		p.logger.Info("job finished",
			"id", workerID,
			"repo", job.RepoName,
			"pr", job.PRNumber,
			"outcome", outcome.String())
	}
}

// Process drives one job through the state machine:
// picked-up → fetching → analyzing → reporting → completed/skipped/failed.
// Any stage error maps to OutcomeFailed with an error event broadcast; an
// error never unwinds past this boundary into the worker loop beyond the
// returned value.
func (p *Pipeline) Process(ctx context.Context, job *core.Job) (Outcome, error) {
	if err := job.Validate(); err != nil {
		p.publish(ctx, &core.ProgressEvent{
			Type:    core.EventError,
			Message: fmt.Sprintf("Rejected malformed job: %v", err),
		})
		return OutcomeFailed, fmt.Errorf("invalid job: %w", err)
	}

	p.publish(ctx, &core.ProgressEvent{
		Type:    core.EventLog,
		Message: pickedUpMessage(job),
		Repo:    job.RepoName,
		PR:      job.PRNumber,
	})

	diff, err := p.fetchDiff(ctx, job)
	if err != nil {
		p.publish(ctx, &core.ProgressEvent{
			Type:    core.EventError,
			Message: fmt.Sprintf("Failed to fetch changes: %v", err),
			Repo:    job.RepoName,
			PR:      job.PRNumber,
		})
		return OutcomeFailed, err
	}
	if diff == "" {
		p.publish(ctx, &core.ProgressEvent{
			Type:    core.EventLog,
			Message: "No changes to analyze",
			Repo:    job.RepoName,
			PR:      job.PRNumber,
		})
		return OutcomeSkipped, nil
	}

	p.publish(ctx, &core.ProgressEvent{
		Type:    core.EventLog,
		Message: "Analyzing changes",
		Repo:    job.RepoName,
		PR:      job.PRNumber,
	})

	review, err := p.engine.Review(ctx, diff)
	if err != nil {
		p.publish(ctx, &core.ProgressEvent{
			Type:    core.EventError,
			Message: fmt.Sprintf("Review generation failed: %v", err),
			Repo:    job.RepoName,
			PR:      job.PRNumber,
		})
		return OutcomeFailed, fmt.Errorf("review generation failed: %w", err)
	}

	// Manual jobs have no pull request to comment on; the review is only
	// delivered over the event bus.
	if review != "" && job.Source == core.SourceGitHub {
		if err := p.host.PostComment(ctx, job.RepoName, job.PRNumber, FormatReview(review)); err != nil {
			p.publish(ctx, &core.ProgressEvent{
				Type:    core.EventError,
				Message: fmt.Sprintf("Failed to post review: %v", err),
				Repo:    job.RepoName,
				PR:      job.PRNumber,
			})
			return OutcomeFailed, err
		}
	}

	p.publish(ctx, &core.ProgressEvent{
		Type:    core.EventSuccess,
		Message: completionMessage(job),
		Repo:    job.RepoName,
		PR:      job.PRNumber,
		Review:  review,
	})
	return OutcomeCompleted, nil
}

// fetchDiff resolves the text to analyze: manual jobs carry it inline,
// GitHub jobs require a code host round-trip.
func (p *Pipeline) fetchDiff(ctx context.Context, job *core.Job) (string, error) {
	if job.Source == core.SourceManual {
		return job.Code, nil
	}
	if p.host == nil {
		return "", fmt.Errorf("no code host configured for github jobs")
	}
	return p.host.GetDiff(ctx, job.RepoName, job.PRNumber)
}

// publish broadcasts a progress event. Delivery is best-effort: a bus
// failure is logged and must not influence the job outcome.
func (p *Pipeline) publish(ctx context.Context, event *core.ProgressEvent) {
	if err := p.bus.Publish(ctx, p.cfg.EventsChannel, event); err != nil {
		p.logger.Warn("failed to publish progress event", "type", event.Type, "error", err)
	}
}

// backoff pauses the loop after a failure, but never past shutdown.
func (p *Pipeline) backoff(ctx context.Context) {
	timer := time.NewTimer(p.cfg.ErrorBackoff)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// FormatReview renders the final comment body posted to the pull request.
func FormatReview(review string) string {
	return "## GitSentinel Review\n\n" + review
}

func pickedUpMessage(job *core.Job) string {
	if job.Source == core.SourceManual {
		return "Picked up manual review job"
	}
	return fmt.Sprintf("Picked up review job for %s#%d", job.RepoName, job.PRNumber)
}

func completionMessage(job *core.Job) string {
	if job.Source == core.SourceManual {
		return "Manual review completed"
	}
	return fmt.Sprintf("Review completed for %s#%d", job.RepoName, job.PRNumber)
}
