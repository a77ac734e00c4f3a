// Package core defines the essential data structures and interfaces that form
// the backbone of the application. These components are designed to be
// abstract, allowing for flexible and decoupled implementations of the
// queue backend, the code host, and the review engine.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// JobSource identifies where a review job originated.
type JobSource string

const (
	// SourceGitHub marks jobs created from a pull request webhook.
	SourceGitHub JobSource = "github"
	// SourceManual marks jobs submitted directly with a raw code payload.
	SourceManual JobSource = "manual"
)

// Job is the unit of review work placed on the queue. It is serialized as
// JSON onto the queue by the gateway and consumed by a pipeline worker;
// it is never persisted beyond the queue.
type Job struct {
	Source         JobSource `json:"source"`
	RepoName       string    `json:"repo_name,omitempty"`
	PRNumber       int       `json:"pr_number"`
	Code           string    `json:"code,omitempty"`
	InstallationID int64     `json:"installation_id,omitempty"`
}

// Validate checks that exactly one content source is present: a GitHub job
// names a repository and pull request, a manual job carries raw code.
func (j *Job) Validate() error {
	switch j.Source {
	case SourceGitHub:
		if j.RepoName == "" {
			return fmt.Errorf("github job requires repo_name")
		}
		if j.PRNumber <= 0 {
			return fmt.Errorf("github job requires a positive pr_number, got %d", j.PRNumber)
		}
		if j.Code != "" {
			return fmt.Errorf("github job must not carry a code payload")
		}
	case SourceManual:
		if j.Code == "" {
			return fmt.Errorf("manual job requires a code payload")
		}
	default:
		return fmt.Errorf("unknown job source %q", j.Source)
	}
	return nil
}

// ErrQueueUnavailable indicates the queue backend could not be reached.
// Callers treat it as a transient infrastructure failure.
var ErrQueueUnavailable = errors.New("job queue unavailable")

// JobQueue is a durable FIFO hand-off between the ingestion boundary and
// worker processes. A single named queue is shared by all producers and
// consumers; each pushed job is delivered to exactly one consumer.
type JobQueue interface {
	// Push appends a job to the tail of the queue. It never blocks.
	Push(ctx context.Context, job *Job) error
	// Pop removes and returns the head of the queue, blocking up to
	// timeout. A nil job with a nil error means the timeout elapsed with
	// the queue empty; callers loop and re-check for cancellation.
	Pop(ctx context.Context, timeout time.Duration) (*Job, error)
	// Len reports the current queue depth. The queue is unbounded, so
	// depth is the observability signal for sustained overload.
	Len(ctx context.Context) (int64, error)
}
