package core

import "context"

// EventType classifies a progress event.
type EventType string

const (
	EventLog     EventType = "log"
	EventError   EventType = "error"
	EventSuccess EventType = "success"
)

// ProgressEvent is an ephemeral broadcast record describing pipeline
// progress or outcome. It is published once and never replayed; subscribers
// not connected at publish time never see it. Success events carry the
// repository, PR number, and the full review text so a live observer can
// render the result without re-fetching.
type ProgressEvent struct {
	Type    EventType `json:"type"`
	Message string    `json:"message"`
	Repo    string    `json:"repo,omitempty"`
	PR      int       `json:"pr,omitempty"`
	Review  string    `json:"review,omitempty"`
}

// Subscription is a live stream of progress events for a single subscriber.
type Subscription interface {
	// Events returns the delivery channel. It is closed when the
	// subscription ends. Delivery order matches publish order for this
	// subscriber; no ordering is guaranteed across subscribers.
	Events() <-chan ProgressEvent
	// Close unsubscribes and releases the subscription's resources.
	Close() error
}

// EventBus is a fan-out publish/subscribe channel with no durability: a
// failure to deliver to one subscriber must not affect the publisher or
// other subscribers.
type EventBus interface {
	// Publish broadcasts an event to all current subscribers of channel.
	// It is fire-and-forget from the pipeline's point of view.
	Publish(ctx context.Context, channel string, event *ProgressEvent) error
	// Subscribe opens a dedicated subscription on channel.
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}
