package audit

import (
	"context"
	"errors"
	"log/slog"

	"formflow/pkg/requestcontext"
)

// ErrQueueFull is returned by a queued Publisher when the worker is behind.
var ErrQueueFull = errors.New("audit queue is full")

// Store appends audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher stamps events with request metadata and hands them to a store,
// either directly or through a queue drained by a Worker.
type Publisher struct {
	store  Store
	queue  chan<- Event
	logger *slog.Logger
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher appends synchronously to store.
func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewQueuedPublisher sends events to queue without blocking the caller.
func NewQueuedPublisher(queue chan<- Event, opts ...Option) *Publisher {
	p := &Publisher{queue: queue}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Actor == "" {
		event.Actor = requestcontext.Applicant(ctx)
	}

	if p.queue == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.queue <- event:
		return nil
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit event dropped",
				"action", event.Action,
				"application_id", event.ApplicationID.String(),
				"request_id", event.RequestID,
			)
		}
		return ErrQueueFull
	}
}
