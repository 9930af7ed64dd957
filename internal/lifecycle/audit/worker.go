package audit

import (
	"context"
	"errors"
	"log/slog"
)

// ChannelSink is a Store whose Append only enqueues. A Worker drains the
// channel into the real sink, so slow sinks never sit on the cascade path.
type ChannelSink struct {
	inbox chan Event
}

func NewChannelSink(size int) *ChannelSink {
	return &ChannelSink{inbox: make(chan Event, size)}
}

// Append enqueues without blocking. A full buffer drops the event; audit
// emission must never stall an erasure step.
func (s *ChannelSink) Append(_ context.Context, event Event) error {
	select {
	case s.inbox <- event:
		return nil
	default:
		return errors.New("audit buffer full, event dropped")
	}
}

// ListBySubject is not supported on the buffering sink; reads go to the
// backing store.
func (s *ChannelSink) ListBySubject(context.Context, string) ([]Event, error) {
	return nil, errors.New("channel audit sink is write-only")
}

// Events exposes the drain side for a Worker.
func (s *ChannelSink) Events() <-chan Event {
	return s.inbox
}

// Worker drains buffered audit events into the backing store.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run blocks until ctx is cancelled. Persistence failures are logged, not
// fatal; losing one audit write must not stop the drain.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "audit event persist failed",
					"action", event.Action,
					"subject_id", event.SubjectID,
					"error", err,
				)
			}
		}
	}
}
