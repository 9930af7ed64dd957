package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Publisher captures structured audit events. It stamps ids and timestamps
// and delegates persistence to a Store so sinks can be swapped in tests.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.store.Append(ctx, event)
}

func (p *Publisher) ListBySubject(ctx context.Context, subjectID string) ([]Event, error) {
	return p.store.ListBySubject(ctx, subjectID)
}
