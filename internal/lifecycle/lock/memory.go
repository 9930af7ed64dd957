// Package lock provides per-subject mutual exclusion for the erasure engine.
// At most one cascade may run for a given subject at a time.
package lock

import (
	"context"
	"sync"

	"scoutpost/internal/lifecycle/ports"
	"scoutpost/pkg/platform/sentinel"
)

// InMemoryLocker is a process-local subject locker for tests and
// single-instance deployments.
type InMemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{held: make(map[string]struct{})}
}

// Acquire takes the subject lock or fails fast with sentinel.ErrConflict when
// another cascade already holds it. The returned function releases the lock
// and is safe to call more than once.
func (l *InMemoryLocker) Acquire(_ context.Context, subjectID string) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[subjectID]; ok {
		return nil, sentinel.ErrConflict
	}
	l.held[subjectID] = struct{}{}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, subjectID)
			l.mu.Unlock()
		})
		return nil
	}, nil
}
