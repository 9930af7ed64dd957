// Package ledger implements the consistency ledger: the durable record of
// which (subject, entity type) cascade steps have completed. An entry's
// existence means the step must not run again on resume.
package ledger

import (
	"context"
	"sort"
	"sync"

	"scoutpost/internal/lifecycle/models"
)

// InMemoryStore keeps ledger entries in memory for tests and local
// development.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]map[string]models.LedgerEntry // subject → entity type → entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]map[string]models.LedgerEntry)}
}

func (s *InMemoryStore) HasCompleted(_ context.Context, subjectID, entityType string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[subjectID][entityType]
	return ok, nil
}

func (s *InMemoryStore) MarkCompleted(_ context.Context, entry models.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bySubject := s.entries[entry.SubjectID]
	if bySubject == nil {
		bySubject = make(map[string]models.LedgerEntry)
		s.entries[entry.SubjectID] = bySubject
	}
	// First completion wins; the ledger is append-only.
	if _, ok := bySubject[entry.EntityType]; !ok {
		bySubject[entry.EntityType] = entry
	}
	return nil
}

func (s *InMemoryStore) StepsFor(_ context.Context, subjectID string) ([]models.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.LedgerEntry
	for _, e := range s.entries[subjectID] {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.Before(out[j].CompletedAt) })
	return out, nil
}
