// Package document implements the narrow document-store adapter the engine
// consumes: equality queries on one field and batched delete/update by id,
// scoped to a single collection per call.
package document

import (
	"context"
	"sync"

	"scoutpost/internal/lifecycle/models"
)

// InMemoryStore keeps collections in memory. It backs tests and local
// development; production uses the Postgres store.
type InMemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]models.RawRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{collections: make(map[string]map[string]models.RawRecord)}
}

// Seed inserts records into a collection. Test and bootstrap helper.
func (s *InMemoryStore) Seed(collection string, records ...models.RawRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.collections[collection]
	if coll == nil {
		coll = make(map[string]models.RawRecord)
		s.collections[collection] = coll
	}
	for _, r := range records {
		coll[r.ID] = r.Clone()
	}
}

func (s *InMemoryStore) Query(_ context.Context, collection, field, value string) ([]models.RawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.RawRecord
	for _, r := range s.collections[collection] {
		if v, ok := r.Fields[field]; ok {
			if str, ok := v.(string); ok && str == value {
				out = append(out, r.Clone())
			}
		}
	}
	return out, nil
}

func (s *InMemoryStore) BatchApply(_ context.Context, collection string, ops []models.Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collections[collection]
	if coll == nil {
		// Deleting from an absent collection is a no-op, matching the
		// idempotency contract.
		coll = make(map[string]models.RawRecord)
		s.collections[collection] = coll
	}

	for _, op := range ops {
		switch op.Kind {
		case models.OpKindDelete:
			delete(coll, op.ID)
		case models.OpKindUpdate:
			record, ok := coll[op.ID]
			if !ok {
				continue
			}
			for k, v := range op.Fields {
				record.Fields[k] = v
			}
			coll[op.ID] = record
		}
	}
	return nil
}

// Count returns the number of records in a collection. Test helper.
func (s *InMemoryStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

// Get returns a record by id. Test helper.
func (s *InMemoryStore) Get(collection, id string) (models.RawRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.collections[collection][id]
	if !ok {
		return models.RawRecord{}, false
	}
	return r.Clone(), true
}
