// Package blob implements the object-store adapter for subject-owned binary
// assets (avatars, generated challenge images). The engine only ever deletes
// by prefix; uploads belong to the application.
package blob

import (
	"context"
	"strings"
	"sync"
)

// InMemoryStore keeps object keys in memory for tests and local development.
type InMemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{objects: make(map[string][]byte)}
}

// Put stores an object. Test and bootstrap helper.
func (s *InMemoryStore) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
}

func (s *InMemoryStore) ListAndDelete(_ context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			delete(s.objects, key)
			deleted++
		}
	}
	return deleted, nil
}

// CountWithPrefix returns how many objects remain under prefix. Test helper.
func (s *InMemoryStore) CountWithPrefix(prefix string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			n++
		}
	}
	return n
}
