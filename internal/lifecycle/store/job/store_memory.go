// Package job persists ErasureJob snapshots, keyed by subject: a subject has
// at most one job, created on first request and carried through resumes.
package job

import (
	"context"
	"sync"

	"scoutpost/internal/lifecycle/models"
	"scoutpost/pkg/platform/sentinel"
)

// InMemoryStore keeps job snapshots in memory for tests and local
// development.
type InMemoryStore struct {
	mu        sync.RWMutex
	bySubject map[string]*models.ErasureJob
	byID      map[string]string // job id → subject id
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		bySubject: make(map[string]*models.ErasureJob),
		byID:      make(map[string]string),
	}
}

func (s *InMemoryStore) Create(_ context.Context, job *models.ErasureJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bySubject[job.SubjectID]; exists {
		return sentinel.ErrConflict
	}
	s.bySubject[job.SubjectID] = cloneJob(job)
	s.byID[job.ID] = job.SubjectID
	return nil
}

func (s *InMemoryStore) Save(_ context.Context, job *models.ErasureJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := cloneJob(job)
	s.bySubject[job.SubjectID] = snapshot
	s.byID[job.ID] = job.SubjectID
	return nil
}

func (s *InMemoryStore) GetBySubject(_ context.Context, subjectID string) (*models.ErasureJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.bySubject[subjectID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneJob(job), nil
}

func (s *InMemoryStore) GetByID(_ context.Context, jobID string) (*models.ErasureJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subjectID, ok := s.byID[jobID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneJob(s.bySubject[subjectID]), nil
}

func cloneJob(job *models.ErasureJob) *models.ErasureJob {
	out := *job
	out.Steps = make([]models.StepResult, len(job.Steps))
	copy(out.Steps, job.Steps)
	if job.CompletedAt != nil {
		t := *job.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}
