// Package ports defines the interfaces the lifecycle engine consumes.
// Interfaces live here when consumed by multiple services to avoid
// duplication; implementations live under store/, lock/, and the external
// adapters.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"

	"scoutpost/internal/lifecycle/audit"
	"scoutpost/internal/lifecycle/models"
)

// DocumentStore is the narrow adapter over the schemaless document store.
// Each call is scoped to one collection; no cross-collection atomicity is
// assumed or required.
type DocumentStore interface {
	// Query returns all records in the collection whose field equals value.
	Query(ctx context.Context, collection, field, value string) ([]models.RawRecord, error)

	// BatchApply applies deletes and partial updates to one collection.
	// Re-deleting an absent record or re-applying an update is a no-op,
	// not an error: the cascade depends on idempotent writes.
	BatchApply(ctx context.Context, collection string, ops []models.Op) error
}

// BlobStore is the object store holding avatars and generated images.
type BlobStore interface {
	// ListAndDelete removes every object under prefix and returns how many
	// were deleted. Deleting an empty prefix returns (0, nil).
	ListAndDelete(ctx context.Context, prefix string) (int, error)
}

// LedgerStore is the durable, append-only record of completed cascade steps.
type LedgerStore interface {
	// HasCompleted reports whether the (subject, entity type) step already
	// completed durably.
	HasCompleted(ctx context.Context, subjectID, entityType string) (bool, error)

	// MarkCompleted upserts the completion record for a step.
	MarkCompleted(ctx context.Context, entry models.LedgerEntry) error

	// StepsFor returns all completed steps for a subject.
	StepsFor(ctx context.Context, subjectID string) ([]models.LedgerEntry, error)
}

// JobStore persists the current ErasureJob snapshot, keyed by subject.
type JobStore interface {
	// Create inserts the subject's first job, returning sentinel.ErrConflict
	// when a job already exists. Concurrent first requests race on this
	// insert; the first writer's job id wins.
	Create(ctx context.Context, job *models.ErasureJob) error

	// Save upserts the job snapshot.
	Save(ctx context.Context, job *models.ErasureJob) error

	// GetBySubject returns the subject's job, or sentinel.ErrNotFound.
	GetBySubject(ctx context.Context, subjectID string) (*models.ErasureJob, error)

	// GetByID returns the job by job id, or sentinel.ErrNotFound.
	GetByID(ctx context.Context, jobID string) (*models.ErasureJob, error)
}

// IdentityRevoker disables the subject's authentication identity. Must be
// idempotent: revoking an already-revoked identity is not an error.
type IdentityRevoker interface {
	RevokeIdentity(ctx context.Context, subjectID string) error
}

// UnlockFunc releases a held subject lock.
type UnlockFunc func(ctx context.Context) error

// SubjectLocker provides per-subject mutual exclusion for erasure jobs.
type SubjectLocker interface {
	// Acquire takes the subject's exclusive lock, returning
	// sentinel.ErrConflict when another job holds it.
	Acquire(ctx context.Context, subjectID string) (UnlockFunc, error)
}

// AuditPublisher emits lifecycle audit events. Erasure itself is an action
// that must be evidenced.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit logs an action and emits the matching audit event in one call so
// services cannot forget one of the two. kv pairs follow slog conventions.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event audit.Event, kv ...any) {
	if logger != nil {
		logger.InfoContext(ctx, string(event.Action), kv...)
	}
	if publisher != nil {
		// Audit failures must not fail the cascade; they are logged and
		// counted by the publisher itself.
		_ = publisher.Emit(ctx, event)
	}
}
