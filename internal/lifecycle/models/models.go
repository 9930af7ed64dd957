// Package models defines the domain types of the personal-data lifecycle
// engine: erasure jobs, cascade steps, ledger entries, and export bundles.
package models

import (
	"time"
)

// Policy determines what happens to records of an entity type when their
// subject is erased.
type Policy string

const (
	// PolicyHardDelete removes matching records entirely, including any
	// owned blobs.
	PolicyHardDelete Policy = "HARD_DELETE"

	// PolicyAnonymize replaces subject-identifying fields with the
	// anonymization sentinels while preserving content fields.
	PolicyAnonymize Policy = "ANONYMIZE"

	// PolicyDetach clears foreign-key fields referencing the subject
	// without deleting the owning record.
	PolicyDetach Policy = "DETACH"
)

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	switch p {
	case PolicyHardDelete, PolicyAnonymize, PolicyDetach:
		return true
	}
	return false
}

// Role is the subject's role in the unit. It decides which relation entries
// apply; health records only exist for scouts.
type Role string

const (
	RoleScout    Role = "SCOUT"
	RoleLeader   Role = "LEADER"
	RoleGuardian Role = "GUARDIAN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleScout, RoleLeader, RoleGuardian:
		return true
	}
	return false
}

// Anonymization sentinels. Anonymized records carry these in place of the
// subject's identity; content fields are left byte-identical.
const (
	SentinelSubjectID   = "deleted-user"
	SentinelDisplayName = "[Deleted user]"
)

// JobStatus is the erasure job state machine position.
type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusPartial    JobStatus = "PARTIAL"
	JobStatusComplete   JobStatus = "COMPLETE"
	JobStatusFailed     JobStatus = "FAILED"
)

// Terminal reports whether the status permits no further transitions.
// PARTIAL is not terminal: a partial job resumes on the next request.
func (s JobStatus) Terminal() bool {
	return s == JobStatusComplete || s == JobStatusFailed
}

// StepOutcome records how a single cascade step ended.
type StepOutcome string

const (
	StepOutcomeOK StepOutcome = "OK"

	// StepOutcomeSkipped means the ledger already held a completion record
	// for this step, so it was not re-executed.
	StepOutcomeSkipped StepOutcome = "SKIPPED"

	StepOutcomeError StepOutcome = "ERROR"
)

// StepResult is the per-entity-type outcome of one cascade run. A successful
// result is written once and never overwritten; it is the idempotency anchor
// for resume.
type StepResult struct {
	EntityType      string      `json:"entity_type"`
	RecordsAffected int         `json:"records_affected"`
	Outcome         StepOutcome `json:"outcome"`
	ErrorKind       string      `json:"error_kind,omitempty"`
	CompletedAt     time.Time   `json:"completed_at"`
}

// ErasureJob is the durable snapshot of one subject's erasure cascade.
// Mutated only by the orchestrator.
type ErasureJob struct {
	ID          string       `json:"id"`
	SubjectID   string       `json:"subject_id"`
	Role        Role         `json:"role"`
	Status      JobStatus    `json:"status"`
	Steps       []StepResult `json:"steps"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// LedgerEntry records that a (subject, entity type) step completed durably.
// Its existence means the step must not be re-executed on resume.
type LedgerEntry struct {
	SubjectID   string    `json:"subject_id"`
	EntityType  string    `json:"entity_type"`
	CompletedAt time.Time `json:"completed_at"`
}

// RawRecord is a schemaless document as stored: an id plus arbitrary fields.
type RawRecord struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Clone returns a deep-enough copy for export hand-off; top-level fields are
// copied so callers cannot mutate store state through the bundle.
func (r RawRecord) Clone() RawRecord {
	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return RawRecord{ID: r.ID, Fields: fields}
}

// OpKind discriminates batched write operations.
type OpKind string

const (
	OpKindDelete OpKind = "delete"
	OpKindUpdate OpKind = "update"
)

// Op is a single batched write against one entity type.
type Op struct {
	Kind   OpKind
	ID     string
	Fields map[string]any
}

// DeleteOp builds a delete of one record by id.
func DeleteOp(id string) Op {
	return Op{Kind: OpKindDelete, ID: id}
}

// UpdateOp builds a partial update of one record's fields.
func UpdateOp(id string, fields map[string]any) Op {
	return Op{Kind: OpKindUpdate, ID: id, Fields: fields}
}

// ExportBundle is the portable copy of a subject's data, generated fresh per
// request and never persisted.
type ExportBundle struct {
	SubjectID   string                 `json:"subject_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Sections    map[string][]RawRecord `json:"sections"`
}
