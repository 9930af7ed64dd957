// Package audit records lifecycle evidence: which erasure and export actions
// ran, for which subject, with what outcome. Erasure is itself an event a
// compliance team must be able to reconstruct after the data is gone.
package audit

import "time"

// Action names a lifecycle event. Values are stable: they end up in Kafka
// and in compliance exports.
type Action string

const (
	ActionJobStarted      Action = "erasure_job_started"
	ActionJobResumed      Action = "erasure_job_resumed"
	ActionStepCompleted   Action = "erasure_step_completed"
	ActionStepSkipped     Action = "erasure_step_skipped"
	ActionStepFailed      Action = "erasure_step_failed"
	ActionJobCompleted    Action = "erasure_job_completed"
	ActionJobPartial      Action = "erasure_job_partial"
	ActionJobFailed       Action = "erasure_job_failed"
	ActionIdentityRevoked Action = "identity_revoked"
	ActionExportGenerated Action = "export_generated"
)

// Event is one lifecycle audit record. SubjectID is PII until the cascade
// completes; downstream consumers treat the stream accordingly.
type Event struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	Action          Action    `json:"action"`
	SubjectID       string    `json:"subject_id"`
	JobID           string    `json:"job_id,omitempty"`
	EntityType      string    `json:"entity_type,omitempty"`
	Outcome         string    `json:"outcome,omitempty"`
	RecordsAffected int       `json:"records_affected,omitempty"`
	ActorID         string    `json:"actor_id,omitempty"`
	Detail          string    `json:"detail,omitempty"`
}
