package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"scoutpost/internal/lifecycle/models"
	"scoutpost/pkg/platform/sentinel"
)

// PostgresStore keeps one row per subject holding the current job snapshot
// as JSONB. The snapshot is presentation state; the ledger, not this table,
// carries resume correctness.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the jobs table. Idempotent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS erasure_jobs (
			subject_id TEXT PRIMARY KEY,
			job_id     TEXT NOT NULL UNIQUE,
			snapshot   JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure jobs schema: %w", err)
	}
	return nil
}

// Create inserts the subject's first job. Losing an insert race surfaces as
// sentinel.ErrConflict; the row written first stays authoritative.
func (s *PostgresStore) Create(ctx context.Context, job *models.ErasureJob) error {
	snapshot, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job snapshot: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO erasure_jobs (subject_id, job_id, snapshot, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (subject_id) DO NOTHING
	`, job.SubjectID, job.ID, snapshot)
	if err != nil {
		return fmt.Errorf("create job for %s: %w", job.SubjectID, err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create job for %s: %w", job.SubjectID, err)
	}
	if inserted == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, job *models.ErasureJob) error {
	snapshot, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO erasure_jobs (subject_id, job_id, snapshot, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (subject_id) DO UPDATE SET
			job_id = EXCLUDED.job_id,
			snapshot = EXCLUDED.snapshot,
			updated_at = now()
	`, job.SubjectID, job.ID, snapshot)
	if err != nil {
		return fmt.Errorf("save job for %s: %w", job.SubjectID, err)
	}
	return nil
}

func (s *PostgresStore) GetBySubject(ctx context.Context, subjectID string) (*models.ErasureJob, error) {
	return s.get(ctx, `SELECT snapshot FROM erasure_jobs WHERE subject_id = $1`, subjectID)
}

func (s *PostgresStore) GetByID(ctx context.Context, jobID string) (*models.ErasureJob, error) {
	return s.get(ctx, `SELECT snapshot FROM erasure_jobs WHERE job_id = $1`, jobID)
}

func (s *PostgresStore) get(ctx context.Context, query, arg string) (*models.ErasureJob, error) {
	var snapshot []byte
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}

	var job models.ErasureJob
	if err := json.Unmarshal(snapshot, &job); err != nil {
		return nil, fmt.Errorf("decode job snapshot: %w", err)
	}
	return &job, nil
}
