package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"scoutpost/internal/lifecycle/models"
)

// PostgresStore persists ledger entries, one row per (subject, entity type).
// The single-row upsert is the durability point of each cascade step: a crash
// between the data mutation and the upsert is resolved by re-running the
// step, which is why every mutation must be idempotent.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the ledger table. Idempotent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS erasure_ledger (
			subject_id   TEXT NOT NULL,
			entity_type  TEXT NOT NULL,
			completed_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (subject_id, entity_type)
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure ledger schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) HasCompleted(ctx context.Context, subjectID, entityType string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM erasure_ledger WHERE subject_id = $1 AND entity_type = $2
		)
	`, subjectID, entityType).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check ledger for %s/%s: %w", subjectID, entityType, err)
	}
	return exists, nil
}

func (s *PostgresStore) MarkCompleted(ctx context.Context, entry models.LedgerEntry) error {
	// DO NOTHING keeps the first completion timestamp; the ledger is
	// append-only.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO erasure_ledger (subject_id, entity_type, completed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (subject_id, entity_type) DO NOTHING
	`, entry.SubjectID, entry.EntityType, entry.CompletedAt)
	if err != nil {
		return fmt.Errorf("mark ledger step %s/%s: %w", entry.SubjectID, entry.EntityType, err)
	}
	return nil
}

func (s *PostgresStore) StepsFor(ctx context.Context, subjectID string) ([]models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subject_id, entity_type, completed_at
		FROM erasure_ledger
		WHERE subject_id = $1
		ORDER BY completed_at
	`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list ledger steps for %s: %w", subjectID, err)
	}
	defer rows.Close()

	var out []models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.SubjectID, &e.EntityType, &e.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}
	return out, nil
}
