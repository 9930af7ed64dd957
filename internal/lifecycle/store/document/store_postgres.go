package document

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"scoutpost/internal/lifecycle/models"
)

// PostgresStore persists schemaless documents in a single table with a JSONB
// payload column, one logical collection per collection key. The engine only
// needs equality match on one field and batched delete/update by id, so no
// per-collection schema is required.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the documents table. Called at startup and by
// integration tests; idempotent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			payload    JSONB NOT NULL DEFAULT '{}'::jsonb,
			PRIMARY KEY (collection, id)
		);
		CREATE INDEX IF NOT EXISTS documents_payload_idx ON documents USING gin (payload);
	`)
	if err != nil {
		return fmt.Errorf("ensure documents schema: %w", err)
	}
	return nil
}

// Insert upserts a record into a collection. Used by application writers and
// test seeding; the erasure engine itself never inserts.
func (s *PostgresStore) Insert(ctx context.Context, collection string, record models.RawRecord) error {
	payload, err := json.Marshal(record.Fields)
	if err != nil {
		return fmt.Errorf("marshal document payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET payload = EXCLUDED.payload
	`, collection, record.ID, payload)
	if err != nil {
		return fmt.Errorf("insert document %s/%s: %w", collection, record.ID, err)
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, collection, field, value string) ([]models.RawRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, payload
		FROM documents
		WHERE collection = $1 AND payload->>$2 = $3
		ORDER BY id
	`, collection, field, value)
	if err != nil {
		return nil, fmt.Errorf("query %s by %s: %w", collection, field, err)
	}
	defer rows.Close()

	var out []models.RawRecord
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		fields := make(map[string]any)
		if err := json.Unmarshal(payload, &fields); err != nil {
			return nil, fmt.Errorf("decode document %s/%s: %w", collection, id, err)
		}
		out = append(out, models.RawRecord{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}
	return out, nil
}

// BatchApply runs all ops for one collection inside a transaction. The
// transaction scope is a convenience, not a correctness requirement: every
// op is individually idempotent so a half-applied batch is safe to re-run.
func (s *PostgresStore) BatchApply(ctx context.Context, collection string, ops []models.Op) error {
	if len(ops) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch for %s: %w", collection, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, op := range ops {
		switch op.Kind {
		case models.OpKindDelete:
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM documents WHERE collection = $1 AND id = $2`,
				collection, op.ID,
			); err != nil {
				return fmt.Errorf("delete %s/%s: %w", collection, op.ID, err)
			}
		case models.OpKindUpdate:
			patch, err := json.Marshal(op.Fields)
			if err != nil {
				return fmt.Errorf("marshal patch for %s/%s: %w", collection, op.ID, err)
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE documents SET payload = payload || $3::jsonb WHERE collection = $1 AND id = $2`,
				collection, op.ID, patch,
			); err != nil {
				return fmt.Errorf("update %s/%s: %w", collection, op.ID, err)
			}
		default:
			return fmt.Errorf("unknown op kind %q for %s", op.Kind, collection)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch for %s: %w", collection, err)
	}
	return nil
}
