//go:build integration

package document

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoutpost/internal/lifecycle/models"
	"scoutpost/pkg/testutil/containers"
)

func TestPostgresStore_Integration(t *testing.T) {
	ctx := context.Background()
	pg := containers.NewPostgresContainer(t)

	store := NewPostgres(pg.DB)
	require.NoError(t, store.EnsureSchema(ctx))

	seed := func(t *testing.T) {
		t.Helper()
		require.NoError(t, pg.TruncateAll(ctx, "documents"))
		require.NoError(t, store.Insert(ctx, "channelMessages",
			models.RawRecord{ID: "m1", Fields: map[string]any{"authorId": "s1", "authorName": "Alex", "body": "see you at camp"}}))
		require.NoError(t, store.Insert(ctx, "channelMessages",
			models.RawRecord{ID: "m2", Fields: map[string]any{"authorId": "s2", "authorName": "Sam", "body": "bring a torch"}}))
		require.NoError(t, store.Insert(ctx, "healthRecords",
			models.RawRecord{ID: "h1", Fields: map[string]any{"subjectId": "s1", "allergies": "pollen"}}))
	}

	t.Run("query matches on payload field equality", func(t *testing.T) {
		seed(t)

		records, err := store.Query(ctx, "channelMessages", "authorId", "s1")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "m1", records[0].ID)
		assert.Equal(t, "see you at camp", records[0].Fields["body"])

		none, err := store.Query(ctx, "channelMessages", "authorId", "s9")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("batch delete is idempotent", func(t *testing.T) {
		seed(t)

		ops := []models.Op{models.DeleteOp("h1"), models.DeleteOp("absent")}
		require.NoError(t, store.BatchApply(ctx, "healthRecords", ops))
		require.NoError(t, store.BatchApply(ctx, "healthRecords", ops))

		records, err := store.Query(ctx, "healthRecords", "subjectId", "s1")
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("batch update patches fields and keeps the rest", func(t *testing.T) {
		seed(t)

		require.NoError(t, store.BatchApply(ctx, "channelMessages", []models.Op{
			models.UpdateOp("m1", map[string]any{
				"authorId":   models.SentinelSubjectID,
				"authorName": models.SentinelDisplayName,
			}),
		}))

		records, err := store.Query(ctx, "channelMessages", "authorId", models.SentinelSubjectID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, models.SentinelDisplayName, records[0].Fields["authorName"])
		assert.Equal(t, "see you at camp", records[0].Fields["body"])

		// The original author reference no longer matches.
		orig, err := store.Query(ctx, "channelMessages", "authorId", "s1")
		require.NoError(t, err)
		assert.Empty(t, orig)
	})

	t.Run("detach update sets fields to null", func(t *testing.T) {
		seed(t)
		require.NoError(t, store.Insert(ctx, "unitRosters",
			models.RawRecord{ID: "r1", Fields: map[string]any{"memberId": "s1", "unit": "Foxes"}}))

		require.NoError(t, store.BatchApply(ctx, "unitRosters", []models.Op{
			models.UpdateOp("r1", map[string]any{"memberId": nil}),
		}))

		records, err := store.Query(ctx, "unitRosters", "memberId", "s1")
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}
