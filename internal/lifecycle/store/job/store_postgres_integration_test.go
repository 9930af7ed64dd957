//go:build integration

package job

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoutpost/internal/lifecycle/models"
	"scoutpost/pkg/platform/sentinel"
	"scoutpost/pkg/testutil/containers"
)

func TestPostgresStore_Integration(t *testing.T) {
	ctx := context.Background()
	pg := containers.NewPostgresContainer(t)

	store := NewPostgres(pg.DB)
	require.NoError(t, store.EnsureSchema(ctx))

	newJob := func() *models.ErasureJob {
		return &models.ErasureJob{
			ID:        "job-1",
			SubjectID: "s1",
			Role:      models.RoleScout,
			Status:    models.JobStatusPending,
			StartedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		}
	}

	t.Run("save and load round trip", func(t *testing.T) {
		require.NoError(t, pg.TruncateAll(ctx, "erasure_jobs"))
		require.NoError(t, store.Save(ctx, newJob()))

		bySubject, err := store.GetBySubject(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "job-1", bySubject.ID)
		assert.Equal(t, models.JobStatusPending, bySubject.Status)

		byID, err := store.GetByID(ctx, "job-1")
		require.NoError(t, err)
		assert.Equal(t, "s1", byID.SubjectID)
	})

	t.Run("create lets the first writer win", func(t *testing.T) {
		require.NoError(t, pg.TruncateAll(ctx, "erasure_jobs"))
		require.NoError(t, store.Create(ctx, newJob()))

		loser := newJob()
		loser.ID = "job-2"
		assert.ErrorIs(t, store.Create(ctx, loser), sentinel.ErrConflict)

		got, err := store.GetBySubject(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "job-1", got.ID)

		_, err = store.GetByID(ctx, "job-2")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("missing jobs return the not-found sentinel", func(t *testing.T) {
		require.NoError(t, pg.TruncateAll(ctx, "erasure_jobs"))

		_, err := store.GetBySubject(ctx, "nobody")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		_, err = store.GetByID(ctx, "nothing")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("save upserts the subject's snapshot", func(t *testing.T) {
		require.NoError(t, pg.TruncateAll(ctx, "erasure_jobs"))

		job := newJob()
		require.NoError(t, store.Save(ctx, job))

		now := time.Now().UTC().Truncate(time.Second)
		job.Status = models.JobStatusComplete
		job.CompletedAt = &now
		job.Steps = []models.StepResult{{
			EntityType:      "healthRecords",
			RecordsAffected: 1,
			Outcome:         models.StepOutcomeOK,
			CompletedAt:     now,
		}}
		require.NoError(t, store.Save(ctx, job))

		got, err := store.GetBySubject(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, models.JobStatusComplete, got.Status)
		require.NotNil(t, got.CompletedAt)
		require.Len(t, got.Steps, 1)
		assert.Equal(t, "healthRecords", got.Steps[0].EntityType)
	})
}
