package lock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoutpost/pkg/platform/sentinel"
)

func TestAcquireIsExclusivePerSubject(t *testing.T) {
	ctx := context.Background()
	locker := NewInMemoryLocker()

	unlock, err := locker.Acquire(ctx, "s1")
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "s1")
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	// A different subject is not blocked.
	unlockOther, err := locker.Acquire(ctx, "s2")
	require.NoError(t, err)
	require.NoError(t, unlockOther(ctx))

	require.NoError(t, unlock(ctx))

	unlock, err = locker.Acquire(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}

func TestUnlockIsIdempotent(t *testing.T) {
	ctx := context.Background()
	locker := NewInMemoryLocker()

	unlock, err := locker.Acquire(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))

	next, err := locker.Acquire(ctx, "s1")
	require.NoError(t, err)

	// Releasing the first handle again must not free the second holder.
	require.NoError(t, unlock(ctx))
	_, err = locker.Acquire(ctx, "s1")
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	require.NoError(t, next(ctx))
}
