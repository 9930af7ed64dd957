package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"scoutpost/internal/lifecycle/ports"
	dErrors "scoutpost/pkg/domain-errors"
	"scoutpost/pkg/platform/sentinel"
)

const (
	subjectLockKeyPrefix = "lifecycle:lock:subject:"

	// defaultLockTTL bounds how long a crashed instance can block a subject.
	// Cascades that outlive the TTL lose the lock; the ledger makes a
	// concurrent resume safe, if wasteful.
	defaultLockTTL = 10 * time.Minute
)

// releaseScript deletes the lock only when the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker is a Redis-backed subject locker for multi-instance
// deployments.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisLockerOption configures a RedisLocker instance.
type RedisLockerOption func(*RedisLocker)

// WithTTL overrides the lock expiry.
func WithTTL(ttl time.Duration) RedisLockerOption {
	return func(l *RedisLocker) {
		l.ttl = ttl
	}
}

// NewRedisLocker constructs a Redis-backed subject locker.
func NewRedisLocker(client *redis.Client, opts ...RedisLockerOption) *RedisLocker {
	locker := &RedisLocker{
		client: client,
		ttl:    defaultLockTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(locker)
		}
	}
	return locker
}

// Acquire takes the subject lock via SET NX with an expiry. The unlock
// function releases only if this caller still owns the lock, so a lock lost
// to TTL expiry cannot delete a successor's lock.
func (l *RedisLocker) Acquire(ctx context.Context, subjectID string) (ports.UnlockFunc, error) {
	key := subjectLockKeyPrefix + subjectID
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTransientStore, "acquire subject lock")
	}
	if !ok {
		return nil, sentinel.ErrConflict
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			return dErrors.Wrap(err, dErrors.CodeTransientStore, "release subject lock")
		}
		return nil
	}, nil
}
