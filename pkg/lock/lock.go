// Package lock provides a Redis-backed exclusive lock used to serialize
// media mutations when several processes share one upload directory.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yi-nology/blender_board/pkg/config"
)

// ErrTimeout is returned when the lock stays taken past the acquire timeout.
var ErrTimeout = errors.New("timeout acquiring write lock")

var errTaken = errors.New("lock taken")

const (
	initialBackoff = 50 * time.Millisecond
	maxBackoff     = 500 * time.Millisecond
)

// DistributedLock is a single global lock stored under one Redis key.
type DistributedLock struct {
	client         redis.Cmdable
	key            string
	ttl            time.Duration
	acquireTimeout time.Duration
}

// New creates a DistributedLock. ttl bounds how long a crashed holder can
// block others; acquireTimeout bounds how long Acquire waits.
func New(client redis.Cmdable, key string, ttl, acquireTimeout time.Duration) *DistributedLock {
	return &DistributedLock{
		client:         client,
		key:            key,
		ttl:            ttl,
		acquireTimeout: acquireTimeout,
	}
}

// FromConfig builds the write lock described by cfg. It returns nil when
// client is nil, i.e. Redis is disabled.
func FromConfig(client *redis.Client, cfg config.RedisConfig) *DistributedLock {
	if client == nil {
		return nil
	}
	return New(client, cfg.LockKey, cfg.LockTTL, cfg.LockTimeout)
}

// Key returns the Redis key holding the lock.
func (l *DistributedLock) Key() string { return l.key }

// Acquire blocks with capped exponential backoff until the lock is taken,
// the timeout passes or ctx ends. The returned token is needed by Release.
func (l *DistributedLock) Acquire(ctx context.Context) (string, error) {
	token := uuid.NewString()
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialBackoff
	b.MaxInterval = maxBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("redis setnx %s: %w", l.key, err))
		}
		if !ok {
			return struct{}{}, errTaken
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(l.acquireTimeout))

	switch {
	case err == nil:
		return token, nil
	case ctx.Err() != nil:
		return "", ctx.Err()
	case errors.Is(err, errTaken):
		return "", fmt.Errorf("%w after %s", ErrTimeout, l.acquireTimeout)
	default:
		return "", err
	}
}

// releaseScript deletes the key only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
else
    return 0
end
`)

// Release frees the lock if token still owns it. Releasing an expired or
// foreign lock is a no-op.
func (l *DistributedLock) Release(ctx context.Context, token string) error {
	err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	return nil
}
