package shared

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotObtained indicates another request holds the lock and retries ran out.
var ErrLockNotObtained = errors.New("lock not obtained")

// RedisLocker serializes critical sections across processes using Redis.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewRedisLocker constructs a RedisLocker. ttl bounds how long a crashed
// holder can block others.
func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{client: redislock.New(rdb), ttl: ttl}
}

// WithLock runs fn while holding the named lock, retrying briefly when
// the lock is contended.
func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lock, err := l.client.Obtain(ctx, "lock:"+key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 50),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return fmt.Errorf("%w: %s", ErrLockNotObtained, key)
		}
		return err
	}
	defer func() {
		_ = lock.Release(ctx)
	}()
	return fn(ctx)
}
