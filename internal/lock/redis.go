package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when it still holds our token.
// KEYS[1] = lock key
// ARGV[1] = token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

const (
	defaultLockTTL   = 30 * time.Second
	defaultLockRetry = 50 * time.Millisecond
	lockKeyPrefix    = "tariff:lock:"
)

var errLockLost = errors.New("lock expired before release")

// RedisLocker holds a Redis lease per key so only one instance resolves a key at a time.
// Calls within the process are collapsed first.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
	local  *LocalLocker
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		retry:  defaultLockRetry,
		local:  &LocalLocker{timeout: ttl},
	}
}

func (l *RedisLocker) Do(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	return l.local.Do(ctx, key, func(ctx context.Context) (any, error) {
		redisKey := lockKeyPrefix + key
		token, err := l.acquire(ctx, redisKey)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := l.release(context.WithoutCancel(ctx), redisKey, token); err != nil {
				slog.WarnContext(ctx, "failed to release key lock", "key", key, "error", err)
			}
		}()
		return fn(ctx)
	})
}

// acquire polls SET NX PX until the lease is ours or ctx is done
func (l *RedisLocker) acquire(ctx context.Context, key string) (string, error) {
	token := uuid.NewString()
	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return "", fmt.Errorf("redis lock error: %w", err)
		}
		if ok {
			return token, nil
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("waiting for lock %s: %w", key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) release(ctx context.Context, key, token string) error {
	n, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int64()
	if err != nil {
		return fmt.Errorf("redis unlock error: %w", err)
	}
	if n == 0 {
		return errLockLost
	}
	return nil
}
