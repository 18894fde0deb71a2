// Package lock serializes work per resolution key.
package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/OpenNSW/tariff/internal/config"
)

// KeyLocker runs fn with at most one execution in flight per key.
// Callers blocked on the same key receive the result of the running execution.
type KeyLocker interface {
	Do(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error)
}

// NewFromConfig returns the locker selected by cfg.Backend
func NewFromConfig(ctx context.Context, cfg config.LockConfig) (KeyLocker, func() error, error) {
	switch cfg.Backend {
	case "", "local":
		slog.Info("using in-process key locker")
		return NewLocalLocker(), func() error { return nil }, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		slog.Info("using redis key locker", "addr", cfg.RedisAddr, "db", cfg.RedisDB, "ttl_seconds", cfg.TTLSeconds)
		return NewRedisLocker(client, time.Duration(cfg.TTLSeconds)*time.Second), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported lock backend: %s", cfg.Backend)
	}
}
