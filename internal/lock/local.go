package lock

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// LocalLocker collapses concurrent calls for a key within one process.
type LocalLocker struct {
	group   singleflight.Group
	timeout time.Duration
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{timeout: defaultLockTTL}
}

// Do runs fn detached from any single caller's cancellation, bounded by the locker timeout.
// Waiting callers stop waiting when their own ctx is done.
func (l *LocalLocker) Do(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	ch := l.group.DoChan(key, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		return fn(shared)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
