// Package lock не дает запускам синхронизации пересекаться в одном процессе или
// между процессами с общим Redis.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

const DefaultKey = "fleetreport:sync:lock"

// Local - try-lock поверх мьютекса.
type Local struct {
	mu sync.Mutex
}

func NewLocal() *Local {
	return &Local{}
}

// TryLock не блокируется. ok равен false, если блокировку держит кто-то другой.
func (l *Local) TryLock(context.Context) (func(context.Context) error, bool, error) {
	if !l.mu.TryLock() {
		return nil, false, nil
	}
	var once sync.Once
	return func(context.Context) error {
		once.Do(l.mu.Unlock)
		return nil
	}, true, nil
}

// Redis - аренда в Redis. Аренда истекает через ttl, даже если владелец умер.
type Redis struct {
	client *redislock.Client
	key    string
	ttl    time.Duration
}

func NewRedis(rdb redis.UniversalClient, key string, ttl time.Duration) *Redis {
	if key == "" {
		key = DefaultKey
	}
	return &Redis{
		client: redislock.New(rdb),
		key:    key,
		ttl:    ttl,
	}
}

func (r *Redis) TryLock(ctx context.Context) (func(context.Context) error, bool, error) {
	l, err := r.client.Obtain(ctx, r.key, r.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to obtain lock %s: %w", r.key, err)
	}
	return func(ctx context.Context) error {
		err := l.Release(ctx)
		if err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("failed to release lock %s: %w", r.key, err)
		}
		return nil
	}, true, nil
}
