// Package redis делит кеш снапшота между процессами сервера.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"fleetreport/internal/domain/report"
	"fleetreport/internal/domain/snapshot"

	"github.com/redis/go-redis/v9"
)

const (
	SnapshotKey   = "fleetreport:snapshot"
	SnapshotIDKey = "fleetreport:snapshot:id"
	CustomersKey  = "fleetreport:customers"
)

type Cache struct {
	rdb redis.UniversalClient

	// decoded хранит последний прочитанный снапшот по его id.
	mu      sync.Mutex
	decoded *snapshot.Snapshot
}

func New(rdb redis.UniversalClient) *Cache {
	return &Cache{rdb: rdb}
}

// Snapshot сначала читает короткий ключ с id и загружает и декодирует данные,
// только если id отличается от последнего декодированного.
func (c *Cache) Snapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	id, err := c.rdb.Get(ctx, SnapshotIDKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, report.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read %s: %w", SnapshotIDKey, err)
	}

	c.mu.Lock()
	memo := c.decoded
	c.mu.Unlock()
	if memo != nil && memo.ID == id {
		return memo, nil
	}

	var snap snapshot.Snapshot
	if err := c.get(ctx, SnapshotKey, &snap); err != nil {
		return nil, err
	}
	// Публикация между двумя чтениями оставляет данные новее id.
	if snap.ID == id {
		c.mu.Lock()
		c.decoded = &snap
		c.mu.Unlock()
	}
	return &snap, nil
}

// SetSnapshot сохраняет снапшот и сбрасывает производный список клиентов в
// одной транзакции.
func (c *Cache) SetSnapshot(ctx context.Context, snap *snapshot.Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, SnapshotKey, data, ttl)
		pipe.Set(ctx, SnapshotIDKey, snap.ID, ttl)
		pipe.Del(ctx, CustomersKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

func (c *Cache) Customers(ctx context.Context) (*report.CustomerList, error) {
	var list report.CustomerList
	if err := c.get(ctx, CustomersKey, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// SetCustomers обрезает TTL до остатка жизни снапшота.
func (c *Cache) SetCustomers(ctx context.Context, list *report.CustomerList, ttl time.Duration) error {
	left, err := c.rdb.PTTL(ctx, SnapshotKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read snapshot ttl: %w", err)
	}
	// go-redis возвращает -2 для отсутствующего ключа и -1 для ключа без срока.
	switch {
	case left == -2:
		return nil
	case left > 0 && left < ttl:
		ttl = left
	}

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode customers: %w", err)
	}
	if err := c.rdb.Set(ctx, CustomersKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store customers: %w", err)
	}
	return nil
}

func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, SnapshotIDKey, SnapshotKey, CustomersKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

func (c *Cache) InvalidateCustomers(ctx context.Context) error {
	if err := c.rdb.Del(ctx, CustomersKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate customers: %w", err)
	}
	return nil
}

func (c *Cache) get(ctx context.Context, key string, dest any) error {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return report.ErrCacheMiss
		}
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}
