// Package memory - кеш снапшота внутри процесса.
package memory

import (
	"context"
	"sync"
	"time"

	"fleetreport/internal/domain/report"
	"fleetreport/internal/domain/snapshot"
)

type entry[T any] struct {
	value   T
	expires time.Time
}

// Cache хранит один снапшот и его список клиентов. Читатели видят прежнее
// значение, пока писатель не подменит указатель.
type Cache struct {
	mu        sync.RWMutex
	snap      *entry[*snapshot.Snapshot]
	customers *entry[*report.CustomerList]
	now       func() time.Time
}

func New() *Cache {
	return &Cache{now: time.Now}
}

func (c *Cache) Snapshot(context.Context) (*snapshot.Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil || !c.now().Before(c.snap.expires) {
		return nil, report.ErrCacheMiss
	}
	return c.snap.value, nil
}

func (c *Cache) SetSnapshot(_ context.Context, snap *snapshot.Snapshot, ttl time.Duration) error {
	e := &entry[*snapshot.Snapshot]{value: snap, expires: c.now().Add(ttl)}
	c.mu.Lock()
	c.snap = e
	c.customers = nil
	c.mu.Unlock()
	return nil
}

func (c *Cache) Customers(context.Context) (*report.CustomerList, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.customers == nil || !c.now().Before(c.customers.expires) {
		return nil, report.ErrCacheMiss
	}
	return c.customers.value, nil
}

// SetCustomers не дает списку пережить свой снапшот.
func (c *Cache) SetCustomers(_ context.Context, list *report.CustomerList, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil {
		return nil
	}
	expires := c.now().Add(ttl)
	if c.snap.expires.Before(expires) {
		expires = c.snap.expires
	}
	c.customers = &entry[*report.CustomerList]{value: list, expires: expires}
	return nil
}

func (c *Cache) Invalidate(context.Context) error {
	c.mu.Lock()
	c.snap = nil
	c.customers = nil
	c.mu.Unlock()
	return nil
}

func (c *Cache) InvalidateCustomers(context.Context) error {
	c.mu.Lock()
	c.customers = nil
	c.mu.Unlock()
	return nil
}
