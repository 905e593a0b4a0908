package report

import (
	"context"
	"errors"
	"time"

	"fleetreport/internal/domain/snapshot"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache хранит текущий снапшот и построенный по нему список клиентов.
// Реализации обязаны сбрасывать список клиентов при замене или инвалидации
// снапшота.
type Cache interface {
	Snapshot(ctx context.Context) (*snapshot.Snapshot, error)
	SetSnapshot(ctx context.Context, snap *snapshot.Snapshot, ttl time.Duration) error
	Customers(ctx context.Context) (*CustomerList, error)
	SetCustomers(ctx context.Context, list *CustomerList, ttl time.Duration) error
	Invalidate(ctx context.Context) error
	InvalidateCustomers(ctx context.Context) error
}

// CustomerList помечен снапшотом, из которого построен.
type CustomerList struct {
	SnapshotID string     `json:"snapshot_id"`
	Customers  []Customer `json:"customers"`
}
