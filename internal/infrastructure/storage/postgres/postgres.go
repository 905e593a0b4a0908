package postgres

import (
	"context"
	"fmt"

	"fleetreport/internal/infrastructure/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// New открывает пул pgx и отдает его через database/sql.
func New(ctx context.Context, uri string) (*storage.DB, error) {
	pool, err := pgxpool.New(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return storage.New(stdlib.OpenDBFromPool(pool), storage.Postgres, pool.Close), nil
}
