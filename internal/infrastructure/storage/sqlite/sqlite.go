package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"fleetreport/internal/infrastructure/storage"

	_ "github.com/mattn/go-sqlite3"
)

const maxOpenConns = 4

// New открывает (или создает) файл базы по пути path.
func New(ctx context.Context, path string) (*storage.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// WAL позволяет читать параллельно с транзакцией синхронизации. Транзакции
	// берут блокировку записи сразу, поэтому конкурентные писатели ждут
	// busy_timeout, а не падают при повышении блокировки.
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return storage.New(db, storage.SQLite, nil), nil
}
