// Package storage реализует доменные репозитории поверх database/sql для
// Postgres и SQLite. Запросы пишутся с плейсхолдерами '?' и переписываются под
// активный диалект.
package storage

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DB - *sql.DB, знающий свой диалект.
type DB struct {
	*sql.DB
	dialect Dialect
	closer  func()
}

// New оборачивает открытое соединение. closer, если задан, вызывается после его
// закрытия.
func New(db *sql.DB, dialect Dialect, closer func()) *DB {
	return &DB{DB: db, dialect: dialect, closer: closer}
}

func (db *DB) Dialect() Dialect {
	return db.dialect
}

func (db *DB) Close() error {
	err := db.DB.Close()
	if db.closer != nil {
		db.closer()
	}
	return err
}

// Rebind превращает плейсхолдеры '?' в '$n' для Postgres.
func (db *DB) Rebind(query string) string {
	if db.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// querier реализуют и *sql.DB, и *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (db *DB) exec(ctx context.Context, q querier, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, db.Rebind(query), args...)
}

func (db *DB) queryRow(ctx context.Context, q querier, query string, args ...any) *sql.Row {
	return q.QueryRowContext(ctx, db.Rebind(query), args...)
}
