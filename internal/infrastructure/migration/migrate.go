package migration

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"fleetreport/internal/app/server/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/hashicorp/go-multierror"
)

//go:embed sql
var files embed.FS

// Migrator - используемая здесь часть migrate.Migrate.
type Migrator interface {
	Up() error
	Close() (error, error)
}

// MigrationEngine - фабрика мигратора для диалекта (чтобы не лезть в ФС и БД в
// тестах).
type MigrationEngine func(dialect, databaseURL string) (Migrator, error)

type Migration struct {
	dialect     string
	databaseURL string
	engine      MigrationEngine
}

func NewMigration(db config.DB, engine MigrationEngine) *Migration {
	if engine == nil {
		engine = DefaultEngine
	}
	return &Migration{
		dialect:     db.Dialect(),
		databaseURL: DatabaseURL(db),
		engine:      engine,
	}
}

// DefaultEngine читает встроенный SQL диалекта.
func DefaultEngine(dialect, databaseURL string) (Migrator, error) {
	src, err := iofs.New(files, "sql/"+dialect)
	if err != nil {
		return nil, err
	}
	return migrate.NewWithSourceInstance("iofs", src, databaseURL)
}

// DatabaseURL переписывает DATABASE_URI в схему драйвера migrate.
func DatabaseURL(db config.DB) string {
	if db.Dialect() == "postgres" {
		rest := strings.TrimPrefix(strings.TrimPrefix(db.DatabaseURI, "postgresql://"), "postgres://")
		return "pgx5://" + rest
	}
	return "sqlite3://" + db.SQLitePath()
}

func (mg *Migration) Up() (err error) {
	m, err := mg.engine(mg.dialect, mg.databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() {
		serr, dberr := m.Close()
		if serr == nil && dberr == nil {
			return
		}
		var merr *multierror.Error
		if err != nil {
			merr = multierror.Append(merr, err)
		}
		if serr != nil {
			merr = multierror.Append(merr, fmt.Errorf("migration source: %w", serr))
		}
		if dberr != nil {
			merr = multierror.Append(merr, fmt.Errorf("migration database: %w", dberr))
		}
		err = merr.ErrorOrNil()
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
