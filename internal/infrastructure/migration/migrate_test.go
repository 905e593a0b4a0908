package migration

import (
	"errors"
	"path/filepath"
	"testing"

	"fleetreport/internal/app/server/config"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMigrator struct {
	mock.Mock
}

func (m *MockMigrator) Up() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockMigrator) Close() (error, error) {
	args := m.Called()
	return args.Error(0), args.Error(1)
}

func TestMigration_Up_Success(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(nil)
	mockM.On("Close").Return(nil, nil)

	var gotDialect, gotURL string
	engine := func(dialect, databaseURL string) (Migrator, error) {
		gotDialect, gotURL = dialect, databaseURL
		return mockM, nil
	}

	mg := NewMigration(config.DB{DatabaseURI: "postgres://u:p@db:5432/fleet"}, engine)
	err := mg.Up()

	assert.NoError(t, err)
	assert.Equal(t, "postgres", gotDialect)
	assert.Equal(t, "pgx5://u:p@db:5432/fleet", gotURL)
	mockM.AssertExpectations(t)
}

func TestMigration_Up_NoChange(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(migrate.ErrNoChange)
	mockM.On("Close").Return(nil, nil)

	engine := func(string, string) (Migrator, error) {
		return mockM, nil
	}

	err := NewMigration(config.DB{DatabaseURI: "sqlite://fleet.db"}, engine).Up()

	assert.NoError(t, err)
}

func TestMigration_Up_Errors(t *testing.T) {
	tests := []struct {
		name        string
		engineErr   error
		upErr       error
		closeSrcErr error
		closeDBErr  error
		contains    []string
	}{
		{
			name:      "engine fails",
			engineErr: errors.New("engine crash"),
			contains:  []string{"engine crash"},
		},
		{
			name:     "up fails",
			upErr:    errors.New("dirty database"),
			contains: []string{"dirty database"},
		},
		{
			name:        "close fails after up",
			upErr:       errors.New("dirty database"),
			closeSrcErr: errors.New("source gone"),
			closeDBErr:  errors.New("db gone"),
			contains:    []string{"dirty database", "source gone", "db gone"},
		},
		{
			name:       "only close fails",
			closeDBErr: errors.New("db gone"),
			contains:   []string{"db gone"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockM := new(MockMigrator)
			mockM.On("Up").Return(tt.upErr)
			mockM.On("Close").Return(tt.closeSrcErr, tt.closeDBErr)

			engine := func(string, string) (Migrator, error) {
				if tt.engineErr != nil {
					return nil, tt.engineErr
				}
				return mockM, nil
			}

			err := NewMigration(config.DB{DatabaseURI: "sqlite://fleet.db"}, engine).Up()

			require.Error(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestDatabaseURL(t *testing.T) {
	tests := []struct {
		uri      string
		expected string
	}{
		{uri: "postgres://u:p@h/db?sslmode=disable", expected: "pgx5://u:p@h/db?sslmode=disable"},
		{uri: "postgresql://u@h/db", expected: "pgx5://u@h/db"},
		{uri: "sqlite://data/fleet.db", expected: "sqlite3://data/fleet.db"},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.expected, DatabaseURL(config.DB{DatabaseURI: tt.uri}))
		})
	}
}

func TestDefaultEngine_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet.db")

	err := NewMigration(config.DB{DatabaseURI: "sqlite://" + path}, nil).Up()
	require.NoError(t, err)

	// Повторный запуск ничего не делает.
	err = NewMigration(config.DB{DatabaseURI: "sqlite://" + path}, nil).Up()
	assert.NoError(t, err)
}
