package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lazyPool builds a pool handle without dialing; pgxpool connects on first
// use, which the validation paths under test never reach.
func lazyPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), "postgres://catalog@localhost:5432/catalog_service")
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestNewMigrator_Validation(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name    string
		db      *DB
		path    string
		wantErr string
	}{
		{
			name:    "nil database",
			db:      nil,
			path:    t.TempDir(),
			wantErr: "database is required",
		},
		{
			name:    "nil pool",
			db:      &DB{},
			path:    t.TempDir(),
			wantErr: "database pool not initialized",
		},
		{
			name:    "empty migrations path",
			db:      &DB{pool: lazyPool(t)},
			path:    "",
			wantErr: "migrations path is required",
		},
		{
			name:    "missing migrations directory",
			db:      &DB{pool: lazyPool(t)},
			path:    filepath.Join(t.TempDir(), "does-not-exist"),
			wantErr: "migrations path validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			migrator, err := NewMigrator(tt.db, tt.path, logger)
			require.Error(t, err)
			assert.Nil(t, migrator)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// The remaining behavior needs a reachable Postgres; these skip when the
// local database is unavailable.

func TestMigrator_UpAndStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	migrator := setupTestMigrator(t)

	require.NoError(t, migrator.Up())

	status, err := migrator.Status()
	require.NoError(t, err)
	assert.False(t, status.Dirty)
	assert.Greater(t, status.Version, uint(0))

	// A second Up is a no-op, not an error.
	require.NoError(t, migrator.Up())
}

func TestMigrator_StepsAtEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	migrator := setupTestMigrator(t)

	require.NoError(t, migrator.Up())
	assert.NoError(t, migrator.Steps(1))
}

func TestMigrator_Force(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	migrator := setupTestMigrator(t)

	require.NoError(t, migrator.Up())

	status, err := migrator.Status()
	require.NoError(t, err)

	require.NoError(t, migrator.Force(int(status.Version)))

	after, err := migrator.Status()
	require.NoError(t, err)
	assert.Equal(t, status.Version, after.Version)
	assert.False(t, after.Dirty)
}

// setupTestMigrator opens a migrator over the repository's migrations
// directory, skipping when the database or the directory is unavailable.
func setupTestMigrator(t *testing.T) *Migrator {
	t.Helper()

	db := setupTestDB(t)
	t.Cleanup(db.Close)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	migrationsPath := filepath.Join(cwd, "..", "..", "migrations")
	if _, err := os.Stat(migrationsPath); os.IsNotExist(err) {
		t.Skipf("migrations directory not found at %s", migrationsPath)
	}

	migrator, err := NewMigrator(db, migrationsPath, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = migrator.Close() })

	return migrator
}
