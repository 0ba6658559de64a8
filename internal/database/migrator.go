package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

// Migrator applies schema migrations from a directory of numbered SQL files.
// It borrows a database/sql handle from the pgx pool for the lifetime of the
// migrator, so Close must be called to return those connections.
type Migrator struct {
	migrate *migrate.Migrate
	sqlDB   *sql.DB
	logger  zerolog.Logger
}

// Status describes the schema version after an inspection or an apply.
type Status struct {
	// Version is the identifier of the most recently applied migration,
	// zero when none have been applied.
	Version uint

	// Dirty reports that a migration started but did not finish. A dirty
	// schema must be repaired with Force before anything else will run.
	Dirty bool
}

// NewMigrator opens a migrator over the given pool and migrations directory.
func NewMigrator(db *DB, migrationsPath string, logger zerolog.Logger) (*Migrator, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	if db.pool == nil {
		return nil, errors.New("database pool not initialized")
	}
	if migrationsPath == "" {
		return nil, errors.New("migrations path is required")
	}
	if _, err := os.Stat(migrationsPath); err != nil {
		return nil, fmt.Errorf("migrations path validation failed: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(db.pool)

	driver, err := migratepgx.WithInstance(sqlDB, &migratepgx.Config{
		MigrationsTable: "schema_migrations",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "pgx5", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return &Migrator{migrate: m, sqlDB: sqlDB, logger: logger}, nil
}

// Up applies every pending migration. Already being at the latest version is
// not an error.
func (m *Migrator) Up() error {
	m.logger.Info().Msg("applying pending migrations")
	return m.finish(m.migrate.Up(), "apply migrations")
}

// Down rolls the schema all the way back.
func (m *Migrator) Down() error {
	m.logger.Warn().Msg("rolling back all migrations")
	return m.finish(m.migrate.Down(), "roll back migrations")
}

// Steps applies n migrations forward, or backward when n is negative.
func (m *Migrator) Steps(n int) error {
	m.logger.Info().Int("steps", n).Msg("stepping schema version")

	err := m.migrate.Steps(n)
	// Stepping past the last migration surfaces as a missing source file.
	if errors.Is(err, os.ErrNotExist) {
		m.logger.Info().Msg("already at the end of the migration sequence")
		return nil
	}
	return m.finish(err, "step migrations")
}

// finish folds the no-change outcome into success and wraps real failures.
func (m *Migrator) finish(err error, action string) error {
	switch {
	case err == nil:
		m.logStatus()
		return nil
	case errors.Is(err, migrate.ErrNoChange):
		m.logger.Info().Msg("schema already up to date")
		return nil
	default:
		return fmt.Errorf("failed to %s: %w", action, err)
	}
}

// Status reports the current schema version. A schema with no applied
// migrations reports version zero and no error.
func (m *Migrator) Status() (Status, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("failed to read schema version: %w", err)
	}
	return Status{Version: version, Dirty: dirty}, nil
}

// Force records the given version without running any migration. It is the
// recovery path for a dirty schema.
func (m *Migrator) Force(version int) error {
	m.logger.Warn().Int("version", version).Msg("forcing schema version")
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Close releases the migration source and returns the borrowed connections to
// the pool.
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	if m.sqlDB != nil {
		if err := m.sqlDB.Close(); err != nil && dbErr == nil {
			dbErr = err
		}
	}

	if sourceErr != nil {
		return fmt.Errorf("failed to close migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("failed to close migration database handle: %w", dbErr)
	}
	return nil
}

func (m *Migrator) logStatus() {
	status, err := m.Status()
	if err != nil {
		m.logger.Warn().Err(err).Msg("could not read schema version")
		return
	}
	m.logger.Info().Uint("version", status.Version).Bool("dirty", status.Dirty).Msg("schema version")
}
