package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Migrator runs the SQL migration files under migrations/ against
// PostgreSQL through golang-migrate
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New creates a Migrator over an open database connection
func New(db *sql.DB, dir string, log *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return &Migrator{m: m, log: log}, nil
}

// Up applies every pending migration
func (m *Migrator) Up() error {
	err := m.m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		m.log.Info("schema already up to date")
		return nil
	case err != nil:
		return fmt.Errorf("migrate up: %w", err)
	}
	m.logVersion("migrations applied")
	return nil
}

// Down rolls back every applied migration
func (m *Migrator) Down() error {
	err := m.m.Down()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		m.log.Info("nothing to roll back")
		return nil
	case err != nil:
		return fmt.Errorf("migrate down: %w", err)
	}
	m.log.Info("all migrations rolled back")
	return nil
}

// Steps applies n migrations, negative n rolls back
func (m *Migrator) Steps(n int) error {
	err := m.m.Steps(n)
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		m.log.Info("schema already up to date")
		return nil
	case err != nil:
		return fmt.Errorf("migrate %d steps: %w", n, err)
	}
	m.logVersion("migration steps applied")
	return nil
}

// Version reports the current schema version. A fresh database reports
// version zero.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty, nil
}

// Force overwrites the recorded schema version, clearing a dirty state
// after a failed migration has been repaired by hand
func (m *Migrator) Force(version int) error {
	if err := m.m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	m.log.Warn("schema version forced", zap.Int("version", version))
	return nil
}

// Close releases the migration source and database handles
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.m.Close()
	if sourceErr != nil {
		return fmt.Errorf("failed to close migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("failed to close migration database: %w", dbErr)
	}
	return nil
}

func (m *Migrator) logVersion(msg string) {
	version, dirty, err := m.m.Version()
	if err != nil {
		return
	}
	m.log.Info(msg, zap.Uint("version", version), zap.Bool("dirty", dirty))
}
