package persistence

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sponsorship/backend/internal/infrastructure/config"
	"github.com/sponsorship/backend/internal/infrastructure/logger"
)

// Database wraps the shared gorm connection pool
type Database struct {
	DB *gorm.DB
}

// NewDatabaseWithLogger opens the connection with SQL logging routed through
// the application logger at the given level
func NewDatabaseWithLogger(cfg *config.DatabaseConfig, log *zap.Logger, level gormlogger.LogLevel) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 logger.NewGormLogger(log, level),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db}, nil
}

// Close closes the underlying connection pool
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks that the database is reachable
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}

// PoolStats is the subset of connection pool counters reported on the
// health endpoint
type PoolStats struct {
	Open      int
	InUse     int
	Idle      int
	WaitCount int64
}

// Stats reports the current connection pool counters
func (d *Database) Stats() (PoolStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return PoolStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	s := sqlDB.Stats()
	return PoolStats{
		Open:      s.OpenConnections,
		InUse:     s.InUse,
		Idle:      s.Idle,
		WaitCount: s.WaitCount,
	}, nil
}

// Transaction executes fn inside a database transaction
func (d *Database) Transaction(fn func(tx *gorm.DB) error) error {
	return d.DB.Transaction(fn)
}
