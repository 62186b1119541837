// Package database manages the SQLite connection and schema migrations.
package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"farelytics/internal/config"
	"farelytics/internal/sessions"
	"farelytics/internal/settings"
)

// Manager owns the GORM connection for the application.
type Manager struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB
}

// NewManager creates a database manager; call Init before use.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	return &Manager{cfg: cfg, logger: logger}
}

// Init opens the SQLite database, applies connection pragmas and configures
// the connection pool.
func (m *Manager) Init() error {
	if dir := filepath.Dir(m.cfg.GetDatabasePath()); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(m.cfg.GetDatabasePath()), gormCfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// WAL lets the parallel metrics pipelines read while the seeder writes.
	db.Exec("PRAGMA journal_mode = WAL")
	db.Exec("PRAGMA busy_timeout = 5000")
	db.Exec("PRAGMA foreign_keys = ON")

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(m.cfg.GetMaxOpenConns())
	sqlDB.SetMaxIdleConns(m.cfg.GetMaxIdleConns())

	m.db = db
	return nil
}

// GetConnection returns the GORM connection.
func (m *Manager) GetConnection() *gorm.DB {
	return m.db
}

// Close closes the underlying database connection.
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AllModels returns every persistent model, in migration order.
func AllModels() []any {
	return []any{
		&sessions.SearchSession{},
		&sessions.SessionEvent{},
		&sessions.ProviderClick{},
		&settings.Setting{},
	}
}

// MigrateDatabase runs schema migrations inside a transaction.
func (m *Manager) MigrateDatabase() error {
	if m.db == nil {
		return gorm.ErrInvalidDB
	}

	err := m.db.Transaction(func(tx *gorm.DB) error {
		return tx.AutoMigrate(AllModels()...)
	})
	if err != nil {
		m.logger.Error("Failed to auto-migrate database", slog.Any("error", err))
		return err
	}

	m.logger.Info("Database migration completed successfully")
	return nil
}
