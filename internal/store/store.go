// Package store handles SQLite persistence for registers, sessions,
// aggregates, locks and batch bookkeeping.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/edutrack/attreg/internal/models"
)

// Store wraps database access. It is constructed once and injected into
// the engine; no package-level handle exists.
type Store struct {
	db *gorm.DB
}

// Open opens or creates the SQLite database and runs migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Quiet by default
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// migrate creates/updates the database schema.
func (s *Store) migrate() error {
	return s.db.AutoMigrate(
		&models.Event{},
		&models.Course{},
		&models.MetaLink{},
		&models.TrackedUser{},
		&models.Register{},
		&models.Session{},
		&models.Aggregate{},
		&models.Lock{},
		&models.DumpEntry{},
		&models.Setting{},
		&models.CompletionState{},
	)
}

// Close closes the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
