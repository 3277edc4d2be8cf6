// Package config provides configuration loading and TOML parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Batch processing limits shared by every register instance.
const (
	// DefaultEventFetchLimit caps the number of log rows scanned per
	// batch run; exceeding it just means more work remains next run.
	DefaultEventFetchLimit = 500000

	// DefaultOrphanLockDelaySecs is the age past which a lock is
	// considered abandoned by a crashed recalculation.
	DefaultOrphanLockDelaySecs = 30 * 60
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Batch BatchConfig `toml:"batch"`
}

// BatchConfig maps batch-runner settings.
type BatchConfig struct {
	DBPath              *string `toml:"db-path"`
	EventFetchLimit     *int    `toml:"event-fetch-limit"`
	OrphanLockDelaySecs *int64  `toml:"orphan-lock-delay-secs"`
}

// Config is the resolved runtime configuration.
type Config struct {
	DBPath              string
	EventFetchLimit     int
	OrphanLockDelaySecs int64
}

// Load resolves the configuration: defaults, then the TOML file (if
// present), then environment overrides (ATTREG_DB).
func Load(path string) (Config, error) {
	cfg := Config{
		DBPath:              DefaultDBPath(),
		EventFetchLimit:     DefaultEventFetchLimit,
		OrphanLockDelaySecs: DefaultOrphanLockDelaySecs,
	}

	file, err := loadFile(path)
	if err != nil {
		return Config{}, err
	}
	if file.Batch.DBPath != nil {
		cfg.DBPath = *file.Batch.DBPath
	}
	if file.Batch.EventFetchLimit != nil {
		cfg.EventFetchLimit = *file.Batch.EventFetchLimit
	}
	if file.Batch.OrphanLockDelaySecs != nil {
		cfg.OrphanLockDelaySecs = *file.Batch.OrphanLockDelaySecs
	}

	if v := os.Getenv("ATTREG_DB"); v != "" {
		cfg.DBPath = v
	}

	if cfg.EventFetchLimit <= 0 {
		return Config{}, fmt.Errorf("event-fetch-limit must be positive, got %d", cfg.EventFetchLimit)
	}
	if cfg.OrphanLockDelaySecs <= 0 {
		return Config{}, fmt.Errorf("orphan-lock-delay-secs must be positive, got %d", cfg.OrphanLockDelaySecs)
	}
	return cfg, nil
}

// loadFile reads a TOML config from the given path. Missing file is not
// an error.
func loadFile(path string) (FileConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(baseDir(), "config.toml")
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(baseDir(), "attreg.db")
}

func baseDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".attreg")
}
