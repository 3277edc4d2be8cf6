package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.EventFetchLimit != DefaultEventFetchLimit {
		t.Fatalf("event fetch limit = %d, want default %d", cfg.EventFetchLimit, DefaultEventFetchLimit)
	}
	if cfg.OrphanLockDelaySecs != DefaultOrphanLockDelaySecs {
		t.Fatalf("orphan lock delay = %d, want default %d", cfg.OrphanLockDelaySecs, DefaultOrphanLockDelaySecs)
	}
	if cfg.DBPath == "" {
		t.Fatal("db path empty")
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
[batch]
db-path = "/tmp/other.db"
event-fetch-limit = 1000
orphan-lock-delay-secs = 60
`)
	t.Setenv("ATTREG_DB", "") // isolate from the caller's environment
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/other.db" {
		t.Fatalf("db path = %q, want /tmp/other.db", cfg.DBPath)
	}
	if cfg.EventFetchLimit != 1000 {
		t.Fatalf("event fetch limit = %d, want 1000", cfg.EventFetchLimit)
	}
	if cfg.OrphanLockDelaySecs != 60 {
		t.Fatalf("orphan lock delay = %d, want 60", cfg.OrphanLockDelaySecs)
	}
}

func TestLoadPartialFileKeepsOtherDefaults(t *testing.T) {
	path := writeConfig(t, `
[batch]
event-fetch-limit = 250
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.EventFetchLimit != 250 {
		t.Fatalf("event fetch limit = %d, want 250", cfg.EventFetchLimit)
	}
	if cfg.OrphanLockDelaySecs != DefaultOrphanLockDelaySecs {
		t.Fatalf("orphan lock delay = %d, want default", cfg.OrphanLockDelaySecs)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[batch]
db-path = "/tmp/from-file.db"
`)
	t.Setenv("ATTREG_DB", "/tmp/from-env.db")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/from-env.db" {
		t.Fatalf("db path = %q, want the env override", cfg.DBPath)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
[batch]
event-fetch-limit = 0
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error on zero event-fetch-limit")
	}

	path = writeConfig(t, `
[batch]
orphan-lock-delay-secs = -5
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error on negative orphan-lock-delay-secs")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := writeConfig(t, "not toml at all [")
	if _, err := Load(path); err == nil {
		t.Fatal("expected decode error")
	}
}
