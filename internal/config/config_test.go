package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/edgard/purgebot/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_DISCORD_TOKEN", "test-token")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load with missing file failed: %v", err)
	}

	if cfg.Discord.Token != "test-token" {
		t.Errorf("token = %q, want env value", cfg.Discord.Token)
	}
	if cfg.Discord.CommandPrefix != "!purge" {
		t.Errorf("command prefix = %q, want default", cfg.Discord.CommandPrefix)
	}
	if cfg.Purge.PageSize != 100 {
		t.Errorf("page size = %d, want 100", cfg.Purge.PageSize)
	}
	if cfg.Purge.ChunkSize != 100 {
		t.Errorf("chunk size = %d, want 100", cfg.Purge.ChunkSize)
	}
	if cfg.Purge.BulkMaxAge != 14*24*time.Hour {
		t.Errorf("bulk max age = %v, want 336h", cfg.Purge.BulkMaxAge)
	}
	if cfg.Purge.ConfirmTimeout != 60*time.Second {
		t.Errorf("confirm timeout = %v, want 60s", cfg.Purge.ConfirmTimeout)
	}
	if cfg.Purge.CaseSensitive {
		t.Error("matching should be case-insensitive by default")
	}
	if len(cfg.Scheduler.Tasks) != 2 {
		t.Errorf("scheduled tasks = %d, want 2 defaults", len(cfg.Scheduler.Tasks))
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	t.Setenv("BOT_DISCORD_TOKEN", "test-token")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte("purge:\n  case_sensitive: true\n  confirm_timeout: 30s\n  page_size: 50\nlog:\n  level: debug\n")
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Purge.CaseSensitive {
		t.Error("case_sensitive override not applied")
	}
	if cfg.Purge.ConfirmTimeout != 30*time.Second {
		t.Errorf("confirm timeout = %v, want 30s", cfg.Purge.ConfirmTimeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Purge.PageSize != 50 {
		t.Errorf("page size = %d, want 50", cfg.Purge.PageSize)
	}
	// The page size and bulk chunk size are independent knobs.
	if cfg.Purge.ChunkSize != 100 {
		t.Errorf("chunk size = %d, want untouched default 100", cfg.Purge.ChunkSize)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("BOT_DISCORD_TOKEN", "test-token")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte("purge:\n  page_size: 500\n")
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for page_size over the platform cap")
	}
}
