package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.URL != nil || cfg.Dictionary.Autoload != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `[server]
url = "http://example.test:5000"
timeout = "2s"

[dictionary]
autoload = true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.URL == nil || *cfg.Server.URL != "http://example.test:5000" {
		t.Fatalf("unexpected url: %v", cfg.Server.URL)
	}
	if cfg.Server.Timeout == nil || *cfg.Server.Timeout != 2*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.Server.Timeout)
	}
	if cfg.Dictionary.Autoload == nil || !*cfg.Dictionary.Autoload {
		t.Fatalf("expected autoload true")
	}
	if cfg.Dictionary.Mirror != nil || cfg.Log.File != nil {
		t.Fatalf("expected unset keys to stay nil, got %+v", cfg)
	}
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server]\nadress = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "server.adress") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "morfo", "config.toml") {
		t.Fatalf("unexpected config path: %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "morfo", "morfo.db") {
		t.Fatalf("unexpected db path: %s", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/data", "morfo", "morfo.log") {
		t.Fatalf("unexpected log path: %s", got)
	}
}
