package daemon

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dayledger/dayledger/internal/infra/state"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, BackendSQLite)
	}
	if cfg.Storage.Key != state.DefaultKey {
		t.Errorf("Storage.Key = %q, want %q", cfg.Storage.Key, state.DefaultKey)
	}
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 11435 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 11435)
	}
	if cfg.WatchInterval() != time.Minute {
		t.Errorf("WatchInterval() = %v, want 1m", cfg.WatchInterval())
	}
	if cfg.Location() != time.Local {
		t.Errorf("Location() = %v, want Local", cfg.Location())
	}
}

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("LoadConfig(missing) = %+v, want defaults", cfg)
	}
}

func TestLoadConfig_OverridesAndKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[storage]
backend = "Badger"

[rollover]
interval = "30s"
location = "UTC"

[api]
port = 9000
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Storage.Backend != BackendBadger {
		t.Errorf("Storage.Backend = %q, want badger", cfg.Storage.Backend)
	}
	if cfg.Storage.Key != state.DefaultKey {
		t.Errorf("Storage.Key = %q, want default", cfg.Storage.Key)
	}
	if cfg.WatchInterval() != 30*time.Second {
		t.Errorf("WatchInterval() = %v, want 30s", cfg.WatchInterval())
	}
	if cfg.Location() != time.UTC {
		t.Errorf("Location() = %v, want UTC", cfg.Location())
	}
	if cfg.Addr() != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"bad toml":        "[storage\nbackend=",
		"unknown backend": "[storage]\nbackend = \"floppy\"\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+".toml")
			os.WriteFile(path, []byte(body), 0o600)
			if _, err := LoadConfig(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"1m", time.Minute},
		{"15s", 15 * time.Second},
		{" 2m ", 2 * time.Minute},
		{"", time.Minute},     // Default
		{"soon", time.Minute}, // Default
		{"-5s", time.Minute},  // Default
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseInterval(tt.input); got != tt.want {
				t.Errorf("parseInterval(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseLocation(t *testing.T) {
	if parseLocation("") != time.Local || parseLocation("local") != time.Local {
		t.Error("empty/local should resolve to time.Local")
	}
	if parseLocation("Not/AZone") != time.Local {
		t.Error("unknown zone should fall back to time.Local")
	}
	if parseLocation("UTC") != time.UTC {
		t.Error("UTC should resolve to time.UTC")
	}
}

func TestDataDir(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.DataDir("/h"); got != filepath.Join("/h", "data") {
		t.Errorf("DataDir() = %q", got)
	}
	cfg.Storage.Dir = "/elsewhere"
	if got := cfg.DataDir("/h"); got != "/elsewhere" {
		t.Errorf("DataDir() = %q, want /elsewhere", got)
	}
}

func TestNewLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, LogConfig{Level: "warn", Format: "json"}).Info("hidden")
	NewLogger(&buf, LogConfig{Level: "warn", Format: "json"}).Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("expected JSON warn line, got %q", out)
	}
}

func TestOpenLedger_Backends(t *testing.T) {
	for _, backend := range []string{BackendSQLite, BackendBadger, BackendMemory} {
		t.Run(backend, func(t *testing.T) {
			home := t.TempDir()
			cfg := DefaultConfig()
			cfg.Storage.Backend = backend
			logger := NewLogger(&bytes.Buffer{}, cfg.Log)
			ctx := context.Background()

			l, closer, err := OpenLedger(ctx, cfg, home, logger)
			if err != nil {
				t.Fatalf("OpenLedger() error: %v", err)
			}
			if err := l.CompleteObjective(ctx, 0); err != nil {
				t.Fatalf("CompleteObjective() error: %v", err)
			}
			closer.Close()

			if backend == BackendMemory {
				return
			}
			l2, closer2, err := OpenLedger(ctx, cfg, home, logger)
			if err != nil {
				t.Fatalf("reopen error: %v", err)
			}
			defer closer2.Close()
			if got := l2.Snapshot().CompletedToday; len(got) != 1 || got[0] != 0 {
				t.Errorf("after reopen CompletedToday = %v, want [0]", got)
			}
		})
	}
}
