// Package daemon holds configuration and wiring: it reads config.toml,
// builds the logger, opens the configured storage backend and hands back a
// ready ledger.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/dayledger/dayledger/internal/infra/state"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Config is the on-disk configuration (~/.dayledger/config.toml).
type Config struct {
	Storage  StorageConfig  `toml:"storage"`
	Rollover RolloverConfig `toml:"rollover"`
	API      APIConfig      `toml:"api"`
	Log      LogConfig      `toml:"log"`
}

// StorageConfig selects where the ledger document lives.
type StorageConfig struct {
	Backend string `toml:"backend"` // sqlite | badger | memory
	Dir     string `toml:"dir"`     // data directory; defaults to <home>/data
	Key     string `toml:"key"`
}

// RolloverConfig controls the day-boundary watcher.
type RolloverConfig struct {
	Interval string `toml:"interval"` // Go duration, e.g. "1m"
	Location string `toml:"location"` // IANA name or "Local"
}

// APIConfig controls the local HTTP API used by `serve`.
type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Metrics bool   `toml:"metrics"`
}

// LogConfig controls slog output.
type LogConfig struct {
	Level  string `toml:"level"`  // debug | info | warn | error
	Format string `toml:"format"` // text | json
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Key:     state.DefaultKey,
		},
		Rollover: RolloverConfig{
			Interval: "1m",
			Location: "Local",
		},
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    11435,
			Metrics: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// HomeDir returns $DAYLEDGER_HOME, or ~/.dayledger.
func HomeDir() string {
	if env := os.Getenv("DAYLEDGER_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".dayledger")
}

// LoadConfig reads path over DefaultConfig. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	switch cfg.Storage.Backend {
	case BackendSQLite, BackendBadger, BackendMemory:
	case "":
		cfg.Storage.Backend = BackendSQLite
	default:
		return cfg, fmt.Errorf("config %s: unknown storage backend %q", path, cfg.Storage.Backend)
	}
	return cfg, nil
}

// DataDir resolves the storage directory against home.
func (c Config) DataDir(home string) string {
	if c.Storage.Dir != "" {
		return c.Storage.Dir
	}
	return filepath.Join(home, "data")
}

// Addr returns host:port for the API listener.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// WatchInterval parses Rollover.Interval, falling back to one minute.
func (c Config) WatchInterval() time.Duration {
	return parseInterval(c.Rollover.Interval)
}

// Location resolves Rollover.Location, falling back to time.Local.
func (c Config) Location() *time.Location {
	return parseLocation(c.Rollover.Location)
}

func parseInterval(s string) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

func parseLocation(s string) *time.Location {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(s)
	if err != nil {
		return time.Local
	}
	return loc
}
