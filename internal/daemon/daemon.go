package daemon

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dayledger/dayledger/internal/app/ledger"
	"github.com/dayledger/dayledger/internal/infra/badger"
	"github.com/dayledger/dayledger/internal/infra/sqlite"
	"github.com/dayledger/dayledger/internal/infra/state"
)

// NewLogger builds the process logger from cfg.
func NewLogger(w io.Writer, cfg LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// backend is a state.Backend that must be closed.
type backend interface {
	state.Backend
	Close() error
}

// OpenBackend opens the configured key/value backend under home.
func OpenBackend(cfg Config, home string, logger *slog.Logger) (state.Backend, io.Closer, error) {
	var b backend
	var err error
	switch cfg.Storage.Backend {
	case BackendBadger:
		bc := badger.DefaultConfig(filepath.Join(cfg.DataDir(home), "badger"))
		bc.Logger = logger.With("component", "badger")
		b, err = badger.Open(bc)
	case BackendMemory:
		b = state.NewMemoryBackend()
	default:
		b, err = sqlite.Open(cfg.DataDir(home))
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s backend: %w", cfg.Storage.Backend, err)
	}
	return b, b, nil
}

// OpenLedger opens the backend, loads the document and returns a ledger that
// has already run its day-boundary check. Close the returned io.Closer when done.
func OpenLedger(ctx context.Context, cfg Config, home string, logger *slog.Logger, opts ...ledger.Option) (*ledger.Ledger, io.Closer, error) {
	b, closer, err := OpenBackend(cfg, home, logger)
	if err != nil {
		return nil, nil, err
	}
	store := state.New(b, state.WithKey(cfg.Storage.Key), state.WithLogger(logger))

	base := []ledger.Option{ledger.WithLocation(cfg.Location()), ledger.WithLogger(logger)}
	l, err := ledger.Open(ctx, store, append(base, opts...)...)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	return l, closer, nil
}
