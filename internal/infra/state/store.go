// Package state persists the ledger document in client-local key/value storage.
//
// Store owns exactly one key. Load is schema-tolerant: absent or unparseable
// content yields a fresh document, and a parseable document is rebuilt field
// by field (see Decode). Save overwrites the key with the full document.
//
// Data flow:
//
//	Backend.Get -> Decode -> *domain.Document -> Encode -> Backend.Put
package state

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dayledger/dayledger/internal/domain"
	"github.com/dayledger/dayledger/internal/infra/observability"
)

// DefaultKey is the storage key of the ledger document. Bump it to
// hard-invalidate incompatible older schemas.
const DefaultKey = "daily-objectives-app-v4"

// Backend is a durable key/value store. Implementations: sqlite.DB,
// badger.Store, MemoryBackend.
type Backend interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Name() string
}

// Store loads and saves the ledger document under one key.
type Store struct {
	backend Backend
	key     string
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger used for load warnings and save failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used to default a missing day start.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Store over backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     DefaultKey,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With("component", "state", "backend", backend.Name(), "key", s.key)
	return s
}

// Key returns the storage key in use.
func (s *Store) Key() string { return s.key }

// Load implements domain.DocumentStore.
func (s *Store) Load(ctx context.Context) (*domain.Document, error) {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		s.logger.Error("load ledger document", "err", err)
		return nil, fmt.Errorf("%w: read %q: %v", domain.ErrStorageUnavailable, s.key, err)
	}
	now := s.now()
	if !ok {
		s.logger.Info("no ledger document found, starting fresh")
		return domain.NewDocument(now), nil
	}

	doc, defaulted, err := Decode(raw, now)
	if err != nil {
		s.logger.Warn("unparseable ledger document, starting fresh", "err", err, "bytes", len(raw))
		return domain.NewDocument(now), nil
	}
	for _, field := range defaulted {
		observability.StateFieldsDefaulted.WithLabelValues(field).Inc()
	}
	if len(defaulted) > 0 {
		s.logger.Warn("ledger document fields defaulted", "fields", defaulted)
	}
	return doc, nil
}

// Save implements domain.DocumentStore.
func (s *Store) Save(ctx context.Context, doc *domain.Document) error {
	raw, err := Encode(doc)
	if err != nil {
		return fmt.Errorf("encode ledger document: %w", err)
	}
	started := time.Now()
	if err := s.backend.Put(ctx, s.key, raw); err != nil {
		s.logger.Error("save ledger document", "err", err)
		return fmt.Errorf("%w: write %q: %v", domain.ErrStorageUnavailable, s.key, err)
	}
	observability.ObserveSave(s.backend.Name(), started)
	return nil
}
