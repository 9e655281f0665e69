package domain

import "context"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; the application layer depends on them.

// DocumentStore loads and persists the single ledger document.
type DocumentStore interface {
	// Load never fails on malformed content; it degrades to defaults.
	// Only an unreachable backend is reported, wrapped in ErrStorageUnavailable.
	Load(ctx context.Context) (*Document, error)

	// Save overwrites the persisted document.
	Save(ctx context.Context, doc *Document) error
}
