// Package ledger is the day ledger: it records today's objective completions,
// activity applications and adjustments, computes the net score, and closes
// the day into history at each calendar-day boundary.
//
// Every mutation is staged on a clone of the document, persisted, and only
// then made visible. A failed save leaves the ledger exactly as it was, so
// the in-memory and persisted documents never diverge.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dayledger/dayledger/internal/domain"
	"github.com/dayledger/dayledger/internal/infra/observability"
)

// Ledger owns one ledger document and its store. Safe for concurrent use;
// operations run one at a time to completion.
type Ledger struct {
	mu       sync.Mutex
	store    domain.DocumentStore
	doc      *domain.Document
	now      func() time.Time
	loc      *time.Location
	logger   *slog.Logger
	validate *validator.Validate
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the clock used for application timestamps and the
// on-open rollover check.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLocation sets the location in which calendar days are compared.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Open loads the document from store and runs the day-boundary check once,
// so a ledger opened on a new day starts with today's state already reset.
func Open(ctx context.Context, store domain.DocumentStore, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:    store,
		now:      time.Now,
		loc:      time.Local,
		logger:   slog.Default(),
		validate: validator.New(),
	}
	for _, o := range opts {
		o(l)
	}
	l.logger = l.logger.With("component", "ledger")

	doc, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	l.doc = doc
	l.publishScores()

	if _, err := l.CheckRollover(ctx, l.now()); err != nil {
		return nil, err
	}
	return l, nil
}

// ─── Reads ──────────────────────────────────────────────────────────────────

// Snapshot returns a deep copy of the current document.
func (l *Ledger) Snapshot() domain.Document {
	l.mu.Lock()
	defer l.mu.Unlock()
	return *l.doc.Clone()
}

// DailyScore returns completions minus adjustments minus activity points for
// the open day. Recomputed on every call.
func (l *Ledger) DailyScore() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.doc.DailyScore()
}

// RollingTotal returns the closed-day total plus the open day's score.
func (l *Ledger) RollingTotal() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.doc.ProjectedTotal()
}

// Location returns the location used for calendar-day comparison.
func (l *Ledger) Location() *time.Location { return l.loc }

// Now returns the ledger clock's current time.
func (l *Ledger) Now() time.Time { return l.now() }

// ─── Mutation ───────────────────────────────────────────────────────────────

// errNoop tells mutate that nothing changed and no save is needed.
var errNoop = errors.New("no change")

// mutate applies fn to a clone, persists the clone, then swaps it in.
// Callers must hold l.mu.
func (l *Ledger) mutate(ctx context.Context, op string, fn func(doc *domain.Document) error) error {
	next := l.doc.Clone()
	if err := fn(next); err != nil {
		if errors.Is(err, errNoop) {
			observability.ObserveOperation(op, observability.ResultNoop)
			return nil
		}
		observability.ObserveOperation(op, observability.ResultRejected)
		l.logger.Debug("operation rejected", "op", op, "err", err)
		return err
	}
	if err := l.store.Save(ctx, next); err != nil {
		observability.ObserveOperation(op, observability.ResultError)
		l.logger.Error("persist failed, operation discarded", "op", op, "err", err)
		return err
	}
	l.doc = next
	observability.ObserveOperation(op, observability.ResultOK)
	l.publishScores()
	return nil
}

func (l *Ledger) publishScores() {
	observability.ObserveScores(l.doc.DailyScore(), l.doc.ProjectedTotal())
}
