package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dayledger/dayledger/internal/domain"
	"github.com/dayledger/dayledger/internal/infra/observability"
)

// ─── Day Rollover ───────────────────────────────────────────────────────────
//
//	Open ──(calendar date of now ≠ currentDayStart)──▶ Closing ──▶ Open (new day)
//
// Closing is synchronous and never observable: it appends the history record,
// folds the net into the rolling total, resets today, and persists once.

// DefaultWatchInterval is how often Watch checks for a day boundary.
const DefaultWatchInterval = time.Minute

// CheckRollover rolls the day over if now falls on a different calendar date
// than the current day start. It reports whether a rollover happened. Calling
// it again for the same day is a no-op, since the first call moved the day
// start to now.
func (l *Ledger) CheckRollover(ctx context.Context, now time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if domain.SameDate(l.doc.CurrentDayStart, now, l.loc) {
		return false, nil
	}
	if _, err := l.rollover(ctx, now); err != nil {
		return false, err
	}
	return true, nil
}

// Rollover closes the current day immediately, whatever the date. This is
// the explicit "start a new day" request; callers confirm with the user first.
//
// A day with any completion, adjustment or activity is appended to history
// and its net added to the rolling total; the record is returned. An empty
// day returns a nil record. Either way today is reset and starts at now.
func (l *Ledger) Rollover(ctx context.Context, now time.Time) (*domain.DayRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rollover(ctx, now)
}

func (l *Ledger) rollover(ctx context.Context, now time.Time) (*domain.DayRecord, error) {
	var record *domain.DayRecord
	closing := l.doc.CurrentDayStart

	err := l.mutate(ctx, "rollover", func(doc *domain.Document) error {
		if !doc.IsEmptyDay() {
			r := domain.DayRecord{
				ID:                   uuid.NewString(),
				DayStart:             doc.CurrentDayStart,
				CompletedCount:       len(doc.CompletedToday),
				Adjustments:          append([]domain.Adjustment{}, doc.AdjustmentsToday...),
				ActivityApplications: append([]domain.ActivityApplication{}, doc.ActivityApplicationsToday...),
				Net:                  doc.DailyScore(),
			}
			doc.History = append(doc.History, r)
			doc.RollingTotal += r.Net
			record = &r
		}

		doc.CurrentDayStart = now
		doc.CompletedToday = []int{}
		doc.AdjustmentsToday = []domain.Adjustment{}
		doc.ActivityApplicationsToday = []domain.ActivityApplication{}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if record != nil {
		observability.Rollovers.WithLabelValues(observability.RolloverRecorded).Inc()
		l.logger.Info("day closed",
			"day", closing.In(l.loc).Format(time.DateOnly),
			"net", record.Net,
			"completed", record.CompletedCount,
			"rolling_total", l.doc.RollingTotal,
		)
	} else {
		observability.Rollovers.WithLabelValues(observability.RolloverEmpty).Inc()
		l.logger.Info("empty day skipped", "day", closing.In(l.loc).Format(time.DateOnly))
	}
	return record, nil
}

// ─── Watcher ────────────────────────────────────────────────────────────────

// Watch calls CheckRollover every interval until ctx is cancelled. Failures
// are logged and retried on the next tick only; a single failed check is
// never retried immediately.
func (l *Ledger) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.logger.Debug("rollover watcher started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("rollover watcher stopped")
			return nil
		case <-ticker.C:
			if _, err := l.CheckRollover(ctx, l.now()); err != nil {
				l.logger.Error("rollover check failed", "err", err)
			}
		}
	}
}
