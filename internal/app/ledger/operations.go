package ledger

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/dayledger/dayledger/internal/domain"
)

// ─── Objectives ─────────────────────────────────────────────────────────────

// CompleteObjective marks objective id done for today. Completing an already
// completed objective is a no-op.
func (l *Ledger) CompleteObjective(ctx context.Context, id int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.mutate(ctx, "complete_objective", func(doc *domain.Document) error {
		if id < 0 || id >= len(doc.ObjectiveCatalog) {
			return domain.IndexError("objective", id, len(doc.ObjectiveCatalog))
		}
		if doc.IsCompleted(id) {
			return errNoop
		}
		doc.CompletedToday = append(doc.CompletedToday, id)
		return nil
	})
}

// ReplaceObjectiveCatalog replaces the objective labels. Labels are trimmed
// and blank ones dropped; an empty result fails with ErrEmptyCatalog.
//
// Objectives are identified by position: completions at indices past the new
// length are dropped, and a relabeled slot keeps its completion.
func (l *Ledger) ReplaceObjectiveCatalog(ctx context.Context, labels []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.mutate(ctx, "replace_objectives", func(doc *domain.Document) error {
		cleaned := make([]string, 0, len(labels))
		for _, label := range labels {
			if label = strings.TrimSpace(label); label != "" {
				cleaned = append(cleaned, label)
			}
		}
		if len(cleaned) == 0 {
			return domain.ErrEmptyCatalog
		}
		doc.ObjectiveCatalog = cleaned

		kept := doc.CompletedToday[:0]
		for _, id := range doc.CompletedToday {
			if id < len(cleaned) {
				kept = append(kept, id)
			}
		}
		doc.CompletedToday = kept
		return nil
	})
}

// ─── Activities ─────────────────────────────────────────────────────────────

// ApplyActivity appends a snapshot of catalog entry catalogIndex, stamped with
// the current time.
func (l *Ledger) ApplyActivity(ctx context.Context, catalogIndex int) (domain.ActivityApplication, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var applied domain.ActivityApplication
	err := l.mutate(ctx, "apply_activity", func(doc *domain.Document) error {
		if catalogIndex < 0 || catalogIndex >= len(doc.ActivityCatalog) {
			return domain.IndexError("activity", catalogIndex, len(doc.ActivityCatalog))
		}
		act := doc.ActivityCatalog[catalogIndex]
		applied = domain.ActivityApplication{
			CatalogIndex: catalogIndex,
			Label:        act.Label,
			Points:       act.Points,
			AppliedAt:    l.now(),
		}
		doc.ActivityApplicationsToday = append(doc.ActivityApplicationsToday, applied)
		return nil
	})
	if err != nil {
		return domain.ActivityApplication{}, err
	}
	return applied, nil
}

// UndoActivity removes today's application at position. Later entries shift
// down unchanged.
func (l *Ledger) UndoActivity(ctx context.Context, position int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.mutate(ctx, "undo_activity", func(doc *domain.Document) error {
		apps := doc.ActivityApplicationsToday
		if position < 0 || position >= len(apps) {
			return domain.IndexError("activity application", position, len(apps))
		}
		doc.ActivityApplicationsToday = append(apps[:position], apps[position+1:]...)
		return nil
	})
}

// ReplaceActivityCatalog validates every entry before committing any of them.
// The first invalid entry fails with an *domain.ActivityError and the catalog
// is left unchanged. Applied snapshots and history are never touched.
func (l *Ledger) ReplaceActivityCatalog(ctx context.Context, entries []domain.Activity) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.mutate(ctx, "replace_activities", func(doc *domain.Document) error {
		next := make([]domain.Activity, len(entries))
		for i, e := range entries {
			e.Label = strings.TrimSpace(e.Label)
			if err := l.validateActivity(e); err != nil {
				return &domain.ActivityError{
					Line:   i + 1,
					Text:   fmt.Sprintf("%s | %d", e.Label, e.Points),
					Reason: err.Error(),
				}
			}
			next[i] = e
		}
		doc.ActivityCatalog = next
		return nil
	})
}

// ─── Adjustments ────────────────────────────────────────────────────────────

// AddAdjustment appends a manual correction. amount must be finite.
func (l *Ledger) AddAdjustment(ctx context.Context, amount float64, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.mutate(ctx, "add_adjustment", func(doc *domain.Document) error {
		if math.IsNaN(amount) || math.IsInf(amount, 0) {
			return fmt.Errorf("%w: %v", domain.ErrInvalidAmount, amount)
		}
		doc.AdjustmentsToday = append(doc.AdjustmentsToday, domain.Adjustment{
			Amount: amount,
			Reason: strings.TrimSpace(reason),
		})
		return nil
	})
}

// RemoveAdjustment removes today's adjustment at position.
func (l *Ledger) RemoveAdjustment(ctx context.Context, position int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.mutate(ctx, "remove_adjustment", func(doc *domain.Document) error {
		adj := doc.AdjustmentsToday
		if position < 0 || position >= len(adj) {
			return domain.IndexError("adjustment", position, len(adj))
		}
		doc.AdjustmentsToday = append(adj[:position], adj[position+1:]...)
		return nil
	})
}
