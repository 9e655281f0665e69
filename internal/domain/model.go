// Package domain contains pure ledger types with ZERO infrastructure imports.
// Storage, transport and presentation depend on this package, never the
// other way round.
package domain

import (
	"fmt"
	"time"
)

// ─── Ledger Document ────────────────────────────────────────────────────────

// Document is the persisted root: today's open events plus every closed day.
type Document struct {
	CurrentDayStart           time.Time             `json:"currentDayStart"`
	ObjectiveCatalog          []string              `json:"objectiveCatalog"`
	CompletedToday            []int                 `json:"completedToday"`
	ActivityCatalog           []Activity            `json:"activityCatalog"`
	ActivityApplicationsToday []ActivityApplication `json:"activityApplicationsToday"`
	AdjustmentsToday          []Adjustment          `json:"adjustmentsToday"`
	RollingTotal              float64               `json:"rollingTotal"`
	History                   []DayRecord           `json:"history"`
}

// Activity is a catalog entry that subtracts Points each time it is applied.
type Activity struct {
	Label  string `json:"label" validate:"required"`
	Points int    `json:"points" validate:"min=1,max=5"`
}

// ActivityApplication is a snapshot of an activity taken when it was applied.
// Later catalog edits never touch it.
type ActivityApplication struct {
	CatalogIndex int       `json:"catalogIndex"`
	Label        string    `json:"label"`
	Points       int       `json:"points"`
	AppliedAt    time.Time `json:"appliedAt"`
}

// Adjustment is a manual signed correction subtracted from the daily score.
type Adjustment struct {
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

// DayRecord is a closed day in the history ledger.
type DayRecord struct {
	ID                   string                `json:"id,omitempty"`
	DayStart             time.Time             `json:"dayStart"`
	CompletedCount       int                   `json:"completedCount"`
	Adjustments          []Adjustment          `json:"adjustments"`
	ActivityApplications []ActivityApplication `json:"activityApplications"`
	Net                  float64               `json:"net"`
}

// Objective pairs a catalog label with its positional identity.
type Objective struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// ─── Seed Catalogs ──────────────────────────────────────────────────────────

// DefaultObjectiveCount is the number of placeholder objectives in a fresh document.
const DefaultObjectiveCount = 30

// DefaultObjectives returns the placeholder objective catalog.
func DefaultObjectives() []string {
	out := make([]string, DefaultObjectiveCount)
	for i := range out {
		out[i] = fmt.Sprintf("Objective %d", i+1)
	}
	return out
}

// DefaultActivities returns the starter activity catalog.
func DefaultActivities() []Activity {
	return []Activity{
		{Label: "Cold shower", Points: 2},
		{Label: "10-min breathwork", Points: 1},
		{Label: "30-min run", Points: 3},
		{Label: "Strength session", Points: 4},
		{Label: "Long walk 60+ min", Points: 2},
		{Label: "Deep clean kitchen", Points: 1},
		{Label: "Call a friend", Points: 1},
		{Label: "No phone 2 hrs", Points: 2},
		{Label: "1h focused reading", Points: 2},
		{Label: "Volunteer/help someone", Points: 5},
	}
}

// NewDocument returns a fresh document whose day starts at now.
func NewDocument(now time.Time) *Document {
	return &Document{
		CurrentDayStart:           now,
		ObjectiveCatalog:          DefaultObjectives(),
		CompletedToday:            []int{},
		ActivityCatalog:           DefaultActivities(),
		ActivityApplicationsToday: []ActivityApplication{},
		AdjustmentsToday:          []Adjustment{},
		History:                   []DayRecord{},
	}
}

// ─── Derived Values ─────────────────────────────────────────────────────────

// AdjustmentSum returns the sum of today's adjustment amounts.
func (d *Document) AdjustmentSum() float64 {
	var sum float64
	for _, a := range d.AdjustmentsToday {
		sum += a.Amount
	}
	return sum
}

// ActivityPoints returns the sum of points applied today.
func (d *Document) ActivityPoints() int {
	var sum int
	for _, a := range d.ActivityApplicationsToday {
		sum += a.Points
	}
	return sum
}

// DailyScore is completions minus adjustments minus activity points.
// Always recomputed from today's state.
func (d *Document) DailyScore() float64 {
	return float64(len(d.CompletedToday)) - d.AdjustmentSum() - float64(d.ActivityPoints())
}

// ProjectedTotal is the rolling total including the still-open day.
func (d *Document) ProjectedTotal() float64 {
	return d.RollingTotal + d.DailyScore()
}

// IsEmptyDay reports whether today produced nothing worth recording.
func (d *Document) IsEmptyDay() bool {
	return len(d.CompletedToday) == 0 &&
		len(d.AdjustmentsToday) == 0 &&
		len(d.ActivityApplicationsToday) == 0
}

// IsCompleted reports whether objective id is completed today.
func (d *Document) IsCompleted(id int) bool {
	for _, done := range d.CompletedToday {
		if done == id {
			return true
		}
	}
	return false
}

// RemainingObjectives returns the objectives not yet completed today, in catalog order.
func (d *Document) RemainingObjectives() []Objective {
	out := make([]Objective, 0, len(d.ObjectiveCatalog))
	for id, label := range d.ObjectiveCatalog {
		if !d.IsCompleted(id) {
			out = append(out, Objective{ID: id, Label: label})
		}
	}
	return out
}

// Clone returns a deep copy. Mutations are staged on a clone and only
// swapped in once persisted.
func (d *Document) Clone() *Document {
	c := *d
	c.ObjectiveCatalog = append([]string{}, d.ObjectiveCatalog...)
	c.CompletedToday = append([]int{}, d.CompletedToday...)
	c.ActivityCatalog = append([]Activity{}, d.ActivityCatalog...)
	c.ActivityApplicationsToday = append([]ActivityApplication{}, d.ActivityApplicationsToday...)
	c.AdjustmentsToday = append([]Adjustment{}, d.AdjustmentsToday...)
	c.History = make([]DayRecord, len(d.History))
	for i, r := range d.History {
		c.History[i] = r.clone()
	}
	return &c
}

func (r DayRecord) clone() DayRecord {
	r.Adjustments = append([]Adjustment{}, r.Adjustments...)
	r.ActivityApplications = append([]ActivityApplication{}, r.ActivityApplications...)
	return r
}

// SameDate reports whether a and b fall on the same calendar day in loc.
func SameDate(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
