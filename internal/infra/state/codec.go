package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dayledger/dayledger/internal/domain"
)

// Field names as persisted; also used as the "field" metric label.
const (
	FieldCurrentDayStart  = "currentDayStart"
	FieldObjectiveCatalog = "objectiveCatalog"
	FieldCompletedToday   = "completedToday"
	FieldActivityCatalog  = "activityCatalog"
	FieldApplications     = "activityApplicationsToday"
	FieldAdjustments      = "adjustmentsToday"
	FieldRollingTotal     = "rollingTotal"
	FieldHistory          = "history"
)

// Decode rebuilds a document field by field. Each field is validated on its
// own and replaced with its default when unusable, so one corrupt field never
// discards the rest. Malformed array elements are dropped individually.
//
// The returned slice names every field that was defaulted or pruned. An error
// is returned only when raw is not a JSON object at all.
func Decode(raw []byte, now time.Time) (*domain.Document, []string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, nil, fmt.Errorf("decode ledger document: %w", err)
	}
	if fields == nil {
		return nil, nil, fmt.Errorf("decode ledger document: not an object")
	}

	d := &decoder{fields: fields}
	doc := &domain.Document{}

	doc.CurrentDayStart = d.dayStart(now)
	doc.ObjectiveCatalog = d.objectives()
	doc.ActivityCatalog = d.activities()
	doc.CompletedToday = d.completed(len(doc.ObjectiveCatalog))
	doc.ActivityApplicationsToday = decodeElements[domain.ActivityApplication](d, FieldApplications, validApplication)
	doc.AdjustmentsToday = decodeElements[domain.Adjustment](d, FieldAdjustments, validAdjustment)
	doc.RollingTotal = d.rollingTotal()
	doc.History = decodeElements[domain.DayRecord](d, FieldHistory, validRecord)

	return doc, d.defaulted, nil
}

// Encode serializes the full document. Nil slices are written as [] so a
// reload never needs to default them.
func Encode(doc *domain.Document) ([]byte, error) {
	out := *doc
	if out.ObjectiveCatalog == nil {
		out.ObjectiveCatalog = []string{}
	}
	if out.CompletedToday == nil {
		out.CompletedToday = []int{}
	}
	if out.ActivityCatalog == nil {
		out.ActivityCatalog = []domain.Activity{}
	}
	if out.ActivityApplicationsToday == nil {
		out.ActivityApplicationsToday = []domain.ActivityApplication{}
	}
	if out.AdjustmentsToday == nil {
		out.AdjustmentsToday = []domain.Adjustment{}
	}
	if out.History == nil {
		out.History = []domain.DayRecord{}
	}
	return json.Marshal(&out)
}

// ─── Field Decoders ─────────────────────────────────────────────────────────

type decoder struct {
	fields    map[string]json.RawMessage
	defaulted []string
}

func (d *decoder) mark(field string) {
	for _, f := range d.defaulted {
		if f == field {
			return
		}
	}
	d.defaulted = append(d.defaulted, field)
}

// array returns the raw elements of field, or ok=false when it is absent or
// not a JSON array.
func (d *decoder) array(field string) ([]json.RawMessage, bool) {
	raw, ok := d.fields[field]
	if !ok {
		return nil, false
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, false
	}
	return elems, true
}

func (d *decoder) dayStart(now time.Time) time.Time {
	raw, ok := d.fields[FieldCurrentDayStart]
	if ok {
		var t time.Time
		if err := json.Unmarshal(raw, &t); err == nil && !t.IsZero() {
			return t
		}
	}
	d.mark(FieldCurrentDayStart)
	return now
}

func (d *decoder) objectives() []string {
	elems, ok := d.array(FieldObjectiveCatalog)
	if !ok {
		d.mark(FieldObjectiveCatalog)
		return domain.DefaultObjectives()
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		var label string
		if err := json.Unmarshal(e, &label); err != nil {
			d.mark(FieldObjectiveCatalog)
			continue
		}
		label = strings.TrimSpace(label)
		if label == "" {
			d.mark(FieldObjectiveCatalog)
			continue
		}
		out = append(out, label)
	}
	if len(out) == 0 {
		d.mark(FieldObjectiveCatalog)
		return domain.DefaultObjectives()
	}
	return out
}

func (d *decoder) activities() []domain.Activity {
	elems, ok := d.array(FieldActivityCatalog)
	if !ok {
		d.mark(FieldActivityCatalog)
		return domain.DefaultActivities()
	}
	out := make([]domain.Activity, 0, len(elems))
	for _, e := range elems {
		var a struct {
			Label  string  `json:"label"`
			Points float64 `json:"points"`
		}
		if err := json.Unmarshal(e, &a); err != nil {
			d.mark(FieldActivityCatalog)
			continue
		}
		label := strings.TrimSpace(a.Label)
		if label == "" || math.IsNaN(a.Points) || a.Points < 1 || a.Points > 5 {
			d.mark(FieldActivityCatalog)
			continue
		}
		out = append(out, domain.Activity{Label: label, Points: int(math.Round(a.Points))})
	}
	return out
}

// completed keeps unique, in-range integer indices in their stored order.
func (d *decoder) completed(catalogLen int) []int {
	elems, ok := d.array(FieldCompletedToday)
	if !ok {
		d.mark(FieldCompletedToday)
		return []int{}
	}
	seen := make(map[int]bool, len(elems))
	out := make([]int, 0, len(elems))
	for _, e := range elems {
		var id int
		if err := json.Unmarshal(e, &id); err != nil || id < 0 || id >= catalogLen || seen[id] {
			d.mark(FieldCompletedToday)
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (d *decoder) rollingTotal() float64 {
	raw, ok := d.fields[FieldRollingTotal]
	if ok {
		var v float64
		if err := json.Unmarshal(raw, &v); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v
		}
	}
	d.mark(FieldRollingTotal)
	return 0
}

// decodeElements decodes every element of an array field into T, dropping the
// ones that fail to decode or fail valid.
func decodeElements[T any](d *decoder, field string, valid func(T) bool) []T {
	elems, ok := d.array(field)
	if !ok {
		d.mark(field)
		return []T{}
	}
	out := make([]T, 0, len(elems))
	for _, e := range elems {
		var v T
		if err := json.Unmarshal(e, &v); err != nil || !valid(v) {
			d.mark(field)
			continue
		}
		out = append(out, v)
	}
	return out
}

func validApplication(a domain.ActivityApplication) bool {
	return a.Label != "" && a.CatalogIndex >= 0
}

func validAdjustment(a domain.Adjustment) bool {
	return !math.IsNaN(a.Amount) && !math.IsInf(a.Amount, 0)
}

func validRecord(r domain.DayRecord) bool {
	if r.DayStart.IsZero() || r.CompletedCount < 0 {
		return false
	}
	return !math.IsNaN(r.Net) && !math.IsInf(r.Net, 0)
}
