package ledger

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dayledger/dayledger/internal/domain"
)

// ─── Catalog Text Forms ─────────────────────────────────────────────────────
// Editors present catalogs as plain text: one objective per line, and one
// "label | points" pair per activity line.

// ParseObjectiveLines splits text into trimmed, non-blank objective labels.
func ParseObjectiveLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// FormatObjectiveLines renders an objective catalog for editing.
func FormatObjectiveLines(labels []string) string {
	return strings.Join(labels, "\n")
}

// ParseActivityLines parses "label | points" lines. Blank lines are skipped.
// Points must be a finite number in [1, 5] and are rounded to an integer.
// The first bad line fails with *domain.ActivityError carrying its 1-based
// line number and text.
func ParseActivityLines(text string) ([]domain.Activity, error) {
	var out []domain.Activity
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		labelRaw, pointsRaw, _ := strings.Cut(line, "|")
		label := strings.TrimSpace(labelRaw)
		if label == "" {
			return nil, &domain.ActivityError{Line: i + 1, Text: line, Reason: "missing label"}
		}
		pts, err := strconv.ParseFloat(strings.TrimSpace(pointsRaw), 64)
		if err != nil || math.IsNaN(pts) || pts < 1 || pts > 5 {
			return nil, &domain.ActivityError{Line: i + 1, Text: line, Reason: "points must be 1–5"}
		}
		out = append(out, domain.Activity{Label: label, Points: int(math.Round(pts))})
	}
	return out, nil
}

// FormatActivityLines renders an activity catalog for editing.
func FormatActivityLines(acts []domain.Activity) string {
	lines := make([]string, len(acts))
	for i, a := range acts {
		lines[i] = fmt.Sprintf("%s | %d", a.Label, a.Points)
	}
	return strings.Join(lines, "\n")
}

// ─── Validation ─────────────────────────────────────────────────────────────

// validateActivity checks the struct tags on domain.Activity and turns the
// first violation into a readable reason.
func (l *Ledger) validateActivity(a domain.Activity) error {
	err := l.validate.Struct(a)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	switch fe := verrs[0]; fe.Field() {
	case "Label":
		return errors.New("missing label")
	case "Points":
		return errors.New("points must be 1–5")
	default:
		return fmt.Errorf("%s failed %s", fe.Field(), fe.Tag())
	}
}
