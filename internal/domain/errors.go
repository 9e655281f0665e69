package domain

import (
	"errors"
	"fmt"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors carry no infrastructure dependency.

var (
	// Today-scoped sequence errors
	ErrInvalidIndex  = errors.New("index out of range")
	ErrInvalidAmount = errors.New("adjustment amount must be a finite number")

	// Catalog errors
	ErrEmptyCatalog    = errors.New("objective catalog must contain at least one objective")
	ErrInvalidActivity = errors.New("invalid activity")

	// Persistence errors
	ErrStorageUnavailable = errors.New("ledger storage unavailable")
)

// ActivityError reports the first rejected line of an activity catalog replace.
// It unwraps to ErrInvalidActivity.
type ActivityError struct {
	Line   int // 1-based
	Text   string
	Reason string
}

func (e *ActivityError) Error() string {
	if e.Text != "" {
		return fmt.Sprintf("%s on line %d %q: %s", ErrInvalidActivity, e.Line, e.Text, e.Reason)
	}
	return fmt.Sprintf("%s on line %d: %s", ErrInvalidActivity, e.Line, e.Reason)
}

func (e *ActivityError) Unwrap() error { return ErrInvalidActivity }

// IndexError builds an ErrInvalidIndex with the offending position.
func IndexError(what string, index, length int) error {
	return fmt.Errorf("%w: %s %d not in [0, %d)", ErrInvalidIndex, what, index, length)
}
