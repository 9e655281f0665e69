// Package export writes read-only JSON snapshots of the ledger document.
// There is no import path; exports are for the user's own archive.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dayledger/dayledger/internal/domain"
)

// FileName returns daily-objectives-export-<YYYY-MM-DD>.json for now's UTC date.
func FileName(now time.Time) string {
	return fmt.Sprintf("daily-objectives-export-%s.json", now.UTC().Format(time.DateOnly))
}

// Write encodes doc as indented JSON.
func Write(w io.Writer, doc domain.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// WriteFile writes the export into dir and returns the file path.
// An existing export for the same date is overwritten.
func WriteFile(dir string, doc domain.Document, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(now))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := Write(f, doc); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}
	return path, nil
}
