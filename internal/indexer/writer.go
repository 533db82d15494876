package indexer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TimestampLayout renders generated_at as ISO-8601 with an explicit offset,
// e.g. "2026-10-19T08:30:00.000000+00:00".
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

// ReportWriter renders a ProjectIndex as JSON and persists it.
type ReportWriter struct {
	now func() time.Time
}

// NewReportWriter creates a writer that stamps reports with the current time.
func NewReportWriter() *ReportWriter {
	return &ReportWriter{now: time.Now}
}

// NewReportWriterWithClock creates a writer with an injected clock.
func NewReportWriterWithClock(now func() time.Time) *ReportWriter {
	return &ReportWriter{now: now}
}

// Render stamps the generation time and schema version and encodes the index
// as indented JSON with a trailing newline. Non-ASCII text and HTML-sensitive
// characters are written verbatim. The index itself is not modified.
func (w *ReportWriter) Render(index *ProjectIndex) ([]byte, error) {
	doc := *index
	doc.Meta.GeneratedAt = w.now().UTC().Format(TimestampLayout)
	doc.Meta.Version = SchemaVersion
	if doc.Meta.Excludes == nil {
		doc.Meta.Excludes = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("failed to marshal project index: %w", err)
	}
	return buf.Bytes(), nil
}

// Write renders index and persists it to dest.
func (w *ReportWriter) Write(index *ProjectIndex, dest string) error {
	data, err := w.Render(index)
	if err != nil {
		return err
	}
	return Persist(data, dest)
}

// Persist writes data to dest, creating missing parent directories and fully
// replacing any existing file. The data is written to a temp file in the same
// directory and renamed into place.
func Persist(data []byte, dest string) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to set report permissions: %w", err)
	}

	// Rename to final location (atomic operation)
	if err := os.Rename(tempPath, dest); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// ResolveOutput resolves a report destination against the scan root when it
// is relative.
func ResolveOutput(root, out string) string {
	if filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(root, out)
}
