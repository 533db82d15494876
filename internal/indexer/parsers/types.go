package parsers

import "github.com/mvp-joe/project-archmap/internal/indexer/extraction"

// Status reports whether a file could be parsed.
type Status int

const (
	// StatusOK means the file parsed cleanly and its declarations were extracted.
	StatusOK Status = iota
	// StatusDegraded means the file could not be read or parsed. It contributes
	// nothing beyond its file record.
	StatusDegraded
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Result is the structural extraction of a single source file.
// Symbols and Imports carry no file attribution; the caller assigns it.
type Result struct {
	Status  Status
	Symbols []extraction.Symbol
	Imports []extraction.ImportRecord
}

// Degraded returns an empty result for a file that could not be parsed.
func Degraded() Result {
	return Result{Status: StatusDegraded}
}
