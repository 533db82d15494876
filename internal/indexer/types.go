package indexer

import "github.com/mvp-joe/project-archmap/internal/indexer/extraction"

// SchemaVersion identifies the shape of the JSON report.
// Bump it whenever the output changes in a backward-incompatible way.
const SchemaVersion = "0.1.0"

// ProjectIndex is the structural snapshot of one scan.
// Files, Symbols and Imports are always sorted; Stats is derived from them.
type ProjectIndex struct {
	Meta    Meta                      `json:"meta"`
	Files   []FileRecord              `json:"files"`
	Symbols []extraction.Symbol       `json:"symbols"`
	Imports []extraction.ImportRecord `json:"imports"`
	Stats   Stats                     `json:"stats"`
}

// Meta describes how and when an index was produced.
// GeneratedAt and Version are stamped when the report is rendered.
type Meta struct {
	GeneratedAt string   `json:"generated_at"`
	Root        string   `json:"root"`
	Excludes    []string `json:"excludes"`
	Version     string   `json:"version"`
}

// FileRecord is one non-directory entry under the scanned root.
type FileRecord struct {
	Path   string `json:"path"`   // root-relative, forward slashes
	Suffix string `json:"suffix"` // lower-cased, with leading dot, "" if none
	Size   int64  `json:"size"`
}

// Stats holds counts derived from a ProjectIndex.
type Stats struct {
	FilesTotal   int `json:"files_total"`
	PyFiles      int `json:"py_files"`
	SymbolsTotal int `json:"symbols_total"`
	ImportsTotal int `json:"imports_total"`
}
