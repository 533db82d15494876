package extraction

// Kind identifies the declaration shape of a Symbol.
type Kind string

const (
	KindClass    Kind = "class"
	KindFunction Kind = "function"
)

// Symbol represents a declared function or class with its location.
type Symbol struct {
	Kind      Kind   `json:"kind"`
	Name      string `json:"name"`
	File      string `json:"file"`
	StartLine int    `json:"lineno"`
	EndLine   int    `json:"end_lineno"` // equals StartLine when the extent is unknown
}

// ImportRecord represents one imported module or member.
// Name is nil for whole-module imports ("import a.b").
type ImportRecord struct {
	Module string  `json:"module"`
	Name   *string `json:"name"`
	File   string  `json:"file"`
	Line   int     `json:"lineno"`
}

// NameOrEmpty returns the imported member name, or "" for whole-module imports.
func (r ImportRecord) NameOrEmpty() string {
	if r.Name == nil {
		return ""
	}
	return *r.Name
}

// WithFile returns a copy of the symbol attributed to file.
func (s Symbol) WithFile(file string) Symbol {
	s.File = file
	return s
}

// WithFile returns a copy of the import record attributed to file.
func (r ImportRecord) WithFile(file string) ImportRecord {
	r.File = file
	return r
}
