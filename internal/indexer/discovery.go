package indexer

import (
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// ExcludeSet is the set of directory names pruned during enumeration.
// Plain entries match a directory name exactly. Entries containing glob
// metacharacters (e.g. "*.egg-info") are matched against the name as a pattern.
// A nil *ExcludeSet excludes nothing.
type ExcludeSet struct {
	entries []string
	names   map[string]struct{}
	globs   []compiledPattern
}

// NewExcludeSet builds an exclusion set from directory names and name patterns.
// Duplicate entries are collapsed.
func NewExcludeSet(entries ...string) (*ExcludeSet, error) {
	s := &ExcludeSet{
		names: make(map[string]struct{}, len(entries)),
	}

	for _, entry := range entries {
		if entry == "" || slices.Contains(s.entries, entry) {
			continue
		}
		if strings.ContainsAny(entry, "/\\") {
			return nil, fmt.Errorf("exclude entry %q must be a directory name, not a path", entry)
		}

		if isGlobPattern(entry) {
			g, err := glob.Compile(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid exclude pattern %q: %w", entry, err)
			}
			s.globs = append(s.globs, compiledPattern{pattern: entry, glob: g})
		} else {
			s.names[entry] = struct{}{}
		}
		s.entries = append(s.entries, entry)
	}

	slices.Sort(s.entries)
	return s, nil
}

// Merge returns a new set containing the entries of s and extra.
func (s *ExcludeSet) Merge(extra ...string) (*ExcludeSet, error) {
	return NewExcludeSet(append(s.Entries(), extra...)...)
}

// Entries returns the sorted entries of the set.
func (s *ExcludeSet) Entries() []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s.entries)
}

// Match reports whether a directory with the given name is excluded.
func (s *ExcludeSet) Match(name string) bool {
	if s == nil {
		return false
	}
	if _, ok := s.names[name]; ok {
		return true
	}
	for _, cp := range s.globs {
		if cp.glob.Match(name) {
			return true
		}
	}
	return false
}

func isGlobPattern(entry string) bool {
	return strings.ContainsAny(entry, "*?[{")
}

// Enumerate lazily walks root and yields the path of every non-directory entry.
// Directories whose name is in excludes are pruned before descent, so nothing
// beneath them is read. Directories that cannot be listed are skipped.
// Symlinks to directories are not followed; dangling symlinks are skipped.
// Each range over the returned sequence performs a fresh walk.
func Enumerate(root string, excludes *ExcludeSet) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if path != root && excludes.Match(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}

			if path == root {
				return nil
			}

			if d.Type()&fs.ModeSymlink != 0 {
				info, statErr := os.Stat(path)
				if statErr != nil || info.IsDir() {
					return nil
				}
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// fileSuffix returns the lower-cased final extension of name, including the
// dot. Names that start with their only dot (".bashrc") or end in a dot have
// no suffix.
func fileSuffix(name string) string {
	if strings.HasSuffix(name, ".") {
		return ""
	}
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return ""
	}
	return strings.ToLower(name[i:])
}
