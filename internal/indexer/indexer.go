package indexer

import (
	"cmp"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mvp-joe/project-archmap/internal/indexer/extraction"
	"github.com/mvp-joe/project-archmap/internal/indexer/parsers"
	"golang.org/x/sync/errgroup"
)

// SourceParser extracts declarations from files of the languages it supports.
type SourceParser interface {
	// Extensions lists the lower-cased suffixes routed to this parser.
	Extensions() []string

	// ParseFile parses one file. Failures are reported as a Degraded result.
	ParseFile(ctx context.Context, filePath string) parsers.Result
}

// Options configures a Builder.
type Options struct {
	// Workers bounds concurrent file processing. Values below 1 mean 1.
	Workers int

	// Parser handles source files. Defaults to the Python parser.
	Parser SourceParser

	// Progress receives callbacks during Build. Defaults to a no-op reporter.
	Progress ProgressReporter
}

// Builder assembles a ProjectIndex from a directory tree.
type Builder struct {
	workers    int
	parser     SourceParser
	progress   ProgressReporter
	extensions map[string]bool
}

// NewBuilder creates a builder from options, filling in defaults.
func NewBuilder(opts Options) *Builder {
	b := &Builder{
		workers:  max(opts.Workers, 1),
		parser:   opts.Parser,
		progress: opts.Progress,
	}
	if b.parser == nil {
		b.parser = parsers.NewPythonParser()
	}
	if b.progress == nil {
		b.progress = &NoOpProgressReporter{}
	}

	b.extensions = make(map[string]bool)
	for _, ext := range b.parser.Extensions() {
		b.extensions[strings.ToLower(ext)] = true
	}
	return b
}

// Build indexes root with a sequential default builder.
func Build(ctx context.Context, root string, excludes *ExcludeSet) (*ProjectIndex, error) {
	return NewBuilder(Options{}).Build(ctx, root, excludes)
}

// fileOutcome is the per-file slot filled by a worker.
type fileOutcome struct {
	recorded bool
	record   FileRecord
	parsed   parsers.Result
}

// Build walks root, records every file that survives exclusion, parses source
// files and returns the sorted index. Unreadable directories, vanished files
// and unparsable sources are absorbed; only context cancellation is an error.
// The result does not depend on the worker count.
func (b *Builder) Build(ctx context.Context, root string, excludes *ExcludeSet) (*ProjectIndex, error) {
	root = ResolveRoot(root)

	var paths []string
	for path := range Enumerate(root, excludes) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	b.progress.OnDiscoveryComplete(len(paths))

	outcomes := make([]fileOutcome, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = b.processFile(gctx, root, path)
			if outcomes[i].recorded {
				b.progress.OnFileProcessed(outcomes[i].record.Path)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index := assemble(root, excludes, outcomes)
	b.progress.OnComplete(index.Stats)
	return index, nil
}

// processFile records one file and parses it when its suffix is supported.
func (b *Builder) processFile(ctx context.Context, root, path string) fileOutcome {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fileOutcome{}
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return fileOutcome{}
	}

	out := fileOutcome{
		recorded: true,
		record: FileRecord{
			Path:   filepath.ToSlash(rel),
			Suffix: fileSuffix(filepath.Base(path)),
			Size:   info.Size(),
		},
		parsed: parsers.Degraded(),
	}
	if b.extensions[out.record.Suffix] {
		out.parsed = b.parser.ParseFile(ctx, path)
	}
	return out
}

// assemble merges per-file outcomes into a sorted index with derived stats.
func assemble(root string, excludes *ExcludeSet, outcomes []fileOutcome) *ProjectIndex {
	index := &ProjectIndex{
		Meta: Meta{
			Root:     root,
			Excludes: excludes.Entries(),
		},
		Files:   []FileRecord{},
		Symbols: []extraction.Symbol{},
		Imports: []extraction.ImportRecord{},
	}

	for _, out := range outcomes {
		if !out.recorded {
			continue
		}
		index.Files = append(index.Files, out.record)
		if out.parsed.Status != parsers.StatusOK {
			continue
		}
		for _, sym := range out.parsed.Symbols {
			index.Symbols = append(index.Symbols, sym.WithFile(out.record.Path))
		}
		for _, imp := range out.parsed.Imports {
			index.Imports = append(index.Imports, imp.WithFile(out.record.Path))
		}
	}

	slices.SortStableFunc(index.Files, compareFiles)
	slices.SortStableFunc(index.Symbols, compareSymbols)
	slices.SortStableFunc(index.Imports, compareImports)

	index.Stats = computeStats(index)
	return index
}

// computeStats derives counts from the final sequences.
func computeStats(index *ProjectIndex) Stats {
	stats := Stats{
		FilesTotal:   len(index.Files),
		SymbolsTotal: len(index.Symbols),
		ImportsTotal: len(index.Imports),
	}
	for _, f := range index.Files {
		if f.Suffix == parsers.PythonExtension {
			stats.PyFiles++
		}
	}
	return stats
}

func compareFiles(a, b FileRecord) int {
	return strings.Compare(a.Path, b.Path)
}

func compareSymbols(a, b extraction.Symbol) int {
	return cmp.Or(
		strings.Compare(a.File, b.File),
		strings.Compare(string(a.Kind), string(b.Kind)),
		strings.Compare(a.Name, b.Name),
		cmp.Compare(a.StartLine, b.StartLine),
	)
}

func compareImports(a, b extraction.ImportRecord) int {
	return cmp.Or(
		strings.Compare(a.File, b.File),
		strings.Compare(a.Module, b.Module),
		strings.Compare(a.NameOrEmpty(), b.NameOrEmpty()),
		cmp.Compare(a.Line, b.Line),
	)
}

// ResolveRoot returns root as an absolute path with symlinks evaluated.
// A root that does not exist is returned in absolute form.
func ResolveRoot(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Clean(root)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs
	}
	return resolved
}
