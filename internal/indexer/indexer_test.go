package indexer

import (
	"cmp"
	"context"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/mvp-joe/project-archmap/internal/indexer/extraction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Builder:
// - Minimal tree yields one class, one function and one import with matching stats
// - Excluded directories never appear in files
// - Syntax errors yield a file record without symbols and do not stop the scan
// - Python 2 files are recorded without symbols or imports
// - From-imports with several names yield one record each
// - Records carry root-relative forward-slash paths
// - Non-source files are recorded but never parsed
// - Output is sorted and stats match sequence lengths
// - Repeated builds produce identical output
// - Worker count does not change output
// - Meta carries the resolved root and sorted excludes
// - Missing roots produce an empty index
// - Cancelled contexts abort the build
// - Progress callbacks fire for every file

func newTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		writeFile(t, root, rel, content)
	}
	return root
}

// underExcludedDir reports whether any directory segment of a slash-separated
// relative path is excluded.
func underExcludedDir(excludes *ExcludeSet, relPath string) bool {
	segments := strings.Split(relPath, "/")
	return slices.ContainsFunc(segments[:len(segments)-1], excludes.Match)
}

func sampleTree(t *testing.T) string {
	return newTree(t, map[string]string{
		"app/__init__.py":         "",
		"app/models.py":           "from dataclasses import dataclass, field\n\n\n@dataclass\nclass Item:\n    name: str\n\n    def label(self):\n        return self.name\n",
		"app/views.py":            "import json\nimport app.models\n\n\ndef render(item):\n    return json.dumps(item.name)\n",
		"app/broken.py":           "def nope(:\n",
		"README.md":               "# sample\n",
		"scripts/Tool.PY":         "def main():\n    pass\n",
		".git/HEAD":               "ref: refs/heads/main\n",
		"node_modules/x/index.js": "module.exports = 1\n",
		"docs/ünïcode.py":         "def grüß():\n    pass\n",
	})
}

func TestBuild_MinimalScenario(t *testing.T) {
	t.Parallel()

	root := newTree(t, map[string]string{
		"a.py": "import os\n\nclass A: pass\n\ndef f():\n    return 1\n",
	})

	index, err := Build(context.Background(), root, nil)
	require.NoError(t, err)

	assert.Equal(t, Stats{FilesTotal: 1, PyFiles: 1, SymbolsTotal: 2, ImportsTotal: 1}, index.Stats)
	assert.Equal(t, []extraction.Symbol{
		{Kind: extraction.KindClass, Name: "A", File: "a.py", StartLine: 3, EndLine: 3},
		{Kind: extraction.KindFunction, Name: "f", File: "a.py", StartLine: 5, EndLine: 6},
	}, index.Symbols)
	assert.Equal(t, []extraction.ImportRecord{
		{Module: "os", File: "a.py", Line: 1},
	}, index.Imports)
	assert.Equal(t, []FileRecord{{Path: "a.py", Suffix: ".py", Size: 48}}, index.Files)
}

func TestBuild_ExcludesDirectories(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)
	excludes, err := NewExcludeSet(".git", "node_modules")
	require.NoError(t, err)

	index, err := Build(context.Background(), root, excludes)
	require.NoError(t, err)

	for _, f := range index.Files {
		assert.False(t, underExcludedDir(excludes, f.Path), f.Path)
	}
	assert.Len(t, index.Files, 7)
}

func TestBuild_BrokenFileDegrades(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)
	index, err := Build(context.Background(), root, nil)
	require.NoError(t, err)

	i := slices.IndexFunc(index.Files, func(f FileRecord) bool { return f.Path == "app/broken.py" })
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, ".py", index.Files[i].Suffix)
	assert.Equal(t, int64(len("def nope(:\n")), index.Files[i].Size)

	for _, s := range index.Symbols {
		assert.NotEqual(t, "app/broken.py", s.File)
	}
	for _, imp := range index.Imports {
		assert.NotEqual(t, "app/broken.py", imp.File)
	}

	// Files after the broken one are still parsed.
	assert.True(t, slices.ContainsFunc(index.Symbols, func(s extraction.Symbol) bool {
		return s.File == "app/views.py" && s.Name == "render"
	}))
}

func TestBuild_LegacyFileDegrades(t *testing.T) {
	t.Parallel()

	root := newTree(t, map[string]string{
		"legacy.py": "import os\nprint \"hello\"\nclass Old:\n    pass\n",
		"modern.py": "def ok():\n    pass\n",
	})

	index, err := Build(context.Background(), root, nil)
	require.NoError(t, err)

	require.Len(t, index.Files, 2)
	assert.Equal(t, "legacy.py", index.Files[0].Path)
	require.Len(t, index.Symbols, 1)
	assert.Equal(t, "ok", index.Symbols[0].Name)
	assert.Empty(t, index.Imports)
	assert.Equal(t, Stats{FilesTotal: 2, PyFiles: 2, SymbolsTotal: 1, ImportsTotal: 0}, index.Stats)
}

func TestBuild_FromImportNames(t *testing.T) {
	t.Parallel()

	root := newTree(t, map[string]string{
		"m.py": "from package.sub import a, b\n",
	})

	index, err := Build(context.Background(), root, nil)
	require.NoError(t, err)

	require.Len(t, index.Imports, 2)
	assert.Equal(t, "package.sub", index.Imports[0].Module)
	assert.Equal(t, "a", index.Imports[0].NameOrEmpty())
	assert.Equal(t, "package.sub", index.Imports[1].Module)
	assert.Equal(t, "b", index.Imports[1].NameOrEmpty())
}

func TestBuild_SuffixHandling(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)
	index, err := Build(context.Background(), root, nil)
	require.NoError(t, err)

	// Tool.PY is lower-cased to .py, so it is parsed and counted.
	assert.True(t, slices.ContainsFunc(index.Symbols, func(s extraction.Symbol) bool {
		return s.File == "scripts/Tool.PY" && s.Name == "main"
	}))
	assert.Equal(t, 6, index.Stats.PyFiles)

	for _, s := range index.Symbols {
		assert.NotEqual(t, "README.md", s.File)
	}
}

func TestBuild_PathsAreRootRelative(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)
	index, err := Build(context.Background(), root, nil)
	require.NoError(t, err)

	for _, f := range index.Files {
		assert.False(t, filepath.IsAbs(f.Path), f.Path)
		assert.NotContains(t, f.Path, "\\")
	}
	assert.True(t, slices.ContainsFunc(index.Symbols, func(s extraction.Symbol) bool {
		return s.File == "docs/ünïcode.py" && s.Name == "grüß"
	}))
}

func TestBuild_SortedAndCounted(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)
	index, err := Build(context.Background(), root, nil)
	require.NoError(t, err)

	assert.True(t, slices.IsSortedFunc(index.Files, compareFiles))
	assert.True(t, slices.IsSortedFunc(index.Symbols, compareSymbols))
	assert.True(t, slices.IsSortedFunc(index.Imports, compareImports))

	assert.Equal(t, len(index.Files), index.Stats.FilesTotal)
	assert.Equal(t, len(index.Symbols), index.Stats.SymbolsTotal)
	assert.Equal(t, len(index.Imports), index.Stats.ImportsTotal)
}

func TestBuild_Deterministic(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)
	first, err := Build(context.Background(), root, nil)
	require.NoError(t, err)
	second, err := Build(context.Background(), root, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuild_WorkersDoNotChangeOutput(t *testing.T) {
	t.Parallel()

	files := map[string]string{}
	for i := range 40 {
		name := strings.Repeat("m", i%5+1)
		files[filepath.Join("pkg", string(rune('a'+i%26)), name+".py")] = "import os\nfrom x import y\n\ndef f():\n    pass\n\nclass C:\n    def f(self):\n        pass\n"
	}
	root := newTree(t, files)

	sequential, err := NewBuilder(Options{Workers: 1}).Build(context.Background(), root, nil)
	require.NoError(t, err)
	parallel, err := NewBuilder(Options{Workers: 8}).Build(context.Background(), root, nil)
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
}

func TestBuild_Meta(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)
	excludes, err := NewExcludeSet("node_modules", ".git")
	require.NoError(t, err)

	index, err := Build(context.Background(), root, excludes)
	require.NoError(t, err)

	assert.Equal(t, ResolveRoot(root), index.Meta.Root)
	assert.True(t, filepath.IsAbs(index.Meta.Root))
	assert.Equal(t, []string{".git", "node_modules"}, index.Meta.Excludes)
}

func TestBuild_MissingRoot(t *testing.T) {
	t.Parallel()

	index, err := Build(context.Background(), filepath.Join(t.TempDir(), "missing"), nil)
	require.NoError(t, err)

	assert.Empty(t, index.Files)
	assert.NotNil(t, index.Files)
	assert.Equal(t, Stats{}, index.Stats)
}

func TestBuild_CancelledContext(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, root, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingProgress struct {
	mu         sync.Mutex
	discovered int
	processed  []string
	completed  *Stats
}

func (r *recordingProgress) OnDiscoveryComplete(totalFiles int) { r.discovered = totalFiles }

func (r *recordingProgress) OnFileProcessed(relPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed = append(r.processed, relPath)
}

func (r *recordingProgress) OnComplete(stats Stats) { r.completed = &stats }

func TestBuild_ReportsProgress(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)
	progress := &recordingProgress{}

	index, err := NewBuilder(Options{Workers: 4, Progress: progress}).Build(context.Background(), root, nil)
	require.NoError(t, err)

	assert.Equal(t, len(index.Files), progress.discovered)
	slices.SortFunc(progress.processed, cmp.Compare[string])
	paths := make([]string, 0, len(index.Files))
	for _, f := range index.Files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, paths, progress.processed)
	require.NotNil(t, progress.completed)
	assert.Equal(t, index.Stats, *progress.completed)
}
