package cli

// Test Plan for Clean Command:
// - executeClean removes the default report
// - executeClean removes orphaned temp files next to the report
// - executeClean honors a custom --out
// - executeClean handles a missing report gracefully
// - executeClean with quiet suppresses output
// - executeClean leaves the config directory alone

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteClean_RemovesDefaultReport(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app.py":              "import os\n",
		".archmap/config.yml": "index:\n  workers: 2\n",
	})
	require.NoError(t, executeIndex(context.Background(), &bytes.Buffer{}, indexOptions{root: root, quiet: true}))

	report := filepath.Join(root, "plan", "project_architecture.json")
	require.FileExists(t, report)

	var stdout bytes.Buffer
	require.NoError(t, executeClean(&stdout, root, "", false))

	assert.NoFileExists(t, report)
	assert.FileExists(t, filepath.Join(root, ".archmap", "config.yml"))
	assert.Contains(t, stdout.String(), "Removed")
}

func TestExecuteClean_RemovesTempFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"out/index.json":           "{}\n",
		"out/.index.json.tmp-1234": "{",
		"out/.other.json.tmp-5678": "{",
		"out/notes.txt":            "keep\n",
	})

	require.NoError(t, executeClean(&bytes.Buffer{}, root, "out/index.json", true))

	entries, err := os.ReadDir(filepath.Join(root, "out"))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{".other.json.tmp-5678", "notes.txt"}, names)
}

func TestExecuteClean_MissingReport(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	require.NoError(t, executeClean(&stdout, t.TempDir(), "", false))
	assert.Contains(t, stdout.String(), "No report found")
}

func TestExecuteClean_Quiet(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	require.NoError(t, executeClean(&stdout, t.TempDir(), "", true))
	assert.Empty(t, stdout.String())
}
