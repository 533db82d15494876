package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/project-archmap/internal/config"
	"github.com/mvp-joe/project-archmap/internal/indexer"
	"github.com/spf13/cobra"
)

var (
	cleanRootFlag  string
	cleanOutFlag   string
	cleanQuietFlag bool
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the generated index report",
	Long: `Clean removes the JSON report written by 'archmap index', together with
any temporary files left behind by an interrupted write.

The configuration file (.archmap/config.yml) is preserved.

Examples:
  # Remove plan/project_architecture.json in the current project
  archmap clean

  # Remove a report written with a custom --out
  archmap clean --out /tmp/service.json
`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVar(&cleanRootFlag, "root", ".", "Project root")
	cleanCmd.Flags().StringVar(&cleanOutFlag, "out", "", "Report path, relative to the root unless absolute")
	cleanCmd.Flags().BoolVarP(&cleanQuietFlag, "quiet", "q", false, "Suppress output messages")
}

func runClean(cmd *cobra.Command, args []string) error {
	return executeClean(cmd.OutOrStdout(), cleanRootFlag, cleanOutFlag, cleanQuietFlag)
}

func executeClean(stdout io.Writer, root, out string, quiet bool) error {
	rootDir := indexer.ResolveRoot(root)

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if out != "" {
		cfg.Index.Output = out
	}
	outPath := cfg.OutputPath(rootDir)

	removed, err := removeReport(outPath)
	if err != nil {
		return err
	}

	if quiet {
		return nil
	}
	if removed == 0 {
		fmt.Fprintf(stdout, "No report found at %s\n", outPath)
		return nil
	}
	fmt.Fprintf(stdout, "✓ Removed %s\n", outPath)
	return nil
}

// removeReport deletes the report and its orphaned temp siblings, returning
// how many files were removed.
func removeReport(outPath string) (int, error) {
	removed := 0

	if err := os.Remove(outPath); err == nil {
		removed++
	} else if !os.IsNotExist(err) {
		return 0, fmt.Errorf("failed to remove report: %w", err)
	}

	entries, err := os.ReadDir(filepath.Dir(outPath))
	if err != nil {
		return removed, nil
	}
	prefix := "." + filepath.Base(outPath) + ".tmp-"
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(filepath.Dir(outPath), entry.Name())); err != nil {
			return removed, fmt.Errorf("failed to remove temp file: %w", err)
		}
		removed++
	}
	return removed, nil
}
