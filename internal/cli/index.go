package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mvp-joe/project-archmap/internal/config"
	"github.com/mvp-joe/project-archmap/internal/indexer"
	"github.com/mvp-joe/project-archmap/internal/watcher"
	"github.com/spf13/cobra"
)

// indexOptions holds the flags of the index command.
type indexOptions struct {
	root     string
	out      string
	excludes []string
	workers  int
	quiet    bool
	watch    bool
}

var indexFlags indexOptions

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Write the structural index of a project as JSON",
	Long: `Index walks the project tree, records every file, parses Python sources
for classes, functions and imports, and writes the sorted result as JSON.

Directories named in the exclusion set (.git, virtualenvs, caches,
node_modules, build output, ...) are never entered. Files that fail to
parse are still listed but contribute no symbols.

Examples:
  # Index the current directory into plan/project_architecture.json
  archmap index

  # Index another project and write the report elsewhere
  archmap index --root ../service --out /tmp/service.json

  # Skip extra directories (repeatable, globs allowed)
  archmap index --exclude fixtures --exclude "*.egg-info"

  # Rebuild the report whenever files change
  archmap index --watch
`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().StringVar(&indexFlags.root, "root", ".", "Project root to scan")
	indexCmd.Flags().StringVar(&indexFlags.out, "out", "", "Output JSON path, relative to the root unless absolute (default \""+config.DefaultOutput+"\")")
	indexCmd.Flags().StringArrayVar(&indexFlags.excludes, "exclude", nil, "Extra directory name to exclude (repeatable)")
	indexCmd.Flags().IntVar(&indexFlags.workers, "workers", 0, "Number of files parsed concurrently (default from config)")
	indexCmd.Flags().BoolVarP(&indexFlags.quiet, "quiet", "q", false, "Disable progress bars and non-error output")
	indexCmd.Flags().BoolVarP(&indexFlags.watch, "watch", "w", false, "Watch for file changes and rewrite the report")
}

func runIndex(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return executeIndex(ctx, cmd.OutOrStdout(), indexFlags)
}

// indexRun is a configured build-and-write pipeline for one root.
type indexRun struct {
	rootDir  string
	outPath  string
	cfg      *config.Config
	excludes *indexer.ExcludeSet
	builder  *indexer.Builder
	writer   *indexer.ReportWriter
	stdout   io.Writer
	quiet    bool
}

// executeIndex loads configuration for the root, applies flag overrides,
// writes the report once and, in watch mode, keeps rewriting it until ctx
// is cancelled.
func executeIndex(ctx context.Context, stdout io.Writer, opts indexOptions) error {
	run, err := newIndexRun(stdout, opts)
	if err != nil {
		return err
	}

	if err := run.buildAndWrite(ctx); err != nil {
		return err
	}

	if !opts.watch {
		return nil
	}
	return run.watch(ctx)
}

func newIndexRun(stdout io.Writer, opts indexOptions) (*indexRun, error) {
	rootDir := indexer.ResolveRoot(opts.root)

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Flags override configuration
	if opts.out != "" {
		cfg.Index.Output = opts.out
	}
	if opts.workers > 0 {
		cfg.Index.Workers = opts.workers
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	excludes, err := cfg.ExcludeSet(opts.excludes...)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude: %w", err)
	}

	if verbose && !opts.quiet {
		log.Printf("Root: %s", rootDir)
		log.Printf("Excluding: %s", strings.Join(excludes.Entries(), ", "))
	}

	progress := NewCLIProgressReporter(opts.quiet)
	return &indexRun{
		rootDir:  rootDir,
		outPath:  cfg.OutputPath(rootDir),
		cfg:      cfg,
		excludes: excludes,
		builder:  indexer.NewBuilder(cfg.ToBuilderOptions(progress)),
		writer:   indexer.NewReportWriter(),
		stdout:   stdout,
		quiet:    opts.quiet,
	}, nil
}

// buildAndWrite indexes the root and persists the report. Only a failed
// write (or cancellation) is an error.
func (r *indexRun) buildAndWrite(ctx context.Context) error {
	index, err := r.builder.Build(ctx, r.rootDir, r.excludes)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("indexing cancelled")
		}
		return fmt.Errorf("indexing failed: %w", err)
	}

	if err := r.writer.Write(index, r.outPath); err != nil {
		return fmt.Errorf("failed to write %s: %w", r.outPath, err)
	}

	fmt.Fprintf(r.stdout, "[OK] wrote %s\n", r.outPath)
	return nil
}

// watch rebuilds the report after each debounced batch of changes. Events
// for the report itself are ignored so writing it does not retrigger a build.
func (r *indexRun) watch(ctx context.Context) error {
	fw, err := watcher.NewFileWatcher(r.rootDir, watcher.Options{
		SkipDir:      r.excludes.Match,
		Ignore:       r.isReportPath,
		DebounceTime: r.cfg.DebounceInterval(),
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer fw.Stop()

	err = fw.Start(ctx, func(files []string) {
		if !r.quiet {
			log.Printf("Detected %d changed files, rebuilding index...", len(files))
		}
		if err := r.buildAndWrite(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Rebuild failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	if !r.quiet {
		log.Println("Watching for changes (Ctrl+C to stop)...")
	}
	<-ctx.Done()

	if !r.quiet {
		log.Println("Watch mode stopped")
	}
	return nil
}

// isReportPath matches the report and the temp files Persist writes beside it.
func (r *indexRun) isReportPath(path string) bool {
	if path == r.outPath {
		return true
	}
	if filepath.Dir(path) != filepath.Dir(r.outPath) {
		return false
	}
	return strings.HasPrefix(filepath.Base(path), "."+filepath.Base(r.outPath)+".tmp-")
}
