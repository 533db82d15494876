package config

import (
	"slices"
	"time"

	"github.com/mvp-joe/project-archmap/internal/indexer"
)

// ExcludeSet returns the built-in exclusions extended with the configured
// entries and extra names supplied by the caller (e.g. repeated --exclude
// flags). Configuration can add to the defaults but never remove them.
func (c *Config) ExcludeSet(extra ...string) (*indexer.ExcludeSet, error) {
	defaults, err := indexer.NewExcludeSet(DefaultExcludes()...)
	if err != nil {
		return nil, err
	}
	return defaults.Merge(append(slices.Clone(c.Index.Excludes), extra...)...)
}

// ToBuilderOptions converts the index configuration to indexer.Options.
func (c *Config) ToBuilderOptions(progress indexer.ProgressReporter) indexer.Options {
	return indexer.Options{
		Workers:  c.Index.Workers,
		Progress: progress,
	}
}

// OutputPath returns the report destination resolved against rootDir.
func (c *Config) OutputPath(rootDir string) string {
	return indexer.ResolveOutput(rootDir, c.Index.Output)
}

// DebounceInterval returns the watch-mode quiet period.
func (c *Config) DebounceInterval() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}
