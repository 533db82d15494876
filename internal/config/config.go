// Package config provides configuration loading for archmap.
//
// Configuration is resolved per scan root (highest to lowest priority):
//  1. Environment variables (ARCHMAP_*)
//  2. Project config (.archmap/config.yml or .archmap/config.yaml)
//  3. Built-in defaults
//
// Command-line flags are applied on top by the CLI.
package config

// ConfigDirName is the per-project directory holding archmap configuration.
// It is part of the default exclusion set so it never shows up in an index.
const ConfigDirName = ".archmap"

// DefaultOutput is the report destination, relative to the scan root.
const DefaultOutput = "plan/project_architecture.json"

// Config represents the complete archmap configuration.
type Config struct {
	Index IndexConfig `yaml:"index" mapstructure:"index"`
	Watch WatchConfig `yaml:"watch" mapstructure:"watch"`
}

// IndexConfig configures how a tree is indexed and where the report goes.
type IndexConfig struct {
	Output   string   `yaml:"output" mapstructure:"output"`     // report path, relative to the root unless absolute
	Excludes []string `yaml:"excludes" mapstructure:"excludes"` // extra directory names (or name globs) pruned on top of DefaultExcludes
	Workers  int      `yaml:"workers" mapstructure:"workers"`   // concurrent file parsers
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms" mapstructure:"debounce_ms"` // quiet period before rebuilding
}

// DefaultExcludes returns the directory names that are always pruned:
// version control, virtualenvs, bytecode and test caches, dependencies,
// build output, editor state and the tool's own directories.
func DefaultExcludes() []string {
	return []string{
		".git",
		".venv",
		"venv",
		"__pycache__",
		".mypy_cache",
		".pytest_cache",
		"node_modules",
		"dist",
		"build",
		".skills_cache",
		".idea",
		ConfigDirName,
	}
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Index: IndexConfig{
			Output:  DefaultOutput,
			Workers: 1,
		},
		Watch: WatchConfig{
			DebounceMS: 500,
		},
	}
}
