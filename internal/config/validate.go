package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mvp-joe/project-archmap/internal/indexer"
)

var (
	// ErrEmptyOutput indicates a missing report destination
	ErrEmptyOutput = errors.New("empty output path")

	// ErrInvalidWorkers indicates a non-positive worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidExclude indicates an exclude entry that is not a usable directory name or pattern
	ErrInvalidExclude = errors.New("invalid exclude entry")

	// ErrInvalidDebounce indicates a negative watch debounce interval
	ErrInvalidDebounce = errors.New("invalid debounce interval")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateIndex(&cfg.Index); err != nil {
		errs = append(errs, err)
	}

	if err := validateWatch(&cfg.Watch); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateIndex(cfg *IndexConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.Output) == "" {
		errs = append(errs, fmt.Errorf("%w: output is required", ErrEmptyOutput))
	}

	if cfg.Workers < 1 {
		errs = append(errs, fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidWorkers, cfg.Workers))
	}

	for _, entry := range cfg.Excludes {
		if _, err := indexer.NewExcludeSet(entry); err != nil {
			errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidExclude, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateWatch(cfg *WatchConfig) error {
	if cfg.DebounceMS < 0 {
		return fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidDebounce, cfg.DebounceMS)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
// Every error stays wrapped, so errors.Is still matches each sentinel.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	args := make([]any, len(errs))
	for i, err := range errs {
		args[i] = err
	}
	format := "validation failed:" + strings.Repeat("\n  - %w", len(errs))
	return fmt.Errorf(format, args...)
}
