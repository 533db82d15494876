package indexer

// ProgressReporter provides callbacks for reporting indexing progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryComplete is called once enumeration finishes.
	OnDiscoveryComplete(totalFiles int)

	// OnFileProcessed is called after each file is recorded (and parsed, for
	// source files). It may be called from several goroutines at once.
	OnFileProcessed(relPath string)

	// OnComplete is called when the index has been assembled.
	OnComplete(stats Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryComplete(totalFiles int) {}
func (n *NoOpProgressReporter) OnFileProcessed(relPath string)     {}
func (n *NoOpProgressReporter) OnComplete(stats Stats)             {}
