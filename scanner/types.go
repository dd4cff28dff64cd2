package scanner

import (
	"io"
	"sync"
	"time"
)

// Result statuses, also used as the metrics status label.
const (
	StatusIndexed   = "indexed"
	StatusDuplicate = "duplicate"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// ScanOptions defines the options for scanning
type ScanOptions struct {
	// FolderPath is the folder to walk, or a single image file
	FolderPath string

	// ForceRewrite fingerprints files the store already knows again
	ForceRewrite bool

	DebugMode  bool
	MaxWorkers int // 0 = signalhandler.GetOptimalProcs()

	// Output receives progress and summary lines; nil means stdout
	Output io.Writer
}

// ProcessImageResult holds the result of processing an image
type ProcessImageResult struct {
	Path   string
	Status string
	Error  error
}

// ScanSummary counts the outcome of a scan
type ScanSummary struct {
	Total      int
	Indexed    int
	Duplicates int
	Skipped    int
	Failed     int
	Elapsed    time.Duration
}

// ProgressTracker tracks progress of the scan operation
type ProgressTracker struct {
	processed  int
	errors     int
	totalFiles int
	out        io.Writer
	ticker     *time.Ticker
	done       chan struct{}
	finished   chan struct{}
	stopped    chan struct{}
	mu         sync.Mutex
}
