package scanner

import (
	"fmt"
	"io"
	"time"

	"imagesearch/logging"
)

// NewProgressTracker starts consuming resultsChan and printing progress to out
func NewProgressTracker(totalFiles int, out io.Writer, resultsChan <-chan ProcessImageResult) *ProgressTracker {
	tracker := &ProgressTracker{
		totalFiles: totalFiles,
		out:        out,
		ticker:     time.NewTicker(500 * time.Millisecond),
		done:       make(chan struct{}),
		finished:   make(chan struct{}),
		stopped:    make(chan struct{}),
	}

	// Start progress display goroutine
	go tracker.displayProgress()

	// Start result processor goroutine
	go tracker.processResults(resultsChan)

	return tracker
}

// displayProgress shows the progress periodically
func (p *ProgressTracker) displayProgress() {
	defer close(p.stopped)

	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			p.mu.Lock()
			if p.errors > 0 {
				fmt.Fprintf(p.out, "\rProgress: %d/%d (Errors: %d)", p.processed, p.totalFiles, p.errors)
			} else {
				fmt.Fprintf(p.out, "\rProgress: %d/%d", p.processed, p.totalFiles)
			}
			p.mu.Unlock()
		}
	}
}

// processResults updates the tracker state until resultsChan is closed
func (p *ProgressTracker) processResults(resultsChan <-chan ProcessImageResult) {
	defer close(p.finished)

	for result := range resultsChan {
		p.mu.Lock()
		p.processed++
		if result.Status == StatusFailed {
			p.errors++
			if result.Error != nil {
				logging.LogImageProcessed(result.Path, false, result.Error.Error())
			}
		} else if result.Status == StatusIndexed {
			logging.LogImageProcessed(result.Path, true, "")
		}
		p.mu.Unlock()
	}
}

// Processed returns the number of results seen so far and how many failed
func (p *ProgressTracker) Processed() (processed, errors int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed, p.errors
}

// Stop waits for the results channel to drain and ends the progress display.
// The results channel must be closed before calling Stop.
func (p *ProgressTracker) Stop() {
	<-p.finished
	p.ticker.Stop()
	close(p.done)
	<-p.stopped
}

// PrintStartupInfo displays information about the scan before starting
func PrintStartupInfo(out io.Writer, totalFiles, known int, options ScanOptions) {
	fmt.Fprintf(out, "Starting image indexing...\nTotal image files found: %d (%d already indexed)\n", totalFiles, known)
	fmt.Fprintf(out, "Force rewrite mode: %v\n", options.ForceRewrite)

	if options.DebugMode {
		fmt.Fprintf(out, "Debug mode: enabled\n")
		logging.DebugLog("Found %d image files to process in %s", totalFiles, options.FolderPath)
	}
}

// PrintCompletionStats displays statistics after scan completion
func PrintCompletionStats(out io.Writer, summary *ScanSummary, options ScanOptions) {
	if options.DebugMode {
		logging.DebugLog("Scan completed in %v. Indexed: %d, Duplicates: %d, Skipped: %d, Errors: %d",
			summary.Elapsed, summary.Indexed, summary.Duplicates, summary.Skipped, summary.Failed)
	}

	fmt.Fprintln(out, "\nIndexing complete.")
	fmt.Fprintf(out, "Indexed %d of %d images in %v.\n", summary.Indexed, summary.Total, summary.Elapsed.Round(time.Millisecond))

	if summary.Skipped > 0 {
		fmt.Fprintf(out, "Skipped %d images already in the corpus.\n", summary.Skipped)
	}
	if summary.Duplicates > 0 {
		fmt.Fprintf(out, "Ignored %d fingerprints identical to stored ones.\n", summary.Duplicates)
	}
	if summary.Failed > 0 {
		fmt.Fprintf(out, "Encountered %d errors during indexing.\n", summary.Failed)
		fmt.Fprintln(out, "Check the log file for details.")
	}
}
