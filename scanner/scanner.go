package scanner

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"imagesearch/database"
	"imagesearch/imageprocessor"
	"imagesearch/logging"
	"imagesearch/metrics"
	"imagesearch/signalhandler"
	"imagesearch/types"
	"imagesearch/utils"
)

// ScanAndStoreFolder fingerprints every loadable image below
// options.FolderPath and appends the fingerprints to store in path order.
// A failing file is counted and logged without aborting the scan. When ctx
// is cancelled no further files are started; finished fingerprints are still
// stored and ctx.Err() is returned with the summary.
func ScanAndStoreFolder(ctx context.Context, store database.CorpusStore, fingerprinter *imageprocessor.Fingerprinter, options ScanOptions) (*ScanSummary, error) {
	out := options.Output
	if out == nil {
		out = os.Stdout
	}

	paths, err := collectImageFiles(options.FolderPath, fingerprinter.Registry())
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	summary := &ScanSummary{Total: len(paths)}

	pending, err := filterKnown(ctx, store, paths, options)
	if err != nil {
		return nil, err
	}
	summary.Skipped = len(paths) - len(pending)
	for range summary.Skipped {
		metrics.RecordFile(StatusSkipped)
	}

	PrintStartupInfo(out, len(paths), summary.Skipped, options)

	fingerprints, failed, cancelErr := fingerprintFiles(ctx, fingerprinter, pending, options, out)
	summary.Failed = failed

	// Fingerprints computed before a cancellation are kept
	storeCtx := context.WithoutCancel(ctx)
	for i, path := range pending {
		fp := fingerprints[i]
		if fp == nil {
			continue
		}
		added, err := store.Append(storeCtx, *fp)
		switch {
		case err != nil:
			logging.LogError("Cannot store fingerprint of %s: %v", path, err)
			summary.Failed++
			metrics.RecordFile(StatusFailed)
		case added:
			summary.Indexed++
			metrics.RecordFile(StatusIndexed)
		default:
			summary.Duplicates++
			metrics.RecordFile(StatusDuplicate)
		}
	}

	summary.Elapsed = time.Since(startTime)
	PrintCompletionStats(out, summary, options)

	return summary, cancelErr
}

// fingerprintFiles fingerprints paths with a bounded number of goroutines.
// The returned slice is index-aligned with paths; entries stay nil for files
// that failed or were never started.
func fingerprintFiles(ctx context.Context, fingerprinter *imageprocessor.Fingerprinter, paths []string, options ScanOptions, out io.Writer) ([]*types.Fingerprint, int, error) {
	workers := options.MaxWorkers
	if workers <= 0 {
		workers = signalhandler.GetOptimalProcs()
	}

	var wg sync.WaitGroup
	resultsChan := make(chan ProcessImageResult, 100)
	semaphore := make(chan struct{}, workers) // Limit concurrent goroutines

	progressTracker := NewProgressTracker(len(paths), out, resultsChan)

	fingerprints := make([]*types.Fingerprint, len(paths))
	var cancelErr error

	for i, path := range paths {
		if err := acquire(ctx, semaphore); err != nil {
			cancelErr = err
			logging.LogWarning("Scan cancelled, %d files not started", len(paths)-i)
			break
		}

		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			defer func() { <-semaphore }() // Release semaphore when done

			result := processImage(fingerprinter, p, options)
			if result.fp != nil {
				fingerprints[i] = result.fp
			} else {
				metrics.RecordFile(StatusFailed)
			}
			resultsChan <- result.ProcessImageResult
		}(i, path)
	}

	// Wait for all processing to complete
	wg.Wait()
	close(resultsChan)
	progressTracker.Stop()

	_, failed := progressTracker.Processed()
	return fingerprints, failed, cancelErr
}

// acquire takes a semaphore slot unless ctx is done
func acquire(ctx context.Context, semaphore chan struct{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case semaphore <- struct{}{}:
		return nil
	}
}

type processed struct {
	ProcessImageResult
	fp *types.Fingerprint
}

// processImage fingerprints a single file, turning panics from the decoders
// into a failed result.
func processImage(fingerprinter *imageprocessor.Fingerprinter, path string, options ScanOptions) (result processed) {
	result.Path = path

	defer func() {
		if r := recover(); r != nil {
			logging.LogError("Panic while fingerprinting %s: %v", path, r)
			result.Status = StatusFailed
			result.Error = fmt.Errorf("panic while fingerprinting %s: %v", path, r)
			result.fp = nil
		}
	}()

	fp, err := fingerprinter.FingerprintFile(path)
	if err != nil {
		result.Status = StatusFailed
		result.Error = err
		return result
	}

	if options.DebugMode {
		logging.DebugLog("Fingerprinted %s: %d channels, brightness %.4f", path, fp.ChannelCount(), fp.AverageBrightness)
	}

	result.Status = StatusIndexed
	result.fp = &fp
	return result
}

// collectImageFiles returns the loadable image files below root in lexical
// order. A root that is a file is returned on its own.
func collectImageFiles(root string, registry *imageprocessor.ImageLoaderRegistry) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", root, err)
	}
	if !info.IsDir() {
		if !registry.CanLoadFile(root) {
			return nil, fmt.Errorf("unsupported image format: %s", root)
		}
		return []string{root}, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.LogError("Error accessing path %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}

		// Check if we have a loader for this file
		if registry.CanLoadFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

// filterKnown drops paths the store already holds unless ForceRewrite is set
func filterKnown(ctx context.Context, store database.CorpusStore, paths []string, options ScanOptions) ([]string, error) {
	if options.ForceRewrite || len(paths) == 0 {
		return paths, nil
	}

	contains := store.ContainsPath
	if len(paths) > 1 {
		// One corpus read instead of one per file
		corpus, err := store.ReadAll(ctx)
		if err != nil {
			return nil, err
		}
		indexed := make(map[string]struct{}, len(corpus))
		for _, fp := range corpus {
			indexed[fp.Filepath] = struct{}{}
		}
		contains = func(_ context.Context, path string) (bool, error) {
			_, ok := indexed[path]
			return ok, nil
		}
	}

	pending := make([]string, 0, len(paths))
	for _, path := range paths {
		known, err := contains(ctx, utils.FormatFilepath(path))
		if err != nil {
			return nil, err
		}
		if known {
			if options.DebugMode {
				logging.DebugLog("Skipping indexed image: %s", path)
			}
			continue
		}
		pending = append(pending, path)
	}
	return pending, nil
}
