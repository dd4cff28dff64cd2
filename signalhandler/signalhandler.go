package signalhandler

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"

	"imagesearch/logging"
)

// SetupHandler returns a context that is cancelled on the first SIGINT or
// SIGTERM so running scans stop dispatching work and flush what they have.
// A second signal exits immediately. The returned stop function releases
// the signal registration.
func SetupHandler(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	// Create a channel to receive OS signals
	sigChan := make(chan os.Signal, 2)
	stopped := make(chan struct{})

	// Register for specific signals
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Handle signals in a separate goroutine
	go func() {
		select {
		case sig := <-sigChan:
			logging.LogWarning("Received %v, shutting down", sig)
			cancel()
		case <-ctx.Done():
			return
		}

		select {
		case <-sigChan:
			// Second signal, abort
			os.Exit(1)
		case <-stopped:
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(stopped)
			cancel()
		})
	}
}

// GetOptimalProcs returns the optimal number of worker goroutines for the system
func GetOptimalProcs() int {
	// Get the number of CPUs available
	numCPU := runtime.NumCPU()

	// OpenCV decoding runs in cgo and keeps its own threads busy
	maxProcs := (numCPU * 3) / 4
	if maxProcs < 1 {
		maxProcs = 1
	}

	return maxProcs
}
