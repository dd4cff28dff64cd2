package types

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedBuffer is returned when a buffer's sample count does not
	// match its declared dimensions.
	ErrMalformedBuffer = errors.New("malformed pixel buffer")

	// ErrEmptyImage is returned when the average brightness of an image
	// without pixels is requested.
	ErrEmptyImage = errors.New("empty image")

	// ErrEmptyHistogram is returned when a histogram without any counted
	// sample is normalized or compared.
	ErrEmptyHistogram = errors.New("empty histogram")

	// ErrInvalidChannelCount is returned for buffers or fingerprints with no
	// colour channel.
	ErrInvalidChannelCount = errors.New("invalid channel count")

	// ErrHistogramLengthMismatch is returned when two histograms with a
	// different number of bins are compared.
	ErrHistogramLengthMismatch = errors.New("histogram length mismatch")

	// ErrChannelCountMismatch is returned when two fingerprints with a
	// different channel layout are compared.
	ErrChannelCountMismatch = errors.New("channel count mismatch")

	// ErrInvalidBinCount is returned for bin counts that do not divide 255.
	ErrInvalidBinCount = errors.New("bin count must be a divisor of 255")

	// ErrInvalidK is returned when a negative result limit is requested.
	ErrInvalidK = errors.New("k must not be negative")

	// ErrCorpusRead wraps failures of the corpus store while reading.
	ErrCorpusRead = errors.New("corpus read failure")

	// ErrCorpusWrite wraps failures of the corpus store while writing.
	ErrCorpusWrite = errors.New("corpus write failure")

	// ErrWorkerFailure is matched by WorkerFailure.
	ErrWorkerFailure = errors.New("worker failure")
)

// MalformedBufferError reports the expected and actual sample count of a
// buffer whose length is inconsistent with its dimensions.
type MalformedBufferError struct {
	Height       uint32
	Width        uint32
	ChannelCount int
	Samples      int
}

func (e *MalformedBufferError) Error() string {
	return fmt.Sprintf("%v: %dx%d with %d channels needs %d samples, got %d",
		ErrMalformedBuffer, e.Width, e.Height, e.ChannelCount,
		uint64(e.Height)*uint64(e.Width)*uint64(e.ChannelCount), e.Samples)
}

func (e *MalformedBufferError) Unwrap() error { return ErrMalformedBuffer }

// ChannelCountMismatchError indicates two fingerprints with different channel layouts.
type ChannelCountMismatchError struct {
	Expected int
	Actual   int
}

func (e *ChannelCountMismatchError) Error() string {
	return fmt.Sprintf("%v: expected %d, got %d", ErrChannelCountMismatch, e.Expected, e.Actual)
}

func (e *ChannelCountMismatchError) Unwrap() error { return ErrChannelCountMismatch }

// WorkerFailure reports a panic inside a worker of a parallel computation.
//
// Partition is the index of the unit of work that failed.
type WorkerFailure struct {
	Partition int
	Value     any
	Stack     []byte
}

func (e *WorkerFailure) Error() string {
	return fmt.Sprintf("%v: partition %d panicked: %v", ErrWorkerFailure, e.Partition, e.Value)
}

func (e *WorkerFailure) Unwrap() error { return ErrWorkerFailure }
