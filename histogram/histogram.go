// Package histogram builds per-channel intensity histograms from 8-bit pixel
// buffers, either sequentially or with one worker per channel.
package histogram

import (
	"fmt"
	"strings"

	"imagesearch/pixelbuffer"
	"imagesearch/types"
	"imagesearch/workerpool"
)

// DefaultMinSamplesPerWorker is the smallest channel size worth a worker.
const DefaultMinSamplesPerWorker = 10000

// Strategy selects how histograms are built.
type Strategy int

const (
	// Auto builds in parallel only when every channel exceeds the worker threshold.
	Auto Strategy = iota
	// Sequential walks the interleaved samples once on the calling goroutine.
	Sequential
	// Parallel gathers each channel and counts it on its own worker.
	Parallel
)

func (s Strategy) String() string {
	switch s {
	case Auto:
		return "auto"
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy converts a strategy name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return Auto, nil
	case "sequential":
		return Sequential, nil
	case "parallel":
		return Parallel, nil
	default:
		return Auto, fmt.Errorf("unknown histogram strategy %q", name)
	}
}

// Options configures an Engine. Zero fields take their defaults.
type Options struct {
	BinCount            int
	Strategy            Strategy
	MinSamplesPerWorker int
	Pool                *workerpool.Pool
}

// Engine builds histograms with a fixed bin layout.
type Engine struct {
	binCount            int
	strategy            Strategy
	minSamplesPerWorker int
	pool                *workerpool.Pool
	table               binTable
}

// New returns an engine for the given options.
func New(opts Options) (*Engine, error) {
	if opts.BinCount == 0 {
		opts.BinCount = BinCount
	}
	if opts.MinSamplesPerWorker <= 0 {
		opts.MinSamplesPerWorker = DefaultMinSamplesPerWorker
	}

	table, err := newBinTable(opts.BinCount)
	if err != nil {
		return nil, err
	}

	return &Engine{
		binCount:            opts.BinCount,
		strategy:            opts.Strategy,
		minSamplesPerWorker: opts.MinSamplesPerWorker,
		pool:                opts.Pool,
		table:               table,
	}, nil
}

// BinCount returns the number of bins of every histogram the engine builds.
func (e *Engine) BinCount() int { return e.binCount }

// Resolve returns the strategy used for a buffer with the given sample and
// channel count.
func (e *Engine) Resolve(samples, channels int) Strategy {
	if e.strategy != Auto {
		return e.strategy
	}
	if channels > 1 && samples > channels*e.minSamplesPerWorker {
		return Parallel
	}
	return Sequential
}

// Build returns one histogram per channel of img, in channel order.
// An image without pixels yields histograms whose bins are all zero.
func (e *Engine) Build(img pixelbuffer.ConvertibleToByteBuffer) ([]types.Histogram, error) {
	buf, err := img.ToByteBuffer()
	if err != nil {
		return nil, err
	}

	samples := buf.Samples()
	channels := buf.ChannelCount()

	if e.Resolve(len(samples), channels) == Parallel {
		return e.buildParallel(samples, channels)
	}
	return e.buildSequential(samples, channels), nil
}

func (e *Engine) buildSequential(samples []uint8, channels int) []types.Histogram {
	histograms := make([]types.Histogram, channels)
	for i := range histograms {
		histograms[i] = types.NewHistogram(e.binCount)
	}

	for idx := 0; idx+channels <= len(samples); idx += channels {
		for i := range channels {
			histograms[i].Bins[e.table[samples[idx+i]]]++
		}
	}
	return histograms
}

func (e *Engine) buildParallel(samples []uint8, channels int) ([]types.Histogram, error) {
	return workerpool.Run(e.pool, channels, func(channel int) (types.Histogram, error) {
		return e.count(pixelbuffer.TakeEveryNth(samples, channels, channel)), nil
	})
}

func (e *Engine) count(values []uint8) types.Histogram {
	h := types.NewHistogram(e.binCount)
	for _, v := range values {
		h.Bins[e.table[v]]++
	}
	return h
}
