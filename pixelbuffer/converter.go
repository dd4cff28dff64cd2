package pixelbuffer

import (
	"imagesearch/workerpool"
)

const (
	// DefaultChunks is the number of contiguous chunks a large buffer is split
	// into for parallel conversion.
	DefaultChunks = 4

	// DefaultMinSamplesPerChunk is the smallest chunk worth a worker.
	DefaultMinSamplesPerChunk = 10000
)

// Converter decides how sample conversions are executed. Buffers holding
// more than Chunks * MinSamplesPerChunk samples are split into Chunks
// contiguous chunks converted on Pool and concatenated in chunk order.
type Converter struct {
	Chunks             int
	MinSamplesPerChunk int
	Pool               *workerpool.Pool
}

// DefaultConverter returns the converter attached to new buffers.
func DefaultConverter() Converter {
	return Converter{
		Chunks:             DefaultChunks,
		MinSamplesPerChunk: DefaultMinSamplesPerChunk,
	}
}

// Parallel reports whether n samples are converted in chunks.
func (c Converter) Parallel(n int) bool {
	return c.Chunks > 1 && n > c.Chunks*c.MinSamplesPerChunk
}

func convert[S, D any](c Converter, src []S, fn func(S) D) ([]D, error) {
	if !c.Parallel(len(src)) {
		return convertChunk(src, fn), nil
	}

	size := (len(src) + c.Chunks - 1) / c.Chunks
	chunks, err := workerpool.Run(c.Pool, c.Chunks, func(i int) ([]D, error) {
		lo := min(i*size, len(src))
		hi := min(lo+size, len(src))
		return convertChunk(src[lo:hi], fn), nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]D, 0, len(src))
	for _, chunk := range chunks {
		out = append(out, chunk...)
	}
	return out, nil
}

func convertChunk[S, D any](src []S, fn func(S) D) []D {
	out := make([]D, len(src))
	for i, v := range src {
		out[i] = fn(v)
	}
	return out
}
