// Package similarity compares fingerprints by histogram shape and brightness.
package similarity

import (
	"fmt"
	"math"

	"imagesearch/types"
)

// Weights of the two signals in the composite score.
const (
	HistogramWeight  = 0.5
	BrightnessWeight = 0.5
)

// Normalize divides every bin by the total count so the bins sum to one.
func Normalize(h types.Histogram) ([]float64, error) {
	total := h.Total()
	if total == 0 {
		return nil, types.ErrEmptyHistogram
	}

	normalized := make([]float64, len(h.Bins))
	for i, count := range h.Bins {
		normalized[i] = float64(count) / float64(total)
	}
	return normalized, nil
}

// CosineSimilarity returns dot(a, b) / (|a| * |b|).
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", types.ErrHistogramLengthMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, types.ErrEmptyHistogram
	}

	// sqrt(x*x) is exact, so identical inputs score exactly 1.
	cos := dot / math.Sqrt(normA*normB)
	return min(cos, 1), nil
}

// HistogramSimilarity returns the mean cosine similarity of the normalized
// histograms of every channel.
func HistogramSimilarity(a, b []types.Histogram) (float64, error) {
	if len(a) != len(b) {
		return 0, &types.ChannelCountMismatchError{Expected: len(a), Actual: len(b)}
	}
	if len(a) == 0 {
		return 0, types.ErrInvalidChannelCount
	}

	var sum float64
	for i := range a {
		na, err := Normalize(a[i])
		if err != nil {
			return 0, fmt.Errorf("channel %d: %w", i, err)
		}
		nb, err := Normalize(b[i])
		if err != nil {
			return 0, fmt.Errorf("channel %d: %w", i, err)
		}
		cos, err := CosineSimilarity(na, nb)
		if err != nil {
			return 0, fmt.Errorf("channel %d: %w", i, err)
		}
		sum += cos
	}
	return sum / float64(len(a)), nil
}

// BrightnessSimilarity returns 1 - |a - b|.
func BrightnessSimilarity(a, b float32) float32 {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return 1 - diff
}

// Composite combines histogram and brightness similarity into one score.
func Composite(histogram float64, brightness float32) float64 {
	return HistogramWeight*histogram + BrightnessWeight*float64(brightness)
}

// Compare scores entry against query.
func Compare(query, entry types.Fingerprint) (types.SimilarityResult, error) {
	cos, err := HistogramSimilarity(query.Histograms, entry.Histograms)
	if err != nil {
		return types.SimilarityResult{}, fmt.Errorf("compare %s: %w", entry.Filepath, err)
	}
	bright := BrightnessSimilarity(query.AverageBrightness, entry.AverageBrightness)

	return types.SimilarityResult{
		Entry:                entry,
		CompositeScore:       Composite(cos, bright),
		CosineSimilarity:     cos,
		BrightnessSimilarity: bright,
	}, nil
}
