package types

import (
	"slices"
	"strings"
)

// Histogram holds the pixel counts of one colour channel, one counter per bin
type Histogram struct {
	Bins []uint32 `json:"bins"`
}

// NewHistogram returns a histogram with binCount empty bins
func NewHistogram(binCount int) Histogram {
	return Histogram{Bins: make([]uint32, binCount)}
}

// Total returns the number of samples counted in the histogram
func (h Histogram) Total() uint64 {
	var total uint64
	for _, count := range h.Bins {
		total += uint64(count)
	}
	return total
}

// Equal reports whether both histograms have identical bins
func (h Histogram) Equal(other Histogram) bool {
	return slices.Equal(h.Bins, other.Bins)
}

// Fingerprint is the search index record of one image
type Fingerprint struct {
	Filepath          string      `json:"filepath"`
	Filename          string      `json:"filename"`
	AverageBrightness float32     `json:"average_brightness"`
	Histograms        []Histogram `json:"histogram"`
}

// NewFingerprint builds a fingerprint and derives its filename from the path
func NewFingerprint(filepath string, averageBrightness float32, histograms []Histogram) Fingerprint {
	return Fingerprint{
		Filepath:          filepath,
		Filename:          DerivedName(filepath),
		AverageBrightness: averageBrightness,
		Histograms:        histograms,
	}
}

// ChannelCount returns the number of colour channels the fingerprint describes
func (f Fingerprint) ChannelCount() int {
	return len(f.Histograms)
}

// Equal reports whether two fingerprints are identical field by field
func (f Fingerprint) Equal(other Fingerprint) bool {
	if f.Filepath != other.Filepath || f.Filename != other.Filename {
		return false
	}
	if f.AverageBrightness != other.AverageBrightness {
		return false
	}
	return slices.EqualFunc(f.Histograms, other.Histograms, Histogram.Equal)
}

// DerivedName returns the last path segment of filepath with its extension
// stripped. Only '/' separates segments and only the last '.' starts the
// extension, so "a/b.tar.gz" yields "b.tar".
func DerivedName(filepath string) string {
	name := filepath
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		name = name[:idx]
	}
	return name
}

// SimilarityResult holds the similarity scores of one corpus entry against a query
type SimilarityResult struct {
	Entry                Fingerprint `json:"entry"`
	CompositeScore       float64     `json:"composite_score"`
	CosineSimilarity     float64     `json:"cosine_similarity"`
	BrightnessSimilarity float32     `json:"brightness_similarity"`
}

// CompositePercent returns the composite score scaled to 0-100
func (r SimilarityResult) CompositePercent() float64 {
	return r.CompositeScore * 100
}

// CosinePercent returns the histogram similarity scaled to 0-100
func (r SimilarityResult) CosinePercent() float64 {
	return r.CosineSimilarity * 100
}

// BrightnessPercent returns the brightness similarity scaled to 0-100
func (r SimilarityResult) BrightnessPercent() float64 {
	return float64(r.BrightnessSimilarity) * 100
}
