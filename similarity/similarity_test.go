package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagesearch/types"
)

func hist(bins ...uint32) types.Histogram {
	return types.Histogram{Bins: bins}
}

func TestNormalize(t *testing.T) {
	normalized, err := Normalize(hist(1, 3, 0, 4, 0))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.125, 0.375, 0, 0.5, 0}, normalized)

	_, err = Normalize(hist(0, 0, 0))
	assert.ErrorIs(t, err, types.ErrEmptyHistogram)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"identical", []float64{0.2, 0.3, 0.5}, []float64{0.2, 0.3, 0.5}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"scaled", []float64{1, 2}, []float64{2, 4}, 1},
		{"half", []float64{1, 0}, []float64{1, 1}, 0.7071067811865475},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-12)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestCosineSimilarityErrors(t *testing.T) {
	_, err := CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, types.ErrHistogramLengthMismatch)

	_, err = CosineSimilarity([]float64{0, 0}, []float64{1, 2})
	assert.ErrorIs(t, err, types.ErrEmptyHistogram)
}

func TestHistogramSimilarity(t *testing.T) {
	a := []types.Histogram{hist(5, 0, 0, 0, 0), hist(1, 1, 1, 1, 1)}
	b := []types.Histogram{hist(0, 5, 0, 0, 0), hist(2, 2, 2, 2, 2)}

	got, err := HistogramSimilarity(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-12)
}

func TestHistogramSimilarityErrors(t *testing.T) {
	rgb := []types.Histogram{hist(1), hist(1), hist(1)}
	rgba := []types.Histogram{hist(1), hist(1), hist(1), hist(1)}

	_, err := HistogramSimilarity(rgb, rgba)
	require.ErrorIs(t, err, types.ErrChannelCountMismatch)
	var mismatch *types.ChannelCountMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 3, mismatch.Expected)
	assert.Equal(t, 4, mismatch.Actual)

	_, err = HistogramSimilarity(nil, nil)
	assert.ErrorIs(t, err, types.ErrInvalidChannelCount)

	_, err = HistogramSimilarity([]types.Histogram{hist(1, 2)}, []types.Histogram{hist(1, 2, 3)})
	assert.ErrorIs(t, err, types.ErrHistogramLengthMismatch)

	_, err = HistogramSimilarity([]types.Histogram{hist(0, 0)}, []types.Histogram{hist(1, 2)})
	assert.ErrorIs(t, err, types.ErrEmptyHistogram)
}

func TestBrightnessSimilarity(t *testing.T) {
	assert.Equal(t, float32(1), BrightnessSimilarity(0.4, 0.4))
	assert.InDelta(t, 0.75, BrightnessSimilarity(0.25, 0.5), 1e-7)
	assert.InDelta(t, 0.75, BrightnessSimilarity(0.5, 0.25), 1e-7)
	assert.Equal(t, float32(0), BrightnessSimilarity(0, 1))
}

func TestComposite(t *testing.T) {
	assert.Equal(t, 1.0, Composite(1, 1))
	assert.InDelta(t, 0.6, Composite(0.8, 0.4), 1e-7)
}

func TestSelfSimilarityIsExact(t *testing.T) {
	fingerprints := []types.Fingerprint{
		types.NewFingerprint("a.png", 0.3712, []types.Histogram{hist(17, 3, 99, 1, 0), hist(0, 0, 7, 13, 2), hist(1, 1, 1, 1, 1)}),
		types.NewFingerprint("b.png", 0.9, []types.Histogram{hist(123456, 7, 3, 9, 1)}),
		types.NewFingerprint("c.png", 0, []types.Histogram{hist(3, 7, 11, 13, 17), hist(19, 23, 29, 31, 37)}),
	}

	for _, fp := range fingerprints {
		t.Run(fp.Filename, func(t *testing.T) {
			result, err := Compare(fp, fp)
			require.NoError(t, err)
			assert.Equal(t, 1.0, result.CosineSimilarity)
			assert.Equal(t, float32(1), result.BrightnessSimilarity)
			assert.Equal(t, 1.0, result.CompositeScore)
			assert.Equal(t, 100.0, result.CompositePercent())
		})
	}
}

func TestCompareWrapsEntryPath(t *testing.T) {
	query := types.NewFingerprint("q.png", 0.5, []types.Histogram{hist(1, 2, 3)})
	entry := types.NewFingerprint("gray.png", 0.5, []types.Histogram{hist(1)})

	_, err := Compare(query, entry)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrChannelCountMismatch)
	assert.Contains(t, err.Error(), "gray.png")
}
