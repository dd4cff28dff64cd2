package brightness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagesearch/pixelbuffer"
	"imagesearch/types"
)

func TestGrayIntensity(t *testing.T) {
	tests := []struct {
		name     string
		r, g, b  float32
		expected float32
	}{
		{"black", 0, 0, 0, 0},
		{"white", 1, 1, 1, 1},
		{"pure red", 1, 0, 0, 0.3},
		{"pure green", 0, 1, 0, 0.59},
		{"pure blue", 0, 0, 1, 0.11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, GrayIntensity(tt.r, tt.g, tt.b), 1e-6)
		})
	}
}

func TestGrayIntensityArrayUsesFirstThreeChannels(t *testing.T) {
	// Two RGBA pixels: red with full alpha, white with zero alpha.
	buf, err := pixelbuffer.NewByteBuffer(1, 2, 4, []uint8{255, 0, 0, 255, 255, 255, 255, 0})
	require.NoError(t, err)

	gray, err := GrayIntensityArray(buf)
	require.NoError(t, err)
	require.Len(t, gray, 2)
	assert.InDelta(t, 0.3, gray[0], 1e-6)
	assert.InDelta(t, 1.0, gray[1], 1e-6)
}

func TestGrayIntensityArraySingleChannel(t *testing.T) {
	buf, err := pixelbuffer.NewByteBuffer(1, 3, 1, []uint8{0, 51, 255})
	require.NoError(t, err)

	gray, err := GrayIntensityArray(buf)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0.2, 1}, gray)

	gray, err = GrayIntensityArray(mustUnit(t, 1, 2, 2, []float32{0.5, 1, 0.25, 0}))
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, gray)
}

func TestAverageBrightness(t *testing.T) {
	avg, err := AverageBrightness([]float32{0, 0.5, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, avg, 1e-7)

	_, err = AverageBrightness(nil)
	assert.ErrorIs(t, err, types.ErrEmptyImage)
}

func TestOfImage(t *testing.T) {
	white, err := pixelbuffer.NewByteBuffer(2, 2, 3, []uint8{
		255, 255, 255, 255, 255, 255,
		255, 255, 255, 255, 255, 255,
	})
	require.NoError(t, err)

	avg, err := OfImage(white)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, avg, 1e-6)

	empty, err := pixelbuffer.NewByteBuffer(0, 0, 3, nil)
	require.NoError(t, err)
	_, err = OfImage(empty)
	assert.ErrorIs(t, err, types.ErrEmptyImage)
}

func mustUnit(t *testing.T, h, w uint32, c int, samples []float32) *pixelbuffer.UnitBuffer {
	t.Helper()
	buf, err := pixelbuffer.NewUnitBuffer(h, w, c, samples)
	require.NoError(t, err)
	return buf
}
