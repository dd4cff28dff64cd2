package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivedName(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/path/to/file.png", "file"},
		{"file.txt", "file"},
		{"pictures/archive.tar.gz", "archive.tar"},
		{"no_extension", "no_extension"},
		{"dir/", ""},
		{"dir/.hidden", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, DerivedName(tt.path))
		})
	}
}

func TestFingerprintJSONShape(t *testing.T) {
	fp := NewFingerprint("/images/bird.png", 0.5, []Histogram{{Bins: []uint32{1, 2, 3, 4, 5}}})

	data, err := json.Marshal(fp)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "/images/bird.png", raw["filepath"])
	assert.Equal(t, "bird", raw["filename"])
	assert.InDelta(t, 0.5, raw["average_brightness"], 1e-9)

	histograms, ok := raw["histogram"].([]any)
	require.True(t, ok)
	require.Len(t, histograms, 1)
	first, ok := histograms[0].(map[string]any)
	require.True(t, ok)
	assert.Len(t, first["bins"], 5)
}

func TestFingerprintEqual(t *testing.T) {
	a := NewFingerprint("a.png", 0.25, []Histogram{{Bins: []uint32{1, 0}}, {Bins: []uint32{0, 1}}})
	b := NewFingerprint("a.png", 0.25, []Histogram{{Bins: []uint32{1, 0}}, {Bins: []uint32{0, 1}}})
	assert.True(t, a.Equal(b))

	c := NewFingerprint("a.png", 0.25, []Histogram{{Bins: []uint32{1, 0}}, {Bins: []uint32{1, 0}}})
	assert.False(t, a.Equal(c))

	d := NewFingerprint("a.png", 0.3, a.Histograms)
	assert.False(t, a.Equal(d))

	e := NewFingerprint("b.png", 0.25, a.Histograms)
	assert.False(t, a.Equal(e))
}

func TestHistogramTotal(t *testing.T) {
	h := Histogram{Bins: []uint32{3, 0, 7, 1, 1}}
	assert.Equal(t, uint64(12), h.Total())
	assert.Equal(t, uint64(0), NewHistogram(5).Total())
}

func TestTypedErrorsUnwrap(t *testing.T) {
	var err error = &MalformedBufferError{Height: 1, Width: 3, ChannelCount: 2, Samples: 4}
	assert.True(t, errors.Is(err, ErrMalformedBuffer))
	assert.Contains(t, err.Error(), "needs 6 samples, got 4")

	err = &ChannelCountMismatchError{Expected: 3, Actual: 4}
	assert.True(t, errors.Is(err, ErrChannelCountMismatch))

	err = &WorkerFailure{Partition: 2, Value: "boom"}
	assert.True(t, errors.Is(err, ErrWorkerFailure))
	assert.Contains(t, err.Error(), "partition 2")
}
