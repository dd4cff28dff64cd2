package pixelbuffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagesearch/types"
	"imagesearch/workerpool"
)

func TestNewByteBufferValidation(t *testing.T) {
	tests := []struct {
		name     string
		height   uint32
		width    uint32
		channels int
		samples  int
		wantErr  error
	}{
		{"valid rgb", 2, 2, 3, 12, nil},
		{"empty image", 0, 0, 3, 0, nil},
		{"too few samples", 1, 3, 2, 4, types.ErrMalformedBuffer},
		{"too many samples", 1, 1, 1, 2, types.ErrMalformedBuffer},
		{"no channels", 1, 1, 0, 0, types.ErrInvalidChannelCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := NewByteBuffer(tt.height, tt.width, tt.channels, make([]uint8, tt.samples))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, buf)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.height, buf.Height())
			assert.Equal(t, tt.width, buf.Width())
			assert.Equal(t, tt.channels, buf.ChannelCount())
			assert.Equal(t, int(tt.height*tt.width), buf.PixelCount())
		})
	}
}

func TestNewUnitBufferRejectsOutOfRange(t *testing.T) {
	_, err := NewUnitBuffer(1, 2, 1, []float32{0.5, 1.5})
	require.ErrorIs(t, err, types.ErrMalformedBuffer)

	var rangeErr *SampleRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 1, rangeErr.Index)

	_, err = NewUnitBuffer(1, 1, 1, []float32{-0.1})
	assert.ErrorIs(t, err, types.ErrMalformedBuffer)
}

func TestZeroValueBufferIsRejected(t *testing.T) {
	var b ByteBuffer
	_, err := b.ToUnitBuffer()
	assert.ErrorIs(t, err, types.ErrInvalidChannelCount)

	var u UnitBuffer
	_, err = u.ToByteBuffer()
	assert.ErrorIs(t, err, types.ErrInvalidChannelCount)
}

func TestScalarConversions(t *testing.T) {
	assert.Equal(t, float32(0), ByteToUnit(0))
	assert.Equal(t, float32(1), ByteToUnit(255))
	assert.Equal(t, uint8(254), UnitToByte(0.999))
	assert.Equal(t, uint8(255), UnitToByte(1))
	assert.Equal(t, uint8(0), UnitToByte(0))
}

func TestRoundTripDiffersByAtMostOne(t *testing.T) {
	for v := 0; v <= 255; v++ {
		back := int(UnitToByte(ByteToUnit(uint8(v))))
		assert.LessOrEqual(t, v-back, 1, "value %d came back as %d", v, back)
		assert.GreaterOrEqual(t, v-back, 0, "value %d came back as %d", v, back)
	}
	assert.Equal(t, uint8(255), UnitToByte(ByteToUnit(255)))
	assert.Equal(t, uint8(0), UnitToByte(ByteToUnit(0)))
}

func TestBufferConversionRoundTrip(t *testing.T) {
	samples := []uint8{0, 255, 25, 99, 128, 1}
	buf, err := NewByteBuffer(1, 2, 3, samples)
	require.NoError(t, err)

	unit, err := buf.ToUnitBuffer()
	require.NoError(t, err)
	assert.Equal(t, buf.Height(), unit.Height())
	assert.Equal(t, buf.Width(), unit.Width())
	assert.Equal(t, 3, unit.ChannelCount())
	assert.InDelta(t, 25.0/255.0, unit.Samples()[2], 1e-7)

	back, err := unit.ToByteBuffer()
	require.NoError(t, err)
	for i, v := range back.Samples() {
		assert.LessOrEqual(t, int(samples[i])-int(v), 1)
	}

	same, err := buf.ToByteBuffer()
	require.NoError(t, err)
	assert.Same(t, buf, same)
}

func TestParallelConversionMatchesSequential(t *testing.T) {
	const n = 3*7*40001 + 2
	samples := make([]uint8, 0, n)
	for i := range n {
		samples = append(samples, uint8(i*31))
	}
	buf, err := NewByteBuffer(1, uint32(n), 1, samples)
	require.NoError(t, err)

	sequential := Converter{Chunks: 1}
	parallel := Converter{Chunks: 4, MinSamplesPerChunk: 100, Pool: workerpool.New(3)}
	require.False(t, sequential.Parallel(n))
	require.True(t, parallel.Parallel(n))

	want, err := buf.WithConverter(sequential).ToUnitBuffer()
	require.NoError(t, err)
	got, err := buf.WithConverter(parallel).ToUnitBuffer()
	require.NoError(t, err)
	assert.Equal(t, want.Samples(), got.Samples())

	wantBytes, err := want.ToByteBuffer()
	require.NoError(t, err)
	gotBytes, err := got.WithConverter(parallel).ToByteBuffer()
	require.NoError(t, err)
	assert.Equal(t, wantBytes.Samples(), gotBytes.Samples())
}

func TestDefaultConverterThreshold(t *testing.T) {
	c := DefaultConverter()
	assert.False(t, c.Parallel(DefaultChunks*DefaultMinSamplesPerChunk))
	assert.True(t, c.Parallel(DefaultChunks*DefaultMinSamplesPerChunk+1))
}

func TestTakeEveryNth(t *testing.T) {
	samples := []uint8{0, 255, 25, 99, 7}

	assert.Equal(t, []uint8{0, 25, 7}, TakeEveryNth(samples, 2, 0))
	assert.Equal(t, []uint8{255, 99}, TakeEveryNth(samples, 2, 1))
	assert.Equal(t, samples, TakeEveryNth(samples, 1, 0))
	assert.Empty(t, TakeEveryNth(samples, 2, 5))
	assert.Empty(t, TakeEveryNth(samples, 0, 0))
	assert.Empty(t, TakeEveryNth([]uint8{}, 3, 0))
}
