// Package pixelbuffer holds decoded image samples in 8-bit and unit-interval
// encodings and converts between the two.
//
// Samples are stored interleaved, pixel by pixel, so sample i belongs to
// channel i % ChannelCount(). Buffers are immutable once constructed.
package pixelbuffer

import (
	"math"

	"imagesearch/types"
)

// ConvertibleToByteBuffer is implemented by buffers that can present their
// samples in the 8-bit encoding.
type ConvertibleToByteBuffer interface {
	ToByteBuffer() (*ByteBuffer, error)
}

// ConvertibleToUnitBuffer is implemented by buffers that can present their
// samples in the unit-interval encoding.
type ConvertibleToUnitBuffer interface {
	ToUnitBuffer() (*UnitBuffer, error)
}

// ByteBuffer is an image whose samples are integers in [0, 255].
type ByteBuffer struct {
	height    uint32
	width     uint32
	channels  int
	samples   []uint8
	converter Converter
}

// UnitBuffer is an image whose samples are floats in [0.0, 1.0].
type UnitBuffer struct {
	height    uint32
	width     uint32
	channels  int
	samples   []float32
	converter Converter
}

// NewByteBuffer validates the dimensions against the sample count and returns
// an immutable buffer. The samples slice is owned by the buffer afterwards.
func NewByteBuffer(height, width uint32, channels int, samples []uint8) (*ByteBuffer, error) {
	if err := validate(height, width, channels, len(samples)); err != nil {
		return nil, err
	}
	return &ByteBuffer{
		height:    height,
		width:     width,
		channels:  channels,
		samples:   samples,
		converter: DefaultConverter(),
	}, nil
}

// NewUnitBuffer validates the dimensions and sample range and returns an
// immutable buffer. The samples slice is owned by the buffer afterwards.
func NewUnitBuffer(height, width uint32, channels int, samples []float32) (*UnitBuffer, error) {
	if err := validate(height, width, channels, len(samples)); err != nil {
		return nil, err
	}
	for i, v := range samples {
		if math.IsNaN(float64(v)) || v < 0 || v > 1 {
			return nil, &SampleRangeError{Index: i, Value: v}
		}
	}
	return &UnitBuffer{
		height:    height,
		width:     width,
		channels:  channels,
		samples:   samples,
		converter: DefaultConverter(),
	}, nil
}

func validate(height, width uint32, channels, samples int) error {
	if channels < 1 {
		return types.ErrInvalidChannelCount
	}
	if uint64(height)*uint64(width)*uint64(channels) != uint64(samples) {
		return &types.MalformedBufferError{
			Height:       height,
			Width:        width,
			ChannelCount: channels,
			Samples:      samples,
		}
	}
	return nil
}

// Height returns the number of pixel rows.
func (b *ByteBuffer) Height() uint32 { return b.height }

// Width returns the number of pixel columns.
func (b *ByteBuffer) Width() uint32 { return b.width }

// ChannelCount returns the number of samples per pixel.
func (b *ByteBuffer) ChannelCount() int { return b.channels }

// PixelCount returns height times width.
func (b *ByteBuffer) PixelCount() int { return int(b.height) * int(b.width) }

// Samples returns the interleaved samples. The slice must not be modified.
func (b *ByteBuffer) Samples() []uint8 { return b.samples }

// WithConverter returns a buffer sharing the same samples that converts with c.
func (b *ByteBuffer) WithConverter(c Converter) *ByteBuffer {
	clone := *b
	clone.converter = c
	return &clone
}

// ToByteBuffer returns the buffer itself.
func (b *ByteBuffer) ToByteBuffer() (*ByteBuffer, error) {
	if err := validate(b.height, b.width, b.channels, len(b.samples)); err != nil {
		return nil, err
	}
	return b, nil
}

// ToUnitBuffer divides every sample by 255.
func (b *ByteBuffer) ToUnitBuffer() (*UnitBuffer, error) {
	if err := validate(b.height, b.width, b.channels, len(b.samples)); err != nil {
		return nil, err
	}
	samples, err := convert(b.converter, b.samples, ByteToUnit)
	if err != nil {
		return nil, err
	}
	return &UnitBuffer{
		height:    b.height,
		width:     b.width,
		channels:  b.channels,
		samples:   samples,
		converter: b.converter,
	}, nil
}

// Height returns the number of pixel rows.
func (b *UnitBuffer) Height() uint32 { return b.height }

// Width returns the number of pixel columns.
func (b *UnitBuffer) Width() uint32 { return b.width }

// ChannelCount returns the number of samples per pixel.
func (b *UnitBuffer) ChannelCount() int { return b.channels }

// PixelCount returns height times width.
func (b *UnitBuffer) PixelCount() int { return int(b.height) * int(b.width) }

// Samples returns the interleaved samples. The slice must not be modified.
func (b *UnitBuffer) Samples() []float32 { return b.samples }

// WithConverter returns a buffer sharing the same samples that converts with c.
func (b *UnitBuffer) WithConverter(c Converter) *UnitBuffer {
	clone := *b
	clone.converter = c
	return &clone
}

// ToUnitBuffer returns the buffer itself.
func (b *UnitBuffer) ToUnitBuffer() (*UnitBuffer, error) {
	if err := validate(b.height, b.width, b.channels, len(b.samples)); err != nil {
		return nil, err
	}
	return b, nil
}

// ToByteBuffer multiplies every sample by 255 and truncates toward zero.
func (b *UnitBuffer) ToByteBuffer() (*ByteBuffer, error) {
	if err := validate(b.height, b.width, b.channels, len(b.samples)); err != nil {
		return nil, err
	}
	samples, err := convert(b.converter, b.samples, UnitToByte)
	if err != nil {
		return nil, err
	}
	return &ByteBuffer{
		height:    b.height,
		width:     b.width,
		channels:  b.channels,
		samples:   samples,
		converter: b.converter,
	}, nil
}

// ByteToUnit maps an 8-bit sample onto the unit interval.
func ByteToUnit(v uint8) float32 {
	return float32(v) / 255
}

// UnitToByte maps a unit-interval sample onto [0, 255], truncating toward zero.
func UnitToByte(v float32) uint8 {
	return uint8(v * 255)
}

// TakeEveryNth returns every n-th element of samples beginning at start.
// With interleaved samples, TakeEveryNth(samples, channels, c) gathers channel c.
func TakeEveryNth[T any](samples []T, n, start int) []T {
	if n < 1 || start < 0 || start >= len(samples) {
		return []T{}
	}
	out := make([]T, 0, (len(samples)-start+n-1)/n)
	for i := start; i < len(samples); i += n {
		out = append(out, samples[i])
	}
	return out
}
