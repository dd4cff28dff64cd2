// Package brightness computes per-pixel luma and the average brightness of an image.
package brightness

import (
	"imagesearch/pixelbuffer"
	"imagesearch/types"
)

// Luma weights of the red, green and blue channel.
const (
	RedWeight   = 0.3
	GreenWeight = 0.59
	BlueWeight  = 0.11
)

// GrayIntensity returns the luma of one RGB pixel with unit-interval samples.
func GrayIntensity(r, g, b float32) float32 {
	return RedWeight*r + GreenWeight*g + BlueWeight*b
}

// GrayIntensityArray returns the luma of every pixel of img in row-major order.
// Images with three or more channels use their first three channels as RGB and
// ignore the rest. Images with one or two channels use the first channel as
// the luma directly.
func GrayIntensityArray(img pixelbuffer.ConvertibleToUnitBuffer) ([]float32, error) {
	buf, err := img.ToUnitBuffer()
	if err != nil {
		return nil, err
	}

	samples := buf.Samples()
	stride := buf.ChannelCount()
	gray := make([]float32, 0, buf.PixelCount())

	if stride < 3 {
		for i := 0; i < len(samples); i += stride {
			gray = append(gray, samples[i])
		}
		return gray, nil
	}

	for i := 0; i+2 < len(samples); i += stride {
		gray = append(gray, GrayIntensity(samples[i], samples[i+1], samples[i+2]))
	}
	return gray, nil
}

// AverageBrightness returns the arithmetic mean of the given luma values.
func AverageBrightness(gray []float32) (float32, error) {
	if len(gray) == 0 {
		return 0, types.ErrEmptyImage
	}

	var sum float64
	for _, v := range gray {
		sum += float64(v)
	}
	return float32(sum / float64(len(gray))), nil
}

// OfImage returns the average brightness of img.
func OfImage(img pixelbuffer.ConvertibleToUnitBuffer) (float32, error) {
	gray, err := GrayIntensityArray(img)
	if err != nil {
		return 0, err
	}
	return AverageBrightness(gray)
}
