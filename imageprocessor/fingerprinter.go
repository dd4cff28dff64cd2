package imageprocessor

import (
	"fmt"
	"time"

	"imagesearch/brightness"
	"imagesearch/histogram"
	"imagesearch/metrics"
	"imagesearch/pixelbuffer"
	"imagesearch/types"
	"imagesearch/utils"
)

// Fingerprinter turns images into fingerprints.
type Fingerprinter struct {
	registry  *ImageLoaderRegistry
	engine    *histogram.Engine
	converter pixelbuffer.Converter
}

// NewFingerprinter returns a fingerprinter decoding through registry, building
// histograms with engine and converting samples with converter.
func NewFingerprinter(registry *ImageLoaderRegistry, engine *histogram.Engine, converter pixelbuffer.Converter) *Fingerprinter {
	return &Fingerprinter{
		registry:  registry,
		engine:    engine,
		converter: converter,
	}
}

// Registry returns the loaders used by FingerprintFile.
func (f *Fingerprinter) Registry() *ImageLoaderRegistry { return f.registry }

// Fingerprint computes the histograms and average brightness of img and
// records them under path.
func (f *Fingerprinter) Fingerprint(path string, img pixelbuffer.ConvertibleToByteBuffer) (types.Fingerprint, error) {
	buf, err := img.ToByteBuffer()
	if err != nil {
		return types.Fingerprint{}, err
	}
	buf = buf.WithConverter(f.converter)
	n := len(buf.Samples())

	metrics.RecordDispatch("histogram", f.engine.Resolve(n, buf.ChannelCount()).String())
	histograms, err := f.engine.Build(buf)
	if err != nil {
		return types.Fingerprint{}, fmt.Errorf("histogram of %s: %w", path, err)
	}

	conversion := histogram.Sequential
	if f.converter.Parallel(n) {
		conversion = histogram.Parallel
	}
	metrics.RecordDispatch("conversion", conversion.String())
	avg, err := brightness.OfImage(buf)
	if err != nil {
		return types.Fingerprint{}, fmt.Errorf("brightness of %s: %w", path, err)
	}

	return types.NewFingerprint(utils.FormatFilepath(path), avg, histograms), nil
}

// FingerprintFile decodes the image at path and fingerprints it.
func (f *Fingerprinter) FingerprintFile(path string) (types.Fingerprint, error) {
	start := time.Now()

	buf, err := f.registry.LoadImage(path)
	if err != nil {
		return types.Fingerprint{}, err
	}

	fp, err := f.Fingerprint(path, buf)
	if err != nil {
		return types.Fingerprint{}, err
	}

	metrics.FingerprintDuration.Observe(time.Since(start).Seconds())
	return fp, nil
}
