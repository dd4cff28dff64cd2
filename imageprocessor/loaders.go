package imageprocessor

import (
	"fmt"
	"os"

	"imagesearch/pixelbuffer"
)

// ImageLoader interface defines methods for image loading
type ImageLoader interface {
	// CanLoad determines if this loader can handle the given file
	CanLoad(path string) bool

	// LoadImage decodes the file into an 8-bit interleaved buffer
	LoadImage(path string) (*pixelbuffer.ByteBuffer, error)
}

// BaseImageLoader provides common functionality for all image loaders
type BaseImageLoader struct {
	// Formats this loader can handle
	SupportedFormats []FormatType
}

// CanLoad checks if this loader supports the file's format
func (l *BaseImageLoader) CanLoad(path string) bool {
	format := GetFileFormat(path)

	for _, supported := range l.SupportedFormats {
		if format == supported {
			return fileExists(path)
		}
	}

	return false
}

// fileExists checks if a file exists and is accessible
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// newImageLoadError creates a standardized error for image loading failures
func newImageLoadError(message, path string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %s", message, path)
	}
	return fmt.Errorf("%s: %s: %w", message, path, err)
}

// scaledSize returns the size that fits width x height into a square of
// maxDimension while keeping the aspect ratio. A maxDimension of zero or an
// image that already fits keeps the original size.
func scaledSize(width, height, maxDimension int) (int, int, bool) {
	if maxDimension <= 0 || (width <= maxDimension && height <= maxDimension) {
		return width, height, false
	}
	if width >= height {
		return maxDimension, max(1, height*maxDimension/width), true
	}
	return max(1, width*maxDimension/height), maxDimension, true
}
