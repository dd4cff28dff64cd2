package imageprocessor

import (
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"imagesearch/pixelbuffer"
)

// GoImageLoader decodes images with Go's image packages. It handles every
// supported format without OpenCV and serves as the registry fallback.
type GoImageLoader struct {
	BaseImageLoader

	// MaxDimension downscales larger images before fingerprinting; 0 disables it
	MaxDimension int
}

// NewGoImageLoader creates a new pure-Go loader
func NewGoImageLoader(maxDimension int) *GoImageLoader {
	return &GoImageLoader{
		BaseImageLoader: BaseImageLoader{
			SupportedFormats: []FormatType{
				FormatJPEG,
				FormatPNG,
				FormatGIF,
				FormatBMP,
				FormatTIFF,
				FormatWEBP,
			},
		},
		MaxDimension: maxDimension,
	}
}

// LoadImage decodes the file and converts it to a ByteBuffer
func (l *GoImageLoader) LoadImage(path string) (*pixelbuffer.ByteBuffer, error) {
	img, err := tryGoImagePackages(path)
	if err != nil {
		return nil, newImageLoadError("failed to decode image", path, err)
	}

	bounds := img.Bounds()
	if w, h, scale := scaledSize(bounds.Dx(), bounds.Dy(), l.MaxDimension); scale {
		img = resize.Resize(uint(w), uint(h), img, resize.Lanczos3)
	}
	return FromImage(img)
}

// Try to load an image using Go's standard image packages
func tryGoImagePackages(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// FromImage converts a decoded image into a ByteBuffer. Gray images become a
// single channel, opaque images RGB and everything else non-premultiplied RGBA.
func FromImage(img image.Image) (*pixelbuffer.ByteBuffer, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	channels := 4
	switch {
	case img.ColorModel() == color.GrayModel || img.ColorModel() == color.Gray16Model:
		channels = 1
	case isOpaque(img):
		channels = 3
	}

	samples := make([]uint8, 0, width*height*channels)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.At(x, y)
			if channels == 1 {
				samples = append(samples, color.GrayModel.Convert(c).(color.Gray).Y)
				continue
			}
			n := color.NRGBAModel.Convert(c).(color.NRGBA)
			samples = append(samples, n.R, n.G, n.B)
			if channels == 4 {
				samples = append(samples, n.A)
			}
		}
	}

	return pixelbuffer.NewByteBuffer(uint32(height), uint32(width), channels, samples)
}

func isOpaque(img image.Image) bool {
	o, ok := img.(interface{ Opaque() bool })
	return ok && o.Opaque()
}
