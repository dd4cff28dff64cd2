package imageprocessor

import (
	"image"

	"gocv.io/x/gocv"

	"imagesearch/pixelbuffer"
)

// StandardImageLoader decodes common formats through OpenCV
type StandardImageLoader struct {
	BaseImageLoader

	// MaxDimension downscales larger images before fingerprinting; 0 disables it
	MaxDimension int
}

// NewStandardImageLoader creates a new OpenCV-backed loader
func NewStandardImageLoader(maxDimension int) *StandardImageLoader {
	return &StandardImageLoader{
		BaseImageLoader: BaseImageLoader{
			SupportedFormats: []FormatType{
				FormatJPEG,
				FormatPNG,
				FormatBMP,
				FormatTIFF,
				FormatWEBP,
			},
		},
		MaxDimension: maxDimension,
	}
}

// LoadImage reads the file with all of its channels and converts it to RGB(A)
func (l *StandardImageLoader) LoadImage(path string) (*pixelbuffer.ByteBuffer, error) {
	img := gocv.IMRead(path, gocv.IMReadUnchanged)
	if img.Empty() {
		img.Close()
		return nil, newImageLoadError("failed to load image", path, nil)
	}
	defer img.Close()

	if w, h, scale := scaledSize(img.Cols(), img.Rows(), l.MaxDimension); scale {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(img, &resized, image.Pt(w, h), 0, 0, gocv.InterpolationArea)
		return matToBuffer(resized, path)
	}
	return matToBuffer(img, path)
}

// matToBuffer copies an OpenCV matrix into a ByteBuffer, reordering BGR(A)
// to RGB(A) and scaling 16-bit samples down to 8 bits.
func matToBuffer(mat gocv.Mat, path string) (*pixelbuffer.ByteBuffer, error) {
	channels := mat.Channels()

	src := mat
	switch depth := mat.Type() & 7; depth {
	case gocv.MatTypeCV8U:
	case gocv.MatTypeCV16U:
		converted := gocv.NewMat()
		defer converted.Close()
		mat.ConvertToWithParams(&converted, eightBitType(channels), 1.0/257, 0)
		if converted.Empty() {
			return nil, newImageLoadError("failed to convert 16-bit image", path, nil)
		}
		src = converted
	default:
		return nil, newImageLoadError("unsupported sample depth", path, nil)
	}

	var code gocv.ColorConversionCode
	switch channels {
	case 1, 2:
		return bufferFromMat(src, channels)
	case 3:
		code = gocv.ColorBGRToRGB
	case 4:
		code = gocv.ColorBGRAToRGBA
	default:
		return nil, newImageLoadError("unsupported channel count", path, nil)
	}

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(src, &rgb, code)
	if rgb.Empty() {
		return nil, newImageLoadError("failed to convert colour order", path, nil)
	}
	return bufferFromMat(rgb, channels)
}

func bufferFromMat(mat gocv.Mat, channels int) (*pixelbuffer.ByteBuffer, error) {
	return pixelbuffer.NewByteBuffer(uint32(mat.Rows()), uint32(mat.Cols()), channels, mat.ToBytes())
}

func eightBitType(channels int) gocv.MatType {
	switch channels {
	case 1:
		return gocv.MatTypeCV8UC1
	case 2:
		return gocv.MatTypeCV8UC2
	case 3:
		return gocv.MatTypeCV8UC3
	default:
		return gocv.MatTypeCV8UC4
	}
}
