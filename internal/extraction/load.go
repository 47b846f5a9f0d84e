package extraction

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// DefaultMaxDimension bounds the long side of loaded images.
const DefaultMaxDimension = 2000

// LoadImage opens and decodes the image at path, honoring EXIF orientation.
// When maxDim > 0 and either side exceeds it, the image is downscaled to fit.
func LoadImage(path string, maxDim int) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrDecode, path, err)
	}
	return fitWithin(img, maxDim), nil
}

// DecodeImage decodes an image from r, downscaling like LoadImage.
func DecodeImage(r io.Reader, maxDim int) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return fitWithin(img, maxDim), nil
}

func fitWithin(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	if maxDim <= 0 || (b.Dx() <= maxDim && b.Dy() <= maxDim) {
		return img
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Box)
}
