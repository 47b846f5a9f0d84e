package extraction

import (
	"fmt"
	"image"
	"runtime"
	"sync"

	"gocv.io/x/gocv"
)

// Raster is an immutable BGR image with its derived grayscale plane.
type Raster struct {
	Width  int
	Height int
	BGR    []uint8 // 3 bytes per pixel, row-major
	Gray   []uint8 // 1 byte per pixel, row-major
}

// NewRaster converts a Go image into BGR and grayscale planes.
func NewRaster(img image.Image) (*Raster, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	r := &Raster{Width: width, Height: height}
	if width == 0 || height == 0 {
		return r, nil
	}
	r.BGR = make([]uint8, width*height*3)

	// Parallelize by horizontal stripes
	numWorkers := runtime.NumCPU()
	rowsPerWorker := (height + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		startY := w * rowsPerWorker
		endY := min(startY+rowsPerWorker, height)
		if startY >= height {
			break
		}

		wg.Add(1)
		go func(yStart, yEnd int) {
			defer wg.Done()
			for y := yStart; y < yEnd; y++ {
				row := y * width * 3
				for x := 0; x < width; x++ {
					cr, cg, cb, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
					// OpenCV uses BGR format
					r.BGR[row+x*3+0] = uint8(cb >> 8)
					r.BGR[row+x*3+1] = uint8(cg >> 8)
					r.BGR[row+x*3+2] = uint8(cr >> 8)
				}
			}
		}(startY, endY)
	}
	wg.Wait()

	gray, err := grayPlane(r.BGR, width, height)
	if err != nil {
		return nil, err
	}
	r.Gray = gray
	return r, nil
}

// Empty reports whether the raster has no pixels.
func (r *Raster) Empty() bool {
	return r == nil || r.Width == 0 || r.Height == 0
}

func (r *Raster) grayMat() (gocv.Mat, error) {
	return matFromPlane(r.Height, r.Width, gocv.MatTypeCV8UC1, r.Gray)
}

// grayPlane converts a BGR plane to gray with OpenCV's weights.
func grayPlane(bgr []uint8, width, height int) ([]uint8, error) {
	src, err := matFromPlane(height, width, gocv.MatTypeCV8UC3, bgr)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	return gray.ToBytes(), nil
}

// matFromPlane copies a Go byte plane into a new Mat the caller must Close.
func matFromPlane(rows, cols int, mt gocv.MatType, data []uint8) (gocv.Mat, error) {
	view, err := gocv.NewMatFromBytes(rows, cols, mt, data)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to wrap %dx%d plane: %w", cols, rows, err)
	}
	defer view.Close()
	return view.Clone(), nil
}
