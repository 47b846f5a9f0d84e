package extraction

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// Segment builds the point-source foreground mask of r and labels its
// connected components. An image without sources yields an empty
// Segmentation, not an error.
func Segment(r *Raster, params DetectionParams) (*Segmentation, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if r.Empty() {
		return emptySegmentation(r.Width, r.Height), nil
	}
	width, height := r.Width, r.Height

	gray, err := r.grayMat()
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	blur := params.BlurRadius
	if params.Automated {
		blur = autoBlur(width, height, 10, maxAutoBlur)
	}
	blur = forceOdd(blur)

	// Background estimate from a large blur
	background := gocv.NewMat()
	defer background.Close()
	gocv.GaussianBlur(gray, &background, image.Point{blur, blur}, 0, 0, gocv.BorderDefault)

	// Saturating subtractions: foreground = min(gray, background)
	residual := gocv.NewMat()
	defer residual.Close()
	gocv.Subtract(gray, background, &residual)

	foreground := gocv.NewMat()
	defer foreground.Close()
	gocv.Subtract(gray, residual, &foreground)

	// Images holding only tiny sources can lose everything above; fall back to gray
	source := foreground
	if float64(maxValue(foreground.ToBytes())) < params.NoiseThreshold {
		source = gray
	}

	binary := gocv.NewMat()
	defer binary.Close()
	if params.Automated || params.AdaptiveFiltering {
		gocv.AdaptiveThreshold(source, &binary, 255, gocv.AdaptiveThresholdGaussian,
			gocv.ThresholdBinary, adaptiveBlockSize, adaptiveOffset)
	} else {
		gocv.Threshold(source, &binary, float32(params.NoiseThreshold), 255, gocv.ThresholdBinary)
	}

	mask := binary.ToBytes()
	for i, g := range r.Gray {
		if float64(g) < params.NoiseThreshold {
			mask[i] = 0
		}
	}

	minSize := params.MinSize
	separation := params.SeparationThreshold
	if params.Automated {
		pre := segmentationOf(mask, width, height)
		if pre.Count() > 0 && float64(minArea(pre)) < minSize {
			minSize = 1
		}
		separation = max(3, int(math.Round(math.Sqrt(minSize))))
	}

	if minSize > 1 {
		mask, err = erode(mask, width, height, separation)
	} else {
		mask, err = brightMask(gray, r.Gray)
	}
	if err != nil {
		return nil, err
	}

	seg := segmentationOf(mask, width, height)
	if params.Automated {
		minSize = 1
		if seg.Count() > 0 {
			minSize = math.Max(1, float64(seg.MaxArea())/autoMinSizeDivisor)
		}
	}

	seg = filterComponents(seg, func(s ComponentStats) bool {
		return float64(s.Area) >= minSize
	})

	if seg.Count() > params.MaxComponents {
		seg = keepLargest(seg, params.MaxComponents)
	}
	return seg, nil
}

// erode splits touching sources with an elliptical kernel of size k.
func erode(mask []uint8, width, height, k int) ([]uint8, error) {
	src, err := matFromPlane(height, width, gocv.MatTypeCV8UC1, mask)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{k, k})
	defer kernel.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Erode(src, &dst, kernel)
	return dst.ToBytes(), nil
}

// brightMask re-binarizes the raw gray image at a multiple of its mean
// nonzero brightness. It recovers point sources too small to survive
// erosion.
func brightMask(gray gocv.Mat, plane []uint8) ([]uint8, error) {
	var sum, n float64
	for _, g := range plane {
		if g > 0 {
			sum += float64(g)
			n++
		}
	}
	if n == 0 {
		return make([]uint8, len(plane)), nil
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Threshold(gray, &dst, float32(brightnessFactor*sum/n), 255, gocv.ThresholdBinary)
	return dst.ToBytes(), nil
}

func maxValue(plane []uint8) uint8 {
	var m uint8
	for _, v := range plane {
		if v > m {
			m = v
		}
	}
	return m
}

func minArea(seg *Segmentation) int {
	best := math.MaxInt
	for i := 1; i < len(seg.Stats); i++ {
		best = min(best, seg.Stats[i].Area)
	}
	return best
}
