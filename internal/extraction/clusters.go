package extraction

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// FindClusters runs a second segmentation pass over r with the point
// sources of stars blacked out, looking for large diffuse regions.
func FindClusters(r *Raster, stars *Segmentation, params ClusterParams) (*Segmentation, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if r.Empty() {
		return emptySegmentation(r.Width, r.Height), nil
	}
	if stars.Width != r.Width || stars.Height != r.Height {
		return nil, fmt.Errorf("star mask is %dx%d but image is %dx%d",
			stars.Width, stars.Height, r.Width, r.Height)
	}
	width, height := r.Width, r.Height

	noStars := make([]uint8, len(r.BGR))
	copy(noStars, r.BGR)
	for i, m := range stars.Mask {
		if m == 255 {
			noStars[i*3], noStars[i*3+1], noStars[i*3+2] = 0, 0, 0
		}
	}
	grayBytes, err := grayPlane(noStars, width, height)
	if err != nil {
		return nil, err
	}
	gray, err := matFromPlane(height, width, gocv.MatTypeCV8UC1, grayBytes)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	blur := params.BlurRadius
	if params.Automated {
		blur = autoBlur(width, height, 25, maxAutoClusterBlur)
	}
	blur = forceOdd(blur)

	// Huge blur to merge diffuse light into blobs
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{blur, blur}, 0, 0, gocv.BorderDefault)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(blurred, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)

	minCluster := params.MinClusterSize
	if params.Automated {
		minCluster = fallbackClusterMin
		if stars.Count() > 0 {
			minCluster = float64(stars.MaxArea()) / clusterSizeDivisor
		}
	}

	seg := segmentationOf(binary.ToBytes(), width, height)
	return filterComponents(seg, func(s ComponentStats) bool {
		return float64(s.Area) >= minCluster
	}), nil
}
