package extraction

import (
	"math"

	"skymatch/pkg/colorutil"
)

// Placeholder values of the fast extraction path.
const (
	placeholderCompactness = 1.0
	placeholderContrast    = 0.0
)

// ExtractProperties turns every foreground component of seg into a
// DetectedObject. In cluster mode every object is typed as a cluster.
func ExtractProperties(r *Raster, seg *Segmentation, clusterMode bool) []DetectedObject {
	n := len(seg.Stats)
	if n <= 1 || r.Empty() {
		return []DetectedObject{}
	}

	total := make([]float64, n)
	peak := make([]uint8, n)
	count := make([]float64, n)
	sumB := make([]float64, n)
	sumR := make([]float64, n)

	for i, l := range seg.Labels {
		if l <= 0 {
			continue
		}
		g := r.Gray[i]
		total[l] += float64(g)
		if g > peak[l] {
			peak[l] = g
		}
		count[l]++
		sumB[l] += float64(r.BGR[i*3])
		sumR[l] += float64(r.BGR[i*3+2])
	}

	objects := make([]DetectedObject, 0, n-1)
	for l := 1; l < n; l++ {
		s := seg.Stats[l]
		center := s.Rect().Center()

		color := colorutil.ClassNeutral
		if count[l] > 0 {
			color = colorutil.Classify(sumR[l]/count[l], sumB[l]/count[l])
		}

		objects = append(objects, DetectedObject{
			CentroidX:          center.X,
			CentroidY:          center.Y,
			Area:               float64(s.Area),
			Compactness:        placeholderCompactness,
			TotalBrightness:    total[l],
			PeakBrightness:     float64(peak[l]),
			Color:              color,
			BackgroundContrast: placeholderContrast,
			Type:               classify(s, clusterMode),
			BBox:               s.Rect(),
		})
	}
	return objects
}

// classify types a component by the elongation of its bounding box.
func classify(s ComponentStats, clusterMode bool) ObjectType {
	if clusterMode {
		return TypeCluster
	}
	w, h := float64(s.Width), float64(s.Height)
	if math.Max(w/h, h/w) > galaxyAspectRatio {
		return TypeGalaxy
	}
	return TypeStar
}
