// Package extraction finds light sources in astronomical images and turns
// them into typed object records.
package extraction

import (
	"errors"

	"skymatch/pkg/colorutil"
	"skymatch/pkg/geometry"
)

var (
	// ErrInvalidParams is returned when detection parameters are out of range.
	ErrInvalidParams = errors.New("invalid detection parameters")
	// ErrDecode is returned when an image cannot be opened or decoded.
	ErrDecode = errors.New("cannot decode image")
	// ErrEmptyRegion is returned when a crop region has no pixels inside the image.
	ErrEmptyRegion = errors.New("empty image region")
)

// ObjectType classifies a detected source.
type ObjectType string

const (
	TypeStar    ObjectType = "star"
	TypeGalaxy  ObjectType = "galaxy"
	TypeCluster ObjectType = "cluster"
)

// Valid reports whether t is one of the fixed object types.
func (t ObjectType) Valid() bool {
	switch t {
	case TypeStar, TypeGalaxy, TypeCluster:
		return true
	}
	return false
}

// DetectedObject is one extracted source. Color and Type are empty only for
// records that came from external data without them.
type DetectedObject struct {
	CentroidX          float64          `json:"centroid_x"`
	CentroidY          float64          `json:"centroid_y"`
	Area               float64          `json:"area"`
	Compactness        float64          `json:"compactness"`
	TotalBrightness    float64          `json:"total_brightness"`
	PeakBrightness     float64          `json:"peak_brightness"`
	Color              colorutil.Class  `json:"color,omitempty"`
	BackgroundContrast float64          `json:"background_contrast"`
	Type               ObjectType       `json:"obj_type,omitempty"`
	BBox               geometry.RectInt `json:"bbox"`
}

// Centroid returns the object position as a point.
func (o DetectedObject) Centroid() geometry.Point2D {
	return geometry.Point2D{X: o.CentroidX, Y: o.CentroidY}
}

// Centroids collects object positions in order, for use as a background
// point set.
func Centroids(objs []DetectedObject) []geometry.Point2D {
	pts := make([]geometry.Point2D, len(objs))
	for i, o := range objs {
		pts[i] = o.Centroid()
	}
	return pts
}

// ComponentStats holds the bounding box and pixel count of one label.
type ComponentStats struct {
	Left   int
	Top    int
	Width  int
	Height int
	Area   int
}

// Rect returns the bounding box as a geometry rectangle.
func (s ComponentStats) Rect() geometry.RectInt {
	return geometry.RectInt{X: s.Left, Y: s.Top, Width: s.Width, Height: s.Height}
}

// Segmentation is a foreground mask with its label raster and per-label
// stats. Stats[0] describes the background.
type Segmentation struct {
	Width  int
	Height int
	Mask   []uint8 // 0 or 255
	Labels []int32 // 0 is background
	Stats  []ComponentStats
}

// Count returns the number of foreground components.
func (s *Segmentation) Count() int {
	if s == nil || len(s.Stats) == 0 {
		return 0
	}
	return len(s.Stats) - 1
}

// MaxArea returns the largest foreground component area, or 0.
func (s *Segmentation) MaxArea() int {
	best := 0
	for i := 1; i < len(s.Stats); i++ {
		if s.Stats[i].Area > best {
			best = s.Stats[i].Area
		}
	}
	return best
}
