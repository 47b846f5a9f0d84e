package extraction

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"
)

// Options bundles the parameters of a full detection run.
type Options struct {
	Detection      DetectionParams
	Clusters       ClusterParams
	DetectClusters bool
}

// DefaultOptions returns point-source detection without the cluster pass.
func DefaultOptions() Options {
	return Options{
		Detection: DefaultParams(),
		Clusters:  DefaultClusterParams(),
	}
}

// Detector runs the segmentation and extraction passes over whole images.
type Detector struct {
	opts Options
	log  *slog.Logger
}

// NewDetector returns a Detector. A nil logger uses slog.Default().
func NewDetector(opts Options, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{opts: opts, log: logger}
}

// Options returns the detector configuration.
func (d *Detector) Options() Options {
	return d.opts
}

// Detect extracts point sources from img, followed by clusters when enabled.
func (d *Detector) Detect(img image.Image) ([]DetectedObject, error) {
	start := time.Now()

	r, err := NewRaster(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}

	stars, err := Segment(r, d.opts.Detection)
	if err != nil {
		return nil, fmt.Errorf("segmentation failed: %w", err)
	}
	objects := ExtractProperties(r, stars, false)

	clusterCount := 0
	if d.opts.DetectClusters {
		clusters, err := FindClusters(r, stars, d.opts.Clusters)
		if err != nil {
			return nil, fmt.Errorf("cluster search failed: %w", err)
		}
		found := ExtractProperties(r, clusters, true)
		clusterCount = len(found)
		objects = append(objects, found...)
	}

	d.log.Debug("detection finished",
		"width", r.Width,
		"height", r.Height,
		"sources", stars.Count(),
		"clusters", clusterCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return objects, nil
}

// DetectRegion runs Detect on the pixels between topLeft and bottomRight
// (exclusive) and maps the results back to full-image coordinates. A nil
// bottomRight means the image's bottom-right corner.
func (d *Detector) DetectRegion(img image.Image, topLeft image.Point, bottomRight *image.Point) ([]DetectedObject, error) {
	bounds := img.Bounds()
	br := image.Point{bounds.Dx(), bounds.Dy()}
	if bottomRight != nil {
		br = *bottomRight
	}

	region := image.Rectangle{Min: topLeft, Max: br}.Add(bounds.Min).Intersect(bounds)
	if region.Empty() {
		return nil, fmt.Errorf("%w: %v to %v", ErrEmptyRegion, topLeft, br)
	}

	objects, err := d.Detect(imaging.Crop(img, region))
	if err != nil {
		return nil, err
	}

	dx, dy := region.Min.X-bounds.Min.X, region.Min.Y-bounds.Min.Y
	for i := range objects {
		objects[i].CentroidX += float64(dx)
		objects[i].CentroidY += float64(dy)
		objects[i].BBox = objects[i].BBox.Offset(dx, dy)
	}
	return objects, nil
}
