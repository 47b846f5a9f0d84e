package extraction

import "fmt"

// Tuned constants of the segmentation passes.
const (
	adaptiveBlockSize  = 51
	adaptiveOffset     = 5
	maxAutoBlur        = 25
	maxAutoClusterBlur = 101
	autoMinSizeDivisor = 1000
	clusterSizeDivisor = 5
	fallbackClusterMin = 5000
	brightnessFactor   = 5
	galaxyAspectRatio  = 1.2
)

// DetectionParams configures the point-source segmentation pass.
type DetectionParams struct {
	BlurRadius          int     // Background blur kernel size (forced odd)
	NoiseThreshold      float64 // Gray level below which pixels are never foreground
	Automated           bool    // Derive blur, min size and separation from the image
	AdaptiveFiltering   bool    // Adaptive local threshold instead of a global one
	SeparationThreshold int     // Erosion kernel size used to split touching sources
	MinSize             float64 // Minimum component area in pixels
	MaxComponents       int     // Keep at most this many components (largest first)
}

// DefaultParams returns the default point-source detection parameters.
func DefaultParams() DetectionParams {
	return DetectionParams{
		BlurRadius:          25,
		NoiseThreshold:      120,
		SeparationThreshold: 3,
		MinSize:             20,
		MaxComponents:       1000,
	}
}

// WithAutomated returns a copy of params with automated tuning switched.
func (p DetectionParams) WithAutomated(on bool) DetectionParams {
	p.Automated = on
	return p
}

// WithNoiseThreshold returns a copy of params with a new noise floor.
func (p DetectionParams) WithNoiseThreshold(v float64) DetectionParams {
	p.NoiseThreshold = v
	return p
}

// WithMinSize returns a copy of params with a new minimum component area.
func (p DetectionParams) WithMinSize(v float64) DetectionParams {
	p.MinSize = v
	return p
}

// WithMaxComponents returns a copy of params with a new component cap.
func (p DetectionParams) WithMaxComponents(n int) DetectionParams {
	p.MaxComponents = n
	return p
}

// Validate checks parameter ranges.
func (p DetectionParams) Validate() error {
	if p.NoiseThreshold < 0 || p.NoiseThreshold > 255 {
		return fmt.Errorf("%w: noise threshold %v outside [0,255]", ErrInvalidParams, p.NoiseThreshold)
	}
	if !p.Automated && p.BlurRadius < 1 {
		return fmt.Errorf("%w: blur radius %d", ErrInvalidParams, p.BlurRadius)
	}
	if !p.Automated && p.MinSize > 1 && p.SeparationThreshold < 1 {
		return fmt.Errorf("%w: separation threshold %d", ErrInvalidParams, p.SeparationThreshold)
	}
	if p.MinSize < 0 {
		return fmt.Errorf("%w: min size %v", ErrInvalidParams, p.MinSize)
	}
	if p.MaxComponents < 1 {
		return fmt.Errorf("%w: max components %d", ErrInvalidParams, p.MaxComponents)
	}
	return nil
}

// ClusterParams configures the diffuse-cluster pass.
type ClusterParams struct {
	Automated      bool    // Derive blur and min size from the image and star sizes
	BlurRadius     int     // Blur kernel size (forced odd)
	MinClusterSize float64 // Minimum cluster area in pixels
}

// DefaultClusterParams returns the default cluster detection parameters.
func DefaultClusterParams() ClusterParams {
	return ClusterParams{
		Automated:      true,
		BlurRadius:     101,
		MinClusterSize: fallbackClusterMin,
	}
}

// Validate checks parameter ranges.
func (p ClusterParams) Validate() error {
	if !p.Automated && p.BlurRadius < 1 {
		return fmt.Errorf("%w: cluster blur radius %d", ErrInvalidParams, p.BlurRadius)
	}
	if p.MinClusterSize < 0 {
		return fmt.Errorf("%w: min cluster size %v", ErrInvalidParams, p.MinClusterSize)
	}
	return nil
}

// autoBlur picks an odd kernel size from the short side of the image.
func autoBlur(width, height, divisor, limit int) int {
	return min(limit, (min(width, height)/divisor)|1)
}

func forceOdd(k int) int {
	if k%2 == 0 {
		return k + 1
	}
	return k
}
