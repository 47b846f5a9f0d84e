// Package registration finds a point pattern inside a larger point set with
// a discretized rotation/scale search and a RANSAC similarity fit.
package registration

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrInvalidParams is returned when matching parameters are out of range.
	ErrInvalidParams = errors.New("invalid matching parameters")
	// ErrFitFailed is returned when no similarity can be estimated from a
	// correspondence set.
	ErrFitFailed = errors.New("similarity fit failed")
)

// ScaleRange bounds the pattern scales tried by the search.
type ScaleRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Params configures a Registrar.
type Params struct {
	DistanceThreshold float64    // Max reprojection distance in pixels
	MinInliers        int        // Inliers required to accept a match
	MaxIterations     int        // RANSAC iteration cap per hypothesis
	Confidence        float64    // RANSAC success probability, in (0,1)
	RotationStep      float64    // Degrees between tried rotations
	ScaleRange        ScaleRange // Tried pattern scales
	ScaleSteps        int        // Number of scales across ScaleRange
	Seed              int64      // RANSAC sampling seed
}

// DefaultParams returns the default matching parameters.
func DefaultParams() Params {
	return Params{
		DistanceThreshold: 50,
		MinInliers:        3,
		MaxIterations:     1000,
		Confidence:        0.99,
		RotationStep:      15,
		ScaleRange:        ScaleRange{Min: 0.3, Max: 3.0},
		ScaleSteps:        8,
		Seed:              1,
	}
}

// WithDistanceThreshold returns a copy of p with a new inlier threshold.
func (p Params) WithDistanceThreshold(v float64) Params {
	p.DistanceThreshold = v
	return p
}

// WithScaleRange returns a copy of p searching steps scales in [min,max].
func (p Params) WithScaleRange(min, max float64, steps int) Params {
	p.ScaleRange = ScaleRange{Min: min, Max: max}
	p.ScaleSteps = steps
	return p
}

// WithRotationStep returns a copy of p with a new angular step in degrees.
func (p Params) WithRotationStep(deg float64) Params {
	p.RotationStep = deg
	return p
}

// WithMinInliers returns a copy of p with a new acceptance count.
func (p Params) WithMinInliers(n int) Params {
	p.MinInliers = n
	return p
}

// WithSeed returns a copy of p with a new sampling seed.
func (p Params) WithSeed(seed int64) Params {
	p.Seed = seed
	return p
}

// Validate checks parameter ranges.
func (p Params) Validate() error {
	switch {
	case p.DistanceThreshold <= 0:
		return fmt.Errorf("%w: distance threshold %v", ErrInvalidParams, p.DistanceThreshold)
	case p.ScaleRange.Min <= 0 || p.ScaleRange.Min >= p.ScaleRange.Max:
		return fmt.Errorf("%w: scale range [%v,%v]", ErrInvalidParams, p.ScaleRange.Min, p.ScaleRange.Max)
	case p.ScaleSteps < 1:
		return fmt.Errorf("%w: scale steps %d", ErrInvalidParams, p.ScaleSteps)
	case p.RotationStep <= 0 || p.RotationStep > 360:
		return fmt.Errorf("%w: rotation step %v", ErrInvalidParams, p.RotationStep)
	case p.Confidence <= 0 || p.Confidence >= 1:
		return fmt.Errorf("%w: confidence %v", ErrInvalidParams, p.Confidence)
	case p.MaxIterations < 1:
		return fmt.Errorf("%w: max iterations %d", ErrInvalidParams, p.MaxIterations)
	case p.MinInliers < 1:
		return fmt.Errorf("%w: min inliers %d", ErrInvalidParams, p.MinInliers)
	}
	return nil
}

// scales returns ScaleSteps evenly spaced scales. One step yields Min.
func (p Params) scales() []float64 {
	if p.ScaleSteps == 1 {
		return []float64{p.ScaleRange.Min}
	}
	return floats.Span(make([]float64, p.ScaleSteps), p.ScaleRange.Min, p.ScaleRange.Max)
}

// angles returns the tried rotations in degrees, all below 360.
func (p Params) angles() []float64 {
	var out []float64
	for k := 0; ; k++ {
		a := float64(k) * p.RotationStep
		if a >= 360 {
			return out
		}
		out = append(out, a)
	}
}
