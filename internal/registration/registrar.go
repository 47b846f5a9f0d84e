package registration

import (
	"errors"
	"log/slog"
	"math"
	"math/rand"

	"skymatch/pkg/geometry"
)

// Registrar searches a background point set for a pattern over a grid of
// scales and rotations, fitting a similarity per grid cell.
type Registrar struct {
	params Params
	log    *slog.Logger
}

// NewRegistrar returns a Registrar. Parameters are checked on every Match.
// A nil logger uses slog.Default().
func NewRegistrar(params Params, logger *slog.Logger) *Registrar {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registrar{params: params, log: logger}
}

// Params returns the registrar configuration.
func (r *Registrar) Params() Params {
	return r.params
}

// Match finds the best placement of pattern in background. A nil result
// with a nil error means no hypothesis reached MinInliers, or one of the
// sets has fewer than 3 points.
func (r *Registrar) Match(pattern, background []geometry.Point2D) (*MatchResult, error) {
	if err := r.params.Validate(); err != nil {
		return nil, err
	}
	if len(pattern) < 3 || len(background) < 3 {
		return nil, nil
	}

	var best *MatchResult
	tried := 0
	for _, scale := range r.params.scales() {
		for _, angle := range r.params.angles() {
			tried++
			res, err := r.hypothesis(pattern, background, scale, angle)
			if err != nil {
				if errors.Is(err, ErrFitFailed) {
					continue
				}
				return nil, err
			}
			if res == nil || res.InliersCount < r.params.MinInliers {
				continue
			}
			if best == nil || res.InliersCount > best.InliersCount {
				best = res
			}
		}
	}

	if best == nil {
		r.log.Debug("no match", "pattern", len(pattern), "background", len(background), "hypotheses", tried)
		return nil, nil
	}
	r.log.Debug("match",
		"inliers", best.InliersCount,
		"pattern", len(pattern),
		"angle", best.RotationAngle,
		"scale", best.TestedScale,
		"refined", best.Refined,
	)
	return best, nil
}

// hypothesis evaluates one grid cell. A nil result means too few nearest
// neighbors survived the distance gate.
func (r *Registrar) hypothesis(pattern, background []geometry.Point2D, scale, angle float64) (*MatchResult, error) {
	grid := geometry.RotationDegrees(angle).Compose(geometry.UniformScale(scale))
	transformed := grid.ApplyAll(pattern)

	// Nearest background neighbor of every transformed pattern point
	thrSq := r.params.DistanceThreshold * r.params.DistanceThreshold
	var patIdx, bgIdx []int
	for i, p := range transformed {
		j, d := nearest(p, background)
		if d <= thrSq {
			patIdx = append(patIdx, i)
			bgIdx = append(bgIdx, j)
		}
	}
	if len(patIdx) < 3 || len(patIdx) < r.params.MinInliers {
		return nil, nil
	}

	src := make([]geometry.Point2D, len(patIdx))
	dst := make([]geometry.Point2D, len(patIdx))
	for k := range patIdx {
		src[k] = transformed[patIdx[k]]
		dst[k] = background[bgIdx[k]]
	}

	// Fresh generator per cell keeps results independent of search order
	rng := rand.New(rand.NewSource(r.params.Seed))
	fit, err := estimateSimilarity(src, dst, r.params.DistanceThreshold, r.params.MaxIterations, r.params.Confidence, rng)
	if err != nil {
		return nil, err
	}

	res := &MatchResult{
		Model:          fit.Transform,
		RotationAngle:  angle,
		TestedScale:    scale,
		FinalScale:     fit.Transform.ScaleFactor(),
		InliersCount:   len(fit.Inliers),
		TotalPoints:    len(pattern),
		InliersRatio:   float64(len(fit.Inliers)) / float64(len(pattern)),
		MatchedIndices: make([]int, len(fit.Inliers)),
		PatternIndices: make([]int, len(fit.Inliers)),
		Refined:        fit.Refined,
	}
	for k, c := range fit.Inliers {
		res.MatchedIndices[k] = bgIdx[c]
		res.PatternIndices[k] = patIdx[c]
	}
	return res, nil
}

// nearest returns the index of the closest point in set and its squared
// distance. Ties keep the lowest index.
func nearest(p geometry.Point2D, set []geometry.Point2D) (int, float64) {
	best, bestD := -1, math.Inf(1)
	for j, q := range set {
		if d := p.DistanceSq(q); d < bestD {
			best, bestD = j, d
		}
	}
	return best, bestD
}
