package registration

import "skymatch/pkg/geometry"

// MatchResult describes the best placement of a pattern in a background
// point set.
type MatchResult struct {
	// Model maps the scaled and rotated pattern onto the background.
	Model          geometry.AffineTransform
	RotationAngle  float64 // Degrees, from the search grid
	TestedScale    float64 // Grid scale of the winning hypothesis
	FinalScale     float64 // Scale factor of Model alone
	InliersCount   int
	TotalPoints    int     // Pattern size
	InliersRatio   float64 // InliersCount / TotalPoints
	MatchedIndices []int   // Background index of each inlier, in pattern order
	PatternIndices []int   // Pattern index of each inlier, ascending
	Refined        bool    // Model came from the least-squares refinement
}

// Transform returns the full raw-pattern → background mapping: grid scale,
// then grid rotation, then Model.
func (m *MatchResult) Transform() geometry.AffineTransform {
	return composeMatch(m.Model, m.RotationAngle, m.TestedScale)
}

// Apply maps raw pattern coordinates into the background frame.
func (m *MatchResult) Apply(points []geometry.Point2D) []geometry.Point2D {
	return m.Transform().ApplyAll(points)
}

// Scale is the overall pattern → background scale.
func (m *MatchResult) Scale() float64 {
	return m.TestedScale * m.FinalScale
}

// ApplyTransform maps points through a stored match: scale, rotation in
// degrees, then the 2x3 matrix.
func ApplyTransform(points []geometry.Point2D, matrix [2][3]float64, angle, scale float64) []geometry.Point2D {
	return composeMatch(geometry.FromMatrix(matrix), angle, scale).ApplyAll(points)
}

func composeMatch(model geometry.AffineTransform, angle, scale float64) geometry.AffineTransform {
	return model.Compose(geometry.RotationDegrees(angle).Compose(geometry.UniformScale(scale)))
}
