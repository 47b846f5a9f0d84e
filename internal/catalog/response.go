package catalog

import (
	"fmt"

	"skymatch/internal/registration"
	"skymatch/pkg/geometry"
)

// Reason explains the outcome of a match request.
type Reason string

const (
	ReasonMatched                 Reason = "matched"
	ReasonNotFound                Reason = "not_found"
	ReasonInsufficientPoints      Reason = "insufficient_points"
	ReasonNoMatch                 Reason = "no_match"
	ReasonInsufficientPointsDrawn Reason = "insufficient_points_drawn"
)

// SketchIndex is the pattern index reported for user-drawn patterns.
const SketchIndex = -1

// MatchResponse is the JSON result of a match request.
type MatchResponse struct {
	Success              bool              `json:"success"`
	Reason               Reason            `json:"reason"`
	Message              string            `json:"message"`
	PatternName          string            `json:"pattern_name,omitempty"`
	PatternIndex         int               `json:"pattern_index"`
	InliersCount         int               `json:"inliers_count"`
	TotalPoints          int               `json:"total_points"`
	InliersRatio         float64           `json:"inliers_ratio"`
	RotationAngle        float64           `json:"rotation_angle"`
	Scale                float64           `json:"scale"`
	TestedScale          float64           `json:"tested_scale"`
	Position             *geometry.Point2D `json:"position,omitempty"`
	TransformationMatrix *[2][3]float64    `json:"transformation_matrix,omitempty"`
	MatchedIndices       []int             `json:"matched_indices,omitempty"`
}

// failure builds an unsuccessful response.
func failure(reason Reason, name string, index, total int, format string, args ...any) MatchResponse {
	return MatchResponse{
		Reason:       reason,
		Message:      fmt.Sprintf(format, args...),
		PatternName:  name,
		PatternIndex: index,
		TotalPoints:  total,
	}
}

// success builds the response for res. The position is anchor mapped into
// the background frame.
func success(name string, index int, res *registration.MatchResult, anchor geometry.Point2D) MatchResponse {
	pos := res.Transform().Apply(anchor)
	matrix := res.Model.ToMatrix()
	return MatchResponse{
		Success:              true,
		Reason:               ReasonMatched,
		Message:              fmt.Sprintf("found %s with %d of %d points", name, res.InliersCount, res.TotalPoints),
		PatternName:          name,
		PatternIndex:         index,
		InliersCount:         res.InliersCount,
		TotalPoints:          res.TotalPoints,
		InliersRatio:         res.InliersRatio,
		RotationAngle:        res.RotationAngle,
		Scale:                res.FinalScale,
		TestedScale:          res.TestedScale,
		Position:             &pos,
		TransformationMatrix: &matrix,
		MatchedIndices:       res.MatchedIndices,
	}
}
