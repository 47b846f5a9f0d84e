package registration

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"skymatch/pkg/geometry"
)

func TestSimilarityFrom2(t *testing.T) {
	want := geometry.Similarity(2*math.Cos(0.5), 2*math.Sin(0.5), 7, -3)
	s0, s1 := geometry.Point2D{X: 1, Y: 2}, geometry.Point2D{X: 4, Y: -1}
	got, err := similarityFrom2(s0, s1, want.Apply(s0), want.Apply(s1))
	if err != nil {
		t.Fatalf("similarityFrom2: %v", err)
	}
	for _, p := range []geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 5}, {X: -3, Y: 8}} {
		if d := got.Apply(p).Distance(want.Apply(p)); d > 1e-9 {
			t.Errorf("point %v off by %v", p, d)
		}
	}
	if !near(got.ScaleFactor(), 2, 1e-12) {
		t.Errorf("scale = %v, want 2", got.ScaleFactor())
	}

	if _, err := similarityFrom2(s0, s0, s0, s1); !errors.Is(err, ErrFitFailed) {
		t.Errorf("coincident source points: expected ErrFitFailed, got %v", err)
	}
}

func TestSimilarityLeastSquares(t *testing.T) {
	truth := geometry.Similarity(0.8, -0.6, 12, 4)
	rng := rand.New(rand.NewSource(5))
	var src, dst []geometry.Point2D
	for i := 0; i < 30; i++ {
		p := geometry.Point2D{X: rng.Float64() * 100, Y: rng.Float64() * 100}
		q := truth.Apply(p)
		q.X += (rng.Float64() - 0.5) * 0.1
		q.Y += (rng.Float64() - 0.5) * 0.1
		src = append(src, p)
		dst = append(dst, q)
	}
	got, err := similarityLeastSquares(src, dst)
	if err != nil {
		t.Fatalf("similarityLeastSquares: %v", err)
	}
	if !near(got.A, truth.A, 1e-2) || !near(got.C, truth.C, 1e-2) ||
		!near(got.TX, truth.TX, 0.1) || !near(got.TY, truth.TY, 0.1) {
		t.Errorf("got %+v, want about %+v", got, truth)
	}
	if got.B != -got.C || got.A != got.D {
		t.Errorf("result is not a similarity: %+v", got)
	}
}

func TestEstimateSimilarityRejectsOutliers(t *testing.T) {
	truth := geometry.Similarity(1.5, 0, -20, 30)
	rng := rand.New(rand.NewSource(9))
	var src, dst []geometry.Point2D
	for i := 0; i < 20; i++ {
		p := geometry.Point2D{X: rng.Float64() * 200, Y: rng.Float64() * 200}
		src = append(src, p)
		if i%4 == 3 {
			dst = append(dst, geometry.Point2D{X: rng.Float64() * 1000, Y: -500})
		} else {
			dst = append(dst, truth.Apply(p))
		}
	}

	fit, err := estimateSimilarity(src, dst, 1, 1000, 0.99, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("estimateSimilarity: %v", err)
	}
	if len(fit.Inliers) != 15 {
		t.Errorf("inliers = %d, want 15", len(fit.Inliers))
	}
	for _, i := range fit.Inliers {
		if i%4 == 3 {
			t.Errorf("outlier %d accepted", i)
		}
	}
	if !fit.Refined {
		t.Error("exact inliers should accept the refinement")
	}
	if !near(fit.Transform.ScaleFactor(), 1.5, 1e-9) {
		t.Errorf("scale = %v", fit.Transform.ScaleFactor())
	}
}

func TestEstimateSimilarityDegenerate(t *testing.T) {
	same := []geometry.Point2D{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}}
	spread := []geometry.Point2D{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 0, Y: 5}}
	_, err := estimateSimilarity(spread, same, 3, 50, 0.99, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrFitFailed) {
		t.Errorf("expected ErrFitFailed, got %v", err)
	}
}

func TestUpdateNumIters(t *testing.T) {
	if got := updateNumIters(0.99, 0, 2, 1000); got != 0 {
		t.Errorf("no outliers: got %d, want 0", got)
	}
	// log(0.01)/log(1-0.25) = 16.008...
	if got := updateNumIters(0.99, 0.5, 2, 1000); got != 16 {
		t.Errorf("half outliers: got %d, want 16", got)
	}
	if got := updateNumIters(0.99, 0.999, 2, 1000); got != 1000 {
		t.Errorf("mostly outliers: got %d, want cap", got)
	}
}
