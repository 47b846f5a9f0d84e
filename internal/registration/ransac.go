package registration

import (
	"fmt"
	"math"
	"math/rand"

	"skymatch/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

// similarityFit is the outcome of one RANSAC run.
type similarityFit struct {
	Transform geometry.AffineTransform
	Inliers   []int // Indices into the correspondence arrays, ascending
	Refined   bool  // Least-squares refinement was accepted
}

// estimateSimilarity fits a similarity (rotation, uniform scale and
// translation) mapping src onto dst with RANSAC over 2-point samples. The
// iteration count adapts to the best inlier ratio seen so far.
func estimateSimilarity(src, dst []geometry.Point2D, threshold float64, maxIters int, confidence float64, rng *rand.Rand) (similarityFit, error) {
	n := len(src)
	if n != len(dst) {
		return similarityFit{}, fmt.Errorf("%w: point count mismatch %d vs %d", ErrFitFailed, n, len(dst))
	}
	if n < 2 {
		return similarityFit{}, fmt.Errorf("%w: need at least 2 points, got %d", ErrFitFailed, n)
	}

	thrSq := threshold * threshold
	var best similarityFit

	niters := maxIters
	for iter := 0; iter < niters; iter++ {
		i0 := rng.Intn(n)
		i1 := rng.Intn(n - 1)
		if i1 >= i0 {
			i1++
		}

		transform, err := similarityFrom2(src[i0], src[i1], dst[i0], dst[i1])
		if err != nil {
			continue
		}

		inliers := countInliers(transform, src, dst, thrSq)
		if len(inliers) > len(best.Inliers) {
			best = similarityFit{Transform: transform, Inliers: inliers}
			outlierRatio := float64(n-len(inliers)) / float64(n)
			niters = updateNumIters(confidence, outlierRatio, 2, niters)
		}
	}

	if len(best.Inliers) < 2 {
		return similarityFit{}, fmt.Errorf("%w: no non-degenerate sample", ErrFitFailed)
	}

	// Recompute using all inliers
	inlierSrc := make([]geometry.Point2D, len(best.Inliers))
	inlierDst := make([]geometry.Point2D, len(best.Inliers))
	for i, idx := range best.Inliers {
		inlierSrc[i] = src[idx]
		inlierDst[i] = dst[idx]
	}
	refined, err := similarityLeastSquares(inlierSrc, inlierDst)
	if err != nil || len(countInliers(refined, inlierSrc, inlierDst, thrSq)) != len(best.Inliers) {
		return best, nil
	}

	return similarityFit{
		Transform: refined,
		Inliers:   countInliers(refined, src, dst, thrSq),
		Refined:   true,
	}, nil
}

// countInliers returns the indices whose reprojection lies within the
// squared threshold.
func countInliers(t geometry.AffineTransform, src, dst []geometry.Point2D, thrSq float64) []int {
	var inliers []int
	for i := range src {
		if t.Apply(src[i]).DistanceSq(dst[i]) <= thrSq {
			inliers = append(inliers, i)
		}
	}
	return inliers
}

// updateNumIters returns the number of iterations needed to draw one
// outlier-free sample of modelPoints with the given confidence, never more
// than maxIters.
func updateNumIters(confidence, outlierRatio float64, modelPoints, maxIters int) int {
	confidence = math.Min(math.Max(confidence, 0), 1)
	outlierRatio = math.Min(math.Max(outlierRatio, 0), 1)

	num := math.Max(1-confidence, math.SmallestNonzeroFloat64)
	denom := 1 - math.Pow(1-outlierRatio, float64(modelPoints))
	if denom < math.SmallestNonzeroFloat64 {
		return 0
	}

	num = math.Log(num)
	denom = math.Log(denom)
	if denom >= 0 || -num >= float64(maxIters)*(-denom) {
		return maxIters
	}
	return int(math.Round(num / denom))
}

// similarityFrom2 computes the similarity taking s0→d0 and s1→d1.
func similarityFrom2(s0, s1, d0, d1 geometry.Point2D) (geometry.AffineTransform, error) {
	// Vector in source
	sx, sy := s1.X-s0.X, s1.Y-s0.Y
	// Vector in destination
	dx, dy := d1.X-d0.X, d1.Y-d0.Y

	srcLen := math.Hypot(sx, sy)
	dstLen := math.Hypot(dx, dy)
	if srcLen < 0.001 || dstLen < 0.001 {
		return geometry.AffineTransform{}, fmt.Errorf("%w: degenerate points", ErrFitFailed)
	}

	theta := math.Atan2(dy, dx) - math.Atan2(sy, sx)
	scale := dstLen / srcLen
	a := scale * math.Cos(theta)
	b := scale * math.Sin(theta)

	// d0 = M * s0 + t  =>  t = d0 - M * s0
	tx := d0.X - (a*s0.X - b*s0.Y)
	ty := d0.Y - (b*s0.X + a*s0.Y)

	return geometry.Similarity(a, b, tx, ty), nil
}

// similarityLeastSquares solves for [a b tx ty] in
//
//	x' = a*x - b*y + tx
//	y' = b*x + a*y + ty
//
// over all pairs.
func similarityLeastSquares(src, dst []geometry.Point2D) (geometry.AffineTransform, error) {
	n := len(src)
	if n < 2 {
		return geometry.AffineTransform{}, fmt.Errorf("%w: need at least 2 points", ErrFitFailed)
	}

	A := mat.NewDense(n*2, 4, nil)
	B := mat.NewVecDense(n*2, nil)
	for i := 0; i < n; i++ {
		x, y := src[i].X, src[i].Y

		A.Set(i*2, 0, x)
		A.Set(i*2, 1, -y)
		A.Set(i*2, 2, 1)
		B.SetVec(i*2, dst[i].X)

		A.Set(i*2+1, 0, y)
		A.Set(i*2+1, 1, x)
		A.Set(i*2+1, 3, 1)
		B.SetVec(i*2+1, dst[i].Y)
	}

	// Solve using QR decomposition
	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return geometry.AffineTransform{}, fmt.Errorf("%w: %v", ErrFitFailed, err)
	}

	return geometry.Similarity(params.AtVec(0), params.AtVec(1), params.AtVec(2), params.AtVec(3)), nil
}
