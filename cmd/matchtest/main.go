// Command matchtest plants a catalog pattern in a random star field and
// checks that registration recovers the transform.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"skymatch/internal/catalog"
	"skymatch/internal/logging"
	"skymatch/internal/registration"
	"skymatch/pkg/geometry"
)

func main() {
	catPath := flag.String("c", "", "Path to catalog JSON")
	name := flag.String("p", "orion", "Pattern to plant")
	scale := flag.Float64("s", 2.0, "Scale of the planted pattern")
	angle := flag.Float64("a", 45, "Rotation of the planted pattern in degrees")
	decoys := flag.Int("n", 200, "Number of random background stars")
	noise := flag.Float64("jitter", 1.0, "Position noise in pixels")
	seed := flag.Int64("seed", 1, "Random seed")
	flag.Parse()

	if *catPath == "" {
		fmt.Println("Usage: matchtest -c <catalog.json> [-p <pattern>] [-s scale] [-a angle]")
		os.Exit(1)
	}

	cat, err := catalog.Load(*catPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load catalog: %v\n", err)
		os.Exit(1)
	}
	p, ok := cat.Lookup(*name)
	if !ok {
		fmt.Fprintf(os.Stderr, "No pattern matching %q\n", *name)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))
	truth := geometry.RotationDegrees(*angle).Compose(geometry.UniformScale(*scale))
	truth.TX, truth.TY = 600, 400

	var background []geometry.Point2D
	for _, pt := range truth.ApplyAll(p.Points) {
		background = append(background, geometry.Point2D{
			X: pt.X + rng.NormFloat64() * *noise,
			Y: pt.Y + rng.NormFloat64() * *noise,
		})
	}
	for i := 0; i < *decoys; i++ {
		background = append(background, geometry.Point2D{X: rng.Float64() * 2000, Y: rng.Float64() * 1500})
	}
	rng.Shuffle(len(background), func(i, j int) { background[i], background[j] = background[j], background[i] })

	fmt.Printf("=== Planted %s (%d points) among %d stars ===\n", p.Name, len(p.Points), len(background))
	fmt.Printf("True scale: %.3f, rotation: %.1f°\n", *scale, *angle)

	log := logging.New(os.Stderr, "info", "text")
	m := catalog.NewMatcher(cat, registration.DefaultParams(), 0, log)

	start := time.Now()
	resp, err := m.FindSpecific(p.Name, background)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Match failed: %v\n", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)

	if !resp.Success {
		fmt.Printf("\nNo match: %s (%s)\n", resp.Message, elapsed)
		os.Exit(2)
	}

	fmt.Printf("\n=== Match (%s) ===\n", elapsed)
	fmt.Printf("Inliers: %d/%d (%.0f%%)\n", resp.InliersCount, resp.TotalPoints, resp.InliersRatio*100)
	fmt.Printf("Grid rotation: %.1f°, grid scale: %.3f, refined scale: %.3f\n",
		resp.RotationAngle, resp.TestedScale, resp.Scale)
	fmt.Printf("Recovered scale: %.3f\n", resp.TestedScale*resp.Scale)
	if resp.Position != nil {
		want := truth.Apply(geometry.Centroid(p.Points))
		fmt.Printf("Position: (%.1f, %.1f), expected (%.1f, %.1f)\n",
			resp.Position.X, resp.Position.Y, want.X, want.Y)
	}
}
