// Command detecttest runs source extraction on an image and prints the objects found.
package main

import (
	"flag"
	"fmt"
	"os"

	"skymatch/internal/extraction"
	"skymatch/internal/logging"
)

func main() {
	input := flag.String("i", "", "Path to input image")
	automated := flag.Bool("auto", false, "Derive detection parameters from the image")
	clusters := flag.Bool("clusters", false, "Also detect clusters")
	blur := flag.Int("blur", 25, "Background blur kernel size")
	noise := flag.Float64("noise", 120, "Noise threshold")
	maxDim := flag.Int("max", extraction.DefaultMaxDimension, "Downscale images larger than this")
	annotated := flag.String("o", "", "Write an annotated image to this path")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	if *input == "" {
		fmt.Println("Usage: detecttest -i <image> [-auto] [-clusters] [-o annotated.png]")
		os.Exit(1)
	}

	level := "info"
	if *verbose {
		level = "debug"
	}
	log := logging.New(os.Stderr, level, "text")

	img, err := extraction.LoadImage(*input, *maxDim)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	b := img.Bounds()
	fmt.Printf("Image: %dx%d\n", b.Dx(), b.Dy())

	opts := extraction.DefaultOptions()
	opts.Detection.BlurRadius = *blur
	opts.Detection.NoiseThreshold = *noise
	opts.Detection.Automated = *automated
	opts.DetectClusters = *clusters

	objs, err := extraction.NewDetector(opts, log).Detect(img)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n=== Detected %d objects ===\n", len(objs))
	for i, o := range objs {
		if i >= 25 {
			fmt.Printf("  ... %d more\n", len(objs)-i)
			break
		}
		fmt.Printf("  %-7s (%7.1f, %7.1f) area=%6.0f peak=%3.0f color=%s\n",
			o.Type, o.CentroidX, o.CentroidY, o.Area, o.PeakBrightness, o.Color)
	}

	if sum, ok := extraction.Summarize(objs, 0, 1); ok {
		fmt.Printf("\n=== Statistics ===\n")
		fmt.Printf("Distance: avg %.1f, min %.1f, max %.1f\n", sum.AvgDistance, sum.MinDistance, sum.MaxDistance)
		fmt.Printf("Area: mean %.1f ± %.1f\n", sum.AreaMean, sum.AreaStd)
		fmt.Printf("Brightness: mean %.1f ± %.1f\n", sum.BrightnessMean, sum.BrightnessStd)
		for t, frac := range sum.TypeDistribution {
			fmt.Printf("  %s: %.0f%%\n", t, frac*100)
		}
	}

	if *annotated != "" {
		if err := extraction.SaveAnnotated(*annotated, img, objs, extraction.DefaultAnnotateOptions()); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save annotated image: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nAnnotated image written to %s\n", *annotated)
	}
}
