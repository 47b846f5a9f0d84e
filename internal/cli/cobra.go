package cli

import (
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"skymatch/internal/config"
	"skymatch/internal/extraction"
	"skymatch/internal/report"
	"skymatch/internal/version"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root Cobra command
func NewRootCmd(cfg *config.Config, log *slog.Logger) *cobra.Command {
	return newRootCmd(NewRoot(cfg, log))
}

func newRootCmd(root *Root) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "skymatch",
		Short: "Skymatch finds stars in sky images and identifies constellations",
		Long: `Skymatch extracts point sources, galaxies and clusters from astronomical
images and matches named constellation patterns against them.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newDetectCmd(root))
	rootCmd.AddCommand(newMatchCmd(root))
	rootCmd.AddCommand(newMatchAllCmd(root))
	rootCmd.AddCommand(newSketchCmd(root))
	rootCmd.AddCommand(newStatsCmd(root))
	rootCmd.AddCommand(newCatalogCmd(root))
	rootCmd.AddCommand(newObjectsCmd(root))
	rootCmd.AddCommand(newQueryCmd(root))
	rootCmd.AddCommand(newConfigCmd(root))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

type detectOutput struct {
	Image   string                      `json:"image"`
	Width   int                         `json:"width"`
	Height  int                         `json:"height"`
	Count   int                         `json:"count"`
	Objects []extraction.DetectedObject `json:"objects"`
}

func newDetectCmd(root *Root) *cobra.Command {
	var (
		clusters   bool
		automated  bool
		adaptive   bool
		noise      float64
		minSize    float64
		region     string
		annotate   string
		reportPath string
		labels     bool
		store      bool
	)

	cmd := &cobra.Command{
		Use:   "detect <image>",
		Short: "Detect stars, galaxies and clusters in an image",
		Long: `Detect point sources in an image and print them as JSON. Optionally
restrict detection to a region, draw an annotated copy, write a detection
report or append the objects to the database.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			opts, err := root.cfg.DetectionOptions()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("clusters") {
				opts.DetectClusters = clusters
			}
			if flags.Changed("automated") {
				opts.Detection.Automated = automated
			}
			if flags.Changed("adaptive") {
				opts.Detection.AdaptiveFiltering = adaptive
			}
			if flags.Changed("noise") {
				opts.Detection.NoiseThreshold = noise
			}
			if flags.Changed("min-size") {
				opts.Detection.MinSize = minSize
			}

			img, err := extraction.LoadImage(path, root.cfg.Detection.MaxDimension)
			if err != nil {
				return err
			}

			det := root.detector(opts)
			var objs []extraction.DetectedObject
			if region != "" {
				tl, br, err := parseRegion(region)
				if err != nil {
					return err
				}
				objs, err = det.DetectRegion(img, tl, br)
				if err != nil {
					return err
				}
			} else {
				objs, err = det.Detect(img)
				if err != nil {
					return err
				}
			}
			b := img.Bounds()

			if annotate != "" {
				ann, err := root.cfg.AnnotateOptions()
				if err != nil {
					return err
				}
				if flags.Changed("labels") {
					ann.Labels = labels
				}
				if err := extraction.SaveAnnotated(annotate, img, objs, ann); err != nil {
					return fmt.Errorf("failed to save annotated image: %w", err)
				}
			}

			if reportPath != "" {
				rep := report.New(b.Dx(), b.Dy(), objs)
				rep.SetImage(reportPath, path)
				if err := rep.Save(reportPath); err != nil {
					return fmt.Errorf("failed to save report: %w", err)
				}
			}

			if store {
				st, err := root.openStore()
				if err != nil {
					return err
				}
				defer st.Close()
				if err := st.AppendObjects(cmd.Context(), path, objs, time.Now()); err != nil {
					return err
				}
			}

			root.log.Info("detected objects", "image", path, "count", len(objs))
			if objs == nil {
				objs = []extraction.DetectedObject{}
			}
			return writeJSON(cmd.OutOrStdout(), detectOutput{
				Image:   path,
				Width:   b.Dx(),
				Height:  b.Dy(),
				Count:   len(objs),
				Objects: objs,
			})
		},
	}

	cmd.Flags().BoolVar(&clusters, "clusters", false, "also detect diffuse clusters")
	cmd.Flags().BoolVar(&automated, "automated", false, "derive blur, minimum size and separation from the image")
	cmd.Flags().BoolVar(&adaptive, "adaptive", false, "use an adaptive local threshold")
	cmd.Flags().Float64Var(&noise, "noise", 0, "noise threshold (0-255)")
	cmd.Flags().Float64Var(&minSize, "min-size", 0, "minimum object area in pixels")
	cmd.Flags().StringVar(&region, "region", "", "detect inside x,y or x,y,x2,y2 only")
	cmd.Flags().StringVar(&annotate, "annotate", "", "write an annotated copy of the image")
	cmd.Flags().BoolVar(&labels, "labels", false, "label boxes in the annotated image")
	cmd.Flags().StringVar(&reportPath, "report", "", "write a detection report (.json)")
	cmd.Flags().BoolVar(&store, "store", false, "append the objects to the database")

	return cmd
}

// parseRegion reads "x,y" or "x,y,x2,y2".
func parseRegion(s string) (image.Point, *image.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 && len(parts) != 4 {
		return image.Point{}, nil, fmt.Errorf("invalid region %q: want x,y or x,y,x2,y2", s)
	}
	vals := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Point{}, nil, fmt.Errorf("invalid region %q: %w", s, err)
		}
		vals[i] = v
	}
	tl := image.Pt(vals[0], vals[1])
	if len(vals) == 2 {
		return tl, nil, nil
	}
	br := image.Pt(vals[2], vals[3])
	return tl, &br, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "skymatch", version.String())
			return nil
		},
	}
}
