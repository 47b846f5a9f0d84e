package cli

import (
	"fmt"

	"skymatch/internal/catalog"
	"skymatch/internal/extraction"

	"github.com/spf13/cobra"
)

func newMatchCmd(root *Root) *cobra.Command {
	return &cobra.Command{
		Use:   "match <pattern> <report|image>",
		Short: "Match one catalog pattern against detected objects",
		Long: `Look up a catalog pattern by a case-insensitive part of its name and search
for it among the objects of a detection report or image.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := root.matcher()
			if err != nil {
				return err
			}
			sc, err := root.loadScene(args[1])
			if err != nil {
				return err
			}
			resp, err := m.FindSpecific(args[0], extraction.Centroids(sc.Objects))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func newMatchAllCmd(root *Root) *cobra.Command {
	return &cobra.Command{
		Use:   "match-all <report|image>",
		Short: "Search for every catalog pattern",
		Long: `Match every catalog pattern against the objects of a detection report or
image and print the successful matches, best inlier ratio first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := root.matcher()
			if err != nil {
				return err
			}
			sc, err := root.loadScene(args[0])
			if err != nil {
				return err
			}
			matches, err := m.FindAll(cmd.Context(), extraction.Centroids(sc.Objects))
			if matches != nil {
				if werr := writeJSON(cmd.OutOrStdout(), matches); werr != nil {
					return werr
				}
			}
			return err
		},
	}
}

func newSketchCmd(root *Root) *cobra.Command {
	var canvas float64

	cmd := &cobra.Command{
		Use:   "sketch <report|image> <sketch.json>",
		Short: "Match a hand-drawn point pattern",
		Long: `Match a user-drawn pattern, given as a JSON array of {"x","y"} canvas
points, against the objects of a detection report or image.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sketch, err := readSketch(args[1])
			if err != nil {
				return err
			}
			m, err := root.matcher()
			if err != nil {
				return err
			}
			sc, err := root.loadScene(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("canvas") {
				canvas = root.cfg.Catalog.CanvasSize
			}
			resp, err := m.DrawAndMatch(extraction.Centroids(sc.Objects), sketch, canvas)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().Float64Var(&canvas, "canvas", catalog.DefaultCanvasSize, "side of the square drawing canvas in pixels")
	return cmd
}

func newCatalogCmd(root *Root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the pattern catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List catalog patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := root.loadCatalog(root.cfg.Catalog.Path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range cat.Entries() {
				fmt.Fprintf(out, "%3d  %-40s %d points\n", p.Index, p.Name, len(p.Points))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <pattern>",
		Short: "Print one pattern as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := root.loadCatalog(root.cfg.Catalog.Path)
			if err != nil {
				return err
			}
			p, ok := cat.Lookup(args[0])
			if !ok {
				return fmt.Errorf("no pattern matching %q", args[0])
			}
			return writeJSON(cmd.OutOrStdout(), p)
		},
	})

	return cmd
}
