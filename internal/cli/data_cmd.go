package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"skymatch/internal/extraction"
	"skymatch/internal/storage"
	"skymatch/pkg/colorutil"

	"github.com/spf13/cobra"
)

func newStatsCmd(root *Root) *cobra.Command {
	var (
		samples int
		seed    int64
	)

	cmd := &cobra.Command{
		Use:   "stats <report|image>",
		Short: "Summarize spacing, size and brightness of detected objects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := root.loadScene(args[0])
			if err != nil {
				return err
			}
			sum, ok := extraction.Summarize(sc.Objects, samples, seed)
			if !ok {
				return errTooFewObjects
			}
			return writeJSON(cmd.OutOrStdout(), sum)
		},
	}

	cmd.Flags().IntVar(&samples, "samples", extraction.DefaultPairSamples, "number of random object pairs for distance statistics")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed for pair sampling")
	return cmd
}

func newObjectsCmd(root *Root) *cobra.Command {
	var (
		img     string
		objType string
		col     string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "objects",
		Short: "List stored objects, brightest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := storage.Filter{
				Image: img,
				Type:  extraction.ObjectType(objType),
				Color: colorutil.Class(col),
				Limit: limit,
			}
			if objType != "" && !f.Type.Valid() {
				return fmt.Errorf("unknown object type %q", objType)
			}
			if col != "" && !f.Color.Valid() {
				return fmt.Errorf("unknown color %q", col)
			}

			st, err := root.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			objs, err := st.Objects(cmd.Context(), f)
			if err != nil {
				return err
			}
			if objs == nil {
				objs = []extraction.DetectedObject{}
			}
			return writeJSON(cmd.OutOrStdout(), objs)
		},
	}

	cmd.Flags().StringVar(&img, "image", "", "only objects from this image path")
	cmd.Flags().StringVar(&objType, "type", "", "only objects of this type (star|galaxy|cluster)")
	cmd.Flags().StringVar(&col, "color", "", "only objects of this color class (red|blue|neutral)")
	cmd.Flags().IntVar(&limit, "limit", storage.DefaultQueryLimit, "maximum number of objects")
	return cmd
}

func newQueryCmd(root *Root) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a read-only SQL query against the object database",
		Long: `Run a SELECT or WITH statement against the space_objects table. Statements
that modify the database are rejected and a LIMIT is added when missing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := root.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			res, err := st.QueryReadOnly(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, strings.Join(res.Columns, "\t"))
			for _, row := range res.Rows {
				cells := make([]string, len(res.Columns))
				for i, c := range res.Columns {
					cells[i] = fmt.Sprint(row[c])
				}
				fmt.Fprintln(tw, strings.Join(cells, "\t"))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", storage.DefaultQueryLimit, "row limit added when the query has none")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}
