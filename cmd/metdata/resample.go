package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/kkartas/metdata/internal/export"
	"github.com/kkartas/metdata/internal/resample"
	"github.com/kkartas/metdata/internal/schema"
)

func newResampleCmd() *cobra.Command {
	var (
		inPath  string
		outPath string
		freq    time.Duration
		fill    bool
	)
	cmd := &cobra.Command{
		Use:   "resample",
		Short: "Aggregate a canonical table to a coarser time step",
		Long: `Aggregate a canonical table to a coarser time step.

Values aggregate by each field's rule (mean, or sum for rainfall) and QC
flags propagate by logical OR. With --fill the table is instead reindexed
onto a regular grid at the given frequency, inserting missing rows for
absent timestamps without aggregating anything.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := export.ReadCSVFile(inPath)
			if err != nil {
				return err
			}

			if fill {
				tbl, err = resample.InsertMissing(tbl, freq)
			} else {
				tbl, err = resample.Aggregate(tbl, schema.Default(), freq)
			}
			if err != nil {
				return err
			}

			if err := export.WriteCSVFile(outPath, tbl); err != nil {
				return err
			}
			cmd.Printf("wrote %s (%d rows)\n", outPath, tbl.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "canonical CSV input (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "resampled CSV output (required)")
	cmd.Flags().DurationVar(&freq, "freq", time.Hour, "target frequency, e.g. 10m, 1h, 24h")
	cmd.Flags().BoolVar(&fill, "fill", false, "insert missing rows instead of aggregating")
	cmd.MarkFlagRequired("in")  //nolint:errcheck
	cmd.MarkFlagRequired("out") //nolint:errcheck
	return cmd
}
