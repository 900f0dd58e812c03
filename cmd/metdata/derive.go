package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kkartas/metdata/internal/derive"
	"github.com/kkartas/metdata/internal/export"
)

func newDeriveCmd() *cobra.Command {
	var (
		inPath  string
		outPath string
		metrics []string
	)
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Compute derived meteorological columns",
		Long: `Compute derived meteorological columns from the canonical table.

Available metrics:
  dewpoint   dew_point_c from temperature and relative humidity (Magnus)
  vpd        vpd_kpa vapor pressure deficit
  fixrain    convert a cumulative rain counter into per-interval amounts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := export.ReadCSVFile(inPath)
			if err != nil {
				return err
			}

			for _, m := range metrics {
				switch m {
				case "dewpoint":
					added, err := derive.DewPoint(tbl)
					if err != nil {
						return err
					}
					if !added {
						cmd.PrintErrln("skipping dewpoint: temp_c and rh_pct required")
					}
				case "vpd":
					added, err := derive.VPD(tbl)
					if err != nil {
						return err
					}
					if !added {
						cmd.PrintErrln("skipping vpd: temp_c and rh_pct required")
					}
				case "fixrain":
					derive.FixAccumRain(tbl)
				default:
					return fmt.Errorf("unknown metric %q", m)
				}
			}

			if err := export.WriteCSVFile(outPath, tbl); err != nil {
				return err
			}
			cmd.Printf("wrote %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "canonical CSV input (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "CSV output (required)")
	cmd.Flags().StringSliceVar(&metrics, "metrics", []string{"dewpoint", "vpd"}, "metrics to compute")
	cmd.MarkFlagRequired("in")  //nolint:errcheck
	cmd.MarkFlagRequired("out") //nolint:errcheck
	return cmd
}
