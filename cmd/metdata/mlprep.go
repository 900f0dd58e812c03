package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kkartas/metdata/internal/export"
	"github.com/kkartas/metdata/internal/mlprep"
)

func newMLPrepCmd() *cobra.Command {
	var (
		inPath     string
		outPath    string
		targets    []string
		lags       []int
		horizons   []int
		keepNA     bool
		scale      string
		scalerPath string
		trainEnd   string
		valEnd     string
		splitDir   string
	)
	cmd := &cobra.Command{
		Use:   "mlprep",
		Short: "Build a model-ready table with lags, targets, splits, and scaling",
		Long: `Build a model-ready table from a canonical CSV.

Each value column gets a <col>_lag<n> feature per lag, and each target a
<tgt>_t+<h> column per horizon. Rows with missing cells are dropped unless
--keep-na is set. Optional extras: fit-and-apply a scaler (--scale, saving
the fitted parameters with --scaler-out for replay on serving data), and a
leakage-safe time split (--train-end / --val-end with --split-dir).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := export.ReadCSVFile(inPath)
			if err != nil {
				return err
			}

			frame := mlprep.MakeSupervised(tbl, targets, lags, horizons, !keepNA)

			if scale != "" {
				params, err := mlprep.FitScaler(frame, scale, nil)
				if err != nil {
					return err
				}
				frame, err = mlprep.ApplyScaler(frame, params)
				if err != nil {
					return err
				}
				if scalerPath != "" {
					if err := writeScaler(scalerPath, params); err != nil {
						return err
					}
					cmd.Printf("saved scaler to %s\n", scalerPath)
				}
			}

			if trainEnd != "" {
				return writeSplits(cmd, frame, trainEnd, valEnd, splitDir)
			}
			if outPath == "" {
				return fmt.Errorf("either --out or --train-end is required")
			}

			if err := mlprep.WriteCSVFile(outPath, frame); err != nil {
				return err
			}
			cmd.Printf("wrote %s (%d rows, %d columns)\n", outPath, frame.Len(), len(frame.Columns))
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "canonical CSV input (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "supervised CSV output")
	cmd.Flags().StringSliceVar(&targets, "targets", nil, "target columns for horizon shifts")
	cmd.Flags().IntSliceVar(&lags, "lags", []int{1}, "lag steps for feature columns")
	cmd.Flags().IntSliceVar(&horizons, "horizons", []int{1}, "forecast horizons for target columns")
	cmd.Flags().BoolVar(&keepNA, "keep-na", false, "keep rows with missing cells")
	cmd.Flags().StringVar(&scale, "scale", "", "scaling method: standard, minmax, or robust")
	cmd.Flags().StringVar(&scalerPath, "scaler-out", "", "write fitted scaler parameters YAML")
	cmd.Flags().StringVar(&trainEnd, "train-end", "", "end of training split (RFC 3339)")
	cmd.Flags().StringVar(&valEnd, "val-end", "", "end of validation split (RFC 3339)")
	cmd.Flags().StringVar(&splitDir, "split-dir", ".", "directory for train/val/test CSVs")
	cmd.MarkFlagRequired("in") //nolint:errcheck
	return cmd
}

func writeSplits(cmd *cobra.Command, f *mlprep.Frame, trainEnd, valEnd, dir string) error {
	tEnd, err := time.Parse(time.RFC3339, trainEnd)
	if err != nil {
		return fmt.Errorf("invalid --train-end: %w", err)
	}
	var vEnd time.Time
	if valEnd != "" {
		vEnd, err = time.Parse(time.RFC3339, valEnd)
		if err != nil {
			return fmt.Errorf("invalid --val-end: %w", err)
		}
	}

	train, val, test := mlprep.TimeSplit(f, tEnd, vEnd)
	for _, part := range []struct {
		name  string
		frame *mlprep.Frame
	}{{"train", train}, {"val", val}, {"test", test}} {
		if part.frame.Len() == 0 && part.name == "val" {
			continue
		}
		path := fmt.Sprintf("%s/%s.csv", dir, part.name)
		if err := mlprep.WriteCSVFile(path, part.frame); err != nil {
			return err
		}
		cmd.Printf("wrote %s (%d rows)\n", path, part.frame.Len())
	}
	return nil
}

func writeScaler(path string, p *mlprep.ScalerParams) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
