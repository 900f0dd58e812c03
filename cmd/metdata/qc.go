package main

import (
	"github.com/spf13/cobra"

	"github.com/kkartas/metdata/internal/export"
	"github.com/kkartas/metdata/internal/qc"
	"github.com/kkartas/metdata/internal/schema"
)

func newQCCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qc",
		Short: "Quality-control a canonical table",
	}
	cmd.AddCommand(newQCRunCmd())
	return cmd
}

func newQCRunCmd() *cobra.Command {
	var (
		inPath     string
		outPath    string
		cfgPath    string
		reportPath string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run range, spike, flatline, and consistency checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := export.ReadCSVFile(inPath)
			if err != nil {
				return err
			}

			cfg := qc.DefaultConfig()
			if cfgPath != "" {
				cfg, err = qc.LoadConfig(cfgPath)
				if err != nil {
					return err
				}
			}

			engine := qc.New(schema.Default(), cfg)
			if _, err := engine.Run(tbl); err != nil {
				return err
			}
			if err := export.WriteCSVFile(outPath, tbl); err != nil {
				return err
			}
			cmd.Printf("wrote %s\n", outPath)

			if reportPath != "" {
				if err := export.NewReport(tbl).WriteFile(reportPath); err != nil {
					return err
				}
				cmd.Printf("saved report to %s\n", reportPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "canonical CSV input (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "flagged CSV output (required)")
	cmd.Flags().StringVar(&cfgPath, "config", "", "QC tuning YAML")
	cmd.Flags().StringVar(&reportPath, "report", "", "write flag counts JSON")
	cmd.MarkFlagRequired("in")  //nolint:errcheck
	cmd.MarkFlagRequired("out") //nolint:errcheck
	return cmd
}
