// Command metdata is the batch CLI for the weather observation toolkit:
// mapping detection, mapping application, QC flagging, resampling, and ML
// table preparation, file to file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "metdata",
		Short:         "Map, quality-control, and resample weather station exports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newIngestCmd(),
		newQCCmd(),
		newResampleCmd(),
		newDeriveCmd(),
		newMLPrepCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
