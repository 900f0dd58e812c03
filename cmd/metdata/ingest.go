package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kkartas/metdata/internal/detect"
	"github.com/kkartas/metdata/internal/export"
	"github.com/kkartas/metdata/internal/ingest"
	"github.com/kkartas/metdata/internal/mapping"
	"github.com/kkartas/metdata/internal/schema"
)

// detectSampleRows caps how much of a large export the detector reads.
const detectSampleRows = 1000

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Detect and apply column mappings",
	}
	cmd.AddCommand(newDetectCmd(), newApplyCmd(), newTemplateCmd())
	return cmd
}

func newDetectCmd() *cobra.Command {
	var (
		csvPath  string
		savePath string
		tsCol    string
		sets     []string
		drops    []string
	)
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Guess a column mapping from a CSV sample",
		Long: `Scores each source column against every canonical field and the
timestamp role, prints the resulting mapping with confidences, and
optionally saves it. Overrides take the place of an interactive wizard:
--ts names the timestamp column, --set binds a field explicitly
(field=column or field=column:unit), --drop removes a guessed field.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := ingest.ReadCSVFile(csvPath, detectSampleRows)
			if err != nil {
				return err
			}

			det := detect.New(schema.Default())
			res := det.Detect(src)

			ov := mapping.Overrides{TimestampColumn: tsCol, Drop: drops}
			ov.Fields, err = parseSetFlags(sets)
			if err != nil {
				return err
			}

			m := mapping.FromDetection(res, ov)
			out, err := m.Marshal()
			if err != nil {
				return err
			}
			cmd.Print(string(out))

			if savePath != "" {
				if err := m.Save(savePath); err != nil {
					return err
				}
				cmd.Printf("saved mapping to %s\n", savePath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "source CSV file (required)")
	cmd.Flags().StringVar(&savePath, "save", "", "write the mapping to this YAML file")
	cmd.Flags().StringVar(&tsCol, "ts", "", "override the timestamp column")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "override a field binding, field=column[:unit]")
	cmd.Flags().StringArrayVar(&drops, "drop", nil, "drop a guessed field")
	cmd.MarkFlagRequired("csv") //nolint:errcheck
	return cmd
}

// parseSetFlags turns --set temp_c=Temp:f flags into field overrides.
func parseSetFlags(sets []string) (map[string]mapping.FieldRef, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	fields := make(map[string]mapping.FieldRef, len(sets))
	for _, s := range sets {
		name, spec, ok := strings.Cut(s, "=")
		if !ok || name == "" || spec == "" {
			return nil, fmt.Errorf("invalid --set %q, want field=column[:unit]", s)
		}
		col, unit, _ := strings.Cut(spec, ":")
		fields[name] = mapping.FieldRef{Col: col, Unit: unit}
	}
	return fields, nil
}

func newApplyCmd() *cobra.Command {
	var (
		csvPath  string
		mapPath  string
		outPath  string
		tzName   string
		manifest string
	)
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a confirmed mapping to a CSV, producing a canonical table",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := mapping.Load(mapPath)
			if err != nil {
				return err
			}
			src, err := ingest.ReadCSVFile(csvPath, 0)
			if err != nil {
				return err
			}

			opts := mapping.ApplyOptions{}
			if tzName != "" {
				opts.SourceTZ, err = time.LoadLocation(tzName)
				if err != nil {
					return fmt.Errorf("invalid --tz %q: %w", tzName, err)
				}
			}

			tbl, err := mapping.Apply(src, m, schema.Default(), opts)
			if err != nil {
				return err
			}
			if err := export.WriteCSVFile(outPath, tbl); err != nil {
				return err
			}
			cmd.Printf("wrote %s (%d rows)\n", outPath, tbl.Len())

			if manifest != "" {
				man := export.NewManifest(tbl, csvPath, mapPath)
				if err := man.WriteFile(manifest); err != nil {
					return err
				}
				cmd.Printf("wrote manifest %s\n", manifest)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "source CSV file (required)")
	cmd.Flags().StringVar(&mapPath, "map", "", "mapping YAML file (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "output canonical CSV (required)")
	cmd.Flags().StringVar(&tzName, "tz", "", "IANA zone for naive timestamps (default UTC)")
	cmd.Flags().StringVar(&manifest, "manifest", "", "write a provenance manifest JSON")
	cmd.MarkFlagRequired("csv") //nolint:errcheck
	cmd.MarkFlagRequired("map") //nolint:errcheck
	cmd.MarkFlagRequired("out") //nolint:errcheck
	return cmd
}

func newTemplateCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Emit a skeleton mapping covering every canonical field",
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := schema.Default().Fields()
			names := make([]string, len(fields))
			for i, f := range fields {
				names[i] = f.Name
			}
			m := mapping.Template(names)
			data, err := m.Marshal()
			if err != nil {
				return err
			}
			if outPath == "" {
				cmd.Print(string(data))
				return nil
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return err
			}
			cmd.Printf("wrote mapping template to %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	return cmd
}
