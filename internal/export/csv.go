// Package export serializes canonical tables for downstream consumers: CSV
// for the next pipeline stage, a QC summary report, and a run manifest for
// provenance. Consumers get the table read-only; nothing here mutates it.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/kkartas/metdata/internal/table"
)

// WriteCSV serializes the table: the UTC time index, value columns, flag
// columns, qc_any, and the gap marker. Missing values are written as empty
// cells.
func WriteCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)

	header := []string{"time_utc"}
	header = append(header, t.ValueColumns()...)
	header = append(header, t.FlagColumns()...)
	if t.Any() != nil {
		header = append(header, table.AnyFlag)
	}
	header = append(header, "gap")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	times := t.Times()
	gap := t.Gap()
	for i := 0; i < t.Len(); i++ {
		row := make([]string, 0, len(header))
		row = append(row, times[i].Format(time.RFC3339))
		for _, name := range t.ValueColumns() {
			vals, _ := t.Values(name)
			row = append(row, formatValue(vals[i]))
		}
		for _, name := range t.FlagColumns() {
			flags, _ := t.Flags(name)
			row = append(row, strconv.FormatBool(flags[i]))
		}
		if any := t.Any(); any != nil {
			row = append(row, strconv.FormatBool(any[i]))
		}
		row = append(row, strconv.FormatBool(gap[i]))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the table to a CSV file on disk.
func WriteCSVFile(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer f.Close()
	if err := WriteCSV(f, t); err != nil {
		return err
	}
	return f.Close()
}

func formatValue(v float64) string {
	if table.IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
