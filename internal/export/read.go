package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kkartas/metdata/internal/mapping"
	"github.com/kkartas/metdata/internal/table"
)

// ReadCSV parses a canonical CSV previously produced by WriteCSV back into
// a Table: the time_utc index, qc_* boolean columns, the gap marker, and
// everything else as value columns. It exists so CLI stages can hand tables
// to each other through files.
func ReadCSV(r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("export: read canonical header: %w", err)
	}
	if len(header) == 0 || header[0] != "time_utc" {
		return nil, fmt.Errorf("export: not a canonical table: first column is %q, want time_utc", headerAt(header, 0))
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("export: read canonical row: %w", err)
		}
		records = append(records, rec)
	}

	times := make([]time.Time, len(records))
	for i, rec := range records {
		t, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("export: row %d: bad timestamp %q: %w", i+2, rec[0], err)
		}
		times[i] = t.UTC()
	}
	// Downstream stages assume the sorted, deduplicated index the mapper
	// guarantees; a hand-edited or corrupted file must not get past here.
	for i := 1; i < len(times); i++ {
		if times[i].Equal(times[i-1]) {
			return nil, &mapping.DuplicateTimestampError{Timestamp: times[i]}
		}
		if times[i].Before(times[i-1]) {
			return nil, fmt.Errorf("export: row %d: timestamp %s out of order",
				i+2, times[i].Format(time.RFC3339))
		}
	}
	out := table.New(times)

	for j := 1; j < len(header); j++ {
		name := header[j]
		switch {
		case name == "gap":
			gap := make([]bool, len(records))
			for i, rec := range records {
				gap[i] = rec[j] == "true"
			}
			if err := out.SetGap(gap); err != nil {
				return nil, err
			}
		case name == table.AnyFlag:
			// Derived; recomputed as flag columns load.
		case strings.HasPrefix(name, "qc_"):
			flags := make([]bool, len(records))
			for i, rec := range records {
				flags[i] = rec[j] == "true"
			}
			if err := out.SetFlags(name, flags); err != nil {
				return nil, err
			}
		default:
			vals := make([]float64, len(records))
			for i, rec := range records {
				cell := strings.TrimSpace(rec[j])
				if cell == "" {
					vals[i] = table.Missing()
					continue
				}
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, fmt.Errorf("export: row %d, column %q: bad value %q", i+2, name, cell)
				}
				vals[i] = v
			}
			if err := out.SetValues(name, vals); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// ReadCSVFile reads a canonical CSV file from disk.
func ReadCSVFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

func headerAt(header []string, i int) string {
	if i < len(header) {
		return header[i]
	}
	return ""
}
