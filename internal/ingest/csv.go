// Package ingest reads delimited station exports into an in-memory source
// table. It sits outside the core: the detector and mapper only ever see
// the parsed Source, never files.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/kkartas/metdata/internal/table"
)

// ReadCSV parses a CSV stream with a header row into a Source. maxRows > 0
// caps how many data rows are read, which keeps detection runs cheap on
// large exports; 0 reads everything.
func ReadCSV(r io.Reader, maxRows int) (*table.Source, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("ingest: empty input, no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("ingest: read header: %w", err)
	}

	var records [][]string
	for maxRows <= 0 || len(records) < maxRows {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read row %d: %w", len(records)+2, err)
		}
		records = append(records, rec)
	}
	return table.NewSource(header, records)
}

// ReadCSVFile reads a CSV file from disk into a Source.
func ReadCSVFile(path string, maxRows int) (*table.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, maxRows)
}
