package mlprep

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// WriteCSV serializes a supervised frame: the time index followed by the
// feature and target columns. Missing cells are empty.
func WriteCSV(w io.Writer, f *Frame) error {
	cw := csv.NewWriter(w)
	header := append([]string{"time_utc"}, f.Columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("mlprep: write header: %w", err)
	}
	for i := 0; i < f.Len(); i++ {
		row := make([]string, 0, len(header))
		row = append(row, f.Times[i].Format(time.RFC3339))
		for _, name := range f.Columns {
			v := f.Data[name][i]
			if v != v { // NaN
				row = append(row, "")
			} else {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("mlprep: write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the frame to a CSV file on disk.
func WriteCSVFile(path string, f *Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("mlprep: %w", err)
	}
	defer file.Close()
	if err := WriteCSV(file, f); err != nil {
		return err
	}
	return file.Close()
}
