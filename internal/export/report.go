package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kkartas/metdata/internal/table"
)

// Report summarizes QC results: how many rows each flag column raised.
type Report struct {
	Rows     int            `json:"rows"`
	Flagged  int            `json:"flagged_rows"`
	ByColumn map[string]int `json:"by_column"`
}

// NewReport counts flags across the table, including qc_any as the
// flagged-row total.
func NewReport(t *table.Table) *Report {
	r := &Report{Rows: t.Len(), ByColumn: make(map[string]int)}
	for _, name := range t.FlagColumns() {
		flags, _ := t.Flags(name)
		r.ByColumn[name] = countTrue(flags)
	}
	r.Flagged = countTrue(t.Any())
	return r
}

// WriteFile serializes the report as indented JSON.
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export: write report: %w", err)
	}
	return nil
}

func countTrue(flags []bool) int {
	n := 0
	for _, v := range flags {
		if v {
			n++
		}
	}
	return n
}
