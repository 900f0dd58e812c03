// Package table holds the two tabular shapes the toolkit works on: the raw
// Source handed over by ingestion, and the canonical UTC-indexed Table that
// the mapper produces and the QC engine and aggregator transform.
//
// A Table is exclusively owned by whichever stage holds it; stages receive
// and return it in a linear handoff, never sharing it across goroutines.
// Missing values are NaN. Boolean flag columns ride alongside the value
// columns under the qc_* naming convention, plus the qc_any aggregate.
package table

import (
	"fmt"
	"math"
	"time"
)

// AnyFlag is the aggregate flag column: the row-wise OR of every other flag
// column present in the table.
const AnyFlag = "qc_any"

// Table is a canonical table: a unique, non-decreasing UTC time index, one
// float64 column per canonical field, boolean QC flag columns, and a gap
// marker for rows inserted to complete a regular index.
type Table struct {
	times []time.Time

	valueOrder []string
	values     map[string][]float64

	flagOrder []string
	flags     map[string][]bool

	gap []bool
}

// New creates a Table over the given UTC time index. The index is taken as
// validated: parsing, deduplication, and ordering are the mapper's job.
func New(times []time.Time) *Table {
	return &Table{
		times:  times,
		values: make(map[string][]float64),
		flags:  make(map[string][]bool),
		gap:    make([]bool, len(times)),
	}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.times) }

// Times returns the time index. Callers must treat it as read-only.
func (t *Table) Times() []time.Time { return t.times }

// SetValues adds or replaces a value column.
func (t *Table) SetValues(name string, vals []float64) error {
	if len(vals) != len(t.times) {
		return fmt.Errorf("table: column %q has %d values, want %d", name, len(vals), len(t.times))
	}
	if _, exists := t.values[name]; !exists {
		t.valueOrder = append(t.valueOrder, name)
	}
	t.values[name] = vals
	return nil
}

// Values returns a value column. The boolean is false when the column does
// not exist.
func (t *Table) Values(name string) ([]float64, bool) {
	v, ok := t.values[name]
	return v, ok
}

// ValueColumns returns the value column names in insertion order.
func (t *Table) ValueColumns() []string { return t.valueOrder }

// SetFlags adds or replaces a boolean flag column and recomputes qc_any so
// the aggregate invariant holds after every check.
func (t *Table) SetFlags(name string, flags []bool) error {
	if len(flags) != len(t.times) {
		return fmt.Errorf("table: flag column %q has %d values, want %d", name, len(flags), len(t.times))
	}
	if _, exists := t.flags[name]; !exists && name != AnyFlag {
		t.flagOrder = append(t.flagOrder, name)
	}
	if name == AnyFlag {
		t.flags[name] = flags
		return nil
	}
	t.flags[name] = flags
	t.recomputeAny()
	return nil
}

// Flags returns a flag column. The boolean is false when the column does not
// exist.
func (t *Table) Flags(name string) ([]bool, bool) {
	f, ok := t.flags[name]
	return f, ok
}

// FlagColumns returns the flag column names in insertion order, excluding
// qc_any.
func (t *Table) FlagColumns() []string { return t.flagOrder }

// Any returns the qc_any column, or nil when no check has run yet.
func (t *Table) Any() []bool { return t.flags[AnyFlag] }

// recomputeAny rebuilds qc_any as the row-wise OR over all present flag
// columns. Columns that do not exist yet never contribute.
func (t *Table) recomputeAny() {
	any := make([]bool, len(t.times))
	for _, name := range t.flagOrder {
		for i, v := range t.flags[name] {
			if v {
				any[i] = true
			}
		}
	}
	t.flags[AnyFlag] = any
}

// Gap reports the gap markers: true for rows that were inserted to complete
// a regular index and carry no observation.
func (t *Table) Gap() []bool { return t.gap }

// SetGap replaces the gap marker column.
func (t *Table) SetGap(gap []bool) error {
	if len(gap) != len(t.times) {
		return fmt.Errorf("table: gap column has %d values, want %d", len(gap), len(t.times))
	}
	t.gap = gap
	return nil
}

// IsMissing reports whether a value is the missing sentinel.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// Missing is the missing-value sentinel.
func Missing() float64 { return math.NaN() }
