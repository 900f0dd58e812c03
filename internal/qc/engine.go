// Package qc flags data-quality problems on a canonical table: per-field
// range, spike, and flatline checks, cross-variable consistency rules, and
// the qc_any aggregate.
//
// Checks are independent passes over the table: each adds its own flag
// columns and never edits an earlier check's output, so they commute.
// Statistical degeneracy (empty windows, zero variance, all-missing
// columns) never errors; it resolves to "not flagged". The only fatal
// condition is a canonical field name missing from the schema, which is a
// programmer error.
package qc

import (
	"fmt"
	"math"

	"github.com/kkartas/metdata/internal/schema"
	"github.com/kkartas/metdata/internal/table"
)

// Check names used in flag column naming.
const (
	CheckRange    = "range"
	CheckSpike    = "spike"
	CheckFlatline = "flatline"
)

// FlagName returns the flag column for a field and check, e.g.
// qc_temp_c_range.
func FlagName(field, check string) string {
	return fmt.Sprintf("qc_%s_%s", field, check)
}

// Engine applies QC checks to canonical tables.
type Engine struct {
	schema *schema.Schema
	cfg    Config
}

// New creates an Engine. Unset config values fall back to defaults.
func New(sch *schema.Schema, cfg Config) *Engine {
	return &Engine{schema: sch, cfg: cfg.normalized()}
}

// Run applies range, spike, and flatline checks to every canonical value
// column present in the table, then the consistency rules. The table is
// mutated in place and returned for chaining.
func (e *Engine) Run(t *table.Table) (*table.Table, error) {
	fields := t.ValueColumns()
	if err := e.Range(t, fields...); err != nil {
		return nil, err
	}
	if err := e.Spike(t, fields...); err != nil {
		return nil, err
	}
	if err := e.Flatline(t, fields...); err != nil {
		return nil, err
	}
	if err := e.Consistency(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Range flags values outside the field's plausible physical bounds, and
// missing values.
func (e *Engine) Range(t *table.Table, fields ...string) error {
	for _, name := range fields {
		f, err := e.schema.Lookup(name)
		if err != nil {
			return err
		}
		vals, ok := t.Values(name)
		if !ok {
			continue
		}
		flags := make([]bool, len(vals))
		for i, v := range vals {
			flags[i] = table.IsMissing(v) || v < f.ValidMin || v > f.ValidMax
		}
		if err := t.SetFlags(FlagName(name, CheckRange), flags); err != nil {
			return err
		}
	}
	return nil
}

// Spike flags values whose rolling-window MAD z-score exceeds the threshold.
// Edge rows without a full centered window are never flagged: insufficient
// history is insufficient evidence.
func (e *Engine) Spike(t *table.Table, fields ...string) error {
	w := e.cfg.Spike.Window
	thresh := e.cfg.Spike.Thresh
	for _, name := range fields {
		if _, err := e.schema.Lookup(name); err != nil {
			return err
		}
		vals, ok := t.Values(name)
		if !ok {
			continue
		}
		flags := make([]bool, len(vals))
		for i, v := range vals {
			if table.IsMissing(v) {
				continue
			}
			win, full := window(vals, i, w)
			if !full {
				continue
			}
			if z := madZScore(win, v); math.Abs(z) > thresh {
				flags[i] = true
			}
		}
		if err := t.SetFlags(FlagName(name, CheckSpike), flags); err != nil {
			return err
		}
	}
	return nil
}

// Flatline flags rows whose full centered window has variance at or below
// the tolerance. Partial windows at the series boundary are never flagged.
func (e *Engine) Flatline(t *table.Table, fields ...string) error {
	w := e.cfg.Flatline.Window
	tol := e.cfg.Flatline.Tol
	for _, name := range fields {
		if _, err := e.schema.Lookup(name); err != nil {
			return err
		}
		vals, ok := t.Values(name)
		if !ok {
			continue
		}
		flags := make([]bool, len(vals))
		for i := range vals {
			win, full := window(vals, i, w)
			if !full {
				continue
			}
			if variance, ok := fullVariance(win); ok && variance <= tol {
				flags[i] = true
			}
		}
		if err := t.SetFlags(FlagName(name, CheckFlatline), flags); err != nil {
			return err
		}
	}
	return nil
}
