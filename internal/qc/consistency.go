package qc

import (
	"math"

	"github.com/kkartas/metdata/internal/schema"
	"github.com/kkartas/metdata/internal/table"
)

// CalmWindEpsilon is the wind speed below which a reported direction is
// physically meaningless (vane noise on a calm sensor).
const CalmWindEpsilon = 0.5 // m/s

// rule is one cross-variable physical consistency check. Rules are data:
// a flag column name, the canonical fields they read, and a row predicate.
// A rule whose fields are absent from the table is skipped; consistency is
// best-effort given whatever fields were mapped.
type rule struct {
	flag     string
	requires []string
	// flagged reports whether the row violates the rule, given the required
	// columns in declaration order.
	flagged func(row []float64) bool
}

var rules = []rule{
	{
		// Dew point cannot exceed air temperature: saturation bounds it.
		flag:     "qc_dewpoint_gt_temp",
		requires: []string{schema.DewPointC, schema.TempC},
		flagged: func(row []float64) bool {
			dew, temp := row[0], row[1]
			return !math.IsNaN(dew) && !math.IsNaN(temp) && dew > temp
		},
	},
	{
		// A direction reading on a calm sensor is undefined, not an error.
		flag:     "qc_wdir_calm",
		requires: []string{schema.WdirDeg, schema.WspdMS},
		flagged: func(row []float64) bool {
			dir, spd := row[0], row[1]
			return !math.IsNaN(dir) && !math.IsNaN(spd) && spd <= CalmWindEpsilon
		},
	},
	{
		// A gust is a maximum over the interval; it cannot sit below the mean
		// wind speed.
		flag:     "qc_gust_lt_wspd",
		requires: []string{schema.GustMS, schema.WspdMS},
		flagged: func(row []float64) bool {
			gust, spd := row[0], row[1]
			return !math.IsNaN(gust) && !math.IsNaN(spd) && gust < spd
		},
	},
}

// Consistency applies the cross-variable rules whose required fields are all
// present in the table. Each rule contributes its own flag column.
func (e *Engine) Consistency(t *table.Table) error {
	for _, r := range rules {
		cols := make([][]float64, 0, len(r.requires))
		present := true
		for _, name := range r.requires {
			vals, ok := t.Values(name)
			if !ok {
				present = false
				break
			}
			cols = append(cols, vals)
		}
		if !present {
			continue
		}

		flags := make([]bool, t.Len())
		row := make([]float64, len(cols))
		for i := range flags {
			for j, col := range cols {
				row[j] = col[i]
			}
			flags[i] = r.flagged(row)
		}
		if err := t.SetFlags(r.flag, flags); err != nil {
			return err
		}
	}
	return nil
}
