package mapping

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kkartas/metdata/internal/schema"
	"github.com/kkartas/metdata/internal/table"
	"github.com/kkartas/metdata/internal/timeparse"
	"github.com/kkartas/metdata/internal/units"
)

// DefaultMinParseFraction is the minimum share of rows that must parse as
// timestamps before Apply trusts the mapped time column.
const DefaultMinParseFraction = 0.5

// ApplyOptions tune Apply. The zero value means: naive timestamps are UTC,
// and at least DefaultMinParseFraction of rows must parse.
type ApplyOptions struct {
	// SourceTZ is the zone assumed for naive timestamps. Never guessed from
	// the data; nil means UTC.
	SourceTZ *time.Location
	// MinParseFraction overrides DefaultMinParseFraction when positive.
	MinParseFraction float64
}

// Apply renames the mapped source columns onto canonical fields, converts
// values into canonical units, and builds a canonical table over a unique,
// sorted UTC time index. Rows whose timestamp does not parse are dropped;
// duplicate timestamps, missing columns, unknown units, and unknown
// canonical field names are surfaced as errors, never worked around.
func Apply(src *table.Source, m *Mapping, sch *schema.Schema, opts ApplyOptions) (*table.Table, error) {
	loc := opts.SourceTZ
	if loc == nil {
		loc = time.UTC
	}
	minFrac := opts.MinParseFraction
	if minFrac <= 0 {
		minFrac = DefaultMinParseFraction
	}

	if m.TS.Col == "" {
		return nil, &MissingColumnError{Column: "", Role: "timestamp"}
	}
	tsCells, ok := src.Column(m.TS.Col)
	if !ok {
		return nil, &MissingColumnError{Column: m.TS.Col, Role: "timestamp"}
	}

	// Parse the index, keeping the source row for each parsed timestamp.
	type indexed struct {
		t   time.Time
		row int
	}
	kept := make([]indexed, 0, len(tsCells))
	for i, cell := range tsCells {
		if t, ok := timeparse.Parse(cell, loc); ok {
			kept = append(kept, indexed{t: t, row: i})
		}
	}
	if src.Len() > 0 && float64(len(kept)) < minFrac*float64(src.Len()) {
		return nil, &TimestampParseError{
			Column: m.TS.Col, Parsed: len(kept), Total: src.Len(), MinFraction: minFrac,
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].t.Before(kept[j].t) })
	for i := 1; i < len(kept); i++ {
		if kept[i].t.Equal(kept[i-1].t) {
			return nil, &DuplicateTimestampError{Timestamp: kept[i].t}
		}
	}

	times := make([]time.Time, len(kept))
	for i, k := range kept {
		times[i] = k.t
	}
	out := table.New(times)

	// Fields convert in schema declaration order for a stable column layout.
	for _, f := range sch.Fields() {
		ref, mapped := m.Fields[f.Name]
		if !mapped {
			continue
		}
		cells, ok := src.Column(ref.Col)
		if !ok {
			return nil, &MissingColumnError{Column: ref.Col, Role: f.Name}
		}

		unit := ref.Unit
		if unit == "" {
			unit = f.CanonicalUnit
		}
		conv, ok := units.For(f.Name, f.CanonicalUnit, unit)
		if !ok {
			return nil, &UnknownUnitError{Field: f.Name, Unit: ref.Unit}
		}

		vals := make([]float64, len(kept))
		for i, k := range kept {
			vals[i] = convertCell(cells[k.row], conv)
		}
		if err := out.SetValues(f.Name, vals); err != nil {
			return nil, err
		}
	}

	// Any mapped name the loop above did not consume is not in the schema.
	for name := range m.Fields {
		if _, ok := sch.Field(name); !ok {
			return nil, &schema.Error{Field: name}
		}
	}

	return out, nil
}

// convertCell parses one raw cell and converts it into canonical units.
// Blank and non-numeric cells become the missing sentinel.
func convertCell(cell string, conv units.Conversion) float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return table.Missing()
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return table.Missing()
	}
	return conv(v)
}
