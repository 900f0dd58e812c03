// Package detect guesses which source column and unit corresponds to each
// canonical field, and which column is the time index. Scores are heuristic
// but deterministic: the same table always yields the same ranking, and a
// column that cannot be scored gets confidence 0 rather than an error.
package detect

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

// Params are the detector's scoring weights. They are empirically tuned,
// not derived, so they stay overridable configuration rather than baked-in
// formulas.
type Params struct {
	// MaxNameScore is what a near-exact column name match is worth.
	MaxNameScore float64
	// UnitHintBonus rewards a recognizable alternate-unit token in the header.
	UnitHintBonus float64
	// PlausibilityWeight scales the in-bounds fraction into the confidence.
	PlausibilityWeight float64
	// CorroborationBump is added when name and plausibility agree strongly.
	CorroborationBump  float64
	BumpNameThreshold  float64
	BumpPlausThreshold float64

	// Timestamp role weights. The name hint carries little weight relative
	// to parse success and monotonicity, since many columns can
	// coincidentally parse as dates.
	TSNameWeight  float64
	TSParseWeight float64
	TSMonoWeight  float64

	// MonoSampleLimit caps how many parsed values the monotonicity score
	// inspects on large tables.
	MonoSampleLimit int
}

// DefaultParams returns the tuned scoring weights.
func DefaultParams() Params {
	return Params{
		MaxNameScore:       0.4,
		UnitHintBonus:      0.1,
		PlausibilityWeight: 0.6,
		CorroborationBump:  0.1,
		BumpNameThreshold:  0.3,
		BumpPlausThreshold: 0.8,
		TSNameWeight:       0.2,
		TSParseWeight:      0.4,
		TSMonoWeight:       0.4,
		MonoSampleLimit:    2000,
	}
}

// Candidate is one scored (column, field) pairing.
type Candidate struct {
	Column     string
	Confidence float64
	// Unit is the inferred reporting unit, empty when none applies (the
	// timestamp role, or a field scored without a plausible unit).
	Unit string
}

// Result ranks candidates per canonical field plus the timestamp role,
// descending by confidence with ties broken by source column order.
type Result struct {
	Timestamp []Candidate
	Fields    map[string][]Candidate

	// fieldOrder preserves schema declaration order for deterministic output.
	fieldOrder []string
}

// FieldNames returns the canonical field names with at least one candidate,
// in schema declaration order.
func (r *Result) FieldNames() []string { return r.fieldOrder }

// Best returns the top candidate for a canonical field, or false when the
// field attracted no candidates.
func (r *Result) Best(field string) (Candidate, bool) {
	cands := r.Fields[field]
	if len(cands) == 0 {
		return Candidate{}, false
	}
	return cands[0], true
}

// BestTimestamp returns the top timestamp candidate, or false when no column
// scored above zero.
func (r *Result) BestTimestamp() (Candidate, bool) {
	if len(r.Timestamp) == 0 {
		return Candidate{}, false
	}
	return r.Timestamp[0], true
}

// Detector scores source columns against a canonical schema.
type Detector struct {
	schema *schema.Schema
	params Params
	loc    *time.Location
}

// New creates a Detector over the given schema. Naive timestamps are scored
// as UTC; detection only ranks columns, so the zone choice cannot change
// which column wins.
func New(s *schema.Schema) *Detector {
	return NewWithParams(s, DefaultParams())
}

// NewWithParams creates a Detector with custom scoring weights.
func NewWithParams(s *schema.Schema, p Params) *Detector {
	return &Detector{schema: s, params: p, loc: time.UTC}
}

// Detect scores every source column against the timestamp role and every
// canonical field. It never fails: degenerate input produces low or zero
// confidences, and confirmation of the top candidates is the caller's
// concern.
func (d *Detector) Detect(src *table.Source) *Result {
	res := &Result{Fields: make(map[string][]Candidate)}

	res.Timestamp = d.scoreTimestamps(src)
	tsColumn := ""
	if best, ok := res.BestTimestamp(); ok {
		tsColumn = best.Column
	}

	for _, f := range d.schema.Fields() {
		var cands []Candidate
		for _, col := range src.Columns() {
			if col == tsColumn {
				continue
			}
			c := d.scoreField(src, col, f)
			if c.Confidence > 0 {
				cands = append(cands, c)
			}
		}
		sortCandidates(cands)
		if len(cands) > 0 {
			res.Fields[f.Name] = cands
			res.fieldOrder = append(res.fieldOrder, f.Name)
		}
	}
	return res
}

// scoreTimestamps ranks every column for the timestamp role. The name hint
// carries little weight relative to parse success and monotonicity, since
// many columns can coincidentally parse as dates.
func (d *Detector) scoreTimestamps(src *table.Source) []Candidate {
	var cands []Candidate
	for _, col := range src.Columns() {
		nameScore := 0.0
		lc := strings.ToLower(col)
		for _, p := range schema.TimestampPatterns {
			if p.MatchString(lc) {
				nameScore = 1.0
				break
			}
		}

		cells, _ := src.Column(col)
		parseRate, mono := d.timestampRates(cells)

		conf := d.params.TSNameWeight*nameScore + d.params.TSParseWeight*parseRate + d.params.TSMonoWeight*mono
		if conf > 0 {
			cands = append(cands, Candidate{Column: col, Confidence: conf})
		}
	}
	sortCandidates(cands)
	return cands
}

// timestampRates returns the fraction of non-empty cells that parse as a
// timestamp and the fraction of consecutive parsed pairs that are
// non-decreasing. Fewer than two parseable rows yields monotonicity 0.
func (d *Detector) timestampRates(cells []string) (parseRate, mono float64) {
	nonEmpty := 0
	var parsed []time.Time
	stride := 1
	if d.params.MonoSampleLimit > 0 && len(cells) > d.params.MonoSampleLimit {
		stride = len(cells) / d.params.MonoSampleLimit
	}
	parsedCount := 0
	for i, cell := range cells {
		if strings.TrimSpace(cell) == "" {
			continue
		}
		nonEmpty++
		t, ok := timeparse.Parse(cell, d.loc)
		if !ok {
			continue
		}
		parsedCount++
		if i%stride == 0 {
			parsed = append(parsed, t)
		}
	}
	if nonEmpty == 0 {
		return 0, 0
	}
	parseRate = float64(parsedCount) / float64(nonEmpty)

	if len(parsed) < 2 {
		return parseRate, 0
	}
	nonDecreasing := 0
	for i := 1; i < len(parsed); i++ {
		if !parsed[i].Before(parsed[i-1]) {
			nonDecreasing++
		}
	}
	mono = float64(nonDecreasing) / float64(len(parsed)-1)
	return parseRate, mono
}

// scoreField scores one (column, field) pairing. A column whose name never
// matches the field is not a candidate at all: plausibility alone would pair
// every numeric column with every field whose bounds it happens to fit.
func (d *Detector) scoreField(src *table.Source, col string, f *schema.Field) Candidate {
	nameScore := d.fieldNameScore(col, f)
	if nameScore == 0 {
		return Candidate{Column: col}
	}

	bonus := 0.0
	if hint, ok := units.ParseHint(col); ok {
		for _, alt := range f.AlternateUnits {
			if hint == alt {
				bonus = d.params.UnitHintBonus
				break
			}
		}
	}

	cells, _ := src.Column(col)
	plaus, inferredUnit := plausibility(cells, f)

	conf := nameScore + bonus + d.params.PlausibilityWeight*plaus
	if nameScore >= d.params.BumpNameThreshold && plaus >= d.params.BumpPlausThreshold {
		conf += d.params.CorroborationBump
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return Candidate{Column: col, Confidence: conf, Unit: inferredUnit}
}

// fieldNameScore grades a column name against the field's patterns. The
// first pattern is the near-exact form and scores the maximum; later,
// looser patterns score proportionally less.
func (d *Detector) fieldNameScore(col string, f *schema.Field) float64 {
	lc := strings.ToLower(col)
	n := len(f.NamePatterns)
	for i, p := range f.NamePatterns {
		if p.MatchString(lc) {
			return d.params.MaxNameScore * float64(n-i) / float64(n)
		}
	}
	return 0
}

// plausibility converts the column's numeric values under each unit the
// field could be reported in and returns the best in-bounds fraction along
// with the unit that achieved it. Ties prefer the canonical unit, then
// declaration order. A column with no numeric values scores 0 with no unit.
func plausibility(cells []string, f *schema.Field) (float64, string) {
	var nums []float64
	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if v, err := strconv.ParseFloat(cell, 64); err == nil {
			nums = append(nums, v)
		}
	}
	if len(nums) == 0 {
		return 0, ""
	}

	best := -1.0
	bestUnit := ""
	for _, unit := range f.Units() {
		conv, ok := units.For(f.Name, f.CanonicalUnit, unit)
		if !ok {
			continue
		}
		inBounds := 0
		for _, v := range nums {
			cv := conv(v)
			if cv >= f.ValidMin && cv <= f.ValidMax {
				inBounds++
			}
		}
		frac := float64(inBounds) / float64(len(nums))
		if frac > best {
			best = frac
			bestUnit = unit
		}
	}
	if best < 0 {
		return 0, ""
	}
	return best, bestUnit
}

// sortCandidates orders by confidence descending; the stable sort keeps
// source column order for ties.
func sortCandidates(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Confidence > cands[j].Confidence
	})
}
