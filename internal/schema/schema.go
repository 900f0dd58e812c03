package schema

import (
	"fmt"
	"regexp"
)

// Aggregation selects how a field's values are reduced when the series is
// resampled to a coarser interval.
type Aggregation int

const (
	// AggMean averages contributing values (intensive quantities: temperature,
	// humidity, pressure, wind).
	AggMean Aggregation = iota
	// AggSum totals contributing values (extensive quantities: precipitation).
	AggSum
)

func (a Aggregation) String() string {
	if a == AggSum {
		return "sum"
	}
	return "mean"
}

// Field describes one canonical meteorological variable: its unit, the
// physically plausible value range, how it aggregates under resampling, and
// the name/unit patterns the detector matches source columns against.
type Field struct {
	Name          string
	CanonicalUnit string
	ValidMin      float64
	ValidMax      float64
	Aggregation   Aggregation

	// NamePatterns match lowercased source column names. The first pattern is
	// the strongest (near-exact) form; later patterns are partial hints.
	NamePatterns []*regexp.Regexp

	// AlternateUnits lists the non-canonical units this field is commonly
	// reported in, in preference order for tie-breaking.
	AlternateUnits []string
}

// Units returns the canonical unit followed by the alternates, the order used
// for plausibility tie-breaking.
func (f *Field) Units() []string {
	units := make([]string, 0, len(f.AlternateUnits)+1)
	units = append(units, f.CanonicalUnit)
	units = append(units, f.AlternateUnits...)
	return units
}

// Schema is the registry of canonical fields. It is built once at startup and
// passed explicitly to the detector, mapper, QC engine, and aggregator.
type Schema struct {
	fields []*Field
	byName map[string]*Field
}

// New builds a Schema from the given fields. It validates the per-field
// invariants (valid_min < valid_max, non-empty name) and rejects duplicates.
func New(fields []*Field) (*Schema, error) {
	s := &Schema{byName: make(map[string]*Field, len(fields))}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("schema: field with empty name")
		}
		if f.ValidMin >= f.ValidMax {
			return nil, fmt.Errorf("schema: field %q: valid_min %v must be below valid_max %v", f.Name, f.ValidMin, f.ValidMax)
		}
		if _, dup := s.byName[f.Name]; dup {
			return nil, fmt.Errorf("schema: duplicate field %q", f.Name)
		}
		s.fields = append(s.fields, f)
		s.byName[f.Name] = f
	}
	return s, nil
}

// MustNew is New for static registries that are known valid.
func MustNew(fields []*Field) *Schema {
	s, err := New(fields)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns the registered fields in declaration order.
func (s *Schema) Fields() []*Field {
	return s.fields
}

// Field looks up a canonical field by name. The second return is false when
// the name is not registered.
func (s *Schema) Field(name string) (*Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// Lookup is Field for callers that treat an unknown name as a programmer
// error, returning an *Error suitable for errors.As.
func (s *Schema) Lookup(name string) (*Field, error) {
	f, ok := s.byName[name]
	if !ok {
		return nil, &Error{Field: name}
	}
	return f, nil
}

// Error reports a canonical field name with no schema entry. This is a
// programmer error, not a data error, and is always fatal.
type Error struct {
	Field string
}

func (e *Error) Error() string {
	return fmt.Sprintf("schema: unknown canonical field %q", e.Field)
}
