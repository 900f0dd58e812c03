package mapping

import (
	"fmt"
	"time"
)

// MissingColumnError reports a mapped source column absent from the source
// table. Role distinguishes the timestamp column from a field binding.
type MissingColumnError struct {
	Column string
	Role   string // "timestamp" or the canonical field name
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("mapping: source column %q for %s not found in table", e.Column, e.Role)
}

// TimestampParseError reports that too few rows parsed as timestamps for
// the mapped time column to be trusted.
type TimestampParseError struct {
	Column      string
	Parsed      int
	Total       int
	MinFraction float64
}

func (e *TimestampParseError) Error() string {
	return fmt.Sprintf("mapping: timestamp column %q: only %d of %d rows parse (minimum fraction %.2f)",
		e.Column, e.Parsed, e.Total, e.MinFraction)
}

// DuplicateTimestampError reports a repeated time index entry. Duplicates
// are rejected rather than collapsed: silent deduplication would hide a
// data problem.
type DuplicateTimestampError struct {
	Timestamp time.Time
}

func (e *DuplicateTimestampError) Error() string {
	return fmt.Sprintf("mapping: duplicate timestamp %s", e.Timestamp.Format(time.RFC3339))
}

// UnknownUnitError reports a declared or inferred unit with no conversion
// into the field's canonical unit.
type UnknownUnitError struct {
	Field string
	Unit  string
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("mapping: unknown unit %q for field %q", e.Unit, e.Field)
}
