// Package mapping persists and applies a confirmed field↔column↔unit
// mapping. A mapping is produced by the detector (tentative, then confirmed
// by the caller) or handwritten, stored as YAML, and consumed exactly once
// by Apply to turn a raw source table into a canonical one.
package mapping

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kkartas/metdata/internal/detect"
)

// CurrentVersion is the mapping file format version this package writes.
const CurrentVersion = 1

// TimestampRef names the source column holding the time index.
type TimestampRef struct {
	Col string `yaml:"col"`
}

// FieldRef binds a canonical field to a source column and its reporting
// unit. An empty unit means the column is already in the field's canonical
// unit and needs no conversion.
type FieldRef struct {
	Col        string  `yaml:"col"`
	Unit       string  `yaml:"unit,omitempty"`
	Confidence float64 `yaml:"confidence,omitempty"`
}

// Mapping is the persisted field↔column↔unit binding.
type Mapping struct {
	Version int                 `yaml:"version"`
	TS      TimestampRef        `yaml:"ts"`
	Fields  map[string]FieldRef `yaml:"fields"`
}

// Parse decodes a YAML mapping document.
func Parse(data []byte) (*Mapping, error) {
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse mapping: %w", err)
	}
	if m.Version == 0 {
		m.Version = CurrentVersion
	}
	if m.Fields == nil {
		m.Fields = make(map[string]FieldRef)
	}
	return &m, nil
}

// Marshal encodes the mapping as YAML.
func (m *Mapping) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal mapping: %w", err)
	}
	return data, nil
}

// Load reads a mapping file from disk.
func Load(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load mapping: %w", err)
	}
	return Parse(data)
}

// Save writes the mapping to disk as YAML.
func (m *Mapping) Save(path string) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save mapping: %w", err)
	}
	return nil
}

// Overrides captures the caller's corrections to a detection result. The
// interactive wizard is modeled as exactly this: a pure override set, not
// part of the core.
type Overrides struct {
	// TimestampColumn replaces the detected timestamp column when non-empty.
	TimestampColumn string
	// Fields replace or add entries by canonical field name.
	Fields map[string]FieldRef
	// Drop removes canonical fields from the mapping.
	Drop []string
}

// FromDetection builds a tentative Mapping from a detection result, taking
// each field's top candidate, then applies the overrides. Detection
// confidences are carried into the file (rounded) so a reviewer can judge
// the guesses.
func FromDetection(res *detect.Result, ov Overrides) *Mapping {
	m := &Mapping{
		Version: CurrentVersion,
		Fields:  make(map[string]FieldRef),
	}
	if best, ok := res.BestTimestamp(); ok {
		m.TS.Col = best.Column
	}
	for _, name := range res.FieldNames() {
		best, ok := res.Best(name)
		if !ok {
			continue
		}
		m.Fields[name] = FieldRef{
			Col:        best.Column,
			Unit:       best.Unit,
			Confidence: math.Round(best.Confidence*100) / 100,
		}
	}

	if ov.TimestampColumn != "" {
		m.TS.Col = ov.TimestampColumn
	}
	for name, ref := range ov.Fields {
		m.Fields[name] = ref
	}
	for _, name := range ov.Drop {
		delete(m.Fields, name)
	}
	return m
}

// Template returns a skeleton mapping covering every canonical field, for
// hand editing.
func Template(fields []string) *Mapping {
	m := &Mapping{
		Version: CurrentVersion,
		TS:      TimestampRef{Col: "timestamp"},
		Fields:  make(map[string]FieldRef, len(fields)),
	}
	for _, f := range fields {
		m.Fields[f] = FieldRef{Col: ""}
	}
	return m
}
