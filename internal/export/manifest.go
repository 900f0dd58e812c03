package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/kkartas/metdata/internal/table"
)

// clock is the manifest time source; tests freeze it via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the manifest time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Manifest records the provenance of an exported table: what went in, what
// mapping shaped it, and when.
type Manifest struct {
	RunID       string    `json:"run_id"`
	CreatedAt   time.Time `json:"created_at"`
	InputPath   string    `json:"input_path,omitempty"`
	MappingPath string    `json:"mapping_path,omitempty"`
	Rows        int       `json:"rows"`
	Columns     []string  `json:"columns"`
	Start       time.Time `json:"start,omitempty"`
	End         time.Time `json:"end,omitempty"`
}

// NewManifest builds a manifest for the table with a fresh run ID.
func NewManifest(t *table.Table, inputPath, mappingPath string) *Manifest {
	m := &Manifest{
		RunID:       uuid.NewString(),
		CreatedAt:   clock.Now().UTC(),
		InputPath:   inputPath,
		MappingPath: mappingPath,
		Rows:        t.Len(),
		Columns:     t.ValueColumns(),
	}
	if times := t.Times(); len(times) > 0 {
		m.Start = times[0]
		m.End = times[len(times)-1]
	}
	return m
}

// WriteFile serializes the manifest as indented JSON.
func (m *Manifest) WriteFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export: write manifest: %w", err)
	}
	return nil
}
