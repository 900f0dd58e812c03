package table

import "fmt"

// Source is an already-parsed in-memory source table: named columns of raw
// string cells in their original order. It is what the ingestion boundary
// hands the detector and mapper; mixed content is tolerated in columns that
// never get mapped.
type Source struct {
	columns []string
	cells   map[string][]string
	rows    int
}

// NewSource builds a Source from a header and row-major records, the shape a
// CSV reader produces. Every record must have exactly one cell per column.
func NewSource(columns []string, records [][]string) (*Source, error) {
	s := &Source{
		columns: append([]string(nil), columns...),
		cells:   make(map[string][]string, len(columns)),
		rows:    len(records),
	}
	for _, c := range columns {
		if _, dup := s.cells[c]; dup {
			return nil, fmt.Errorf("source table: duplicate column %q", c)
		}
		s.cells[c] = make([]string, 0, len(records))
	}
	for i, rec := range records {
		if len(rec) != len(columns) {
			return nil, fmt.Errorf("source table: row %d has %d cells, want %d", i, len(rec), len(columns))
		}
		for j, c := range columns {
			s.cells[c] = append(s.cells[c], rec[j])
		}
	}
	return s, nil
}

// Columns returns the column names in source order.
func (s *Source) Columns() []string { return s.columns }

// Column returns the raw cells of a column. The boolean is false when the
// column does not exist.
func (s *Source) Column(name string) ([]string, bool) {
	cells, ok := s.cells[name]
	return cells, ok
}

// Len returns the number of rows.
func (s *Source) Len() int { return s.rows }
