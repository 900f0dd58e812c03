package export

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkartas/metdata/internal/mapping"
	"github.com/kkartas/metdata/internal/table"
)

func flaggedTable(t *testing.T) *table.Table {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tbl := table.New([]time.Time{base, base.Add(10 * time.Minute), base.Add(20 * time.Minute)})
	require.NoError(t, tbl.SetValues("temp_c", []float64{10.5, math.NaN(), 12}))
	require.NoError(t, tbl.SetValues("rh_pct", []float64{80, 81, 82}))
	require.NoError(t, tbl.SetFlags("qc_temp_c_range", []bool{false, true, false}))
	require.NoError(t, tbl.SetGap([]bool{false, false, true}))
	return tbl
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, flaggedTable(t)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "time_utc,temp_c,rh_pct,qc_temp_c_range,qc_any,gap", lines[0])
	assert.Equal(t, "2024-01-01T00:00:00Z,10.5,80,false,false,false", lines[1])
	// Missing values serialize as empty cells.
	assert.Equal(t, "2024-01-01T00:10:00Z,,81,true,true,false", lines[2])
	assert.Equal(t, "2024-01-01T00:20:00Z,12,82,false,false,true", lines[3])
}

func TestCSV_RoundTrip(t *testing.T) {
	in := flaggedTable(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, in))
	out, err := ReadCSV(&buf)
	require.NoError(t, err)

	assert.Equal(t, in.Times(), out.Times())
	assert.Equal(t, in.ValueColumns(), out.ValueColumns())
	assert.Equal(t, in.FlagColumns(), out.FlagColumns())
	assert.Equal(t, in.Gap(), out.Gap())
	assert.Equal(t, in.Any(), out.Any())

	rh, ok := out.Values("rh_pct")
	require.True(t, ok)
	assert.Equal(t, []float64{80, 81, 82}, rh)

	temp, _ := out.Values("temp_c")
	assert.Equal(t, 10.5, temp[0])
	assert.True(t, math.IsNaN(temp[1]))
}

func TestReadCSV_RejectsBrokenIndex(t *testing.T) {
	t.Run("descending timestamps", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(
			"time_utc,temp_c\n2024-01-01T02:00:00Z,1\n2024-01-01T00:00:00Z,2\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of order")
	})

	t.Run("duplicate timestamps", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(
			"time_utc,temp_c\n2024-01-01T00:00:00Z,1\n2024-01-01T00:00:00Z,2\n"))
		var dte *mapping.DuplicateTimestampError
		require.ErrorAs(t, err, &dte)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), dte.Timestamp)
	})
}

func TestReadCSV_NotCanonical(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n1,2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "time_utc")
}

func TestReadCSV_BadCells(t *testing.T) {
	t.Run("bad timestamp", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("time_utc,temp_c\nnope,1\n"))
		require.Error(t, err)
	})

	t.Run("bad value", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("time_utc,temp_c\n2024-01-01T00:00:00Z,abc\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "temp_c")
	})
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canonical.csv")
	require.NoError(t, WriteCSVFile(path, flaggedTable(t)))

	out, err := ReadCSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())
}

func TestNewReport(t *testing.T) {
	r := NewReport(flaggedTable(t))

	assert.Equal(t, 3, r.Rows)
	assert.Equal(t, 1, r.Flagged)
	assert.Equal(t, map[string]int{"qc_temp_c_range": 1}, r.ByColumn)
}

func TestReport_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, NewReport(flaggedTable(t)).WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 1, got.Flagged)
}

func TestNewManifest(t *testing.T) {
	frozen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	defer SetClock(nil)

	tbl := flaggedTable(t)
	m := NewManifest(tbl, "in.csv", "mapping.yaml")

	assert.NotEmpty(t, m.RunID)
	assert.Equal(t, frozen, m.CreatedAt)
	assert.Equal(t, "in.csv", m.InputPath)
	assert.Equal(t, "mapping.yaml", m.MappingPath)
	assert.Equal(t, 3, m.Rows)
	assert.Equal(t, []string{"temp_c", "rh_pct"}, m.Columns)
	assert.Equal(t, tbl.Times()[0], m.Start)
	assert.Equal(t, tbl.Times()[2], m.End)

	// Fresh ID per run.
	m2 := NewManifest(tbl, "in.csv", "mapping.yaml")
	assert.NotEqual(t, m.RunID, m2.RunID)
}

func TestManifest_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	m := NewManifest(flaggedTable(t), "", "")
	require.NoError(t, m.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Manifest
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, m.RunID, got.RunID)
	assert.Equal(t, 3, got.Rows)
}
