package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/kkartas/metdata/internal/derive"
	"github.com/kkartas/metdata/internal/mapping"
	"github.com/kkartas/metdata/internal/observability"
	"github.com/kkartas/metdata/internal/qc"
	"github.com/kkartas/metdata/internal/schema"
	"github.com/kkartas/metdata/internal/table"
)

// QCTransformer implements BatchTransformer: it assembles a batch of raw
// rows into a source table, applies the confirmed mapping, derives secondary
// fields, and runs the QC engine before serializing each flagged row.
type QCTransformer struct {
	schema  *schema.Schema
	mapping *mapping.Mapping
	engine  *qc.Engine
	opts    mapping.ApplyOptions
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewTransformer creates a QCTransformer.
func NewTransformer(sch *schema.Schema, m *mapping.Mapping, engine *qc.Engine, opts mapping.ApplyOptions, metrics *observability.Metrics, logger *slog.Logger) *QCTransformer {
	return &QCTransformer{
		schema:  sch,
		mapping: m,
		engine:  engine,
		opts:    opts,
		metrics: metrics,
		logger:  logger,
	}
}

// TransformBatch maps and QC-flags one batch of observation rows.
func (t *QCTransformer) TransformBatch(_ context.Context, raws []RawEvent) ([]OutputEvent, error) {
	src, err := assembleSource(raws)
	if err != nil {
		return nil, err
	}

	tbl, err := mapping.Apply(src, t.mapping, t.schema, t.opts)
	if err != nil {
		return nil, err
	}

	if _, err := derive.DewPoint(tbl); err != nil {
		return nil, err
	}
	if _, err := derive.VPD(tbl); err != nil {
		return nil, err
	}

	if _, err := t.engine.Run(tbl); err != nil {
		return nil, err
	}
	t.observeFlags(tbl)

	return serializeTable(tbl)
}

// assembleSource decodes the flat JSON rows into one source table. The
// column set is the union over the batch; rows missing a column get an
// empty cell.
func assembleSource(raws []RawEvent) (*table.Source, error) {
	var columns []string
	seen := make(map[string]bool)
	rows := make([]map[string]string, 0, len(raws))

	for i, raw := range raws {
		var obj map[string]any
		if err := json.Unmarshal(raw.Value, &obj); err != nil {
			return nil, fmt.Errorf("parse observation row %d: %w", i, err)
		}
		row := make(map[string]string, len(obj))
		for k, v := range obj {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
			row[k] = cellString(v)
		}
		rows = append(rows, row)
	}

	records := make([][]string, len(rows))
	for i, row := range rows {
		rec := make([]string, len(columns))
		for j, c := range columns {
			rec[j] = row[c]
		}
		records[i] = rec
	}
	return table.NewSource(columns, records)
}

// cellString renders a decoded JSON scalar the way it would appear in a CSV
// cell. Numbers keep full precision; null becomes an empty cell.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// observeFlags feeds the QC outcome into the pipeline metrics.
func (t *QCTransformer) observeFlags(tbl *table.Table) {
	flagged := 0
	for _, v := range tbl.Any() {
		if v {
			flagged++
		}
	}
	t.metrics.RowsFlagged.Add(float64(flagged))

	for _, name := range tbl.FlagColumns() {
		flags, _ := tbl.Flags(name)
		n := 0
		for _, v := range flags {
			if v {
				n++
			}
		}
		if n > 0 {
			t.metrics.FlagsRaised.WithLabelValues(checkLabel(name)).Add(float64(n))
		}
	}
}

// checkLabel reduces a flag column name to its check type for metric labels.
func checkLabel(flagCol string) string {
	for _, check := range []string{qc.CheckRange, qc.CheckSpike, qc.CheckFlatline} {
		if len(flagCol) > len(check) && flagCol[len(flagCol)-len(check):] == check {
			return check
		}
	}
	return "consistency"
}

// serializeTable renders each table row as one sink event, keyed by
// timestamp for per-station ordering downstream.
func serializeTable(tbl *table.Table) ([]OutputEvent, error) {
	processedAt := clock.Now().UTC()
	times := tbl.Times()
	any := tbl.Any()

	events := make([]OutputEvent, 0, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		obs := CanonicalObservation{
			Time:        times[i],
			Fields:      make(map[string]*float64, len(tbl.ValueColumns())),
			Flags:       make(map[string]bool, len(tbl.FlagColumns())),
			ProcessedAt: processedAt,
		}
		for _, name := range tbl.ValueColumns() {
			vals, _ := tbl.Values(name)
			if math.IsNaN(vals[i]) {
				obs.Fields[name] = nil
			} else {
				v := vals[i]
				obs.Fields[name] = &v
			}
		}
		for _, name := range tbl.FlagColumns() {
			flags, _ := tbl.Flags(name)
			obs.Flags[name] = flags[i]
		}
		if any != nil {
			obs.QCAny = any[i]
		}

		data, err := json.Marshal(obs)
		if err != nil {
			return nil, fmt.Errorf("serialize observation: %w", err)
		}
		events = append(events, OutputEvent{
			Key:   []byte(times[i].Format(time.RFC3339)),
			Value: data,
			Headers: map[string]string{
				"processed_at": processedAt.Format(time.RFC3339),
			},
		})
	}
	return events, nil
}
