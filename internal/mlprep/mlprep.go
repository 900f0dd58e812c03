// Package mlprep builds model-ready tables from a canonical table: lagged
// feature columns, future-horizon targets, leakage-safe time splits, and
// serializable scalers. It consumes the canonical table read-only and never
// touches QC flag columns.
package mlprep

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/kkartas/metdata/internal/table"
)

// Frame is a plain supervised-learning table: a time index and named
// float64 columns in a fixed order.
type Frame struct {
	Times   []time.Time
	Columns []string
	Data    map[string][]float64
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Times) }

func (f *Frame) addColumn(name string, vals []float64) {
	if _, exists := f.Data[name]; !exists {
		f.Columns = append(f.Columns, name)
	}
	f.Data[name] = vals
}

// MakeSupervised builds a supervised table from the canonical value
// columns: `<col>_lag<n>` features for each lag and `<tgt>_t+<h>` targets
// for each horizon. Targets not present in the table are skipped. When
// dropNA is true, rows with any missing cell are removed, the usual choice
// before training.
func MakeSupervised(t *table.Table, targets []string, lags, horizons []int, dropNA bool) *Frame {
	f := &Frame{Times: append([]time.Time(nil), t.Times()...), Data: make(map[string][]float64)}

	for _, name := range t.ValueColumns() {
		vals, _ := t.Values(name)
		f.addColumn(name, append([]float64(nil), vals...))
	}
	for _, n := range lags {
		for _, name := range t.ValueColumns() {
			vals, _ := t.Values(name)
			f.addColumn(fmt.Sprintf("%s_lag%d", name, n), shift(vals, n))
		}
	}
	for _, tgt := range targets {
		vals, ok := t.Values(tgt)
		if !ok {
			continue
		}
		for _, h := range horizons {
			f.addColumn(fmt.Sprintf("%s_t+%d", tgt, h), shift(vals, -h))
		}
	}

	if dropNA {
		f = f.dropMissingRows()
	}
	return f
}

// shift moves values forward by n rows (backward for negative n), filling
// vacated positions with missing.
func shift(vals []float64, n int) []float64 {
	out := make([]float64, len(vals))
	for i := range out {
		j := i - n
		if j < 0 || j >= len(vals) {
			out[i] = math.NaN()
		} else {
			out[i] = vals[j]
		}
	}
	return out
}

func (f *Frame) dropMissingRows() *Frame {
	keep := make([]int, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		complete := true
		for _, name := range f.Columns {
			if math.IsNaN(f.Data[name][i]) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}
	return f.selectRows(keep)
}

func (f *Frame) selectRows(idx []int) *Frame {
	out := &Frame{Data: make(map[string][]float64, len(f.Columns))}
	out.Times = make([]time.Time, len(idx))
	for j, i := range idx {
		out.Times[j] = f.Times[i]
	}
	for _, name := range f.Columns {
		src := f.Data[name]
		col := make([]float64, len(idx))
		for j, i := range idx {
			col[j] = src[i]
		}
		out.addColumn(name, col)
	}
	return out
}

// TimeSplit partitions the frame at time boundaries, which is leakage-safe
// for forecasting. A zero valEnd yields an empty validation set (two-way
// split).
func TimeSplit(f *Frame, trainEnd, valEnd time.Time) (train, val, test *Frame) {
	var trainIdx, valIdx, testIdx []int
	for i, ts := range f.Times {
		switch {
		case !ts.After(trainEnd):
			trainIdx = append(trainIdx, i)
		case !valEnd.IsZero() && !ts.After(valEnd):
			valIdx = append(valIdx, i)
		default:
			testIdx = append(testIdx, i)
		}
	}
	return f.selectRows(trainIdx), f.selectRows(valIdx), f.selectRows(testIdx)
}

// Scaler methods.
const (
	ScaleStandard = "standard"
	ScaleMinMax   = "minmax"
	ScaleRobust   = "robust"
)

// ScalerParams are fitted scaling parameters, serializable so a training
// scaler can be replayed on serving data.
type ScalerParams struct {
	Method     string                        `yaml:"method" json:"method"`
	Columns    []string                      `yaml:"columns" json:"columns"`
	Parameters map[string]map[string]float64 `yaml:"parameters" json:"parameters"`
}

// FitScaler fits scaling parameters on the given columns (all columns when
// nil). Degenerate spreads (zero sigma, range, or IQR) fall back to scale 1
// so applying the scaler never divides by zero.
func FitScaler(f *Frame, method string, columns []string) (*ScalerParams, error) {
	if columns == nil {
		columns = f.Columns
	}
	p := &ScalerParams{Method: method, Columns: columns, Parameters: make(map[string]map[string]float64)}
	for _, name := range columns {
		col, ok := f.Data[name]
		if !ok {
			return nil, fmt.Errorf("mlprep: unknown column %q", name)
		}
		clean := dropNaN(col)
		switch method {
		case ScaleStandard:
			mu, sigma := meanStd(clean)
			p.Parameters[name] = map[string]float64{"mean": mu, "scale": orOne(sigma)}
		case ScaleMinMax:
			lo, hi := minMax(clean)
			p.Parameters[name] = map[string]float64{"min": lo, "scale": orOne(hi - lo)}
		case ScaleRobust:
			med := quantile(clean, 0.5)
			iqr := quantile(clean, 0.75) - quantile(clean, 0.25)
			p.Parameters[name] = map[string]float64{"median": med, "iqr": orOne(iqr)}
		default:
			return nil, fmt.Errorf("mlprep: unknown scaling method %q", method)
		}
	}
	return p, nil
}

// ApplyScaler returns a copy of the frame with the fitted scaling applied.
// Columns absent from either side are left untouched.
func ApplyScaler(f *Frame, s *ScalerParams) (*Frame, error) {
	out := f.selectRows(allRows(f.Len()))
	for _, name := range s.Columns {
		col, ok := out.Data[name]
		if !ok {
			continue
		}
		params, ok := s.Parameters[name]
		if !ok {
			continue
		}
		var center, scale float64
		switch s.Method {
		case ScaleStandard:
			center, scale = params["mean"], params["scale"]
		case ScaleMinMax:
			center, scale = params["min"], params["scale"]
		case ScaleRobust:
			center, scale = params["median"], params["iqr"]
		default:
			return nil, fmt.Errorf("mlprep: unknown scaling method %q", s.Method)
		}
		for i, v := range col {
			col[i] = (v - center) / scale
		}
	}
	return out, nil
}

func allRows(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func dropNaN(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func meanStd(vals []float64) (mu, sigma float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	for _, v := range vals {
		mu += v
	}
	mu /= float64(len(vals))
	var ss float64
	for _, v := range vals {
		d := v - mu
		ss += d * d
	}
	return mu, math.Sqrt(ss / float64(len(vals)))
}

func minMax(vals []float64) (lo, hi float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	lo, hi = vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func quantile(vals []float64, q float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
