// Package resample reduces a canonical table to a coarser time step.
//
// Values aggregate by each field's registered rule (mean for intensive
// quantities, sum for accumulated ones). Boolean QC flags aggregate by
// logical OR: a bin is flagged if any contributing observation was flagged.
// Averaging a flag away would silently launder a known problem, so flags
// only ever propagate, never dilute.
package resample

import (
	"fmt"
	"time"

	"github.com/kkartas/metdata/internal/schema"
	"github.com/kkartas/metdata/internal/table"
)

// Aggregate resamples the table to the target frequency. Output bin
// timestamps are the start of each interval, and the output index is
// complete from the first to the last occupied bin: bins with zero
// contributing rows are retained with missing values and a gap marker, not
// dropped.
func Aggregate(t *table.Table, sch *schema.Schema, freq time.Duration) (*table.Table, error) {
	if freq <= 0 {
		return nil, fmt.Errorf("resample: frequency must be positive, got %s", freq)
	}
	times := t.Times()
	if len(times) == 0 {
		return table.New(nil), nil
	}

	first := times[0].Truncate(freq)
	last := times[len(times)-1].Truncate(freq)
	nBins := int(last.Sub(first)/freq) + 1

	outTimes := make([]time.Time, nBins)
	for i := range outTimes {
		outTimes[i] = first.Add(time.Duration(i) * freq)
	}
	out := table.New(outTimes)

	// binOf assumes the validated, sorted index the mapper guarantees.
	binOf := make([]int, len(times))
	counts := make([]int, nBins)
	for i, ts := range times {
		b := int(ts.Truncate(freq).Sub(first) / freq)
		binOf[i] = b
		counts[b]++
	}

	for _, name := range t.ValueColumns() {
		f, err := sch.Lookup(name)
		if err != nil {
			return nil, err
		}
		vals, _ := t.Values(name)

		sums := make([]float64, nBins)
		present := make([]int, nBins)
		for i, v := range vals {
			if table.IsMissing(v) {
				continue
			}
			sums[binOf[i]] += v
			present[binOf[i]]++
		}

		outVals := make([]float64, nBins)
		for b := range outVals {
			if present[b] == 0 {
				outVals[b] = table.Missing()
				continue
			}
			switch f.Aggregation {
			case schema.AggSum:
				outVals[b] = sums[b]
			default:
				outVals[b] = sums[b] / float64(present[b])
			}
		}
		if err := out.SetValues(name, outVals); err != nil {
			return nil, err
		}
	}

	for _, name := range t.FlagColumns() {
		flags, _ := t.Flags(name)
		outFlags := make([]bool, nBins)
		for i, v := range flags {
			if v {
				outFlags[binOf[i]] = true
			}
		}
		if err := out.SetFlags(name, outFlags); err != nil {
			return nil, err
		}
	}

	gap := make([]bool, nBins)
	for b, c := range counts {
		gap[b] = c == 0
	}
	if err := out.SetGap(gap); err != nil {
		return nil, err
	}

	return out, nil
}
