package resample

import (
	"time"

	"github.com/kkartas/metdata/internal/table"
)

// InsertMissing reindexes the table onto a regular grid at the given
// frequency, from the first to the last observed timestamp. Inserted rows
// carry missing values, false flags, and a true gap marker. Off-grid rows
// fill their truncated slot only when no on-grid row occupies it; station
// exports are grid-aligned in practice, so this is a rare fallback.
func InsertMissing(t *table.Table, freq time.Duration) (*table.Table, error) {
	times := t.Times()
	if len(times) == 0 || freq <= 0 {
		return t, nil
	}

	first, last := times[0], times[len(times)-1]
	n := int(last.Sub(first)/freq) + 1

	outTimes := make([]time.Time, n)
	for i := range outTimes {
		outTimes[i] = first.Add(time.Duration(i) * freq)
	}
	out := table.New(outTimes)

	// Map existing rows onto grid slots; off-grid rows keep the values of
	// the slot they truncate into only if the slot is otherwise empty.
	slot := make([]int, len(times))
	occupied := make(map[int]int, len(times))
	for i, ts := range times {
		s := int(ts.Sub(first) / freq)
		slot[i] = s
		if _, taken := occupied[s]; !taken {
			occupied[s] = i
		}
	}

	for _, name := range t.ValueColumns() {
		vals, _ := t.Values(name)
		outVals := make([]float64, n)
		for s := range outVals {
			if i, ok := occupied[s]; ok {
				outVals[s] = vals[i]
			} else {
				outVals[s] = table.Missing()
			}
		}
		if err := out.SetValues(name, outVals); err != nil {
			return nil, err
		}
	}

	for _, name := range t.FlagColumns() {
		flags, _ := t.Flags(name)
		outFlags := make([]bool, n)
		for s := range outFlags {
			if i, ok := occupied[s]; ok {
				outFlags[s] = flags[i]
			}
		}
		if err := out.SetFlags(name, outFlags); err != nil {
			return nil, err
		}
	}

	gap := make([]bool, n)
	inGap := t.Gap()
	for s := range gap {
		i, ok := occupied[s]
		gap[s] = !ok || inGap[i]
	}
	if err := out.SetGap(gap); err != nil {
		return nil, err
	}
	return out, nil
}
