// Package derive computes secondary meteorological quantities from the
// canonical columns: Magnus dew point, saturation vapor pressure, and vapor
// pressure deficit. Derived columns are regular canonical fields and go
// through QC like any mapped column.
package derive

import (
	"math"

	"github.com/kkartas/metdata/internal/schema"
	"github.com/kkartas/metdata/internal/table"
)

// Magnus formula coefficients over liquid water.
const (
	magnusA = 17.62
	magnusB = 243.12 // °C
)

// DewPoint adds a dew_point_c column computed from temperature and relative
// humidity. Rows where either input is missing yield missing. Returns false
// when the required columns are not present (no-op, not an error).
func DewPoint(t *table.Table) (bool, error) {
	temp, okT := t.Values(schema.TempC)
	rh, okRH := t.Values(schema.RHPct)
	if !okT || !okRH {
		return false, nil
	}
	out := make([]float64, t.Len())
	for i := range out {
		out[i] = dewPointC(temp[i], rh[i])
	}
	return true, t.SetValues(schema.DewPointC, out)
}

func dewPointC(tempC, rhPct float64) float64 {
	if math.IsNaN(tempC) || math.IsNaN(rhPct) {
		return table.Missing()
	}
	rh := clamp(rhPct, 1e-6, 100)
	gamma := math.Log(rh/100) + magnusA*tempC/(magnusB+tempC)
	return magnusB * gamma / (magnusA - gamma)
}

// SaturationVaporPressureKPa returns the saturation vapor pressure for a
// temperature in °C (Tetens approximation).
func SaturationVaporPressureKPa(tempC float64) float64 {
	return 0.6108 * math.Exp(17.27*tempC/(tempC+237.3))
}

// VPD adds a vpd_kpa (vapor pressure deficit) column from temperature and
// relative humidity. Returns false when the required columns are absent.
func VPD(t *table.Table) (bool, error) {
	temp, okT := t.Values(schema.TempC)
	rh, okRH := t.Values(schema.RHPct)
	if !okT || !okRH {
		return false, nil
	}
	out := make([]float64, t.Len())
	for i := range out {
		if math.IsNaN(temp[i]) || math.IsNaN(rh[i]) {
			out[i] = table.Missing()
			continue
		}
		es := SaturationVaporPressureKPa(temp[i])
		ea := es * clamp(rh[i], 0, 100) / 100
		out[i] = es - ea
	}
	return true, t.SetValues(schema.VPDKPa, out)
}

// FixAccumRain converts a cumulative rain counter into per-interval
// amounts by differencing consecutive readings. A negative difference means
// the counter reset; the raw reading after a reset is taken as that
// interval's amount. Where the difference is undefined (the first row, a
// missing reading, or the row after one) the amount is 0: there is no base
// to difference against. No-op when the table has no rain column.
func FixAccumRain(t *table.Table) {
	rain, ok := t.Values(schema.RainMM)
	if !ok {
		return
	}
	out := make([]float64, len(rain))
	for i, v := range rain {
		switch {
		case i == 0, table.IsMissing(v), table.IsMissing(rain[i-1]):
			out[i] = 0
		case v >= rain[i-1]:
			out[i] = v - rain[i-1]
		default:
			out[i] = v
		}
	}
	// SetValues cannot fail here: out matches the table length.
	_ = t.SetValues(schema.RainMM, out)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
