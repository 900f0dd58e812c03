package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor_Conversions(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		unit     string
		in       float64
		expected float64
	}{
		{"fahrenheit to celsius", "temp_c", "f", 32, 0},
		{"fahrenheit boiling", "temp_c", "f", 212, 100},
		{"mph to m/s", "wspd_ms", "mph", 10, 4.4704},
		{"km/h to m/s", "wspd_ms", "km/h", 36, 10},
		{"pa to hpa", "pres_hpa", "pa", 101300, 1013},
		{"mbar is hpa", "pres_hpa", "mbar", 1013, 1013},
		{"inch to mm", "rain_mm", "inch", 1, 25.4},
		{"canonical passthrough", "temp_c", "c", -12.5, -12.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conv, ok := For(tc.field, "", tc.unit)
			require.True(t, ok)
			assert.InDelta(t, tc.expected, conv(tc.in), 1e-9)
		})
	}
}

func TestFor_UnknownUnit(t *testing.T) {
	_, ok := For("temp_c", "c", "kelvin")
	assert.False(t, ok)

	_, ok = For("rain_mm", "mm", "mph")
	assert.False(t, ok)
}

func TestFor_FieldWithoutConverterTable(t *testing.T) {
	// Fields absent from the converter map accept only their canonical unit.
	conv, ok := For("rh_pct", "%", "%")
	require.True(t, ok)
	assert.Equal(t, 55.0, conv(55.0))

	_, ok = For("rh_pct", "%", "f")
	assert.False(t, ok)
}

func TestFor_NormalizesCase(t *testing.T) {
	conv, ok := For("wspd_ms", "m/s", "MPH")
	require.True(t, ok)
	assert.InDelta(t, 4.4704, conv(10), 1e-9)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"MPH", "mph"},
		{" kmh ", "km/h"},
		{"kph", "km/h"},
		{"mps", "m/s"},
		{"in", "inch"},
		{"inches", "inch"},
		{"mb", "mbar"},
		{"Celsius", "c"},
		{"degF", "f"},
		{"°C", "c"},
		{"percent", "%"},
		{"wm2", "w/m2"},
		{"hpa", "hpa"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.in))
		})
	}
}

func TestParseHint(t *testing.T) {
	tests := []struct {
		header   string
		unit     string
		expected bool
	}{
		{"Temperature (°F)", "f", true},
		{"temp_f", "f", true},
		{"Outdoor Temperature (C)", "c", true},
		{"Wind Speed (mph)", "mph", true},
		{"windspeed_kmh", "km/h", true},
		{"wind_speed_m/s", "m/s", true},
		{"Pressure (hPa)", "hpa", true},
		{"pressure_mbar", "mbar", true},
		{"Pressure (Pa)", "pa", true},
		{"Rainfall (in)", "inch", true},
		{"rain_mm", "mm", true},
		{"Solar Radiation (W/m²)", "w/m2", true},
		{"humidity", "", false},
		{"station_id", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.header, func(t *testing.T) {
			unit, ok := ParseHint(tc.header)
			assert.Equal(t, tc.expected, ok)
			assert.Equal(t, tc.unit, unit)
		})
	}
}

func TestParseHint_HPaNotClaimedByPa(t *testing.T) {
	unit, ok := ParseHint("barometric_hpa")
	require.True(t, ok)
	assert.Equal(t, "hpa", unit)
}
