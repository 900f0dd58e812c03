// Package units converts observation values between reporting units and the
// canonical units of the field registry, and recognizes unit hints embedded
// in source column headers.
//
// All conversions are fixed linear or affine transforms. Unit tokens are
// normalized to a lowercase vocabulary before lookup, so "MPH", "mph" and
// "Mph" are the same unit.
package units

import "strings"

// Conversion transforms a value in a source unit into the canonical unit.
type Conversion func(float64) float64

func identity(v float64) float64 { return v }

func fahrenheitToC(v float64) float64 { return (v - 32.0) * 5.0 / 9.0 }
func mphToMS(v float64) float64       { return v * 0.44704 }
func kmhToMS(v float64) float64       { return v / 3.6 }
func paToHPa(v float64) float64       { return v / 100.0 }
func inchToMM(v float64) float64      { return v * 25.4 }

// fieldConverters maps canonical field name → reporting unit → conversion
// into the field's canonical unit. Fields absent here accept only their
// canonical unit.
var fieldConverters = map[string]map[string]Conversion{
	"temp_c":      {"c": identity, "f": fahrenheitToC},
	"dew_point_c": {"c": identity, "f": fahrenheitToC},
	"wspd_ms":     {"m/s": identity, "mph": mphToMS, "km/h": kmhToMS},
	"gust_ms":     {"m/s": identity, "mph": mphToMS, "km/h": kmhToMS},
	"pres_hpa":    {"hpa": identity, "mbar": identity, "pa": paToHPa},
	"rain_mm":     {"mm": identity, "inch": inchToMM},
}

// Normalize maps a unit token onto the internal lowercase vocabulary.
// Common spelling variants collapse to one token ("kmh" → "km/h", "in" →
// "inch", "mb" → "mbar").
func Normalize(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	u = strings.TrimPrefix(u, "°")
	switch u {
	case "kmh", "kph", "km/hr":
		return "km/h"
	case "ms", "m/sec", "mps":
		return "m/s"
	case "in", "inches":
		return "inch"
	case "mb":
		return "mbar"
	case "celsius", "degc":
		return "c"
	case "fahrenheit", "degf":
		return "f"
	case "percent", "pct":
		return "%"
	case "wm2", "w/m²":
		return "w/m2"
	}
	return u
}

// For returns the conversion from the given unit into the field's canonical
// unit. The boolean is false when the unit is not recognized for the field.
// A field without a converter table accepts only its canonical unit, which
// resolves to the identity conversion.
func For(fieldName, canonicalUnit, unit string) (Conversion, bool) {
	u := Normalize(unit)
	if convs, ok := fieldConverters[fieldName]; ok {
		c, ok := convs[u]
		return c, ok
	}
	if u == Normalize(canonicalUnit) {
		return identity, true
	}
	return nil, false
}
