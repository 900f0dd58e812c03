// Package schema defines the canonical weather observation vocabulary.
//
// # Canonical Fields
//
// Every observation table the toolkit produces is keyed by a UTC timestamp
// and carries a fixed set of canonical columns:
//
//	temp_c       air temperature, °C
//	rh_pct       relative humidity, %
//	pres_hpa     station pressure, hPa
//	wspd_ms      wind speed, m/s
//	wdir_deg     wind direction, degrees from north
//	gust_ms      wind gust, m/s
//	rain_mm      rainfall per interval, mm
//	solar_wm2    solar irradiance, W/m²
//	uv_index     UV index, unitless
//	dew_point_c  dew point, °C (derived)
//	vpd_kpa      vapor pressure deficit, kPa (derived)
//
// Vendor exports name these columns freely ("Temperature (°F)", "temp_f",
// "Outdoor Temp"). Each field carries name regexes the detector matches
// source headers against, the set of source units a converter exists for,
// physical plausibility bounds for the range check, and the aggregation
// (mean or sum) used when the series is resampled. Rainfall is the only
// sum-aggregated field.
//
// # Units
//
// Unit tokens are lowercase ("f", "mph", "hpa"). A field's canonical unit
// always appears in its unit set; "mbar" is accepted as an alias of "hpa"
// since the two are numerically identical.
//
// The Default registry is shared and read-only after construction. Callers
// needing extra fields build their own Schema with New.
package schema
