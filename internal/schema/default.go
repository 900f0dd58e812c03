package schema

import "regexp"

// Canonical field names.
const (
	TempC     = "temp_c"
	RHPct     = "rh_pct"
	PresHPa   = "pres_hpa"
	WspdMS    = "wspd_ms"
	WdirDeg   = "wdir_deg"
	GustMS    = "gust_ms"
	RainMM    = "rain_mm"
	SolarWM2  = "solar_wm2"
	UVIndex   = "uv_index"
	DewPointC = "dew_point_c"
	VPDKPa    = "vpd_kpa"
)

// TimestampPatterns match source column names that name the time index.
// Ordered from exact to loose; any match scores the full name hint.
var TimestampPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^time$`),
	regexp.MustCompile(`^date$`),
	regexp.MustCompile(`^datetime$`),
	regexp.MustCompile(`^timestamp$`),
	regexp.MustCompile(`date[_\s-]*time`),
	regexp.MustCompile(`^obs[_\s-]*time$`),
}

// Default returns the standard registry of canonical weather fields.
//
// Bounds are surface-observation plausibility limits, not record extremes for
// a particular site: anything outside them is almost certainly a sensor or
// encoding fault. Precipitation is the only sum-aggregated field; everything
// else is an intensive quantity.
func Default() *Schema {
	return MustNew([]*Field{
		{
			Name: TempC, CanonicalUnit: "c", ValidMin: -60, ValidMax: 60,
			Aggregation: AggMean,
			NamePatterns: []*regexp.Regexp{
				regexp.MustCompile(`^temp(erature)?([_\s-].*)?$`),
				regexp.MustCompile(`temperature`),
				regexp.MustCompile(`temp`),
			},
			AlternateUnits: []string{"f"},
		},
		{
			Name: RHPct, CanonicalUnit: "%", ValidMin: 0, ValidMax: 100,
			Aggregation: AggMean,
			NamePatterns: []*regexp.Regexp{
				regexp.MustCompile(`^(rh|rel(ative)?[_\s-]*hum(idity)?)([_\s-].*)?$`),
				regexp.MustCompile(`humid`),
				regexp.MustCompile(`\brh\b`),
			},
		},
		{
			Name: PresHPa, CanonicalUnit: "hpa", ValidMin: 870, ValidMax: 1085,
			Aggregation: AggMean,
			NamePatterns: []*regexp.Regexp{
				regexp.MustCompile(`^press(ure)?([_\s-].*)?$`),
				regexp.MustCompile(`press|baro`),
				regexp.MustCompile(`hpa|mbar`),
			},
			AlternateUnits: []string{"mbar", "pa"},
		},
		{
			Name: WspdMS, CanonicalUnit: "m/s", ValidMin: 0, ValidMax: 75,
			Aggregation: AggMean,
			NamePatterns: []*regexp.Regexp{
				regexp.MustCompile(`^wind[_\s-]*speed([_\s-].*)?$`),
				regexp.MustCompile(`wspd`),
				regexp.MustCompile(`wind[_\s-]*sp`),
			},
			AlternateUnits: []string{"mph", "km/h"},
		},
		{
			Name: WdirDeg, CanonicalUnit: "deg", ValidMin: 0, ValidMax: 360,
			Aggregation: AggMean,
			NamePatterns: []*regexp.Regexp{
				regexp.MustCompile(`^wind[_\s-]*dir(ection)?([_\s-].*)?$`),
				regexp.MustCompile(`wdir`),
				regexp.MustCompile(`\bdir(ection)?\b`),
			},
		},
		{
			Name: GustMS, CanonicalUnit: "m/s", ValidMin: 0, ValidMax: 90,
			Aggregation: AggMean,
			NamePatterns: []*regexp.Regexp{
				regexp.MustCompile(`^(wind[_\s-]*)?gust([_\s-].*)?$`),
				regexp.MustCompile(`gust`),
			},
			AlternateUnits: []string{"mph", "km/h"},
		},
		{
			Name: RainMM, CanonicalUnit: "mm", ValidMin: 0, ValidMax: 500,
			Aggregation: AggSum,
			NamePatterns: []*regexp.Regexp{
				regexp.MustCompile(`^(rain(fall)?|precip(itation)?)([_\s-].*)?$`),
				regexp.MustCompile(`rain|precip`),
				regexp.MustCompile(`^rr$`),
			},
			AlternateUnits: []string{"inch"},
		},
		{
			Name: SolarWM2, CanonicalUnit: "w/m2", ValidMin: 0, ValidMax: 1500,
			Aggregation: AggMean,
			NamePatterns: []*regexp.Regexp{
				regexp.MustCompile(`^solar([_\s-].*)?$`),
				regexp.MustCompile(`irradiance|radiation`),
				regexp.MustCompile(`w/?m2`),
			},
		},
		{
			Name: UVIndex, CanonicalUnit: "index", ValidMin: 0, ValidMax: 20,
			Aggregation: AggMean,
			NamePatterns: []*regexp.Regexp{
				regexp.MustCompile(`^uv([_\s-]*index)?$`),
				regexp.MustCompile(`\buv\b`),
			},
		},
		{
			Name: DewPointC, CanonicalUnit: "c", ValidMin: -60, ValidMax: 50,
			Aggregation: AggMean,
			NamePatterns: []*regexp.Regexp{
				regexp.MustCompile(`^dew[_\s-]*point([_\s-].*)?$`),
				regexp.MustCompile(`dew`),
			},
			AlternateUnits: []string{"f"},
		},
		{
			Name: VPDKPa, CanonicalUnit: "kpa", ValidMin: 0, ValidMax: 15,
			Aggregation: AggMean,
			NamePatterns: []*regexp.Regexp{
				regexp.MustCompile(`^vpd([_\s-].*)?$`),
				regexp.MustCompile(`vap(ou?r)?[_\s-]*press(ure)?[_\s-]*deficit`),
			},
		},
	})
}
