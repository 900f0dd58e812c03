package units

import (
	"regexp"
	"strings"
)

// hintPattern associates a header regex with the unit it implies.
type hintPattern struct {
	re   *regexp.Regexp
	unit string
}

// hintPatterns match unit tokens embedded in source column headers, e.g.
// "Temperature (°F)", "windspeed_mph", "pressure_mbar". Order matters: more
// specific tokens come first so "hpa" is not claimed by the bare "pa" rule.
var hintPatterns = []hintPattern{
	{regexp.MustCompile(`°\s*f\b|[_\s(-]f[)\s]*$|fahrenheit`), "f"},
	{regexp.MustCompile(`°\s*c\b|[_\s(-]c[)\s]*$|celsius`), "c"},
	{regexp.MustCompile(`mph`), "mph"},
	{regexp.MustCompile(`km/?h|kph`), "km/h"},
	{regexp.MustCompile(`m/s`), "m/s"},
	{regexp.MustCompile(`hpa`), "hpa"},
	{regexp.MustCompile(`mbar|\bmb\b`), "mbar"},
	{regexp.MustCompile(`\bpa\b`), "pa"},
	{regexp.MustCompile(`\bin(ch(es)?)?\b`), "inch"},
	{regexp.MustCompile(`\bmm\b`), "mm"},
	{regexp.MustCompile(`w/?m2|w/m²`), "w/m2"},
}

// ParseHint extracts a unit token from a column header, returning the
// normalized unit and true when one is recognized. Matching is
// case-insensitive and treats underscores as separators, so "rain_mm" and
// "Rain (mm)" hint the same unit. Returns false when the header carries no
// unit hint.
func ParseHint(header string) (string, bool) {
	lc := strings.ReplaceAll(strings.ToLower(header), "_", " ")
	for _, hp := range hintPatterns {
		if hp.re.MatchString(lc) {
			return hp.unit, true
		}
	}
	return "", false
}
