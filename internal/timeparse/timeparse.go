// Package timeparse recognizes the common timestamp spellings found in
// weather station exports. The layout list is deliberately small: formats
// outside it should surface as a mapping problem, not be guessed around.
package timeparse

import (
	"strings"
	"time"
)

// Layouts are tried in order. Date-only layouts come last so a full
// date-time is never truncated by an early match.
var Layouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"01/02/2006 15:04",
	"02.01.2006 15:04",
	"2006-01-02",
}

// Parse interprets a raw cell as a timestamp. Naive spellings (no zone
// offset in the text) are taken to be in loc; spellings with an explicit
// offset keep it. The result is always returned in UTC. The boolean is
// false when no layout matches.
func Parse(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	for _, layout := range Layouts[1:] {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
