package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected time.Time
	}{
		{"rfc3339 utc", "2024-06-15T12:30:00Z", time.Date(2024, 6, 15, 12, 30, 0, 0, time.UTC)},
		{"rfc3339 with offset", "2024-06-15T12:30:00+02:00", time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)},
		{"space separated", "2024-06-15 12:30:00", time.Date(2024, 6, 15, 12, 30, 0, 0, time.UTC)},
		{"t separated no zone", "2024-06-15T12:30:00", time.Date(2024, 6, 15, 12, 30, 0, 0, time.UTC)},
		{"no seconds", "2024-06-15 12:30", time.Date(2024, 6, 15, 12, 30, 0, 0, time.UTC)},
		{"slashes", "2024/06/15 12:30:00", time.Date(2024, 6, 15, 12, 30, 0, 0, time.UTC)},
		{"us style", "06/15/2024 12:30", time.Date(2024, 6, 15, 12, 30, 0, 0, time.UTC)},
		{"dotted european", "15.06.2024 12:30", time.Date(2024, 6, 15, 12, 30, 0, 0, time.UTC)},
		{"date only", "2024-06-15", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"surrounding whitespace", "  2024-06-15 12:30:00  ", time.Date(2024, 6, 15, 12, 30, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Parse(tc.in, time.UTC)
			require.True(t, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestParse_NaiveUsesLocation(t *testing.T) {
	athens, err := time.LoadLocation("Europe/Athens")
	require.NoError(t, err)

	// June: Athens is UTC+3.
	got, ok := Parse("2024-06-15 12:00:00", athens)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC), got)
}

func TestParse_ExplicitOffsetBeatsLocation(t *testing.T) {
	athens, err := time.LoadLocation("Europe/Athens")
	require.NoError(t, err)

	got, ok := Parse("2024-06-15T12:00:00Z", athens)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC), got)
}

func TestParse_Unparseable(t *testing.T) {
	for _, in := range []string{"", "   ", "not a date", "25.5", "2024-13-45"} {
		_, ok := Parse(in, time.UTC)
		assert.False(t, ok, "input %q", in)
	}
}
