package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeDayIgnoresCaseAndWhitespace(t *testing.T) {
	for _, raw := range []string{"monday", " Monday ", "MONDAY", "\tmOnDaY\n"} {
		day, ok := NormalizeDay(raw)
		require.True(t, ok, raw)
		require.Equal(t, Monday, day, raw)
	}
}

func TestNormalizeDayRejectsUnknown(t *testing.T) {
	for _, raw := range []string{"", "   ", "Mon", "Funday", "monday!"} {
		_, ok := NormalizeDay(raw)
		require.False(t, ok, raw)
	}
}

func TestWeekdayNamesRoundTrip(t *testing.T) {
	for i, day := range Weekdays {
		require.Equal(t, i, day.Index())
		parsed, ok := NormalizeDay(day.String())
		require.True(t, ok)
		require.Equal(t, day, parsed)
	}
	require.Equal(t, "", Weekday(9).String())
}

func TestMondayIndex(t *testing.T) {
	// 2025-10-27 is a Monday.
	monday := time.Date(2025, time.October, 27, 9, 0, 0, 0, time.UTC)
	require.Equal(t, 0, MondayIndex(monday))
	require.Equal(t, 3, MondayIndex(monday.AddDate(0, 0, 3)))
	require.Equal(t, 6, MondayIndex(monday.AddDate(0, 0, 6)))
}
