// Package aggregator derives weekly view models (day counts, streaks, summaries, hydration)
// from a user's workout and meal snapshots.
//
// Every function here is pure: the output depends only on the arguments, and malformed
// record data degrades to an excluded or zero value instead of an error.
package aggregator

import (
	"strings"
	"time"
)

// Weekday is a canonical day in a Monday-first week. Its value is the day index (Monday=0).
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysInWeek is the number of canonical weekdays.
const DaysInWeek = 7

// Weekdays lists the canonical days in Monday-first order.
var Weekdays = [DaysInWeek]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayNames = [DaysInWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var weekdayLookup = func() map[string]Weekday {
	out := make(map[string]Weekday, DaysInWeek)
	for i, name := range weekdayNames {
		out[strings.ToLower(name)] = Weekday(i)
	}
	return out
}()

// String returns the canonical name, e.g. "Monday".
func (d Weekday) String() string {
	if !d.Valid() {
		return ""
	}
	return weekdayNames[d]
}

// Index returns the Monday-first index of the day.
func (d Weekday) Index() int { return int(d) }

// Valid reports whether d is one of the seven canonical days.
func (d Weekday) Valid() bool { return d >= Monday && d <= Sunday }

// NormalizeDay matches raw against the canonical weekday names, ignoring case and
// surrounding whitespace. It reports false for empty or unrecognized input.
func NormalizeDay(raw string) (Weekday, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return 0, false
	}
	day, ok := weekdayLookup[key]
	return day, ok
}

// MondayIndex converts t's weekday into a Monday-first index (Sunday=6).
func MondayIndex(t time.Time) int {
	day := int(t.Weekday())
	if day == 0 {
		return int(Sunday)
	}
	return day - 1
}
