package aggregator

import (
	"math"
	"regexp"
	"strconv"
)

var legacyDurationPattern = regexp.MustCompile(`(?i)(\d+)\s*(seconds|minutes|hours)?`)

// ParseDurationToMinutes normalizes a workout's duration to minutes.
//
// A positive structured value wins and is converted by its unit (an empty or unknown unit
// counts as minutes). Otherwise the legacy text is scanned for a leading integer and an
// optional unit word. Anything unparsable yields 0.
func ParseDurationToMinutes(w Workout) float64 {
	return w.Duration.Minutes()
}

// Minutes converts d to minutes, see ParseDurationToMinutes.
func (d Duration) Minutes() float64 {
	if value := sanitizeNumber(d.Value); value > 0 {
		unit, _ := ParseDurationUnit(string(d.Unit))
		return toMinutes(value, unit)
	}

	match := legacyDurationPattern.FindStringSubmatch(d.Legacy)
	if match == nil {
		return 0
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0
	}
	unit, _ := ParseDurationUnit(match[2])
	return toMinutes(value, unit)
}

func toMinutes(value float64, unit DurationUnit) float64 {
	switch unit {
	case UnitHours:
		return value * 60
	case UnitSeconds:
		return value / 60
	default:
		return value
	}
}

// sanitizeNumber maps NaN, infinities and negative values to 0.
func sanitizeNumber(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
