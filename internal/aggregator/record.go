package aggregator

import (
	"strings"
	"time"
)

// DurationUnit is the unit of a structured workout duration.
type DurationUnit string

const (
	UnitSeconds DurationUnit = "seconds"
	UnitMinutes DurationUnit = "minutes"
	UnitHours   DurationUnit = "hours"
)

// ParseDurationUnit matches raw case-insensitively against the known units.
func ParseDurationUnit(raw string) (DurationUnit, bool) {
	switch DurationUnit(strings.ToLower(strings.TrimSpace(raw))) {
	case UnitSeconds:
		return UnitSeconds, true
	case UnitMinutes:
		return UnitMinutes, true
	case UnitHours:
		return UnitHours, true
	}
	return "", false
}

// Intensity grades a workout.
type Intensity string

const (
	IntensityLow      Intensity = "Low"
	IntensityModerate Intensity = "Moderate"
	IntensityHigh     Intensity = "High"
)

// ParseIntensity matches raw case-insensitively against the known intensity levels.
func ParseIntensity(raw string) (Intensity, bool) {
	for _, level := range []Intensity{IntensityLow, IntensityModerate, IntensityHigh} {
		if strings.EqualFold(strings.TrimSpace(raw), string(level)) {
			return level, true
		}
	}
	return "", false
}

// MealType is the slot a meal plan belongs to.
type MealType string

const (
	MealBreakfast MealType = "Breakfast"
	MealLunch     MealType = "Lunch"
	MealDinner    MealType = "Dinner"
	MealSnack     MealType = "Snack"
)

// MealTypes lists the meal slots in display order.
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// ParseMealType matches raw case-insensitively against the known meal slots.
func ParseMealType(raw string) (MealType, bool) {
	for _, meal := range MealTypes {
		if strings.EqualFold(strings.TrimSpace(raw), string(meal)) {
			return meal, true
		}
	}
	return "", false
}

// Kind distinguishes workout records from meal records.
type Kind string

const (
	KindWorkout Kind = "workout"
	KindMeal    Kind = "meal"
)

// Record holds the fields shared by every logged entry.
type Record struct {
	ID        string
	UserID    string
	Day       string
	DayIndex  *int
	Completed bool
	CreatedAt time.Time
}

// Weekday resolves the record's day name. Day is authoritative for grouping.
func (r Record) Weekday() (Weekday, bool) {
	return NormalizeDay(r.Day)
}

// SortIndex orders records inside a week. A stored DayIndex wins; otherwise the index is
// derived from Day, and records without a recognizable day sort last.
func (r Record) SortIndex() int {
	if r.DayIndex != nil && *r.DayIndex >= 0 && *r.DayIndex < DaysInWeek {
		return *r.DayIndex
	}
	if day, ok := r.Weekday(); ok {
		return day.Index()
	}
	return DaysInWeek
}

func (r Record) record() Record { return r }

// Duration is the workout length. Value and Unit hold the structured form; Legacy holds
// the older free-text form (e.g. "45 minutes"). Both may be present.
type Duration struct {
	Value  float64
	Unit   DurationUnit
	Legacy string
}

// Workout is a planned or completed exercise session.
type Workout struct {
	Record
	Exercise  string
	Sets      string
	Reps      string
	Duration  Duration
	Intensity Intensity
	Notes     string
}

// Default values applied to workouts and meals at the normalization boundary.
const (
	DefaultSets      = "3"
	DefaultReps      = "10"
	DefaultIntensity = IntensityModerate
	DefaultMealType  = MealBreakfast
)

// WithDefaults fills the optional workout fields that were left empty.
func (w Workout) WithDefaults() Workout {
	if strings.TrimSpace(w.Sets) == "" {
		w.Sets = DefaultSets
	}
	if strings.TrimSpace(w.Reps) == "" {
		w.Reps = DefaultReps
	}
	if intensity, ok := ParseIntensity(string(w.Intensity)); ok {
		w.Intensity = intensity
	} else {
		w.Intensity = DefaultIntensity
	}
	if w.DayIndex == nil {
		if day, ok := w.Weekday(); ok {
			idx := day.Index()
			w.DayIndex = &idx
		}
	}
	return w
}

// Meal is a planned or prepared meal.
type Meal struct {
	Record
	Meal     MealType
	Plan     string
	Calories float64
	Notes    string
}

// WithDefaults fills the optional meal fields that were left empty or invalid.
func (m Meal) WithDefaults() Meal {
	if meal, ok := ParseMealType(string(m.Meal)); ok {
		m.Meal = meal
	} else {
		m.Meal = DefaultMealType
	}
	m.Calories = sanitizeNumber(m.Calories)
	if m.DayIndex == nil {
		if day, ok := m.Weekday(); ok {
			idx := day.Index()
			m.DayIndex = &idx
		}
	}
	return m
}

// entry is implemented by Workout and Meal through the embedded Record.
type entry interface {
	record() Record
}
