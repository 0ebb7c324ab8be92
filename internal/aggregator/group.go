package aggregator

import (
	"slices"
	"strings"
)

// DayGroup holds the entries logged for one canonical day.
type DayGroup[T any] struct {
	Day     Weekday
	Entries []T
}

// GroupWorkouts groups workouts by canonical day, Monday first, omitting empty days.
func GroupWorkouts(workouts []Workout) []DayGroup[Workout] {
	return groupByDay(workouts)
}

// GroupMeals groups meals by canonical day, Monday first, omitting empty days.
func GroupMeals(meals []Meal) []DayGroup[Meal] {
	return groupByDay(meals)
}

func groupByDay[T entry](items []T) []DayGroup[T] {
	var buckets [DaysInWeek][]T
	for _, item := range items {
		if day, ok := item.record().Weekday(); ok {
			buckets[day] = append(buckets[day], item)
		}
	}

	groups := make([]DayGroup[T], 0, DaysInWeek)
	for i, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		slices.SortStableFunc(bucket, compareEntries[T])
		groups = append(groups, DayGroup[T]{Day: Weekday(i), Entries: bucket})
	}
	return groups
}

// SortRecords orders a snapshot by day index, then creation time, then ID.
func SortRecords[T entry](items []T) {
	slices.SortStableFunc(items, compareEntries[T])
}

func compareEntries[T entry](a, b T) int {
	ra, rb := a.record(), b.record()
	if d := ra.SortIndex() - rb.SortIndex(); d != 0 {
		return d
	}
	if c := ra.CreatedAt.Compare(rb.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(ra.ID, rb.ID)
}

// Status filter values. Meals use StatusPrepared as the completed label.
const (
	StatusAll       = "All"
	StatusPlanned   = "Planned"
	StatusCompleted = "Completed"
	StatusPrepared  = "Prepared"
)

func matchStatus(status string, completed bool) bool {
	switch {
	case status == "" || strings.EqualFold(status, StatusAll):
		return true
	case strings.EqualFold(status, StatusPlanned):
		return !completed
	case strings.EqualFold(status, StatusCompleted), strings.EqualFold(status, StatusPrepared):
		return completed
	}
	return false
}

func matchKeyword(keyword string, fields ...string) bool {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), keyword) {
			return true
		}
	}
	return false
}

// WorkoutFilter narrows a workout snapshot for the planner view. Empty fields match all.
type WorkoutFilter struct {
	Search string
	Day    string
	Status string
}

// Apply returns the workouts matching f, preserving order.
func (f WorkoutFilter) Apply(workouts []Workout) []Workout {
	wantDay, filterDay := f.day()
	out := make([]Workout, 0, len(workouts))
	for _, w := range workouts {
		if !matchKeyword(f.Search, w.Exercise, w.Notes) || !matchStatus(f.Status, w.Completed) {
			continue
		}
		if filterDay {
			day, ok := w.Weekday()
			if !ok || day != wantDay {
				continue
			}
		}
		out = append(out, w)
	}
	return out
}

func (f WorkoutFilter) day() (Weekday, bool) {
	if f.Day == "" || strings.EqualFold(f.Day, StatusAll) {
		return 0, false
	}
	day, ok := NormalizeDay(f.Day)
	if !ok {
		// An unknown day filter matches nothing.
		return Weekday(-1), true
	}
	return day, true
}

// MealFilter narrows a meal snapshot for the planner view. Empty fields match all.
type MealFilter struct {
	Search string
	Meal   string
	Status string
}

// Apply returns the meals matching f, preserving order.
func (f MealFilter) Apply(meals []Meal) []Meal {
	filterMeal := f.Meal != "" && !strings.EqualFold(f.Meal, StatusAll)
	out := make([]Meal, 0, len(meals))
	for _, m := range meals {
		if !matchKeyword(f.Search, m.Plan, m.Notes) || !matchStatus(f.Status, m.Completed) {
			continue
		}
		if filterMeal && !strings.EqualFold(string(m.Meal), strings.TrimSpace(f.Meal)) {
			continue
		}
		out = append(out, m)
	}
	return out
}
