package aggregator

import "math"

// DayCount is the number of workouts and meals logged for one canonical day.
type DayCount struct {
	Day      Weekday
	Workouts int
	Meals    int
}

// Active reports whether anything was logged for the day.
func (c DayCount) Active() bool {
	return c.Workouts > 0 || c.Meals > 0
}

// ComputeDayCounts counts workouts and meals per canonical day, Monday first. Records
// whose day cannot be normalized are left out.
func ComputeDayCounts(workouts []Workout, meals []Meal) [DaysInWeek]DayCount {
	var counts [DaysInWeek]DayCount
	for i, day := range Weekdays {
		counts[i].Day = day
	}
	for _, w := range workouts {
		if day, ok := w.Weekday(); ok {
			counts[day].Workouts++
		}
	}
	for _, m := range meals {
		if day, ok := m.Weekday(); ok {
			counts[day].Meals++
		}
	}
	return counts
}

// ComputeStreak counts consecutive active days walking back from todayIndex to Monday.
// It is 0 when today has no activity and never reaches into the previous week.
func ComputeStreak(counts [DaysInWeek]DayCount, todayIndex int) int {
	if todayIndex < 0 || todayIndex >= DaysInWeek {
		return 0
	}
	streak := 0
	for i := todayIndex; i >= 0; i-- {
		if !counts[i].Active() {
			break
		}
		streak++
	}
	return streak
}

// ActiveDays returns how many days of the week have any activity.
func ActiveDays(counts [DaysInWeek]DayCount) int {
	active := 0
	for _, c := range counts {
		if c.Active() {
			active++
		}
	}
	return active
}

// MaxCount returns the largest single-day workout or meal count, never less than 1.
func MaxCount(counts [DaysInWeek]DayCount) int {
	highest := 1
	for _, c := range counts {
		highest = max(highest, c.Workouts, c.Meals)
	}
	return highest
}

// minBarWidth keeps small non-zero bars visible.
const minBarWidth = 8

// BarWidth scales count against highest as a percentage for the weekly breakdown bars.
func BarWidth(count, highest int) int {
	if count <= 0 {
		return 0
	}
	if highest < 1 {
		highest = 1
	}
	width := int(math.Round(float64(count) / float64(highest) * 100))
	return min(100, max(minBarWidth, width))
}
