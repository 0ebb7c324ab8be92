package aggregator

import "math"

// WorkoutSummary totals a workout snapshot.
type WorkoutSummary struct {
	Total        int
	Completed    int
	TotalMinutes float64
}

// EstimatedMinutes is TotalMinutes rounded for display.
func (s WorkoutSummary) EstimatedMinutes() int {
	return int(math.Round(s.TotalMinutes))
}

// MealSummary totals a meal snapshot.
type MealSummary struct {
	Total         int
	Completed     int
	TotalCalories float64
}

// SummarizeWorkouts counts workouts, completed workouts and total minutes. Records with
// an unrecognized day are still included.
func SummarizeWorkouts(workouts []Workout) WorkoutSummary {
	summary := WorkoutSummary{Total: len(workouts)}
	for _, w := range workouts {
		if w.Completed {
			summary.Completed++
		}
		summary.TotalMinutes += ParseDurationToMinutes(w)
	}
	return summary
}

// SummarizeMeals counts meals, prepared meals and total calories. Invalid calorie values
// count as 0.
func SummarizeMeals(meals []Meal) MealSummary {
	summary := MealSummary{Total: len(meals)}
	for _, m := range meals {
		if m.Completed {
			summary.Completed++
		}
		summary.TotalCalories += sanitizeNumber(m.Calories)
	}
	return summary
}
