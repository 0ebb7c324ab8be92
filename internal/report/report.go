// Package report renders aggregator results into the JSON documents served by the API and
// stored in weekly_summaries.
package report

import (
	"time"

	"github.com/Pelyn9/wellnessmate/internal/aggregator"
)

// WeeklySummary is a dashboard the consumer persisted for a user.
type WeeklySummary struct {
	UserID     string    `json:"user_id"`
	Summary    Dashboard `json:"summary"`
	ComputedAt time.Time `json:"computed_at"`
}

// Day is one row of the weekly breakdown.
type Day struct {
	Day          string `json:"day"`
	Workouts     int    `json:"workouts"`
	Meals        int    `json:"meals"`
	WorkoutWidth int    `json:"workout_width"`
	MealWidth    int    `json:"meal_width"`
}

// Workouts totals the workout snapshot.
type Workouts struct {
	Total            int     `json:"total"`
	Completed        int     `json:"completed"`
	TotalMinutes     float64 `json:"total_minutes"`
	EstimatedMinutes int     `json:"estimated_minutes"`
}

// Meals totals the meal snapshot.
type Meals struct {
	Total         int     `json:"total"`
	Prepared      int     `json:"prepared"`
	TotalCalories float64 `json:"total_calories"`
}

// Hydration is today's hydration progress.
type Hydration struct {
	Goal    int `json:"goal"`
	Logged  int `json:"logged"`
	Percent int `json:"percent"`
}

// Dashboard is the weekly overview document.
type Dashboard struct {
	Today         string    `json:"today"`
	TodayWorkouts int       `json:"today_workouts"`
	TodayMeals    int       `json:"today_meals"`
	TotalWorkouts int       `json:"total_workouts"`
	TotalMeals    int       `json:"total_meals"`
	ActiveDays    int       `json:"active_days"`
	Streak        int       `json:"streak"`
	MaxCount      int       `json:"max_count"`
	Days          []Day     `json:"days"`
	Workouts      Workouts  `json:"workouts"`
	Meals         Meals     `json:"meals"`
	Hydration     Hydration `json:"hydration"`
	Tip           string    `json:"tip"`
}

// FromDashboard converts an aggregator dashboard.
func FromDashboard(d aggregator.Dashboard) Dashboard {
	days := make([]Day, 0, len(d.Days))
	for _, row := range d.Days {
		days = append(days, Day{
			Day:          row.Day.String(),
			Workouts:     row.Workouts,
			Meals:        row.Meals,
			WorkoutWidth: row.WorkoutWidth,
			MealWidth:    row.MealWidth,
		})
	}
	return Dashboard{
		Today:         d.Today.String(),
		TodayWorkouts: d.TodayWorkouts,
		TodayMeals:    d.TodayMeals,
		TotalWorkouts: d.TotalWorkouts,
		TotalMeals:    d.TotalMeals,
		ActiveDays:    d.ActiveDays,
		Streak:        d.Streak,
		MaxCount:      d.MaxCount,
		Days:          days,
		Workouts:      FromWorkoutSummary(d.Workouts),
		Meals:         FromMealSummary(d.Meals),
		Hydration:     FromHydration(d.Hydration),
		Tip:           d.Tip,
	}
}

// FromWorkoutSummary converts a workout summary.
func FromWorkoutSummary(s aggregator.WorkoutSummary) Workouts {
	return Workouts{
		Total:            s.Total,
		Completed:        s.Completed,
		TotalMinutes:     s.TotalMinutes,
		EstimatedMinutes: s.EstimatedMinutes(),
	}
}

// FromMealSummary converts a meal summary.
func FromMealSummary(s aggregator.MealSummary) Meals {
	return Meals{Total: s.Total, Prepared: s.Completed, TotalCalories: s.TotalCalories}
}

// FromHydration converts hydration progress.
func FromHydration(h aggregator.Hydration) Hydration {
	return Hydration{Goal: h.Goal, Logged: h.Logged, Percent: h.Percent}
}

// Workout is the API representation of a workout.
type Workout struct {
	ID              string  `json:"id"`
	Day             string  `json:"day"`
	DayIndex        *int    `json:"day_index,omitempty"`
	Exercise        string  `json:"exercise"`
	Sets            string  `json:"sets"`
	Reps            string  `json:"reps"`
	DurationValue   float64 `json:"duration_value"`
	DurationUnit    string  `json:"duration_unit"`
	Duration        string  `json:"duration,omitempty"`
	DurationMinutes float64 `json:"duration_minutes"`
	Intensity       string  `json:"intensity"`
	Notes           string  `json:"notes,omitempty"`
	Completed       bool    `json:"completed"`
	CreatedAt       string  `json:"created_at"`
}

// FromWorkout converts a workout record.
func FromWorkout(w aggregator.Workout) Workout {
	return Workout{
		ID:              w.ID,
		Day:             w.Day,
		DayIndex:        w.DayIndex,
		Exercise:        w.Exercise,
		Sets:            w.Sets,
		Reps:            w.Reps,
		DurationValue:   w.Duration.Value,
		DurationUnit:    string(w.Duration.Unit),
		Duration:        w.Duration.Legacy,
		DurationMinutes: aggregator.ParseDurationToMinutes(w),
		Intensity:       string(w.Intensity),
		Notes:           w.Notes,
		Completed:       w.Completed,
		CreatedAt:       w.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Meal is the API representation of a meal plan.
type Meal struct {
	ID        string  `json:"id"`
	Day       string  `json:"day"`
	DayIndex  *int    `json:"day_index,omitempty"`
	Meal      string  `json:"meal"`
	Plan      string  `json:"plan"`
	Calories  float64 `json:"calories"`
	Notes     string  `json:"notes,omitempty"`
	Prepared  bool    `json:"prepared"`
	CreatedAt string  `json:"created_at"`
}

// FromMeal converts a meal record.
func FromMeal(m aggregator.Meal) Meal {
	return Meal{
		ID:        m.ID,
		Day:       m.Day,
		DayIndex:  m.DayIndex,
		Meal:      string(m.Meal),
		Plan:      m.Plan,
		Calories:  m.Calories,
		Notes:     m.Notes,
		Prepared:  m.Completed,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Group holds one day's entries in a planner board.
type Group[T any] struct {
	Day     string `json:"day"`
	Entries []T    `json:"entries"`
}

// Groups converts day groups with the supplied element conversion.
func Groups[S, T any](groups []aggregator.DayGroup[S], convert func(S) T) []Group[T] {
	out := make([]Group[T], 0, len(groups))
	for _, g := range groups {
		entries := make([]T, 0, len(g.Entries))
		for _, e := range g.Entries {
			entries = append(entries, convert(e))
		}
		out = append(out, Group[T]{Day: g.Day.String(), Entries: entries})
	}
	return out
}
