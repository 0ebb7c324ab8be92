package aggregator

import "time"

var tips = []string{
	"Consistency beats intensity. Focus on routines you can repeat.",
	"Add protein and vegetables in every main meal for steady energy.",
	"A 20-minute walk after meals improves recovery and glucose control.",
	"Hydration first: one glass before each meal is an easy habit.",
}

// Snapshot is the full, point-in-time state of one user's records.
type Snapshot struct {
	UserID        string
	Workouts      []Workout
	Meals         []Meal
	HydrationGoal int
	HydrationLog  HydrationLog
}

// OwnedBy returns a copy of s restricted to records belonging to s.UserID. When UserID is
// empty the records are returned as-is.
func (s Snapshot) OwnedBy() Snapshot {
	if s.UserID == "" {
		return s
	}
	out := s
	out.Workouts = make([]Workout, 0, len(s.Workouts))
	for _, w := range s.Workouts {
		if w.UserID == s.UserID {
			out.Workouts = append(out.Workouts, w)
		}
	}
	out.Meals = make([]Meal, 0, len(s.Meals))
	for _, m := range s.Meals {
		if m.UserID == s.UserID {
			out.Meals = append(out.Meals, m)
		}
	}
	return out
}

// DayRow is one line of the weekly breakdown.
type DayRow struct {
	DayCount
	WorkoutWidth int
	MealWidth    int
}

// Dashboard is the presentation-ready weekly overview.
type Dashboard struct {
	Today         Weekday
	TodayWorkouts int
	TodayMeals    int
	TotalWorkouts int
	TotalMeals    int
	ActiveDays    int
	Streak        int
	MaxCount      int
	Days          []DayRow
	Workouts      WorkoutSummary
	Meals         MealSummary
	Hydration     Hydration
	Tip           string
}

// BuildDashboard derives the dashboard for snapshot as seen at now.
func BuildDashboard(snapshot Snapshot, now time.Time) Dashboard {
	snapshot = snapshot.OwnedBy()
	counts := ComputeDayCounts(snapshot.Workouts, snapshot.Meals)
	todayIndex := MondayIndex(now)
	highest := MaxCount(counts)

	rows := make([]DayRow, 0, DaysInWeek)
	for _, c := range counts {
		rows = append(rows, DayRow{
			DayCount:     c,
			WorkoutWidth: BarWidth(c.Workouts, highest),
			MealWidth:    BarWidth(c.Meals, highest),
		})
	}

	return Dashboard{
		Today:         Weekday(todayIndex),
		TodayWorkouts: counts[todayIndex].Workouts,
		TodayMeals:    counts[todayIndex].Meals,
		TotalWorkouts: len(snapshot.Workouts),
		TotalMeals:    len(snapshot.Meals),
		ActiveDays:    ActiveDays(counts),
		Streak:        ComputeStreak(counts, todayIndex),
		MaxCount:      highest,
		Days:          rows,
		Workouts:      SummarizeWorkouts(snapshot.Workouts),
		Meals:         SummarizeMeals(snapshot.Meals),
		Hydration:     TodayHydration(snapshot.HydrationGoal, snapshot.HydrationLog, now),
		Tip:           TipOfTheDay(now),
	}
}

// TipOfTheDay rotates through the wellness tips by day of month.
func TipOfTheDay(now time.Time) string {
	return tips[now.Day()%len(tips)]
}
