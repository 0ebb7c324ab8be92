package aggregator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func workoutOn(day string) Workout {
	return Workout{Record: Record{Day: day}, Exercise: "Squats"}
}

func mealOn(day string) Meal {
	return Meal{Record: Record{Day: day}, Plan: "Oats"}
}

func TestComputeDayCountsOrdersMondayFirst(t *testing.T) {
	workouts := []Workout{workoutOn("sunday"), workoutOn("Monday"), workoutOn(" MONDAY "), workoutOn("someday")}
	meals := []Meal{mealOn("Wednesday"), mealOn(""), mealOn("sunday")}

	counts := ComputeDayCounts(workouts, meals)

	require.Len(t, counts, 7)
	for i, c := range counts {
		require.Equal(t, Weekday(i), c.Day)
	}
	require.Equal(t, 2, counts[Monday].Workouts)
	require.Equal(t, 1, counts[Sunday].Workouts)
	require.Equal(t, 1, counts[Wednesday].Meals)
	require.Equal(t, 1, counts[Sunday].Meals)

	total := 0
	for _, c := range counts {
		total += c.Workouts
	}
	require.Equal(t, 3, total, "only workouts with a recognized day are grouped")
}

func TestComputeDayCountsIsOrderIndependent(t *testing.T) {
	workouts := []Workout{workoutOn("Tuesday"), workoutOn("Friday"), workoutOn("Tuesday")}
	reversed := []Workout{workouts[2], workouts[1], workouts[0]}

	require.Equal(t, ComputeDayCounts(workouts, nil), ComputeDayCounts(reversed, nil))
}

func TestComputeStreak(t *testing.T) {
	activeAll := func() [DaysInWeek]DayCount {
		var counts [DaysInWeek]DayCount
		for i := range counts {
			counts[i] = DayCount{Day: Weekday(i), Workouts: 1}
		}
		return counts
	}

	tests := []struct {
		name   string
		counts func() [DaysInWeek]DayCount
		today  int
		want   int
	}{
		{name: "full week ending sunday", counts: activeAll, today: 6, want: 7},
		{name: "monday only", counts: activeAll, today: 0, want: 1},
		{
			name: "today inactive",
			counts: func() [DaysInWeek]DayCount {
				c := activeAll()
				c[4] = DayCount{Day: Friday}
				return c
			},
			today: 4,
			want:  0,
		},
		{
			name: "gap stops the walk",
			counts: func() [DaysInWeek]DayCount {
				c := activeAll()
				c[2] = DayCount{Day: Wednesday}
				return c
			},
			today: 5,
			want:  3,
		},
		{
			name: "meals count as activity",
			counts: func() [DaysInWeek]DayCount {
				var c [DaysInWeek]DayCount
				c[1].Meals = 2
				c[2].Meals = 1
				return c
			},
			today: 2,
			want:  2,
		},
		{name: "out of range today", counts: activeAll, today: 7, want: 0},
		{name: "negative today", counts: activeAll, today: -1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ComputeStreak(tt.counts(), tt.today))
		})
	}
}

func TestActiveDaysAndMaxCount(t *testing.T) {
	counts := ComputeDayCounts(
		[]Workout{workoutOn("Monday"), workoutOn("Monday"), workoutOn("Monday")},
		[]Meal{mealOn("Thursday")},
	)
	require.Equal(t, 2, ActiveDays(counts))
	require.Equal(t, 3, MaxCount(counts))

	var empty [DaysInWeek]DayCount
	require.Equal(t, 0, ActiveDays(empty))
	require.Equal(t, 1, MaxCount(empty))
}

func TestBarWidth(t *testing.T) {
	require.Equal(t, 0, BarWidth(0, 5))
	require.Equal(t, 100, BarWidth(5, 5))
	require.Equal(t, 50, BarWidth(2, 4))
	require.Equal(t, 8, BarWidth(1, 40))
	require.Equal(t, 100, BarWidth(3, 0))
}
