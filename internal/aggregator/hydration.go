package aggregator

import (
	"math"
	"time"
)

// Hydration bounds enforced by the profile editor. HydrationPercent does not rely on them.
const (
	DefaultHydrationGoal = 8
	MinHydrationGoal     = 4
	MaxHydrationGoal     = 15
	MaxHydrationGlasses  = 15
)

// HydrationLog maps a UTC date key (YYYY-MM-DD) to the glasses logged that day.
type HydrationLog map[string]int

// Hydration is today's hydration progress.
type Hydration struct {
	Goal    int
	Logged  int
	Percent int
}

// HydrationPercent returns logged/goal as a whole percentage clamped to 0..100. A goal of
// zero or less yields 0.
func HydrationPercent(goal, logged float64) int {
	goal = sanitizeNumber(goal)
	logged = sanitizeNumber(logged)
	if goal <= 0 {
		return 0
	}
	return int(math.Round(math.Min(100, logged/goal*100)))
}

// HydrationKey is the log key for the UTC calendar day containing t.
func HydrationKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// ClampHydration bounds a day's logged glasses to 0..MaxHydrationGlasses.
func ClampHydration(v int) int {
	return min(MaxHydrationGlasses, max(0, v))
}

// ClampHydrationGoal bounds a goal to MinHydrationGoal..MaxHydrationGoal.
func ClampHydrationGoal(v int) int {
	return min(MaxHydrationGoal, max(MinHydrationGoal, v))
}

// EffectiveHydrationGoal substitutes the default goal for an unset one.
func EffectiveHydrationGoal(goal int) int {
	if goal <= 0 {
		return DefaultHydrationGoal
	}
	return goal
}

// TodayHydration computes hydration progress for the day containing now.
func TodayHydration(goal int, log HydrationLog, now time.Time) Hydration {
	goal = EffectiveHydrationGoal(goal)
	logged := max(0, log[HydrationKey(now)])
	return Hydration{
		Goal:    goal,
		Logged:  logged,
		Percent: HydrationPercent(float64(goal), float64(logged)),
	}
}
