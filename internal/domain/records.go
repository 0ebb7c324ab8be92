package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Pelyn9/wellnessmate/internal/aggregator"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs to another user.
	ErrNotFound = errors.New("record not found")
	// ErrValidation wraps input validation failures.
	ErrValidation = errors.New("validation failed")
)

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// RecordRepository captures persistence of one record kind. Toggle and Delete are scoped
// by owner; Toggle returns nil and Delete returns false when no owned record matched.
type RecordRepository[T any] interface {
	ListByUser(ctx context.Context, userID string) ([]T, error)
	Create(ctx context.Context, record T) error
	Toggle(ctx context.Context, userID, id string) (*T, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}

// WorkoutRepository stores workouts.
type WorkoutRepository = RecordRepository[aggregator.Workout]

// MealRepository stores meals.
type MealRepository = RecordRepository[aggregator.Meal]

// ProfileRepository stores profiles. Get returns nil when the user has no profile yet.
//
// Update serialises writers per user: it locks the stored profile (creating it from seed
// when absent), applies mutate and persists the result. A mutate error aborts the write.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, seed Profile, mutate func(*Profile) error) (*Profile, error)
}

// AddWorkoutInput captures a new workout from the API layer.
type AddWorkoutInput struct {
	UserID        string
	Day           string
	Exercise      string
	Sets          string
	Reps          string
	DurationValue float64
	DurationUnit  string
	Intensity     string
	Notes         string
}

func (in AddWorkoutInput) toWorkout() (aggregator.Workout, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return aggregator.Workout{}, validationError("user id is required")
	}
	exercise := strings.TrimSpace(in.Exercise)
	if exercise == "" {
		return aggregator.Workout{}, validationError("exercise is required")
	}
	day, ok := aggregator.NormalizeDay(in.Day)
	if !ok {
		return aggregator.Workout{}, validationError("day %q is not a weekday", in.Day)
	}
	if !nonNegative(in.DurationValue) {
		return aggregator.Workout{}, validationError("duration must be a non-negative number")
	}

	unit := aggregator.UnitMinutes
	if strings.TrimSpace(in.DurationUnit) != "" {
		if unit, ok = aggregator.ParseDurationUnit(in.DurationUnit); !ok {
			return aggregator.Workout{}, validationError("duration unit %q is not supported", in.DurationUnit)
		}
	}

	intensity := aggregator.DefaultIntensity
	if strings.TrimSpace(in.Intensity) != "" {
		if intensity, ok = aggregator.ParseIntensity(in.Intensity); !ok {
			return aggregator.Workout{}, validationError("intensity %q is not supported", in.Intensity)
		}
	}

	dayIndex := day.Index()
	workout := aggregator.Workout{
		Record: aggregator.Record{
			UserID:   in.UserID,
			Day:      day.String(),
			DayIndex: &dayIndex,
		},
		Exercise: exercise,
		Sets:     strings.TrimSpace(in.Sets),
		Reps:     strings.TrimSpace(in.Reps),
		Duration: aggregator.Duration{
			Value:  in.DurationValue,
			Unit:   unit,
			Legacy: strconv.FormatFloat(in.DurationValue, 'f', -1, 64) + " " + string(unit),
		},
		Intensity: intensity,
		Notes:     strings.TrimSpace(in.Notes),
	}
	return workout.WithDefaults(), nil
}

// AddMealInput captures a new meal plan from the API layer.
type AddMealInput struct {
	UserID   string
	Day      string
	Meal     string
	Plan     string
	Calories float64
	Notes    string
}

func (in AddMealInput) toMeal() (aggregator.Meal, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return aggregator.Meal{}, validationError("user id is required")
	}
	plan := strings.TrimSpace(in.Plan)
	if plan == "" {
		return aggregator.Meal{}, validationError("plan is required")
	}
	day, ok := aggregator.NormalizeDay(in.Day)
	if !ok {
		return aggregator.Meal{}, validationError("day %q is not a weekday", in.Day)
	}
	if !nonNegative(in.Calories) {
		return aggregator.Meal{}, validationError("calories must be a non-negative number")
	}

	mealType := aggregator.DefaultMealType
	if strings.TrimSpace(in.Meal) != "" {
		if mealType, ok = aggregator.ParseMealType(in.Meal); !ok {
			return aggregator.Meal{}, validationError("meal %q is not supported", in.Meal)
		}
	}

	dayIndex := day.Index()
	meal := aggregator.Meal{
		Record: aggregator.Record{
			UserID:   in.UserID,
			Day:      day.String(),
			DayIndex: &dayIndex,
		},
		Meal:     mealType,
		Plan:     plan,
		Calories: in.Calories,
		Notes:    strings.TrimSpace(in.Notes),
	}
	return meal.WithDefaults(), nil
}

// WorkoutBoard is the planner view: filtered day groups plus totals over all workouts.
type WorkoutBoard struct {
	Groups  []aggregator.DayGroup[aggregator.Workout]
	Summary aggregator.WorkoutSummary
}

// MealBoard is the planner view: filtered day groups plus totals over all meals.
type MealBoard struct {
	Groups  []aggregator.DayGroup[aggregator.Meal]
	Summary aggregator.MealSummary
}
