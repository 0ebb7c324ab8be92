package domain

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Pelyn9/wellnessmate/internal/aggregator"
)

// Wednesday 2025-10-29.
var fixedNow = time.Date(2025, time.October, 29, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (*Service, *memRecords[aggregator.Workout], *memRecords[aggregator.Meal], *memProfiles) {
	t.Helper()
	workouts := newMemRecords(func(w *aggregator.Workout) *aggregator.Record { return &w.Record })
	meals := newMemRecords(func(m *aggregator.Meal) *aggregator.Record { return &m.Record })
	profiles := &memProfiles{items: map[string]Profile{}}
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(workouts, meals, profiles, opts...), workouts, meals, profiles
}

func TestAddWorkoutAppliesDefaults(t *testing.T) {
	svc, workouts, _, _ := newTestService(t)

	w, err := svc.AddWorkout(context.Background(), AddWorkoutInput{
		UserID:        "user-1",
		Day:           " friday ",
		Exercise:      "  Deadlift ",
		DurationValue: 1.5,
		DurationUnit:  "Hours",
	})
	require.NoError(t, err)
	require.NotEmpty(t, w.ID)
	require.Equal(t, "Friday", w.Day)
	require.Equal(t, 4, *w.DayIndex)
	require.Equal(t, "Deadlift", w.Exercise)
	require.Equal(t, "3", w.Sets)
	require.Equal(t, "10", w.Reps)
	require.Equal(t, aggregator.IntensityModerate, w.Intensity)
	require.Equal(t, aggregator.UnitHours, w.Duration.Unit)
	require.Equal(t, "1.5 hours", w.Duration.Legacy)
	require.False(t, w.Completed)
	require.Equal(t, fixedNow, w.CreatedAt)
	require.Len(t, workouts.items, 1)
}

func TestAddWorkoutValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	base := AddWorkoutInput{UserID: "user-1", Day: "Monday", Exercise: "Run", DurationValue: 10}

	cases := map[string]func(in *AddWorkoutInput){
		"missing exercise": func(in *AddWorkoutInput) { in.Exercise = "   " },
		"bad day":          func(in *AddWorkoutInput) { in.Day = "Caturday" },
		"negative":         func(in *AddWorkoutInput) { in.DurationValue = -1 },
		"bad unit":         func(in *AddWorkoutInput) { in.DurationUnit = "days" },
		"bad intensity":    func(in *AddWorkoutInput) { in.Intensity = "Insane" },
		"missing user":     func(in *AddWorkoutInput) { in.UserID = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := base
			mutate(&in)
			_, err := svc.AddWorkout(context.Background(), in)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestToggleAndDeleteAreOwnerScoped(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	meal, err := svc.AddMeal(ctx, AddMealInput{UserID: "user-1", Day: "Monday", Meal: "lunch", Plan: "Bowl", Calories: 520})
	require.NoError(t, err)
	require.Equal(t, aggregator.MealLunch, meal.Meal)

	_, err = svc.ToggleMeal(ctx, "user-2", meal.ID)
	require.ErrorIs(t, err, ErrNotFound)

	toggled, err := svc.ToggleMeal(ctx, "user-1", meal.ID)
	require.NoError(t, err)
	require.True(t, toggled.Completed)

	require.ErrorIs(t, svc.DeleteMeal(ctx, "user-2", meal.ID), ErrNotFound)
	require.NoError(t, svc.DeleteMeal(ctx, "user-1", meal.ID))
	require.ErrorIs(t, svc.DeleteMeal(ctx, "user-1", meal.ID), ErrNotFound)
}

func TestWorkoutBoardSummarizesFullSnapshot(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	for _, in := range []AddWorkoutInput{
		{UserID: "u", Day: "Monday", Exercise: "Run", DurationValue: 30},
		{UserID: "u", Day: "Tuesday", Exercise: "Swim", DurationValue: 1, DurationUnit: "hours"},
	} {
		_, err := svc.AddWorkout(ctx, in)
		require.NoError(t, err)
	}

	board, err := svc.WorkoutBoard(ctx, "u", aggregator.WorkoutFilter{Search: "swim"})
	require.NoError(t, err)
	require.Len(t, board.Groups, 1)
	require.Equal(t, aggregator.Tuesday, board.Groups[0].Day)
	require.Equal(t, 2, board.Summary.Total)
	require.Equal(t, 90, board.Summary.EstimatedMinutes())
}

func TestMealBoard(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddMeal(ctx, AddMealInput{UserID: "u", Day: "Sunday", Plan: "Pancakes", Calories: 600})
	require.NoError(t, err)
	_, err = svc.AddMeal(ctx, AddMealInput{UserID: "u", Day: "Sunday", Meal: "Dinner", Plan: "Soup"})
	require.NoError(t, err)

	board, err := svc.MealBoard(ctx, "u", aggregator.MealFilter{Meal: "Breakfast"})
	require.NoError(t, err)
	require.Len(t, board.Groups, 1)
	require.Len(t, board.Groups[0].Entries, 1)
	require.Equal(t, 600.0, board.Summary.TotalCalories)
}

func TestAddMealValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.AddMeal(context.Background(), AddMealInput{UserID: "u", Day: "Monday", Plan: " "})
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.AddMeal(context.Background(), AddMealInput{UserID: "u", Day: "Monday", Plan: "x", Meal: "Brunch"})
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.AddMeal(context.Background(), AddMealInput{UserID: "u", Day: "Monday", Plan: "x", Calories: -5})
	require.ErrorIs(t, err, ErrValidation)
}

func TestDashboardAndNotifier(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, _, _, _ := newTestService(t, WithNotifier(notifier))
	ctx := context.Background()

	_, err := svc.AddWorkout(ctx, AddWorkoutInput{UserID: "u", Day: "Tuesday", Exercise: "Run", DurationValue: 20})
	require.NoError(t, err)
	_, err = svc.AddMeal(ctx, AddMealInput{UserID: "u", Day: "Wednesday", Plan: "Salad"})
	require.NoError(t, err)

	dashboard, err := svc.Dashboard(ctx, "u")
	require.NoError(t, err)
	require.Equal(t, aggregator.Wednesday, dashboard.Today)
	require.Equal(t, 2, dashboard.Streak)
	require.Equal(t, 2, dashboard.ActiveDays)

	require.Equal(t, 2, notifier.count())
	require.Equal(t, dashboard, notifier.last)
}

func TestAdjustHydrationClampsAndPersists(t *testing.T) {
	svc, _, _, profiles := newTestService(t)
	ctx := context.Background()

	h, err := svc.AdjustHydration(ctx, "u", 3)
	require.NoError(t, err)
	require.Equal(t, aggregator.Hydration{Goal: 8, Logged: 3, Percent: 38}, h)

	h, err = svc.AdjustHydration(ctx, "u", -10)
	require.NoError(t, err)
	require.Equal(t, 0, h.Logged)

	h, err = svc.AdjustHydration(ctx, "u", 40)
	require.NoError(t, err)
	require.Equal(t, 15, h.Logged)
	require.Equal(t, 100, h.Percent)

	require.Equal(t, 15, profiles.items["u"].HydrationLog["2025-10-29"])
}

func TestAdjustHydrationGoal(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	h, err := svc.AdjustHydrationGoal(ctx, "u", -10)
	require.NoError(t, err)
	require.Equal(t, 4, h.Goal)

	h, err = svc.AdjustHydrationGoal(ctx, "u", 30)
	require.NoError(t, err)
	require.Equal(t, 15, h.Goal)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, "u", ProfileInput{Name: "Ana"})
	require.ErrorIs(t, err, ErrValidation)

	profile, err := svc.UpdateProfile(ctx, "u", ProfileInput{Name: " Ana ", Weight: "70", Height: "175", Diet: "Vegetarian", Gender: "Female"})
	require.NoError(t, err)
	require.Equal(t, "Ana", profile.Name)
	require.Equal(t, aggregator.DefaultHydrationGoal, profile.HydrationGoal)
	require.NotNil(t, profile.BMI())
	require.InDelta(t, 22.9, *profile.BMI(), 1e-9)

	profile, err = svc.SetNotifications(ctx, "u", true)
	require.NoError(t, err)
	require.True(t, profile.NotificationsEnabled)
	require.Equal(t, "Ana", profile.Name)
}

func TestFreshProfileDefaults(t *testing.T) {
	svc, _, _, profiles := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Profile(ctx, "fresh")
	require.NoError(t, err)
	require.True(t, profile.NotificationsEnabled)
	require.Equal(t, ThemeLight, profile.ThemeMode)
	require.Equal(t, aggregator.DefaultHydrationGoal, profile.HydrationGoal)

	_, err = svc.AdjustHydration(ctx, "fresh", 1)
	require.NoError(t, err)
	stored := profiles.items["fresh"]
	require.True(t, stored.NotificationsEnabled)
	require.Equal(t, ThemeLight, stored.ThemeMode)
	require.True(t, fixedNow.Equal(stored.UpdatedAt))
}

func TestUpdateProfileEmailAndTheme(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	base := ProfileInput{Name: "Ana", Weight: "70", Height: "175", Diet: "Vegan", Gender: "Female"}

	in := base
	in.Email = "not-an-address"
	_, err := svc.UpdateProfile(ctx, "u", in)
	require.ErrorIs(t, err, ErrValidation)

	in = base
	in.ThemeMode = "sepia"
	_, err = svc.UpdateProfile(ctx, "u", in)
	require.ErrorIs(t, err, ErrValidation)

	in = base
	in.Email = " ana@example.com "
	in.ThemeMode = "Dark"
	profile, err := svc.UpdateProfile(ctx, "u", in)
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", profile.Email)
	require.Equal(t, ThemeDark, profile.ThemeMode)

	profile, err = svc.UpdateProfile(ctx, "u", base)
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", profile.Email)
	require.Equal(t, ThemeDark, profile.ThemeMode)
}

func TestConcurrentHydrationAdjustmentsAccumulate(t *testing.T) {
	svc, _, _, profiles := newTestService(t)
	ctx := context.Background()

	errs := make(chan error, 10)
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AdjustHydration(ctx, "u", 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, 10, profiles.items["u"].HydrationLog["2025-10-29"])
}

func TestUpdateRequiresUserID(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.AdjustHydration(context.Background(), " ", 1)
	require.ErrorIs(t, err, ErrValidation)
}

func TestBMIUnavailable(t *testing.T) {
	require.Nil(t, Profile{Weight: "", Height: "170"}.BMI())
	require.Nil(t, Profile{Weight: "abc", Height: "170"}.BMI())
	require.Nil(t, Profile{Weight: "70", Height: "0"}.BMI())
}

func TestDashboardPropagatesStorageErrors(t *testing.T) {
	svc, workouts, _, _ := newTestService(t)
	workouts.listErr = errors.New("connection refused")

	_, err := svc.Dashboard(context.Background(), "u")
	require.EqualError(t, err, "connection refused")
}

type memRecords[T any] struct {
	mu      sync.Mutex
	items   []T
	rec     func(*T) *aggregator.Record
	listErr error
}

func newMemRecords[T any](rec func(*T) *aggregator.Record) *memRecords[T] {
	return &memRecords[T]{rec: rec}
}

func (m *memRecords[T]) ListByUser(_ context.Context, userID string) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]T, 0, len(m.items))
	for i := range m.items {
		if m.rec(&m.items[i]).UserID == userID {
			out = append(out, m.items[i])
		}
	}
	return out, nil
}

func (m *memRecords[T]) Create(_ context.Context, record T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, record)
	return nil
}

func (m *memRecords[T]) Toggle(_ context.Context, userID, id string) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		r := m.rec(&m.items[i])
		if r.ID == id && r.UserID == userID {
			r.Completed = !r.Completed
			out := m.items[i]
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memRecords[T]) Delete(_ context.Context, userID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		r := m.rec(&m.items[i])
		if r.ID == id && r.UserID == userID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type memProfiles struct {
	mu    sync.Mutex
	items map[string]Profile
}

func (m *memProfiles) Get(_ context.Context, userID string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memProfiles) Update(_ context.Context, seed Profile, mutate func(*Profile) error) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[seed.UserID]
	if !ok {
		p = seed
	}
	if err := mutate(&p); err != nil {
		return nil, err
	}
	m.items[p.UserID] = p
	return &p, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls int
	last  aggregator.Dashboard
}

func (n *recordingNotifier) Publish(_ string, d aggregator.Dashboard) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	n.last = d
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}
