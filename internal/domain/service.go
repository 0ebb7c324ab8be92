// Package domain defines the business logic for the wellness service.
package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Pelyn9/wellnessmate/internal/aggregator"
)

// Notifier receives a freshly computed dashboard after a user's records change.
type Notifier interface {
	Publish(userID string, dashboard aggregator.Dashboard)
}

// NoopNotifier discards dashboards.
type NoopNotifier struct{}

// Publish performs no action.
func (NoopNotifier) Publish(string, aggregator.Dashboard) {}

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithNotifier sets the dashboard notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service orchestrates record, hydration and profile workflows.
type Service struct {
	workouts WorkoutRepository
	meals    MealRepository
	profiles ProfileRepository
	notifier Notifier
	now      func() time.Time
	logger   *zap.Logger
}

// NewService constructs a Service.
func NewService(workouts WorkoutRepository, meals MealRepository, profiles ProfileRepository, opts ...Option) *Service {
	s := &Service{
		workouts: workouts,
		meals:    meals,
		profiles: profiles,
		notifier: NoopNotifier{},
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddWorkout validates and stores a new workout.
func (s *Service) AddWorkout(ctx context.Context, input AddWorkoutInput) (*aggregator.Workout, error) {
	workout, err := input.toWorkout()
	if err != nil {
		return nil, err
	}
	workout.ID = uuid.NewString()
	workout.CreatedAt = s.now().UTC()

	if err := s.workouts.Create(ctx, workout); err != nil {
		return nil, err
	}
	s.publish(ctx, workout.UserID)
	return &workout, nil
}

// ToggleWorkout flips the completed flag of one of the user's workouts.
func (s *Service) ToggleWorkout(ctx context.Context, userID, id string) (*aggregator.Workout, error) {
	workout, err := s.workouts.Toggle(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if workout == nil {
		return nil, ErrNotFound
	}
	s.publish(ctx, userID)
	return workout, nil
}

// DeleteWorkout removes one of the user's workouts.
func (s *Service) DeleteWorkout(ctx context.Context, userID, id string) error {
	deleted, err := s.workouts.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.publish(ctx, userID)
	return nil
}

// AddMeal validates and stores a new meal plan.
func (s *Service) AddMeal(ctx context.Context, input AddMealInput) (*aggregator.Meal, error) {
	meal, err := input.toMeal()
	if err != nil {
		return nil, err
	}
	meal.ID = uuid.NewString()
	meal.CreatedAt = s.now().UTC()

	if err := s.meals.Create(ctx, meal); err != nil {
		return nil, err
	}
	s.publish(ctx, meal.UserID)
	return &meal, nil
}

// ToggleMeal flips the prepared flag of one of the user's meals.
func (s *Service) ToggleMeal(ctx context.Context, userID, id string) (*aggregator.Meal, error) {
	meal, err := s.meals.Toggle(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if meal == nil {
		return nil, ErrNotFound
	}
	s.publish(ctx, userID)
	return meal, nil
}

// DeleteMeal removes one of the user's meals.
func (s *Service) DeleteMeal(ctx context.Context, userID, id string) error {
	deleted, err := s.meals.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.publish(ctx, userID)
	return nil
}

// WorkoutBoard returns the user's workouts filtered and grouped by day. The summary
// always covers the full snapshot.
func (s *Service) WorkoutBoard(ctx context.Context, userID string, filter aggregator.WorkoutFilter) (WorkoutBoard, error) {
	workouts, err := s.workouts.ListByUser(ctx, userID)
	if err != nil {
		return WorkoutBoard{}, err
	}
	return WorkoutBoard{
		Groups:  aggregator.GroupWorkouts(filter.Apply(workouts)),
		Summary: aggregator.SummarizeWorkouts(workouts),
	}, nil
}

// MealBoard returns the user's meals filtered and grouped by day.
func (s *Service) MealBoard(ctx context.Context, userID string, filter aggregator.MealFilter) (MealBoard, error) {
	meals, err := s.meals.ListByUser(ctx, userID)
	if err != nil {
		return MealBoard{}, err
	}
	return MealBoard{
		Groups:  aggregator.GroupMeals(filter.Apply(meals)),
		Summary: aggregator.SummarizeMeals(meals),
	}, nil
}

// Snapshot loads the user's full record lists and hydration settings concurrently.
func (s *Service) Snapshot(ctx context.Context, userID string) (aggregator.Snapshot, error) {
	snapshot := aggregator.Snapshot{UserID: userID}
	var profile *Profile

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		workouts, err := s.workouts.ListByUser(gctx, userID)
		snapshot.Workouts = workouts
		return err
	})
	g.Go(func() error {
		meals, err := s.meals.ListByUser(gctx, userID)
		snapshot.Meals = meals
		return err
	})
	g.Go(func() error {
		p, err := s.profiles.Get(gctx, userID)
		profile = p
		return err
	})
	if err := g.Wait(); err != nil {
		return aggregator.Snapshot{}, err
	}

	if profile != nil {
		snapshot.HydrationGoal = profile.HydrationGoal
		snapshot.HydrationLog = profile.HydrationLog
	}
	return snapshot, nil
}

// Dashboard computes the weekly overview for the user as of the service clock.
func (s *Service) Dashboard(ctx context.Context, userID string) (aggregator.Dashboard, error) {
	snapshot, err := s.Snapshot(ctx, userID)
	if err != nil {
		return aggregator.Dashboard{}, err
	}
	return aggregator.BuildDashboard(snapshot, s.now()), nil
}

// AdjustHydration adds delta glasses to today's log, bounded to the editor range.
func (s *Service) AdjustHydration(ctx context.Context, userID string, delta int) (aggregator.Hydration, error) {
	now := s.now()
	key := aggregator.HydrationKey(now)
	profile, err := s.updateProfile(ctx, userID, func(p *Profile) error {
		next := make(aggregator.HydrationLog, len(p.HydrationLog)+1)
		for k, v := range p.HydrationLog {
			next[k] = v
		}
		next[key] = aggregator.ClampHydration(next[key] + delta)
		p.HydrationLog = next
		return nil
	})
	if err != nil {
		return aggregator.Hydration{}, err
	}
	return aggregator.TodayHydration(profile.HydrationGoal, profile.HydrationLog, now), nil
}

// AdjustHydrationGoal moves the daily goal by delta, bounded to the editor range.
func (s *Service) AdjustHydrationGoal(ctx context.Context, userID string, delta int) (aggregator.Hydration, error) {
	profile, err := s.updateProfile(ctx, userID, func(p *Profile) error {
		current := aggregator.EffectiveHydrationGoal(p.HydrationGoal)
		p.HydrationGoal = aggregator.ClampHydrationGoal(current + delta)
		return nil
	})
	if err != nil {
		return aggregator.Hydration{}, err
	}
	return aggregator.TodayHydration(profile.HydrationGoal, profile.HydrationLog, s.now()), nil
}

// Profile returns the user's profile, or defaults when none was saved yet.
func (s *Service) Profile(ctx context.Context, userID string) (Profile, error) {
	return s.loadProfile(ctx, userID)
}

// UpdateProfile replaces the editable profile fields. An empty email or theme mode
// keeps the stored value.
func (s *Service) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (Profile, error) {
	if err := input.validate(); err != nil {
		return Profile{}, err
	}
	theme, _ := normalizeThemeMode(input.ThemeMode)

	return s.updateProfile(ctx, userID, func(p *Profile) error {
		p.Name = strings.TrimSpace(input.Name)
		p.Weight = strings.TrimSpace(input.Weight)
		p.Height = strings.TrimSpace(input.Height)
		p.Diet = strings.TrimSpace(input.Diet)
		p.Gender = strings.TrimSpace(input.Gender)
		if email := strings.TrimSpace(input.Email); email != "" {
			p.Email = email
		}
		if theme != "" {
			p.ThemeMode = theme
		}
		return nil
	})
}

// SetNotifications toggles reminder notifications for the user.
func (s *Service) SetNotifications(ctx context.Context, userID string, enabled bool) (Profile, error) {
	return s.updateProfile(ctx, userID, func(p *Profile) error {
		p.NotificationsEnabled = enabled
		return nil
	})
}

func (s *Service) loadProfile(ctx context.Context, userID string) (Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return Profile{}, validationError("user id is required")
	}
	stored, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if stored == nil {
		return newProfile(userID), nil
	}
	profile := *stored
	if profile.HydrationLog == nil {
		profile.HydrationLog = aggregator.HydrationLog{}
	}
	return profile, nil
}

// updateProfile applies mutate under the repository's per-user lock, then refreshes
// subscribers.
func (s *Service) updateProfile(ctx context.Context, userID string, mutate func(*Profile) error) (Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return Profile{}, validationError("user id is required")
	}
	stored, err := s.profiles.Update(ctx, newProfile(userID), func(p *Profile) error {
		if p.HydrationLog == nil {
			p.HydrationLog = aggregator.HydrationLog{}
		}
		if err := mutate(p); err != nil {
			return err
		}
		p.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return Profile{}, err
	}
	s.publish(ctx, userID)
	return *stored, nil
}

// publish recomputes the dashboard and hands it to the notifier. Failures are logged only.
func (s *Service) publish(ctx context.Context, userID string) {
	if _, noop := s.notifier.(NoopNotifier); noop {
		return
	}
	dashboard, err := s.Dashboard(ctx, userID)
	if err != nil {
		s.logger.Warn("dashboard refresh failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	s.notifier.Publish(userID, dashboard)
}
