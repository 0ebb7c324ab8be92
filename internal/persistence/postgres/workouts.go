package postgres

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/Pelyn9/wellnessmate/internal/aggregator"
	"github.com/Pelyn9/wellnessmate/internal/events"
	"github.com/Pelyn9/wellnessmate/internal/observability"
)

var workoutColumns = []string{
	"id", "user_id", "day", "day_index", "exercise", "sets", "reps",
	"duration_value", "duration_unit", "duration_legacy", "intensity", "notes", "completed", "created_at",
}

type workoutRow struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	Day            string    `db:"day"`
	DayIndex       *int      `db:"day_index"`
	Exercise       string    `db:"exercise"`
	Sets           string    `db:"sets"`
	Reps           string    `db:"reps"`
	DurationValue  float64   `db:"duration_value"`
	DurationUnit   string    `db:"duration_unit"`
	DurationLegacy string    `db:"duration_legacy"`
	Intensity      string    `db:"intensity"`
	Notes          string    `db:"notes"`
	Completed      bool      `db:"completed"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r workoutRow) toWorkout() aggregator.Workout {
	return aggregator.Workout{
		Record: aggregator.Record{
			ID:        r.ID,
			UserID:    r.UserID,
			Day:       r.Day,
			DayIndex:  r.DayIndex,
			Completed: r.Completed,
			CreatedAt: r.CreatedAt,
		},
		Exercise: r.Exercise,
		Sets:     r.Sets,
		Reps:     r.Reps,
		Duration: aggregator.Duration{
			Value:  r.DurationValue,
			Unit:   aggregator.DurationUnit(r.DurationUnit),
			Legacy: r.DurationLegacy,
		},
		Intensity: aggregator.Intensity(r.Intensity),
		Notes:     r.Notes,
	}
}

// WorkoutStore persists workouts and their outbox events.
type WorkoutStore struct {
	db     DB
	outbox outboxWriter
}

// NewWorkoutStore constructs a WorkoutStore publishing events to topic.
func NewWorkoutStore(db DB, topic string) *WorkoutStore {
	return &WorkoutStore{db: db, outbox: newOutboxWriter(topic)}
}

// ListByUser returns every workout owned by userID in week order.
func (s *WorkoutStore) ListByUser(ctx context.Context, userID string) ([]aggregator.Workout, error) {
	query, args, err := psql.Select(workoutColumns...).
		From("workouts").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("day_index NULLS LAST", "created_at", "id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []workoutRow
	if err := pgxscan.Select(ctx, s.db, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]aggregator.Workout, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toWorkout())
	}
	return out, nil
}

// Create inserts the workout and a record.created event atomically.
func (s *WorkoutStore) Create(ctx context.Context, w aggregator.Workout) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	query, args, err := psql.Insert("workouts").
		Columns(workoutColumns...).
		Values(w.ID, w.UserID, w.Day, w.DayIndex, w.Exercise, w.Sets, w.Reps,
			w.Duration.Value, string(w.Duration.Unit), w.Duration.Legacy, string(w.Intensity), w.Notes, w.Completed, w.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return err
	}

	if err = s.outbox.insert(ctx, tx, w.UserID, string(aggregator.KindWorkout), w.ID, events.RecordChanged{
		UserID:     w.UserID,
		Kind:       aggregator.KindWorkout,
		RecordID:   w.ID,
		Change:     events.ChangeCreated,
		Completed:  w.Completed,
		OccurredAt: w.CreatedAt,
	}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordPersisted(string(aggregator.KindWorkout), w.CreatedAt)
	return nil
}

// Toggle flips the completed flag of an owned workout. It returns nil when nothing matched.
func (s *WorkoutStore) Toggle(ctx context.Context, userID, id string) (_ *aggregator.Workout, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	query, args, err := psql.Update("workouts").
		Set("completed", sq.Expr("NOT completed")).
		Where(ownedBy(userID, id)).
		Suffix("RETURNING " + strings.Join(workoutColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row workoutRow
	if err = pgxscan.Get(ctx, tx, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, tx.Commit(ctx)
		}
		return nil, err
	}

	workout := row.toWorkout()
	if err = s.outbox.insert(ctx, tx, userID, string(aggregator.KindWorkout), id, events.RecordChanged{
		UserID:     userID,
		Kind:       aggregator.KindWorkout,
		RecordID:   id,
		Change:     events.ChangeCompleted,
		Completed:  workout.Completed,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &workout, nil
}

// Delete removes an owned workout. It reports false when nothing matched.
func (s *WorkoutStore) Delete(ctx context.Context, userID, id string) (bool, error) {
	return deleteRecord(ctx, s.db, s.outbox, "workouts", aggregator.KindWorkout, userID, id)
}
