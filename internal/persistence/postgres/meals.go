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

var mealColumns = []string{
	"id", "user_id", "day", "day_index", "meal", "plan", "calories", "notes", "completed", "created_at",
}

type mealRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Day       string    `db:"day"`
	DayIndex  *int      `db:"day_index"`
	Meal      string    `db:"meal"`
	Plan      string    `db:"plan"`
	Calories  float64   `db:"calories"`
	Notes     string    `db:"notes"`
	Completed bool      `db:"completed"`
	CreatedAt time.Time `db:"created_at"`
}

func (r mealRow) toMeal() aggregator.Meal {
	return aggregator.Meal{
		Record: aggregator.Record{
			ID:        r.ID,
			UserID:    r.UserID,
			Day:       r.Day,
			DayIndex:  r.DayIndex,
			Completed: r.Completed,
			CreatedAt: r.CreatedAt,
		},
		Meal:     aggregator.MealType(r.Meal),
		Plan:     r.Plan,
		Calories: r.Calories,
		Notes:    r.Notes,
	}
}

// MealStore persists meal plans and their outbox events.
type MealStore struct {
	db     DB
	outbox outboxWriter
}

// NewMealStore constructs a MealStore publishing events to topic.
func NewMealStore(db DB, topic string) *MealStore {
	return &MealStore{db: db, outbox: newOutboxWriter(topic)}
}

// ListByUser returns every meal owned by userID in week order.
func (s *MealStore) ListByUser(ctx context.Context, userID string) ([]aggregator.Meal, error) {
	query, args, err := psql.Select(mealColumns...).
		From("meals").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("day_index NULLS LAST", "created_at", "id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []mealRow
	if err := pgxscan.Select(ctx, s.db, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]aggregator.Meal, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toMeal())
	}
	return out, nil
}

// Create inserts the meal and a record.created event atomically.
func (s *MealStore) Create(ctx context.Context, m aggregator.Meal) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	query, args, err := psql.Insert("meals").
		Columns(mealColumns...).
		Values(m.ID, m.UserID, m.Day, m.DayIndex, string(m.Meal), m.Plan, m.Calories, m.Notes, m.Completed, m.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return err
	}

	if err = s.outbox.insert(ctx, tx, m.UserID, string(aggregator.KindMeal), m.ID, events.RecordChanged{
		UserID:     m.UserID,
		Kind:       aggregator.KindMeal,
		RecordID:   m.ID,
		Change:     events.ChangeCreated,
		Completed:  m.Completed,
		OccurredAt: m.CreatedAt,
	}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordPersisted(string(aggregator.KindMeal), m.CreatedAt)
	return nil
}

// Toggle flips the prepared flag of an owned meal. It returns nil when nothing matched.
func (s *MealStore) Toggle(ctx context.Context, userID, id string) (_ *aggregator.Meal, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	query, args, err := psql.Update("meals").
		Set("completed", sq.Expr("NOT completed")).
		Where(ownedBy(userID, id)).
		Suffix("RETURNING " + strings.Join(mealColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row mealRow
	if err = pgxscan.Get(ctx, tx, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, tx.Commit(ctx)
		}
		return nil, err
	}

	meal := row.toMeal()
	if err = s.outbox.insert(ctx, tx, userID, string(aggregator.KindMeal), id, events.RecordChanged{
		UserID:     userID,
		Kind:       aggregator.KindMeal,
		RecordID:   id,
		Change:     events.ChangeCompleted,
		Completed:  meal.Completed,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &meal, nil
}

// Delete removes an owned meal. It reports false when nothing matched.
func (s *MealStore) Delete(ctx context.Context, userID, id string) (bool, error) {
	return deleteRecord(ctx, s.db, s.outbox, "meals", aggregator.KindMeal, userID, id)
}

func deleteRecord(ctx context.Context, db DB, outbox outboxWriter, table string, kind aggregator.Kind, userID, id string) (_ bool, err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	query, args, err := psql.Delete(table).Where(ownedBy(userID, id)).ToSql()
	if err != nil {
		return false, err
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, tx.Commit(ctx)
	}

	if err = outbox.insert(ctx, tx, userID, string(kind), id, events.RecordChanged{
		UserID:     userID,
		Kind:       kind,
		RecordID:   id,
		Change:     events.ChangeDeleted,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		return false, err
	}
	if err = tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
