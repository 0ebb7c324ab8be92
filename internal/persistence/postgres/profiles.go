package postgres

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/Pelyn9/wellnessmate/internal/aggregator"
	"github.com/Pelyn9/wellnessmate/internal/domain"
	"github.com/Pelyn9/wellnessmate/internal/events"
)

var profileColumns = []string{
	"user_id", "name", "weight", "height", "diet", "gender", "email", "theme_mode",
	"hydration_goal", "hydration_log", "notifications_enabled", "updated_at",
}

type profileRow struct {
	UserID               string    `db:"user_id"`
	Name                 string    `db:"name"`
	Weight               string    `db:"weight"`
	Height               string    `db:"height"`
	Diet                 string    `db:"diet"`
	Gender               string    `db:"gender"`
	Email                string    `db:"email"`
	ThemeMode            string    `db:"theme_mode"`
	HydrationGoal        int       `db:"hydration_goal"`
	HydrationLog         []byte    `db:"hydration_log"`
	NotificationsEnabled bool      `db:"notifications_enabled"`
	UpdatedAt            time.Time `db:"updated_at"`
}

func (r profileRow) toProfile() (*domain.Profile, error) {
	log := aggregator.HydrationLog{}
	if len(r.HydrationLog) > 0 {
		if err := json.Unmarshal(r.HydrationLog, &log); err != nil {
			return nil, err
		}
	}
	return &domain.Profile{
		UserID:               r.UserID,
		Name:                 r.Name,
		Weight:               r.Weight,
		Height:               r.Height,
		Diet:                 r.Diet,
		Gender:               r.Gender,
		Email:                r.Email,
		ThemeMode:            r.ThemeMode,
		HydrationGoal:        r.HydrationGoal,
		HydrationLog:         log,
		NotificationsEnabled: r.NotificationsEnabled,
		UpdatedAt:            r.UpdatedAt,
	}, nil
}

// ProfileStore persists user profiles and hydration logs.
type ProfileStore struct {
	db     DB
	outbox outboxWriter
}

// NewProfileStore constructs a ProfileStore publishing events to topic.
func NewProfileStore(db DB, topic string) *ProfileStore {
	return &ProfileStore{db: db, outbox: newOutboxWriter(topic)}
}

// Get returns the stored profile, or nil when the user has none.
func (s *ProfileStore) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	query, args, err := psql.Select(profileColumns...).
		From("profiles").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row profileRow
	if err := pgxscan.Get(ctx, s.db, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return row.toProfile()
}

// Update locks the user's row, inserting seed first when the user has none, applies
// mutate and writes the result together with a profile.updated event.
func (s *ProfileStore) Update(ctx context.Context, seed domain.Profile, mutate func(*domain.Profile) error) (_ *domain.Profile, err error) {
	seedValues, err := profileValues(seed)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	insert, args, err := psql.Insert("profiles").
		Columns(profileColumns...).
		Values(seedValues...).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err = tx.Exec(ctx, insert, args...); err != nil {
		return nil, err
	}

	query, args, err := psql.Select(profileColumns...).
		From("profiles").
		Where(sq.Eq{"user_id": seed.UserID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, err
	}
	var row profileRow
	if err = pgxscan.Get(ctx, tx, &row, query, args...); err != nil {
		return nil, err
	}
	profile, err := row.toProfile()
	if err != nil {
		return nil, err
	}
	if err = mutate(profile); err != nil {
		return nil, err
	}

	values, err := profileValues(*profile)
	if err != nil {
		return nil, err
	}
	update := psql.Update("profiles")
	for i, column := range profileColumns[1:] {
		update = update.Set(column, values[i+1])
	}
	query, args, err = update.Where(sq.Eq{"user_id": seed.UserID}).ToSql()
	if err != nil {
		return nil, err
	}
	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return nil, err
	}

	if err = s.outbox.insert(ctx, tx, seed.UserID, "profile", seed.UserID, events.ProfileUpdated{
		UserID:     seed.UserID,
		OccurredAt: profile.UpdatedAt,
	}); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return profile, nil
}

// profileValues orders p's fields to match profileColumns.
func profileValues(p domain.Profile) ([]any, error) {
	log := p.HydrationLog
	if log == nil {
		log = aggregator.HydrationLog{}
	}
	body, err := json.Marshal(log)
	if err != nil {
		return nil, err
	}
	return []any{
		p.UserID, p.Name, p.Weight, p.Height, p.Diet, p.Gender, p.Email, p.ThemeMode,
		p.HydrationGoal, body, p.NotificationsEnabled, p.UpdatedAt,
	}, nil
}
