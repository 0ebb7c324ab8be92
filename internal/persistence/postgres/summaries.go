package postgres

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/Pelyn9/wellnessmate/internal/report"
)

type summaryRow struct {
	UserID     string    `db:"user_id"`
	Summary    []byte    `db:"summary"`
	ComputedAt time.Time `db:"computed_at"`
}

// SummaryStore reads and writes the weekly_summaries projection.
type SummaryStore struct {
	db DB
}

// NewSummaryStore constructs a SummaryStore.
func NewSummaryStore(db DB) *SummaryStore {
	return &SummaryStore{db: db}
}

// Upsert replaces the user's summary.
func (s *SummaryStore) Upsert(ctx context.Context, userID string, summary report.Dashboard, computedAt time.Time) error {
	body, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	query, args, err := psql.Insert("weekly_summaries").
		Columns("user_id", "summary", "computed_at").
		Values(userID, body, computedAt).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET summary = EXCLUDED.summary, computed_at = EXCLUDED.computed_at").
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, query, args...)
	return err
}

// Get returns the user's stored summary, or nil when none was computed yet.
func (s *SummaryStore) Get(ctx context.Context, userID string) (*report.WeeklySummary, error) {
	query, args, err := psql.Select("user_id", "summary", "computed_at").
		From("weekly_summaries").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row summaryRow
	if err := pgxscan.Get(ctx, s.db, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	out := &report.WeeklySummary{UserID: row.UserID, ComputedAt: row.ComputedAt}
	if err := json.Unmarshal(row.Summary, &out.Summary); err != nil {
		return nil, err
	}
	return out, nil
}

const knownUsersQuery = `SELECT user_id FROM workouts
    UNION SELECT user_id FROM meals
    UNION SELECT user_id FROM profiles
    ORDER BY user_id`

// UserIDs lists every user with at least one record or a profile.
func (s *SummaryStore) UserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := pgxscan.Select(ctx, s.db, &ids, knownUsersQuery); err != nil {
		return nil, err
	}
	return ids, nil
}
