// Package postgres provides Postgres-backed persistence for records, profiles, weekly
// summaries and outbox events.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Pelyn9/wellnessmate/internal/events"
)

// DB is the subset of pgxpool.Pool used by the stores.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// outboxEvent is a payload that knows its outbox event type.
type outboxEvent interface {
	Type() string
}

// outboxWriter appends events to the outbox inside the caller's transaction.
type outboxWriter struct {
	topic string
}

func newOutboxWriter(topic string) outboxWriter {
	if topic == "" {
		topic = events.DefaultTopic
	}
	return outboxWriter{topic: topic}
}

// insert records the event keyed by user so a user's events are delivered in order.
func (o outboxWriter) insert(ctx context.Context, tx pgx.Tx, userID, aggregateType, aggregateID string, event outboxEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	query, args, err := psql.Insert("outbox").
		Columns("user_id", "aggregate_type", "aggregate_id", "event_type", "topic", "partition_key", "payload").
		Values(userID, aggregateType, aggregateID, event.Type(), o.topic, userID, body).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert outbox %s: %w", event.Type(), err)
	}
	return nil
}

func ownedBy(userID, id string) sq.And {
	return sq.And{sq.Eq{"user_id": userID}, sq.Eq{"id": id}}
}
