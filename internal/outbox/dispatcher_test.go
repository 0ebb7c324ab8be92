package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

var messageColumns = []string{"event_id", "user_id", "aggregate_type", "aggregate_id", "event_type", "topic", "partition_key", "payload"}

type stubProducer struct {
	mu     sync.Mutex
	err    error
	writes []writtenBatch
}

type writtenBatch struct {
	topic    string
	messages []kafka.Message
}

func (s *stubProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	copied := make([]kafka.Message, len(msgs))
	copy(copied, msgs)
	s.writes = append(s.writes, writtenBatch{topic: topic, messages: copied})
	return nil
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func expectClaim(mock pgxmock.PgxPoolIface, rows *pgxmock.Rows) {
	mock.ExpectBegin()
	mock.ExpectQuery("FROM outbox").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(rows)
	mock.ExpectExec("UPDATE outbox SET claimed_at").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectCommit()
}

func TestDispatcherPublishesMessagesKeyedByUser(t *testing.T) {
	mock := newMock(t)
	producer := &stubProducer{}
	dispatcher := NewDispatcher(mock, producer, nil, 10*time.Millisecond, 5)

	expectClaim(mock, pgxmock.NewRows(messageColumns).
		AddRow(int64(1), "u1", "workout", "w1", "record.created", "wellness_record_events", "u1", []byte(`{"user_id":"u1"}`)).
		AddRow(int64(2), "u2", "meal", "m1", "record.deleted", "wellness_record_events", "u2", []byte(`{"user_id":"u2"}`)))
	mock.ExpectExec("UPDATE outbox SET published_at").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	beforeWorkouts := testutil.ToFloat64(publishedCounter.WithLabelValues("workout"))
	beforeMeals := testutil.ToFloat64(publishedCounter.WithLabelValues("meal"))

	require.NoError(t, dispatcher.processBatch(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, producer.writes, 1)
	batch := producer.writes[0]
	require.Equal(t, "wellness_record_events", batch.topic)
	require.Len(t, batch.messages, 2)
	require.Equal(t, []byte("u1"), batch.messages[0].Key)
	require.Equal(t, []byte(`{"user_id":"u1"}`), batch.messages[0].Value)
	require.Contains(t, batch.messages[1].Headers, kafka.Header{Key: HeaderEventType, Value: []byte("record.deleted")})
	require.Contains(t, batch.messages[1].Headers, kafka.Header{Key: HeaderUserID, Value: []byte("u2")})

	require.InDelta(t, beforeWorkouts+1, testutil.ToFloat64(publishedCounter.WithLabelValues("workout")), 0.0001)
	require.InDelta(t, beforeMeals+1, testutil.ToFloat64(publishedCounter.WithLabelValues("meal")), 0.0001)
}

func TestDispatcherRoutesFailuresToDLQ(t *testing.T) {
	mock := newMock(t)
	producer := &stubProducer{err: errors.New("kafka write failed")}
	dispatcher := NewDispatcher(mock, producer, nil, 10*time.Millisecond, 5)

	expectClaim(mock, pgxmock.NewRows(messageColumns).
		AddRow(int64(7), "u1", "profile", "u1", "profile.updated", "wellness_record_events", "u1", []byte(`{}`)))
	mock.ExpectExec("INSERT INTO outbox_dlq").
		WithArgs(int64(7), "u1", "profile", "u1", "profile.updated", "wellness_record_events", "u1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE outbox SET published_at").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	beforeFailed := testutil.ToFloat64(unpublishedCounter.WithLabelValues("profile"))
	beforeDLQ := testutil.ToFloat64(deadLetteredCounter.WithLabelValues("profile", "profile.updated"))

	require.NoError(t, dispatcher.processBatch(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
	require.Empty(t, producer.writes)

	require.InDelta(t, beforeFailed+1, testutil.ToFloat64(unpublishedCounter.WithLabelValues("profile")), 0.0001)
	require.InDelta(t, beforeDLQ+1, testutil.ToFloat64(deadLetteredCounter.WithLabelValues("profile", "profile.updated")), 0.0001)
}

func TestDispatcherIdleBatch(t *testing.T) {
	mock := newMock(t)
	producer := &stubProducer{}
	dispatcher := NewDispatcher(mock, producer, nil, 10*time.Millisecond, 5)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM outbox").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(messageColumns))
	mock.ExpectCommit()

	require.NoError(t, dispatcher.processBatch(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
	require.Empty(t, producer.writes)
}

func TestDispatcherStartStopsOnCancel(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin().WillReturnError(context.Canceled)

	dispatcher := NewDispatcher(mock, &stubProducer{}, nil, time.Hour, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		dispatcher.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop")
	}
	dispatcher.Wait()
}
