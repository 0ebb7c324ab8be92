package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestProcessorCommitsOnSuccess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payload := []byte(`{"user_id":"u1","kind":"workout","record_id":"w1","change":"created"}`)
	msg := kafka.Message{
		Topic:     "wellness_record_events",
		Partition: 0,
		Offset:    10,
		Time:      time.Now().UTC(),
		Key:       []byte("u1"),
		Value:     payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("record.created")},
			{Key: "user_id", Value: []byte("u1")},
		},
	}

	reader := &stubReader{messages: []kafka.Message{msg}, after: contextCanceled}
	handler := &stubHandler{}

	processor := NewProcessor(reader, handler, WithLogger(zaptest.NewLogger(t)))
	before := testutil.ToFloat64(summaryEventsCounter.WithLabelValues("record.created"))

	err := processor.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 1, reader.commitCalls)
	require.InDelta(t, before+1, testutil.ToFloat64(summaryEventsCounter.WithLabelValues("record.created")), 0.0001)
	require.InDelta(t, float64(msg.Time.Unix()), testutil.ToFloat64(lastAppliedGauge), 0.0001)
	require.Equal(t, "record.created", handler.last.EventType)
	require.Equal(t, "u1", handler.last.UserID)
	require.JSONEq(t, string(payload), string(handler.last.Payload))
}

func TestProcessorFallsBackToPayloadUserID(t *testing.T) {
	msg := kafka.Message{
		Value:   []byte(`{"user_id":"u9","occurred_at":"2025-10-29T10:00:00Z"}`),
		Headers: []kafka.Header{{Key: "event_type", Value: []byte("profile.updated")}},
	}

	reader := &stubReader{messages: []kafka.Message{msg}, after: contextCanceled}
	handler := &stubHandler{}

	err := NewProcessor(reader, handler).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, "u9", handler.last.UserID)
	require.Equal(t, 1, reader.commitCalls)
}

func TestProcessorSkipsCommitOnHandlerError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msg := kafka.Message{
		Topic:  "wellness_record_events",
		Offset: 20,
		Time:   time.Now().UTC(),
		Value:  []byte(`{"user_id":"u2"}`),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("record.deleted")},
			{Key: "user_id", Value: []byte("u2")},
		},
	}

	reader := &stubReader{messages: []kafka.Message{msg}, after: contextCanceled}
	handler := &stubHandler{err: errors.New("boom")}

	processor := NewProcessor(reader, handler, WithLogger(zaptest.NewLogger(t)))
	before := testutil.ToFloat64(summaryFailuresCounter.WithLabelValues("record.deleted"))

	err := processor.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 0, reader.commitCalls)
	require.InDelta(t, before+1, testutil.ToFloat64(summaryFailuresCounter.WithLabelValues("record.deleted")), 0.0001)
}

func TestProcessorCommitsMalformedMessages(t *testing.T) {
	tests := []struct {
		name string
		msg  kafka.Message
	}{
		{
			name: "missing event type",
			msg:  kafka.Message{Value: []byte(`{"user_id":"u1"}`)},
		},
		{
			name: "invalid json",
			msg: kafka.Message{
				Value:   []byte(`{not json`),
				Headers: []kafka.Header{{Key: "event_type", Value: []byte("record.created")}},
			},
		},
		{
			name: "no user",
			msg: kafka.Message{
				Value:   []byte(`{}`),
				Headers: []kafka.Header{{Key: "event_type", Value: []byte("record.created")}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &stubReader{messages: []kafka.Message{tt.msg}, after: contextCanceled}
			handler := &stubHandler{}
			before := testutil.ToFloat64(malformedCounter)

			err := NewProcessor(reader, handler, WithLogger(zaptest.NewLogger(t))).Run(context.Background())
			require.ErrorIs(t, err, context.Canceled)
			require.Zero(t, handler.calls)
			require.Equal(t, 1, reader.commitCalls)
			require.InDelta(t, before+1, testutil.ToFloat64(malformedCounter), 0.0001)
		})
	}
}

type stubReader struct {
	messages    []kafka.Message
	index       int
	commitCalls int
	after       func() error
}

func (r *stubReader) FetchMessage(context.Context) (kafka.Message, error) {
	if r.index >= len(r.messages) {
		if r.after != nil {
			return kafka.Message{}, r.after()
		}
		return kafka.Message{}, context.Canceled
	}
	msg := r.messages[r.index]
	r.index++
	return msg, nil
}

func (r *stubReader) CommitMessages(_ context.Context, _ ...kafka.Message) error {
	r.commitCalls++
	return nil
}

func (r *stubReader) Close() error { return nil }

func contextCanceled() error { return context.Canceled }

type stubHandler struct {
	calls int
	err   error
	last  Message
}

func (h *stubHandler) Handle(_ context.Context, msg Message) error {
	h.calls++
	h.last = msg
	return h.err
}
