// Package events defines the payloads exchanged between the API, the outbox and the
// summary consumer.
package events

import (
	"time"

	"github.com/Pelyn9/wellnessmate/internal/aggregator"
)

// Event types recorded in the outbox and carried in the event_type header.
const (
	TypeRecordCreated           = "record.created"
	TypeRecordCompletionChanged = "record.completion_changed"
	TypeRecordDeleted           = "record.deleted"
	TypeProfileUpdated          = "profile.updated"
)

// DefaultTopic receives every record and profile event.
const DefaultTopic = "wellness_record_events"

// Change describes what happened to a record.
type Change string

const (
	ChangeCreated   Change = "created"
	ChangeCompleted Change = "completion_changed"
	ChangeDeleted   Change = "deleted"
)

// RecordChanged is emitted for every workout or meal mutation.
type RecordChanged struct {
	UserID     string          `json:"user_id"`
	Kind       aggregator.Kind `json:"kind"`
	RecordID   string          `json:"record_id"`
	Change     Change          `json:"change"`
	Completed  bool            `json:"completed"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Type returns the outbox event type for the change.
func (e RecordChanged) Type() string {
	switch e.Change {
	case ChangeCompleted:
		return TypeRecordCompletionChanged
	case ChangeDeleted:
		return TypeRecordDeleted
	default:
		return TypeRecordCreated
	}
}

// ProfileUpdated is emitted whenever the profile or hydration log is saved.
type ProfileUpdated struct {
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Type returns the outbox event type.
func (ProfileUpdated) Type() string { return TypeProfileUpdated }

// Envelope is the minimal view the consumer needs from any event payload.
type Envelope struct {
	UserID string `json:"user_id"`
}
