// Package notification consumes booking and payment lifecycle events off
// the bus and records a delivery-ready notification per (user, event),
// collapsing duplicate at-least-once deliveries onto the same row.
package notification

import "time"

// Channel is the delivery channel a notification was queued for.
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"
)

// Status tracks whether a notification has actually been handed to a
// delivery channel yet.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
)

// Notification is one message queued for delivery to a user, keyed
// uniquely by (user_id, source_event_id) so a redelivered bus message
// never produces a duplicate.
type Notification struct {
	ID            string `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID        string `gorm:"uniqueIndex:idx_user_source_event;not null"`
	SourceEventID string `gorm:"uniqueIndex:idx_user_source_event;not null"` // events.Envelope.EventID that triggered this row
	Channel       Channel
	Subject       string
	Body          string
	Status        Status `gorm:"default:PENDING"`
	FailureReason string
	CreatedAt     time.Time
	SentAt        *time.Time
}
