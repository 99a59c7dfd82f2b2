// Package payment implements the payment workflow: PENDING bookings get
// a payment opened against them, which is then completed or failed by
// the booking_confirmation saga's ProcessPayment step (pull model) or by
// a direct HTTP callback from a payment provider (the convergent
// alternate entry point).
package payment

import "time"

// Status is the lifecycle state of a Payment.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusRefunded   Status = "REFUNDED"
	StatusCancelled  Status = "CANCELLED"
)

// Payment is one payment attempt against a booking. ExternalReference
// is the provider-side idempotency key, always set to the payment's own
// ID so retried provider callbacks collapse onto the same row.
type Payment struct {
	ID                string     `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"payment_id"`
	BookingID         string     `gorm:"type:uuid;not null;index" json:"booking_id"`
	UserID            string     `gorm:"type:uuid;not null" json:"user_id"`
	AmountCents       int64      `gorm:"column:amount_cents;not null" json:"amount_cents"`
	Currency          string     `gorm:"type:char(3);not null;default:'USD'" json:"currency"`
	Status            Status     `gorm:"type:text;not null" json:"status"`
	ExternalReference string     `gorm:"column:external_reference;uniqueIndex" json:"external_reference"`
	FailureReason     string     `json:"failure_reason,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}
