// Package booking provides the core booking domain models and business logic
// for the ticket booking system.
package booking

import (
	"encoding/json"
	"time"
)

// Status represents the lifecycle states of a booking.
// Bookings transition: PENDING -> CONFIRMED (on payment), PENDING ->
// CANCELLED (on seat/payment failure) or EXPIRED (hold timer elapses
// before payment), CONFIRMED -> CANCELLED (user cancels), CANCELLED ->
// REFUNDED (payment for an already-CONFIRMED booking is returned).
type Status string

const (
	// StatusPending indicates a booking is created but payment not yet processed
	StatusPending Status = "PENDING"
	// StatusConfirmed indicates payment was successful and tickets are secured
	StatusConfirmed Status = "CONFIRMED"
	// StatusCancelled indicates booking was cancelled due to payment/seat
	// failure or an explicit user cancellation request
	StatusCancelled Status = "CANCELLED"
	// StatusExpired indicates the booking's hold timer elapsed before
	// payment completed
	StatusExpired Status = "EXPIRED"
	// StatusRefunded indicates a CANCELLED booking's payment was returned
	StatusRefunded Status = "REFUNDED"
)

// Item is one line of a booking: either a specific assigned seat
// (SeatID set, Quantity 1) or a block of general-admission capacity in a
// section (SeatID empty, Quantity >= 1). UnitPriceCents is captured at
// booking time so a later price change on the event doesn't retroactively
// alter an in-flight or completed booking.
type Item struct {
	ID             string `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	BookingID      string `gorm:"type:uuid;not null;index" json:"booking_id"`
	SeatID         string `gorm:"type:uuid" json:"seat_id,omitempty"`
	SectionID      string `gorm:"type:uuid" json:"section_id,omitempty"`
	SectionName    string `json:"section_name,omitempty"`
	SeatRow        string `gorm:"column:seat_row" json:"seat_row,omitempty"`
	SeatNumber     int    `gorm:"column:seat_number" json:"seat_number,omitempty"`
	UnitPriceCents int64  `gorm:"column:unit_price_cents;not null" json:"unit_price_cents"`
	Quantity       int    `gorm:"not null;default:1" json:"quantity"`
}

// Total is this item's contribution to the booking's TotalAmountCents.
func (i Item) Total() int64 { return i.UnitPriceCents * int64(i.Quantity) }

// Booking represents a ticket reservation for an event: a set of Items
// reserved, paid for, and cancelled as a unit. Captures pricing at
// booking time to handle price changes gracefully (invariant I-4: Items
// sum to TotalAmountCents). ExpiryDate gates the automatic PENDING ->
// EXPIRED sweep (invariant I-5).
type Booking struct {
	ID               string     `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	BookingReference string     `gorm:"column:booking_reference;not null;uniqueIndex" json:"booking_reference"`
	UserID           string     `gorm:"type:uuid;not null;index" json:"user_id"`
	EventID          string     `gorm:"type:uuid;not null;index" json:"event_id"`
	TotalAmountCents int64      `gorm:"column:total_amount_cents;not null" json:"total_amount_cents"`
	Currency         string     `gorm:"type:char(3);not null" json:"currency"`
	Status           Status     `gorm:"type:text;not null" json:"status"`
	ExpiryDate       time.Time  `gorm:"column:expiry_date;index" json:"expiry_date"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`

	// ReservationIDsJSON records the reservation.Service reservation ids
	// granted to this booking's seat items, so CancelBooking and the
	// expiry sweep release exactly those seats. Mirrors saga.Instance's
	// DataJSON pattern: a gorm text column paired with an unexported
	// decoded cache, marshalled lazily by ReservationIDs/SetReservationIDs.
	ReservationIDsJSON string   `gorm:"column:reservation_ids;type:text" json:"-"`
	reservationIDs     []string `gorm:"-"`

	Items []Item `gorm:"foreignKey:BookingID" json:"items,omitempty"`

	CreatedAt time.Time `json:"created_at"` // When booking was created
	UpdatedAt time.Time `json:"updated_at"` // Last status change timestamp
}

// Quantity returns the total ticket count across all items.
func (b Booking) Quantity() int {
	n := 0
	for _, it := range b.Items {
		n += it.Quantity
	}
	return n
}

// Cancellable reports whether b can move to CANCELLED from its current
// Status; EXPIRED and REFUNDED are terminal.
func (b Booking) Cancellable() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// ReservationIDs returns the reservation.Service ids granted for this
// booking's seat items, decoding ReservationIDsJSON lazily.
func (b *Booking) ReservationIDs() []string {
	if b.reservationIDs == nil && b.ReservationIDsJSON != "" {
		_ = json.Unmarshal([]byte(b.ReservationIDsJSON), &b.reservationIDs)
	}
	return b.reservationIDs
}

// SetReservationIDs stores ids and re-encodes ReservationIDsJSON.
func (b *Booking) SetReservationIDs(ids []string) {
	b.reservationIDs = ids
	data, _ := json.Marshal(ids)
	b.ReservationIDsJSON = string(data)
}
