// Package reservation is the seat reservation store: it owns Seat and
// Reservation rows and is the only writer of seat status, enforcing that
// at most one PENDING-or-CONFIRMED reservation exists for a given
// (seat_id, event_id) at any instant.
package reservation

import "time"

// SeatType classifies pricing/accessibility tiers for a seat.
type SeatType string

const (
	SeatRegular    SeatType = "REGULAR"
	SeatVIP        SeatType = "VIP"
	SeatPremium    SeatType = "PREMIUM"
	SeatAccessible SeatType = "ACCESSIBLE"
)

// SeatStatus is the physical occupancy state of a seat, mutated only by
// this package under the transitions documented on Service.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatReserved  SeatStatus = "RESERVED"
	SeatOccupied  SeatStatus = "OCCUPIED"
	SeatBlocked   SeatStatus = "BLOCKED"
)

// Seat is a single bookable position at an event's venue.
type Seat struct {
	ID        string     `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"seat_id"`
	EventID   string     `gorm:"type:uuid;not null;index:idx_seats_event" json:"event_id"`
	SectionID string     `gorm:"type:uuid;not null" json:"section_id"`
	Row       string     `gorm:"not null" json:"row"`
	Number    int        `gorm:"not null" json:"number"`
	Type      SeatType   `gorm:"type:text;not null;default:'REGULAR'" json:"type"`
	Status    SeatStatus `gorm:"type:text;not null;default:'AVAILABLE'" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ReservationStatus is the lifecycle state of a Reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationExpired   ReservationStatus = "EXPIRED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationCompleted ReservationStatus = "COMPLETED"
)

// activeStatuses are the statuses that count toward invariant I-1: at
// most one reservation with status in {PENDING, CONFIRMED} may exist for
// a given (seat_id, event_id).
var activeStatuses = []ReservationStatus{ReservationPending, ReservationConfirmed}

// Reservation is a hold (and eventually a sale) of one seat for one
// event by one user.
type Reservation struct {
	ID            string            `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"reservation_id"`
	SeatID        string            `gorm:"type:uuid;not null;index:idx_res_seat_event" json:"seat_id"`
	EventID       string            `gorm:"type:uuid;not null;index:idx_res_seat_event" json:"event_id"`
	UserID        string            `gorm:"type:uuid;not null" json:"user_id"`
	Status        ReservationStatus `gorm:"type:text;not null" json:"status"`
	ReservedAt    time.Time         `json:"reserved_at"`
	ExpiresAt     time.Time         `json:"expires_at"`
	ReservedPrice int64             `json:"reserved_price"`
	Currency      string            `gorm:"type:char(3)" json:"currency"`
	PricingTierID string            `gorm:"type:uuid" json:"pricing_tier_id"`
	BookingRef    string            `json:"booking_ref,omitempty"`
	ConfirmedAt   *time.Time        `json:"confirmed_at,omitempty"`
}

// IsExpired reports whether a PENDING reservation's TTL has elapsed
// (invariant I-3: logically EXPIRED regardless of the stored status).
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.Status == ReservationPending && now.After(r.ExpiresAt)
}
