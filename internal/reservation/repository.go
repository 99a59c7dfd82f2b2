package reservation

import (
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the persistence boundary for seats and reservations.
type Repository interface {
	// LockSeats row-locks the given seat ids, in canonical (sorted) id
	// order, inside tx and returns them. Locking in a fixed order across
	// every caller is what avoids deadlock between concurrent
	// multi-seat reservations.
	LockSeats(tx *gorm.DB, seatIDs []string) ([]Seat, error)
	ActiveReservationsForSeats(tx *gorm.DB, eventID string, seatIDs []string) ([]Reservation, error)
	CreateReservations(tx *gorm.DB, rs []*Reservation) error
	UpdateSeatStatus(tx *gorm.DB, seatID string, status SeatStatus) error
	GetReservations(tx *gorm.DB, ids []string) ([]Reservation, error)
	UpdateReservationStatus(tx *gorm.DB, id string, status ReservationStatus, confirmedAt *time.Time, bookingRef string) error
	ExpiredPending(db *gorm.DB, now time.Time, limit int) ([]Reservation, error)
}

type repo struct{ db *gorm.DB }

// NewRepository constructs the default gorm-backed Repository.
func NewRepository(db *gorm.DB) Repository { return &repo{db: db} }

func (r *repo) LockSeats(tx *gorm.DB, seatIDs []string) ([]Seat, error) {
	ordered := append([]string(nil), seatIDs...)
	sort.Strings(ordered)

	var seats []Seat
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ordered).
		Order("id").
		Find(&seats).Error; err != nil {
		return nil, err
	}
	return seats, nil
}

func (r *repo) ActiveReservationsForSeats(tx *gorm.DB, eventID string, seatIDs []string) ([]Reservation, error) {
	var out []Reservation
	err := tx.Where("event_id = ? AND seat_id IN ? AND status IN ?", eventID, seatIDs, activeStatuses).
		Find(&out).Error
	return out, err
}

func (r *repo) CreateReservations(tx *gorm.DB, rs []*Reservation) error {
	if len(rs) == 0 {
		return nil
	}
	return tx.Create(&rs).Error
}

func (r *repo) UpdateSeatStatus(tx *gorm.DB, seatID string, status SeatStatus) error {
	return tx.Model(&Seat{}).Where("id = ?", seatID).Update("status", status).Error
}

func (r *repo) GetReservations(tx *gorm.DB, ids []string) ([]Reservation, error) {
	var out []Reservation
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *repo) UpdateReservationStatus(tx *gorm.DB, id string, status ReservationStatus, confirmedAt *time.Time, bookingRef string) error {
	updates := map[string]interface{}{"status": status}
	if confirmedAt != nil {
		updates["confirmed_at"] = *confirmedAt
	}
	if bookingRef != "" {
		updates["booking_ref"] = bookingRef
	}
	return tx.Model(&Reservation{}).Where("id = ?", id).Updates(updates).Error
}

func (r *repo) ExpiredPending(db *gorm.DB, now time.Time, limit int) ([]Reservation, error) {
	var out []Reservation
	q := db.Where("status = ? AND expires_at < ?", ReservationPending, now).Order("expires_at asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}
