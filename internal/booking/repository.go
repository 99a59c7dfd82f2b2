package booking

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(tx *gorm.DB, b *Booking) error
	Get(id string) (*Booking, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	ListConfirmedByEvent(ctx context.Context, eventID string) ([]*Booking, error)
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*Booking, error)
	ListByUser(ctx context.Context, userID string) ([]*Booking, error)
	SetReservationIDs(ctx context.Context, id string, idsJSON string) error
}

type repo struct{ db *gorm.DB }

func NewBookingRepository(db *gorm.DB) BookingRepository { return &repo{db} }

func (r *repo) Create(tx *gorm.DB, b *Booking) error {
	return tx.Create(b).Error
}

func (r *repo) Get(id string) (*Booking, error) {
	var b Booking
	if err := r.db.Preload("Items").First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateStatus sets booking status, stamping ConfirmedAt/CancelledAt for
// the transitions where those timestamps are meaningful.
func (r *repo) UpdateStatus(ctx context.Context, id string, status Status) error {
	updates := map[string]interface{}{"status": status}
	now := time.Now().UTC()
	switch status {
	case StatusConfirmed:
		updates["confirmed_at"] = now
	case StatusCancelled:
		updates["cancelled_at"] = now
	}
	return r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// SetReservationIDs persists the reservation ids a booking's seat items
// were granted, read back by CancelBooking/ExpireStale to release them.
func (r *repo) SetReservationIDs(ctx context.Context, id string, idsJSON string) error {
	return r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", id).
		Update("reservation_ids", idsJSON).Error
}

// ListConfirmedByEvent returns all confirmed bookings for a specific event
func (r *repo) ListConfirmedByEvent(ctx context.Context, eventID string) ([]*Booking, error) {
	var bookings []*Booking
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("event_id = ? AND status = ?", eventID, StatusConfirmed).
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListExpiredPending returns PENDING bookings whose ExpiryDate has
// already passed, for the auto-expire sweep (invariant I-5).
func (r *repo) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*Booking, error) {
	var bookings []*Booking
	q := r.db.WithContext(ctx).Preload("Items").
		Where("status = ? AND expiry_date < ?", StatusPending, now).
		Order("expiry_date asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListByUser returns every booking a user has made, most recent first.
func (r *repo) ListByUser(ctx context.Context, userID string) ([]*Booking, error) {
	var bookings []*Booking
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}
