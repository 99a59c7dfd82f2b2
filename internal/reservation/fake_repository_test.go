package reservation_test

import (
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"eventix/internal/reservation"
)

// fakeRepository is an in-memory stand-in for reservation.Repository. The
// real repository's methods take a *gorm.DB transaction handle, which makes
// a gomock-style mock unable to express the row-locking semantics under
// test; a small in-memory fake can actually enforce them.
type fakeRepository struct {
	mu           sync.Mutex
	seats        map[string]reservation.Seat
	reservations map[string]reservation.Reservation
}

func newFakeRepository(seats ...reservation.Seat) *fakeRepository {
	r := &fakeRepository{
		seats:        make(map[string]reservation.Seat),
		reservations: make(map[string]reservation.Reservation),
	}
	for _, s := range seats {
		r.seats[s.ID] = s
	}
	return r
}

func (r *fakeRepository) LockSeats(tx *gorm.DB, seatIDs []string) ([]reservation.Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ordered := append([]string(nil), seatIDs...)
	sort.Strings(ordered)
	var out []reservation.Seat
	for _, id := range ordered {
		if s, ok := r.seats[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeRepository) ActiveReservationsForSeats(tx *gorm.DB, eventID string, seatIDs []string) ([]reservation.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := make(map[string]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		set[id] = struct{}{}
	}
	var out []reservation.Reservation
	for _, res := range r.reservations {
		if _, ok := set[res.SeatID]; !ok || res.EventID != eventID {
			continue
		}
		if res.Status == reservation.ReservationPending || res.Status == reservation.ReservationConfirmed {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeRepository) CreateReservations(tx *gorm.DB, rs []*reservation.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, res := range rs {
		if res.ID == "" {
			res.ID = idFor(res.SeatID, i)
		}
		r.reservations[res.ID] = *res
	}
	return nil
}

func (r *fakeRepository) UpdateSeatStatus(tx *gorm.DB, seatID string, status reservation.SeatStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.seats[seatID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Status = status
	r.seats[seatID] = s
	return nil
}

func (r *fakeRepository) GetReservations(tx *gorm.DB, ids []string) ([]reservation.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []reservation.Reservation
	for _, id := range ids {
		if res, ok := r.reservations[id]; ok {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeRepository) UpdateReservationStatus(tx *gorm.DB, id string, status reservation.ReservationStatus, confirmedAt *time.Time, bookingRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	res.Status = status
	if confirmedAt != nil {
		res.ConfirmedAt = confirmedAt
	}
	if bookingRef != "" {
		res.BookingRef = bookingRef
	}
	r.reservations[id] = res
	return nil
}

func (r *fakeRepository) ExpiredPending(db *gorm.DB, now time.Time, limit int) ([]reservation.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []reservation.Reservation
	for _, res := range r.reservations {
		if res.Status == reservation.ReservationPending && now.After(res.ExpiresAt) {
			out = append(out, res)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func idFor(seatID string, i int) string {
	return seatID + "-res"
}
