package reservation

import (
	"context"
	"errors"
	"time"

	"eventix/internal/bus"
	"eventix/internal/events"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrSeatConflict is returned when a requested seat is not reservable:
// it is not AVAILABLE, or an active reservation already exists for it.
var ErrSeatConflict = errors.New("SEAT_CONFLICT")

// ErrReservationExpired is returned by Confirm when SweepExpired won the
// race and already expired the reservation.
var ErrReservationExpired = errors.New("RESERVATION_EXPIRED")

// Availability is the advisory result of CheckAvailability for one seat.
type Availability struct {
	SeatID    string
	Available bool
}

// Service implements the seat reservation store operations of the
// component design: CheckAvailability, Reserve, Confirm, Release and the
// background SweepExpired sweep.
type Service struct {
	db     *gorm.DB
	repo   Repository
	bus    *bus.Bus
	logger *zap.Logger
}

// NewService builds a reservation Service. bus may be nil in tests that
// don't exercise publication.
func NewService(db *gorm.DB, repo Repository, b *bus.Bus, logger *zap.Logger) *Service {
	return &Service{db: db, repo: repo, bus: b, logger: logger}
}

// CheckAvailability is advisory: it does not lock rows. The authoritative
// check happens inside Reserve's transaction.
func (s *Service) CheckAvailability(ctx context.Context, eventID string, seatIDs []string) ([]Availability, error) {
	var seats []Seat
	if err := s.db.WithContext(ctx).Where("id IN ?", seatIDs).Find(&seats).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]Seat, len(seats))
	for _, sSeat := range seats {
		byID[sSeat.ID] = sSeat
	}

	active, err := s.repo.ActiveReservationsForSeats(s.db.WithContext(ctx), eventID, seatIDs)
	if err != nil {
		return nil, err
	}
	reserved := make(map[string]struct{}, len(active))
	for _, r := range active {
		reserved[r.SeatID] = struct{}{}
	}

	out := make([]Availability, 0, len(seatIDs))
	for _, id := range seatIDs {
		seat, ok := byID[id]
		_, hasActive := reserved[id]
		available := ok && seat.Status == SeatAvailable && !hasActive
		out = append(out, Availability{SeatID: id, Available: available})
	}
	return out, nil
}

// Reserve attempts an atomic multi-seat reservation: row-locks every seat
// in canonical id order, verifies each is reservable, and on success
// creates PENDING reservations expiring after ttl and flips the seats to
// RESERVED. All-or-nothing: any seat failing the check aborts the whole
// transaction with ErrSeatConflict.
func (s *Service) Reserve(ctx context.Context, eventID string, seatIDs []string, userID string, ttl time.Duration, pricePerSeat int64, currency string) ([]Reservation, error) {
	var created []Reservation

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seats, err := s.repo.LockSeats(tx, seatIDs)
		if err != nil {
			return err
		}
		if len(seats) != len(seatIDs) {
			return ErrSeatConflict
		}

		active, err := s.repo.ActiveReservationsForSeats(tx, eventID, seatIDs)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return ErrSeatConflict
		}

		for _, seat := range seats {
			if seat.Status != SeatAvailable {
				return ErrSeatConflict
			}
		}

		now := time.Now().UTC()
		reservations := make([]*Reservation, 0, len(seats))
		for _, seat := range seats {
			reservations = append(reservations, &Reservation{
				SeatID:        seat.ID,
				EventID:       eventID,
				UserID:        userID,
				Status:        ReservationPending,
				ReservedAt:    now,
				ExpiresAt:     now.Add(ttl),
				ReservedPrice: pricePerSeat,
				Currency:      currency,
			})
		}
		if err := s.repo.CreateReservations(tx, reservations); err != nil {
			return err
		}
		for _, seat := range seats {
			if err := s.repo.UpdateSeatStatus(tx, seat.ID, SeatReserved); err != nil {
				return err
			}
		}

		for _, r := range reservations {
			created = append(created, *r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.bus != nil {
		ids := make([]string, 0, len(created))
		seatIDsOut := make([]string, 0, len(created))
		for _, r := range created {
			ids = append(ids, r.ID)
			seatIDsOut = append(seatIDsOut, r.SeatID)
		}
		if _, err := s.bus.Publish(events.EventSeatReserved, "", userID, events.SeatReservedPayload{
			EventID: eventID, UserID: userID, ReservationIDs: ids, SeatIDs: seatIDsOut,
		}); err != nil {
			s.logger.Warn("failed to publish seat reserved event", zap.Error(err))
		}
	}

	return created, nil
}

// Confirm flips seats OCCUPIED and reservations CONFIRMED (it never sets
// COMPLETED), idempotently: a confirm on an already-CONFIRMED reservation with a
// matching booking_ref is a no-op. Races with SweepExpired are resolved
// by the row lock: whichever side acquires it first wins; if sweep won,
// Confirm returns ErrReservationExpired.
func (s *Service) Confirm(ctx context.Context, reservationIDs []string, bookingRef string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reservations, err := s.repo.GetReservations(tx, reservationIDs)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, r := range reservations {
			if r.Status == ReservationConfirmed && r.BookingRef == bookingRef {
				continue
			}
			if r.IsExpired(now) || r.Status == ReservationExpired {
				return ErrReservationExpired
			}
			if r.Status != ReservationPending {
				continue
			}
			if err := s.repo.UpdateReservationStatus(tx, r.ID, ReservationConfirmed, &now, bookingRef); err != nil {
				return err
			}
			if err := s.repo.UpdateSeatStatus(tx, r.SeatID, SeatOccupied); err != nil {
				return err
			}
		}
		return nil
	})
}

// Release flips seats AVAILABLE and reservations CANCELLED. Idempotent
// on an already-released reservation.
func (s *Service) Release(ctx context.Context, reservationIDs []string, reason string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reservations, err := s.repo.GetReservations(tx, reservationIDs)
		if err != nil {
			return err
		}
		for _, r := range reservations {
			if r.Status == ReservationCancelled || r.Status == ReservationExpired {
				continue
			}
			if err := s.repo.UpdateReservationStatus(tx, r.ID, ReservationCancelled, nil, ""); err != nil {
				return err
			}
			if err := s.repo.UpdateSeatStatus(tx, r.SeatID, SeatAvailable); err != nil {
				return err
			}
		}
		return nil
	})
}

// SweepExpired finds PENDING reservations past their TTL, expires them
// and frees their seats, publishing event.seat.released with reason
// "expired" for each. Intended to run every 30s from a background
// ticker (see cmd/event's worker loop).
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	expired, err := s.repo.ExpiredPending(s.db.WithContext(ctx), now, 500)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, r := range expired {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			locked, err := s.repo.GetReservations(tx, []string{r.ID})
			if err != nil {
				return err
			}
			if len(locked) == 0 || locked[0].Status != ReservationPending {
				return nil
			}
			if err := s.repo.UpdateReservationStatus(tx, r.ID, ReservationExpired, nil, ""); err != nil {
				return err
			}
			return s.repo.UpdateSeatStatus(tx, r.SeatID, SeatAvailable)
		})
		if err != nil {
			s.logger.Error("sweep expired reservation failed", zap.String("reservation_id", r.ID), zap.Error(err))
			continue
		}
		count++
		if s.bus != nil {
			if _, err := s.bus.Publish(events.EventSeatReleased, "", r.UserID, events.SeatReleasedPayload{
				EventID: r.EventID, ReservationIDs: []string{r.ID}, SeatIDs: []string{r.SeatID}, Reason: "expired",
			}); err != nil {
				s.logger.Warn("failed to publish seat released event", zap.Error(err))
			}
		}
	}
	if count > 0 {
		s.logger.Info("swept expired reservations", zap.Int("count", count))
	}
	return count, nil
}
