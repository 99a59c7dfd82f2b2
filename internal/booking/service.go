package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventix/internal/database"
	"eventix/internal/events"
	"eventix/internal/reservation"
	"eventix/internal/saga"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// bookingTTL is how long a PENDING booking holds its seats before the
// expiry sweep moves it to EXPIRED (invariant I-5).
const bookingTTL = 15 * time.Minute

// Cache defines caching operations needed by booking service
type Cache interface {
	Set(ctx context.Context, key string, val interface{}, ttl time.Duration) error
	GetRemainingSeats(ctx context.Context, eventID string) (int, error)
	DecrementSeats(ctx context.Context, eventID string, qty int) (int, error)
	Del(ctx context.Context, key string) error
	GetInt(ctx context.Context, key string) (int, error)
}

// Publisher defines async messaging operations
type Publisher interface {
	Publish(topic string, v interface{}) error
}

// BookingService defines the interface for booking service operations
type BookingService interface {
	CreateBooking(ctx context.Context, userID string, req CreateBookingRequest) (*Booking, error)
	Get(ctx context.Context, id string) (*Booking, error)
	ListByUser(ctx context.Context, userID string) ([]*Booking, error)
	HandleBookingCreated(ctx context.Context, body []byte) error
	ConfirmBooking(ctx context.Context, bookingID string) error
	CancelBooking(ctx context.Context, bookingID, reason string) error
	HandlePaymentRefunded(ctx context.Context, bookingID string) error
	ExpireStale(ctx context.Context) (int, error)
}

// EventReserver is booking's contract with the event service's
// general-admission capacity counter, used only to release GA quantity
// reserved on a cancelled or expired booking (seat-level items go
// through SeatStore instead; see internal/event.Service.Release).
type EventReserver interface {
	Release(ctx context.Context, eventID string, qty int) error
}

// SeatStore is booking's contract with the seat reservation component
// (internal/reservation): advisory availability at create time, atomic
// per-seat reservation during the booking_confirmation saga, and release
// on cancellation or expiry. Implemented by *reservation.Service.
type SeatStore interface {
	CheckAvailability(ctx context.Context, eventID string, seatIDs []string) ([]reservation.Availability, error)
	Reserve(ctx context.Context, eventID string, seatIDs []string, userID string, ttl time.Duration, pricePerSeat int64, currency string) ([]reservation.Reservation, error)
	Release(ctx context.Context, reservationIDs []string, reason string) error
}

// Service is the concrete booking service
type Service struct {
	db           database.Database
	repo         BookingRepository
	reserver     EventReserver
	seats        SeatStore
	publisher    Publisher
	cache        Cache
	logger       *zap.Logger
	orchestrator *saga.Orchestrator
	policy       CancellationPolicy
}

func NewService(db database.Database, r BookingRepository, er EventReserver, seats SeatStore, pub Publisher, cache Cache, logger *zap.Logger) *Service {
	return &Service{
		db:        db,
		repo:      r,
		reserver:  er,
		seats:     seats,
		publisher: pub,
		cache:     cache,
		logger:    logger,
		policy:    AlwaysPermitPolicy{},
	}
}

// SetCancellationPolicy overrides the default AlwaysPermitPolicy.
func (s *Service) SetCancellationPolicy(p CancellationPolicy) {
	if p != nil {
		s.policy = p
	}
}

// SetOrchestrator wires the booking_confirmation saga into
// HandleBookingCreated. Without it, HandleBookingCreated falls back to
// an always-succeeds confirm, useful for tests and for running the
// booking service ahead of the reservation/payment services coming
// online.
func (s *Service) SetOrchestrator(o *saga.Orchestrator) {
	s.orchestrator = o
}

// Ensure *Service implements BookingService
var _ BookingService = (*Service)(nil)

// ErrNotEnoughTickets is returned by CreateBooking when a requested seat
// is not available.
var ErrNotEnoughTickets = errors.New("not enough tickets")

// ErrTotalMismatch is returned when a create request's Items don't sum
// to TotalAmountCents (invariant I-4).
var ErrTotalMismatch = errors.New("total_amount_cents does not match items")

// ErrNotCancellable is returned when CancelBooking is called on a
// booking whose Status is already terminal (EXPIRED or REFUNDED), or
// that CancellationPolicy rejects.
var ErrNotCancellable = errors.New("booking cannot be cancelled from its current status")

// CancellationPolicy decides whether a CONFIRMED booking may still be
// cancelled by its user. The source this module was distilled from
// never specified the semantics of cancelling a CONFIRMED booking after
// its event has started, so that rule lives here as an overridable hook
// rather than a guess baked into the state machine.
type CancellationPolicy interface {
	Allow(ctx context.Context, b *Booking) bool
}

// AlwaysPermitPolicy allows cancelling any CONFIRMED booking regardless
// of event timing. Default policy when none is configured.
type AlwaysPermitPolicy struct{}

func (AlwaysPermitPolicy) Allow(ctx context.Context, b *Booking) bool { return true }

// CreateBooking validates the requested items, advisory-checks seat
// availability, persists a PENDING booking with its items, and publishes
// booking.initiated so the seat-reservation and payment services can
// react (the actual seat hold happens in HandleBookingCreated's
// booking_confirmation saga, not here: creating the row must not block
// on a remote reservation call).
func (s *Service) CreateBooking(ctx context.Context, userID string, req CreateBookingRequest) (*Booking, error) {
	var sum int64
	items := make([]Item, 0, len(req.Items))
	var seatIDs []string
	for _, it := range req.Items {
		sum += it.UnitPriceCents * int64(it.Quantity)
		items = append(items, Item{
			SeatID: it.SeatID, SectionID: it.SectionID, SectionName: it.SectionName,
			SeatRow: it.SeatRow, SeatNumber: it.SeatNumber,
			UnitPriceCents: it.UnitPriceCents, Quantity: it.Quantity,
		})
		if it.SeatID != "" {
			seatIDs = append(seatIDs, it.SeatID)
		}
	}
	if sum != req.TotalAmountCents {
		s.logger.Warn("CreateBooking: total amount mismatch", zap.String("user_id", userID), zap.Int64("submitted", req.TotalAmountCents), zap.Int64("computed", sum))
		return nil, ErrTotalMismatch
	}

	if s.seats != nil && len(seatIDs) > 0 {
		avail, err := s.seats.CheckAvailability(ctx, req.EventID, seatIDs)
		if err != nil {
			s.logger.Error("CreateBooking: availability check failed", zap.String("event_id", req.EventID), zap.Error(err))
			return nil, err
		}
		for _, a := range avail {
			if !a.Available {
				s.logger.Warn("CreateBooking: seat unavailable", zap.String("event_id", req.EventID), zap.String("seat_id", a.SeatID))
				return nil, ErrNotEnoughTickets
			}
		}
	}

	b := &Booking{
		BookingReference: newBookingReference(),
		UserID:           userID,
		EventID:          req.EventID,
		TotalAmountCents: req.TotalAmountCents,
		Currency:         req.Currency,
		Status:           StatusPending,
		ExpiryDate:       time.Now().UTC().Add(bookingTTL),
		Items:            items,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Create(tx, b)
	})
	if err != nil {
		s.logger.Error("Failed to create booking", zap.String("user_id", userID), zap.String("event_id", req.EventID), zap.Error(err))
		return nil, err
	}

	if err := s.publisher.Publish("booking.initiated", toBookingInitiatedPayload(b)); err != nil {
		s.logger.Error("Failed to publish booking initiated message", zap.String("booking_id", b.ID), zap.Error(err))
		return nil, err
	}

	if err := s.cache.Set(ctx, "booking:pending:"+b.ID, "1", bookingTTL); err != nil {
		s.logger.Warn("Failed to set pending booking in cache", zap.String("booking_id", b.ID), zap.Error(err))
	}

	s.logger.Info("Booking created successfully",
		zap.String("booking_id", b.ID), zap.String("booking_reference", b.BookingReference),
		zap.String("user_id", userID), zap.String("event_id", req.EventID), zap.Int64("total_amount_cents", b.TotalAmountCents))
	return b, nil
}

// HandleBookingCreated runs the booking_confirmation saga (reserve seats
// -> charge payment) for a booking.initiated message, confirming on
// success and cancelling on any step failure. Without an orchestrator
// wired via SetOrchestrator it falls back to an always-succeeds confirm,
// so the booking service keeps working standalone.
func (s *Service) HandleBookingCreated(ctx context.Context, body []byte) error {
	var payload events.BookingInitiatedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return err
	}

	if s.orchestrator == nil {
		if err := s.ConfirmBooking(ctx, payload.BookingID); err != nil {
			s.logger.Error("confirm booking failed in worker", zap.String("booking", payload.BookingID), zap.Error(err))
			return s.CancelBooking(ctx, payload.BookingID, "payment_failed")
		}
		return nil
	}

	var seatIDs []string
	var gaQuantity int
	var pricePerSeat int64
	for _, it := range payload.Items {
		if it.SeatID != "" {
			seatIDs = append(seatIDs, it.SeatID)
			pricePerSeat = it.UnitPriceCents
		} else {
			gaQuantity += it.Quantity
		}
	}

	instance, err := s.orchestrator.Start(ctx, saga.WorkflowBookingConfirmation, payload.BookingID, saga.Data{
		"booking_id":     payload.BookingID,
		"user_id":        payload.UserID,
		"event_id":       payload.EventID,
		"seat_ids":       seatIDs,
		"ga_quantity":    gaQuantity,
		"price_per_seat": pricePerSeat,
		"amount_cents":   payload.TotalAmountCents,
		"currency":       payload.Currency,
	})
	if err != nil || instance.Status != saga.StatusCompleted {
		s.logger.Warn("booking_confirmation saga did not complete", zap.String("booking_id", payload.BookingID), zap.Error(err))
		return s.CancelBooking(ctx, payload.BookingID, "payment_failed")
	}

	if ids := stringsFromData(instance.Data()["reservation_ids"]); len(ids) > 0 {
		idsJSON, _ := json.Marshal(ids)
		if err := s.repo.SetReservationIDs(ctx, payload.BookingID, string(idsJSON)); err != nil {
			s.logger.Warn("failed to persist reservation ids", zap.String("booking_id", payload.BookingID), zap.Error(err))
		}
	}

	if err := s.ConfirmBooking(ctx, payload.BookingID); err != nil {
		s.logger.Error("confirm booking failed after successful saga", zap.String("booking", payload.BookingID), zap.Error(err))
		return err
	}
	return nil
}

// ConfirmBooking update DB, Redis and metrics
func (s *Service) ConfirmBooking(ctx context.Context, bookingID string) error {
	b, err := s.repo.Get(bookingID)
	if err != nil {
		s.logger.Error("ConfirmBooking: get booking failed", zap.String("booking_id", bookingID), zap.Error(err))
		return err
	}
	if b.Status == StatusConfirmed {
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, bookingID, StatusConfirmed); err != nil {
		s.logger.Error("ConfirmBooking: update status failed", zap.String("booking_id", bookingID), zap.Error(err))
		return err
	}

	if err := s.updateEventStatsCache(ctx, b.EventID); err != nil {
		s.logger.Warn("ConfirmBooking: update stats cache failed", zap.String("event_id", b.EventID), zap.Error(err))
	}

	_ = s.cache.Del(ctx, "booking:pending:"+bookingID)

	if err := s.publisher.Publish("booking.confirmed", toBookingPayload(b, "")); err != nil {
		s.logger.Warn("ConfirmBooking: failed to publish booking confirmed event", zap.String("booking_id", bookingID), zap.Error(err))
	}

	s.logger.Info("Booking confirmed", zap.String("booking_id", bookingID), zap.String("event_id", b.EventID))
	return nil
}

// CancelBooking moves a PENDING or CONFIRMED booking to CANCELLED,
// releasing whatever seats it holds. Cancelling an already-CANCELLED
// booking is a no-op; EXPIRED and REFUNDED are terminal and rejected
// with ErrNotCancellable. If the cancelled booking was CONFIRMED (so a
// payment was charged), a payment.refunded reply later moves it on to
// REFUNDED via HandlePaymentRefunded.
func (s *Service) CancelBooking(ctx context.Context, bookingID, reason string) error {
	b, err := s.repo.Get(bookingID)
	if err != nil {
		s.logger.Error("CancelBooking: get booking failed", zap.String("booking_id", bookingID), zap.Error(err))
		return err
	}
	if b.Status == StatusCancelled {
		return nil
	}
	if !b.Cancellable() {
		return ErrNotCancellable
	}
	if b.Status == StatusConfirmed && !s.policy.Allow(ctx, b) {
		return ErrNotCancellable
	}

	if err := s.repo.UpdateStatus(ctx, bookingID, StatusCancelled); err != nil {
		s.logger.Error("CancelBooking: update status failed", zap.String("booking_id", bookingID), zap.Error(err))
		return err
	}

	s.releaseBookingSeats(ctx, b)

	if err := s.updateEventStatsCache(ctx, b.EventID); err != nil {
		s.logger.Warn("CancelBooking: update stats cache failed", zap.String("event_id", b.EventID), zap.Error(err))
	}

	_ = s.cache.Del(ctx, "booking:pending:"+bookingID)

	if err := s.publisher.Publish("booking.cancelled", toBookingPayload(b, reason)); err != nil {
		s.logger.Warn("CancelBooking: failed to publish booking cancelled event", zap.String("booking_id", bookingID), zap.Error(err))
	}

	s.logger.Info("Booking cancelled", zap.String("booking_id", bookingID), zap.String("event_id", b.EventID), zap.String("reason", reason))
	return nil
}

// HandlePaymentRefunded advances a CANCELLED booking to REFUNDED once
// its payment.refunded event arrives. Any other status is left alone:
// either the refund doesn't apply (never confirmed) or it already ran.
func (s *Service) HandlePaymentRefunded(ctx context.Context, bookingID string) error {
	b, err := s.repo.Get(bookingID)
	if err != nil {
		s.logger.Error("HandlePaymentRefunded: get booking failed", zap.String("booking_id", bookingID), zap.Error(err))
		return err
	}
	if b.Status != StatusCancelled {
		return nil
	}
	if err := s.repo.UpdateStatus(ctx, bookingID, StatusRefunded); err != nil {
		s.logger.Error("HandlePaymentRefunded: update status failed", zap.String("booking_id", bookingID), zap.Error(err))
		return err
	}
	s.logger.Info("Booking refunded", zap.String("booking_id", bookingID))
	return nil
}

// ExpireStale moves every PENDING booking whose ExpiryDate has passed to
// EXPIRED, releasing its seats. No binary in this module schedules it:
// unlike reservation.Service.SweepExpired, which cmd/event runs every
// 30s, ExpireStale runs only when a caller invokes it.
func (s *Service) ExpireStale(ctx context.Context) (int, error) {
	bookings, err := s.repo.ListExpiredPending(ctx, time.Now().UTC(), 200)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, b := range bookings {
		if err := s.repo.UpdateStatus(ctx, b.ID, StatusExpired); err != nil {
			s.logger.Error("ExpireStale: update status failed", zap.String("booking_id", b.ID), zap.Error(err))
			continue
		}
		s.releaseBookingSeats(ctx, b)
		_ = s.cache.Del(ctx, "booking:pending:"+b.ID)
		if err := s.publisher.Publish("booking.expired", toBookingPayload(b, "expired")); err != nil {
			s.logger.Warn("ExpireStale: failed to publish booking expired event", zap.String("booking_id", b.ID), zap.Error(err))
		}
		count++
	}
	if count > 0 {
		s.logger.Info("swept expired bookings", zap.Int("count", count))
	}
	return count, nil
}

// releaseBookingSeats frees every seat and GA capacity unit a booking
// holds: seat-level reservations via SeatStore, general-admission
// quantity via EventReserver's counter.
func (s *Service) releaseBookingSeats(ctx context.Context, b *Booking) {
	if ids := b.ReservationIDs(); len(ids) > 0 && s.seats != nil {
		if err := s.seats.Release(ctx, ids, "booking_cancelled"); err != nil {
			s.logger.Warn("failed to release seat reservations", zap.String("booking_id", b.ID), zap.Error(err))
		}
	}
	var gaQty int
	for _, it := range b.Items {
		if it.SeatID == "" {
			gaQty += it.Quantity
		}
	}
	if gaQty > 0 && s.reserver != nil {
		if err := s.reserver.Release(ctx, b.EventID, gaQty); err != nil {
			s.logger.Warn("failed to release general-admission capacity", zap.String("event_id", b.EventID), zap.Int("qty", gaQty), zap.Error(err))
		}
	}
}

// updateEventStatsCache recalculates tickets sold and revenue for an
// event from its CONFIRMED bookings and saves the result to Redis.
func (s *Service) updateEventStatsCache(ctx context.Context, eventID string) error {
	var tickets int64
	var revenueCents int64

	if err := s.db.WithContext(ctx).Model(&Booking{}).
		Where("event_id = ? AND status = ?", eventID, StatusConfirmed).
		Select("COALESCE(SUM(total_amount_cents),0)").Scan(&revenueCents).Error; err != nil {
		s.logger.Error("Failed to calculate revenue cents", zap.String("event_id", eventID), zap.Error(err))
		return err
	}

	if err := s.db.WithContext(ctx).Model(&Item{}).
		Joins("JOIN bookings ON bookings.id = items.booking_id").
		Where("bookings.event_id = ? AND bookings.status = ?", eventID, StatusConfirmed).
		Select("COALESCE(SUM(items.quantity),0)").Scan(&tickets).Error; err != nil {
		s.logger.Error("Failed to calculate tickets sold", zap.String("event_id", eventID), zap.Error(err))
		return err
	}

	revenue := float64(revenueCents) / 100.0

	stats := map[string]interface{}{
		"tickets_sold": tickets,
		"revenue":      revenue,
	}

	data, err := json.Marshal(stats)
	if err != nil {
		s.logger.Warn("Failed to marshal event stats for cache", zap.String("event_id", eventID), zap.Error(err))
		return err
	}

	cacheKey := fmt.Sprintf("event:%s:stats", eventID)
	if err := s.cache.Set(ctx, cacheKey, string(data), 0); err != nil {
		s.logger.Warn("Failed to set event stats in cache", zap.String("event_id", eventID), zap.String("cache_key", cacheKey), zap.Error(err))
		return err
	}

	s.logger.Info("Event stats updated in cache", zap.String("event_id", eventID), zap.Int64("tickets_sold", tickets), zap.Float64("revenue", revenue))
	return nil
}

// Get booking by id
func (s *Service) Get(ctx context.Context, id string) (*Booking, error) {
	return s.repo.Get(id)
}

// ListByUser returns every booking made by userID, most recent first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*Booking, error) {
	return s.repo.ListByUser(ctx, userID)
}

func toBookingInitiatedPayload(b *Booking) events.BookingInitiatedPayload {
	items := make([]events.BookingItemPayload, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, events.BookingItemPayload{
			SeatID: it.SeatID, SectionID: it.SectionID,
			UnitPriceCents: it.UnitPriceCents, Quantity: it.Quantity,
		})
	}
	return events.BookingInitiatedPayload{
		BookingID:        b.ID,
		UserID:           b.UserID,
		EventID:          b.EventID,
		TotalAmountCents: b.TotalAmountCents,
		Currency:         b.Currency,
		Items:            items,
	}
}

func toBookingPayload(b *Booking, reason string) events.BookingPayload {
	return events.BookingPayload{
		BookingID:   b.ID,
		UserID:      b.UserID,
		EventID:     b.EventID,
		TotalAmount: b.TotalAmountCents,
		Currency:    b.Currency,
		Reason:      reason,
	}
}

// stringsFromData extracts a []string out of a saga.Data value that may
// have round-tripped through JSON (and so decoded as []interface{}).
func stringsFromData(v interface{}) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func newBookingReference() string {
	return "BK-" + strings.ToUpper(uuid.NewString()[:8])
}
