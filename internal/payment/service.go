package payment

import (
	"context"
	"errors"
	"fmt"

	"eventix/internal/bus"
	"eventix/internal/events"
	"eventix/internal/saga"

	"go.uber.org/zap"
)

// ErrInvalidTransition is returned when a status change isn't legal from
// the payment's current status (see the Status lifecycle in model.go).
var ErrInvalidTransition = errors.New("PAYMENT_INVALID_TRANSITION")

// ErrNotFound wraps a lookup miss so callers don't need to import gorm.
var ErrNotFound = errors.New("PAYMENT_NOT_FOUND")

// Provider processes a payment against an external payment provider.
// Simulated here; a production deployment would swap this for a real
// client (Stripe, Adyen, ...).
type Provider interface {
	Charge(ctx context.Context, p *Payment) (externalRef string, err error)
	Refund(ctx context.Context, p *Payment) error
}

// Service implements payment lifecycle transitions and the saga step
// adapters booking_creation and booking_confirmation call into.
type Service struct {
	repo     Repository
	provider Provider
	bus      *bus.Bus
	logger   *zap.Logger
}

// NewService builds a payment Service.
func NewService(repo Repository, provider Provider, b *bus.Bus, logger *zap.Logger) *Service {
	return &Service{repo: repo, provider: provider, bus: b, logger: logger}
}

// Initiate opens a PENDING payment for a booking and publishes
// payment.initiated. ExternalReference is set to the payment's own id
// so a duplicate provider callback for the same payment is idempotent.
func (s *Service) Initiate(ctx context.Context, bookingID, userID string, amountCents int64, currency string) (*Payment, error) {
	p := &Payment{
		BookingID:   bookingID,
		UserID:      userID,
		AmountCents: amountCents,
		Currency:    currency,
		Status:      StatusPending,
	}
	if err := s.repo.Create(p); err != nil {
		return nil, err
	}
	p.ExternalReference = p.ID
	if err := s.repo.SetExternalReference(p.ID, p.ID); err != nil {
		s.logger.Warn("failed to stamp external reference", zap.String("payment_id", p.ID), zap.Error(err))
	}

	if s.bus != nil {
		if _, err := s.bus.Publish(events.PaymentInitiated, bookingID, userID, events.PaymentPayload{
			PaymentID: p.ID, BookingID: bookingID, UserID: userID, Amount: amountCents, Currency: currency,
		}); err != nil {
			s.logger.Warn("failed to publish payment initiated event", zap.Error(err))
		}
	}
	return p, nil
}

// Process charges the payment through the provider, transitioning
// PENDING->PROCESSING->{COMPLETED,FAILED}. It is idempotent: a payment
// already COMPLETED or FAILED is returned as-is without re-charging.
func (s *Service) Process(ctx context.Context, paymentID string) (*Payment, error) {
	p, err := s.repo.Get(paymentID)
	if err != nil {
		return nil, ErrNotFound
	}
	if p.Status == StatusCompleted || p.Status == StatusFailed {
		return p, nil
	}
	if p.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.UpdateStatus(paymentID, StatusProcessing, ""); err != nil {
		return nil, err
	}
	p.Status = StatusProcessing

	ref, chargeErr := s.provider.Charge(ctx, p)
	if chargeErr != nil {
		return s.fail(ctx, p, chargeErr.Error())
	}
	return s.complete(ctx, p, ref)
}

func (s *Service) complete(ctx context.Context, p *Payment, externalRef string) (*Payment, error) {
	if err := s.repo.UpdateStatus(p.ID, StatusCompleted, ""); err != nil {
		return nil, err
	}
	p.Status = StatusCompleted
	if s.bus != nil {
		if _, err := s.bus.Publish(events.PaymentCompleted, p.BookingID, p.UserID, events.PaymentPayload{
			PaymentID: p.ID, BookingID: p.BookingID, UserID: p.UserID, Amount: p.AmountCents, Currency: p.Currency, ExternalReference: externalRef,
		}); err != nil {
			s.logger.Warn("failed to publish payment completed event", zap.Error(err))
		}
	}
	s.logger.Info("payment completed", zap.String("payment_id", p.ID), zap.String("booking_id", p.BookingID))
	return p, nil
}

func (s *Service) fail(ctx context.Context, p *Payment, reason string) (*Payment, error) {
	if err := s.repo.UpdateStatus(p.ID, StatusFailed, reason); err != nil {
		return nil, err
	}
	p.Status = StatusFailed
	p.FailureReason = reason
	if s.bus != nil {
		if _, err := s.bus.Publish(events.PaymentFailed, p.BookingID, p.UserID, events.PaymentPayload{
			PaymentID: p.ID, BookingID: p.BookingID, UserID: p.UserID, Amount: p.AmountCents, Currency: p.Currency, FailureReason: reason,
		}); err != nil {
			s.logger.Warn("failed to publish payment failed event", zap.Error(err))
		}
	}
	s.logger.Warn("payment failed", zap.String("payment_id", p.ID), zap.String("reason", reason))
	return p, nil
}

// Refund transitions a COMPLETED payment to REFUNDED. Idempotent on an
// already-refunded payment.
func (s *Service) Refund(ctx context.Context, paymentID string) error {
	p, err := s.repo.Get(paymentID)
	if err != nil {
		return ErrNotFound
	}
	if p.Status == StatusRefunded {
		return nil
	}
	if p.Status != StatusCompleted {
		return ErrInvalidTransition
	}
	if err := s.provider.Refund(ctx, p); err != nil {
		return fmt.Errorf("provider refund: %w", err)
	}
	if err := s.repo.UpdateStatus(paymentID, StatusRefunded, ""); err != nil {
		return err
	}
	if s.bus != nil {
		if _, err := s.bus.Publish(events.PaymentRefunded, p.BookingID, p.UserID, events.PaymentPayload{
			PaymentID: p.ID, BookingID: p.BookingID, UserID: p.UserID, Amount: p.AmountCents, Currency: p.Currency,
		}); err != nil {
			s.logger.Warn("failed to publish payment refunded event", zap.Error(err))
		}
	}
	return nil
}

// Cancel transitions a PENDING payment to CANCELLED without charging
// the provider, used when the booking it belongs to is cancelled before
// payment processing started.
func (s *Service) Cancel(ctx context.Context, paymentID string) error {
	p, err := s.repo.Get(paymentID)
	if err != nil {
		return ErrNotFound
	}
	if p.Status == StatusCancelled {
		return nil
	}
	if p.Status != StatusPending {
		return ErrInvalidTransition
	}
	return s.repo.UpdateStatus(paymentID, StatusCancelled, "")
}

// HandleCallback is the convergent alternate entry point: a payment
// provider's webhook reports completion or failure directly, keyed by
// ExternalReference rather than the internal payment id. Idempotent for
// repeated webhook deliveries.
func (s *Service) HandleCallback(ctx context.Context, externalRef string, success bool, reason string) error {
	p, err := s.repo.GetByExternalReference(externalRef)
	if err != nil {
		return ErrNotFound
	}
	if p.Status == StatusCompleted || p.Status == StatusFailed {
		return nil
	}
	if success {
		_, err := s.complete(ctx, p, externalRef)
		return err
	}
	_, err = s.fail(ctx, p, reason)
	return err
}

// CreatePaymentIntentStep adapts Initiate into a saga.ExecuteFunc for
// the booking_creation workflow: reads booking_id, user_id, amount_cents
// and currency from the saga data and writes payment_id back.
func (s *Service) CreatePaymentIntentStep(ctx context.Context, data saga.Data) (saga.Data, error) {
	bookingID, err := saga.StringArg(data, "booking_id")
	if err != nil {
		return nil, err
	}
	userID, err := saga.StringArg(data, "user_id")
	if err != nil {
		return nil, err
	}
	amount, _ := data["amount_cents"].(int64)
	currency, _ := data["currency"].(string)
	if currency == "" {
		currency = "USD"
	}
	p, err := s.Initiate(ctx, bookingID, userID, amount, currency)
	if err != nil {
		return nil, err
	}
	return saga.Data{"payment_id": p.ID}, nil
}

// ProcessPaymentStep adapts Process into a saga.ExecuteFunc for the
// booking_confirmation workflow's pull-model charge step.
func (s *Service) ProcessPaymentStep(ctx context.Context, data saga.Data) (saga.Data, error) {
	paymentID, err := saga.StringArg(data, "payment_id")
	if err != nil {
		return nil, err
	}
	p, err := s.Process(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusCompleted {
		return nil, fmt.Errorf("payment %s did not complete: %s", p.ID, p.FailureReason)
	}
	return saga.Data{"payment_status": string(p.Status)}, nil
}

// RefundPaymentCompensation adapts Refund into a saga.CompensateFunc for
// rolling back ProcessPaymentStep when a later step fails.
func (s *Service) RefundPaymentCompensation(ctx context.Context, data saga.Data) error {
	paymentID, err := saga.StringArg(data, "payment_id")
	if err != nil {
		return err
	}
	return s.Refund(ctx, paymentID)
}
