package notification

import (
	"context"
	"fmt"

	"eventix/internal/bus"
	"eventix/internal/events"

	"go.uber.org/zap"
)

// Service turns bus events into queued notifications and hands them to a
// Sender. A failed send is recorded rather than retried inline: the bus
// delivery itself already acks once the notification row is persisted,
// since re-running notification delivery is the sender's concern, not
// the bus's redelivery policy.
type Service struct {
	repo   Repository
	sender Sender
	logger *zap.Logger
}

// Sender delivers a rendered notification to its channel. Simulated by
// LoggingSender here; a production deployment would swap in an email or
// SMS provider client.
type Sender interface {
	Send(ctx context.Context, n *Notification) error
}

// NewService builds a Service.
func NewService(repo Repository, sender Sender, logger *zap.Logger) *Service {
	return &Service{repo: repo, sender: sender, logger: logger}
}

// HandleBookingConfirmed queues a confirmation email for the booking
// owner.
func (s *Service) HandleBookingConfirmed(ctx context.Context, env events.Envelope) error {
	var p events.BookingPayload
	if err := env.Unmarshal(&p); err != nil {
		return fmt.Errorf("decode booking payload: %w", err)
	}
	return s.queue(ctx, env, p.UserID, "Booking confirmed",
		fmt.Sprintf("Your booking %s for event %s is confirmed.", p.BookingID, p.EventID))
}

// HandleBookingCancelled queues a cancellation notice.
func (s *Service) HandleBookingCancelled(ctx context.Context, env events.Envelope) error {
	var p events.BookingPayload
	if err := env.Unmarshal(&p); err != nil {
		return fmt.Errorf("decode booking payload: %w", err)
	}
	reason := p.Reason
	if reason == "" {
		reason = "cancelled"
	}
	return s.queue(ctx, env, p.UserID, "Booking cancelled",
		fmt.Sprintf("Your booking %s was cancelled: %s.", p.BookingID, reason))
}

// HandleBookingExpired queues an expiry notice.
func (s *Service) HandleBookingExpired(ctx context.Context, env events.Envelope) error {
	var p events.BookingPayload
	if err := env.Unmarshal(&p); err != nil {
		return fmt.Errorf("decode booking payload: %w", err)
	}
	return s.queue(ctx, env, p.UserID, "Booking expired",
		fmt.Sprintf("Your pending booking %s expired before payment completed.", p.BookingID))
}

// HandlePaymentFailed queues a payment failure notice.
func (s *Service) HandlePaymentFailed(ctx context.Context, env events.Envelope) error {
	var p events.PaymentPayload
	if err := env.Unmarshal(&p); err != nil {
		return fmt.Errorf("decode payment payload: %w", err)
	}
	return s.queue(ctx, env, p.UserID, "Payment failed",
		fmt.Sprintf("Payment for booking %s failed: %s.", p.BookingID, p.FailureReason))
}

// queue persists a notification keyed on the triggering event's id, so a
// redelivered event collapses onto the same row instead of sending a
// second message, then attempts delivery immediately.
func (s *Service) queue(ctx context.Context, env events.Envelope, userID, subject, body string) error {
	if userID == "" {
		userID = env.UserID
	}
	n := &Notification{
		UserID:        userID,
		SourceEventID: env.EventID,
		Channel:       ChannelEmail,
		Subject:       subject,
		Body:          body,
		Status:        StatusPending,
	}
	if err := s.repo.Create(n); err != nil {
		if err == ErrDuplicate {
			return nil
		}
		return err
	}

	if err := s.sender.Send(ctx, n); err != nil {
		s.logger.Warn("notification send failed", zap.String("notification_id", n.ID), zap.Error(err))
		return s.repo.MarkFailed(n.ID, err.Error())
	}
	return s.repo.MarkSent(n.ID)
}

// RegisterHandlers subscribes the service to every bus event that
// produces a user-facing notification.
func RegisterHandlers(ctx context.Context, b *bus.Bus, svc *Service) error {
	if err := b.Subscribe(ctx, bus.ExchangeBooking, "booking", func(ctx context.Context, env events.Envelope) error {
		switch env.EventType {
		case events.BookingConfirmed:
			return svc.HandleBookingConfirmed(ctx, env)
		case events.BookingCancelled:
			return svc.HandleBookingCancelled(ctx, env)
		case events.BookingExpired:
			return svc.HandleBookingExpired(ctx, env)
		default:
			return nil
		}
	}); err != nil {
		return fmt.Errorf("subscribe booking events: %w", err)
	}

	return b.Subscribe(ctx, bus.ExchangePayment, "payment", func(ctx context.Context, env events.Envelope) error {
		if env.EventType == events.PaymentFailed {
			return svc.HandlePaymentFailed(ctx, env)
		}
		return nil
	})
}
