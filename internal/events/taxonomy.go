// Package events defines the canonical bus envelope and the fixed taxonomy
// of event types exchanged between services over the message substrate.
package events

// Type is a dotted, lowercase event type of the form "<domain>.<event>".
// The domain prefix (the part before the first dot) is also the routing
// key prefix and the name of the owning exchange ("<domain>.events").
type Type string

const (
	UserCreated Type = "user.created"
	UserUpdated Type = "user.updated"

	EventCreated      Type = "event.created"
	EventUpdated      Type = "event.updated"
	EventSeatReserved Type = "event.seat.reserved"
	EventSeatReleased Type = "event.seat.released"
	EventSeatBlocked  Type = "event.seat.blocked"

	BookingInitiated Type = "booking.initiated"
	BookingConfirmed Type = "booking.confirmed"
	BookingCancelled Type = "booking.cancelled"
	BookingExpired   Type = "booking.expired"

	PaymentInitiated Type = "payment.initiated"
	PaymentCompleted Type = "payment.completed"
	PaymentFailed    Type = "payment.failed"
	PaymentRefunded  Type = "payment.refunded"

	NotificationEmail Type = "notification.email"
	NotificationSMS   Type = "notification.sms"
)

// Domain returns the exchange/routing-key prefix of a type, e.g. "booking"
// for "booking.initiated".
func (t Type) Domain() string {
	for i := 0; i < len(t); i++ {
		if t[i] == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}

// Known reports whether t is one of the enumerated event types. Unknown
// types are logged and dropped by consumers, never treated as fatal.
func (t Type) Known() bool {
	switch t {
	case UserCreated, UserUpdated,
		EventCreated, EventUpdated, EventSeatReserved, EventSeatReleased, EventSeatBlocked,
		BookingInitiated, BookingConfirmed, BookingCancelled, BookingExpired,
		PaymentInitiated, PaymentCompleted, PaymentFailed, PaymentRefunded,
		NotificationEmail, NotificationSMS:
		return true
	default:
		return false
	}
}
