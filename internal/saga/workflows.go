package saga

import (
	"fmt"

	"eventix/internal/events"
)

// Workflow names, matched against Definition.Name when starting an
// instance.
const (
	WorkflowBookingCreation     = "booking_creation"
	WorkflowBookingConfirmation = "booking_confirmation"
)

// BookingCreationDeps are the per-step actions the booking_creation
// workflow calls into: ValidateUser, CheckAvailability, then
// CreatePaymentIntent. Each is expected to read its inputs from the
// Data map under the documented keys and return the keys it produces.
type BookingCreationDeps struct {
	ValidateUser        ExecuteFunc
	CheckAvailability   ExecuteFunc
	CreatePaymentIntent ExecuteFunc
}

// NewBookingCreationDefinition builds the booking_creation workflow: a
// user-initiated booking request must pass user validation and seat
// availability before a payment intent is opened. None of these steps
// have side effects worth undoing, so no compensations are registered.
func NewBookingCreationDefinition(deps BookingCreationDeps) *Definition {
	return NewDefinition(WorkflowBookingCreation,
		&Step{Name: "ValidateUser", Execute: deps.ValidateUser, Retries: 2,
			TargetService: "auth"},
		&Step{Name: "CheckAvailability", Execute: deps.CheckAvailability, Retries: 2,
			TargetService: "reservation", RequestEventType: events.EventSeatBlocked},
		&Step{Name: "CreatePaymentIntent", Execute: deps.CreatePaymentIntent, Retries: 1,
			TargetService: "payment", ResponseEventType: events.PaymentInitiated},
	)
}

// BookingConfirmationDeps are the per-step actions the
// booking_confirmation workflow calls into, each paired with the
// compensation that undoes it if a later step fails.
type BookingConfirmationDeps struct {
	ReserveSeats        ExecuteFunc
	ReleaseSeats        CompensateFunc
	CreatePaymentIntent ExecuteFunc
	CancelPaymentIntent CompensateFunc
	ProcessPayment      ExecuteFunc
	RefundPayment       CompensateFunc
}

// NewBookingConfirmationDefinition builds the booking_confirmation
// workflow: reserve the seats, open a payment intent, then charge it. A
// failure in CreatePaymentIntent releases the seats reserved in the
// prior step; a failure in ProcessPayment cancels the intent and
// releases the seats, since neither is load-bearing once payment fails.
func NewBookingConfirmationDefinition(deps BookingConfirmationDeps) *Definition {
	return NewDefinition(WorkflowBookingConfirmation,
		&Step{
			Name: "ReserveSeats", Execute: deps.ReserveSeats, Compensate: deps.ReleaseSeats, Retries: 2,
			TargetService: "reservation", RequestEventType: events.EventSeatBlocked,
			ResponseEventType: events.EventSeatReserved, CompensationEventType: events.EventSeatReleased,
		},
		&Step{
			Name: "CreatePaymentIntent", Execute: deps.CreatePaymentIntent, Compensate: deps.CancelPaymentIntent, Retries: 1,
			TargetService: "payment", ResponseEventType: events.PaymentInitiated,
		},
		&Step{
			Name: "ProcessPayment", Execute: deps.ProcessPayment, Compensate: deps.RefundPayment, Retries: 2,
			TargetService: "payment", ResponseEventType: events.PaymentCompleted,
			FailureEventType: events.PaymentFailed, CompensationEventType: events.PaymentRefunded,
		},
	)
}

// ErrStepDataMissing is returned by a step implementation when a key it
// needs was not present in the saga's accumulated data.
func ErrStepDataMissing(step, key string) error {
	return fmt.Errorf("saga step %s: missing data key %q", step, key)
}

// StringArg reads a required string argument out of a saga Data map.
func StringArg(data Data, key string) (string, error) {
	v, ok := data[key]
	if !ok {
		return "", ErrStepDataMissing("", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("saga data key %q is not a string", key)
	}
	return s, nil
}
