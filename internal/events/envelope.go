package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope is the wire shape of every message on the bus. event_id
// uniquely identifies a single publish; a consumer may observe the same
// event_id more than once (at-least-once delivery) and must treat repeats
// as idempotent.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     Type            `json:"event_type"`
	ServiceName   string          `json:"service_name"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	CausationID   string          `json:"causation_id,omitempty"`
	UserID        string          `json:"user_id,omitempty"`
	Data          json.RawMessage `json:"data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// New builds an envelope with a fresh event_id and the current timestamp,
// marshaling payload into Data. correlationID ties every event of one saga
// together; pass "" to mint a fresh one (for the first event of a new
// workflow).
func New(serviceName string, eventType Type, correlationID, userID string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		ServiceName:   serviceName,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		UserID:        userID,
		Data:          data,
	}, nil
}

// RoutingKey is the AMQP routing key this envelope should be published
// with: identical to the event type, "<domain>.<event>".
func (e Envelope) RoutingKey() string { return string(e.EventType) }

// Unmarshal decodes Data into v.
func (e Envelope) Unmarshal(v any) error {
	return json.Unmarshal(e.Data, v)
}

// --- Per-domain payload shapes, grounded on the original event_schemas. ---

type UserPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type EventPayload struct {
	EventID  string `json:"event_id"`
	Name     string `json:"name,omitempty"`
	Capacity int    `json:"capacity,omitempty"`
}

type SeatReservedPayload struct {
	EventID        string   `json:"event_id"`
	UserID         string   `json:"user_id"`
	ReservationIDs []string `json:"reservation_ids"`
	SeatIDs        []string `json:"seat_ids"`
}

type SeatReleasedPayload struct {
	EventID        string   `json:"event_id"`
	ReservationIDs []string `json:"reservation_ids"`
	SeatIDs        []string `json:"seat_ids"`
	Reason         string   `json:"reason"`
}

type BookingPayload struct {
	BookingID   string `json:"booking_id"`
	UserID      string `json:"user_id"`
	EventID     string `json:"event_id"`
	TotalAmount int64  `json:"total_amount"`
	Currency    string `json:"currency"`
	Reason      string `json:"reason,omitempty"`
}

// BookingItemPayload is one line of BookingInitiatedPayload.Items: either
// a specific seat (SeatID set) or a block of general-admission capacity
// (SeatID empty, Quantity >= 1).
type BookingItemPayload struct {
	SeatID         string `json:"seat_id,omitempty"`
	SectionID      string `json:"section_id,omitempty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
}

// BookingInitiatedPayload is published on booking.initiated: the full
// line-item detail a reacting service (seat reservation, payment) needs
// to fulfil its half of the booking_confirmation saga without calling
// back into the booking service.
type BookingInitiatedPayload struct {
	BookingID        string               `json:"booking_id"`
	UserID           string               `json:"user_id"`
	EventID          string               `json:"event_id"`
	TotalAmountCents int64                `json:"total_amount_cents"`
	Currency         string               `json:"currency"`
	Items            []BookingItemPayload `json:"items"`
}

type PaymentPayload struct {
	PaymentID         string `json:"payment_id"`
	BookingID         string `json:"booking_id"`
	UserID            string `json:"user_id"`
	Amount            int64  `json:"amount"`
	Currency          string `json:"currency"`
	ExternalReference string `json:"external_reference,omitempty"`
	FailureReason     string `json:"failure_reason,omitempty"`
}

type NotificationPayload struct {
	UserID  string `json:"user_id"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
