// Package bus is the typed message substrate: one durable topic exchange
// per domain, a durable queue per service bound to the domains it
// consumes, and an idempotency store so handlers can safely treat
// at-least-once delivery as effectively-once.
package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"eventix/internal/events"
	"eventix/pkg/mq"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Exchange names, one per domain, per the bus wire-format contract.
const (
	ExchangeUser    = "user.events"
	ExchangeEvent   = "event.events"
	ExchangeBooking = "booking.events"
	ExchangePayment = "payment.events"
)

var allExchanges = []string{ExchangeUser, ExchangeEvent, ExchangeBooking, ExchangePayment}

// Handler processes a decoded envelope. Returning an error causes the bus
// to nack the underlying delivery for redelivery (see pkg/mq).
type Handler func(ctx context.Context, env events.Envelope) error

// Bus is a connection to the broker plus one publish channel, used by a
// single service process to publish to any exchange and consume its own
// queue.
type Bus struct {
	conn        *amqp091.Connection
	pubCh       *amqp091.Channel
	publishers  map[string]*mq.AMQPPublisher
	serviceName string
	idempotency *IdempotencyStore
	logger      *zap.Logger
}

// Connect dials the broker (with backoff) and declares all four domain
// exchanges so any service can publish to any of them.
func Connect(ctx context.Context, url, serviceName string, idempotency *IdempotencyStore, logger *zap.Logger) (*Bus, error) {
	conn, err := mq.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	b := &Bus{
		conn:        conn,
		pubCh:       ch,
		publishers:  make(map[string]*mq.AMQPPublisher),
		serviceName: serviceName,
		idempotency: idempotency,
		logger:      logger,
	}
	for _, ex := range allExchanges {
		b.publishers[ex] = mq.NewPublisher(ch, ex)
	}
	return b, nil
}

// Publish wraps payload in an envelope and publishes it to the exchange
// matching the event type's domain, with message_id=event_id and the
// given correlation id.
func (b *Bus) Publish(eventType events.Type, correlationID, userID string, payload any) (events.Envelope, error) {
	env, err := events.New(b.serviceName, eventType, correlationID, userID, payload)
	if err != nil {
		return events.Envelope{}, err
	}
	exchange := exchangeForDomain(env.EventType.Domain())
	pub, ok := b.publishers[exchange]
	if !ok {
		return events.Envelope{}, fmt.Errorf("no exchange for domain %q", env.EventType.Domain())
	}
	if err := pub.Publish(env.RoutingKey(), envelopeCarrier{env}); err != nil {
		return events.Envelope{}, err
	}
	b.logger.Info("published event",
		zap.String("event_id", env.EventID), zap.String("event_type", string(env.EventType)),
		zap.String("correlation_id", env.CorrelationID))
	return env, nil
}

// Subscribe declares <service>.queue durable, binds it to the given
// exchange with binding pattern "<domain>.#" and starts one background
// worker (prefetch=1) invoking handler for every decoded, non-duplicate
// envelope. Malformed payloads and handler errors are nacked per
// pkg/mq's retry/DLQ policy; an event_id already seen by the idempotency
// store short-circuits to an ack without invoking handler again.
func (b *Bus) Subscribe(ctx context.Context, exchange, domain string, handler Handler) error {
	ch, err := b.conn.Channel()
	if err != nil {
		return fmt.Errorf("open consumer channel: %w", err)
	}
	queue := b.serviceName + ".queue"
	// "#" matches zero-or-more routing-key segments; event types like
	// "event.seat.reserved" have three segments, so "*" (exactly one)
	// would silently never match a binding on "event".
	bindingKey := domain + ".#"
	consumer := mq.NewConsumer(ch, exchange, queue, bindingKey)

	return consumer.Consume(queue, func(body []byte) error {
		var carrier envelopeCarrier
		if err := json.Unmarshal(body, &carrier); err != nil {
			b.logger.Warn("poison message: bad envelope JSON", zap.Error(err))
			return fmt.Errorf("malformed envelope: %w", err)
		}
		env := carrier.Envelope
		if !env.EventType.Known() {
			b.logger.Warn("unknown event type, dropping", zap.String("event_type", string(env.EventType)))
			return nil
		}

		if b.idempotency != nil {
			seen, err := b.idempotency.SeenOrMark(ctx, env.EventID)
			if err != nil {
				b.logger.Warn("idempotency store unavailable, processing without dedup", zap.Error(err))
			} else if seen {
				b.logger.Debug("duplicate event, skipping", zap.String("event_id", env.EventID))
				return nil
			}
		}

		return handler(ctx, env)
	})
}

// Close releases the connection.
func (b *Bus) Close() error {
	if b.pubCh != nil {
		_ = b.pubCh.Close()
	}
	return b.conn.Close()
}

func exchangeForDomain(domain string) string {
	switch domain {
	case "user":
		return ExchangeUser
	case "event":
		return ExchangeEvent
	case "booking":
		return ExchangeBooking
	case "payment":
		return ExchangePayment
	default:
		return ExchangeBooking
	}
}

// envelopeCarrier lets pkg/mq's generic Publisher extract message_id and
// correlation_id from an events.Envelope without importing the events
// package itself.
type envelopeCarrier struct {
	events.Envelope
}

func (c envelopeCarrier) GetEventID() string      { return c.Envelope.EventID }
func (c envelopeCarrier) GetCorrelationID() string { return c.Envelope.CorrelationID }
