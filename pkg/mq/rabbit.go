// Package mq wraps github.com/rabbitmq/amqp091-go with the connection,
// exchange, queue and delivery conventions the message substrate needs:
// durable topic exchanges, durable per-service queues, persistent
// delivery, manual acknowledgement with a bounded-prefetch worker, and a
// dead-letter queue for messages a consumer could not process after
// repeated attempts.
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// MaxDeliveryAttempts bounds how many times a consumer will nack-and-
// requeue a message before giving up and routing it to the DLQ.
const MaxDeliveryAttempts = 3

// Publisher publishes a message under a routing key on a single exchange.
type Publisher interface {
	Publish(routingKey string, msg interface{}) error
}

// Consumer drains a named queue, invoking handler for every delivery.
type Consumer interface {
	Consume(queue string, handler func([]byte) error) error
}

// AMQPPublisher publishes persistent, JSON-encoded messages to one
// durable topic exchange.
type AMQPPublisher struct {
	ch       *amqp091.Channel
	exchange string
}

// NewPublisher declares exchange as a durable topic exchange and returns
// a publisher bound to it.
func NewPublisher(ch *amqp091.Channel, exchange string) *AMQPPublisher {
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	); err != nil {
		log.Fatalf("exchange declare: %v", err)
	}
	return &AMQPPublisher{ch: ch, exchange: exchange}
}

// Publish marshals msg to JSON and publishes it with persistent delivery
// mode, message_id and correlation_id sourced from the message when it
// implements correlatable (see the bus package's envelopeCarrier).
func (p *AMQPPublisher) Publish(routingKey string, msg interface{}) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	props := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	}
	if c, ok := msg.(correlatable); ok {
		props.MessageId = c.GetEventID()
		props.CorrelationId = c.GetCorrelationID()
	}
	return p.ch.Publish(p.exchange, routingKey, false, false, props)
}

type correlatable interface {
	GetEventID() string
	GetCorrelationID() string
}

// AMQPConsumer drains a durable queue bound to exchange with bindingKey,
// acknowledging manually and routing malformed or repeatedly-failing
// deliveries to a dead-letter queue <queue>.dlq.
type AMQPConsumer struct {
	ch          *amqp091.Channel
	exchange    string
	queue       string
	key         string
	dlqExchange string
	dlq         string
}

// NewConsumer declares queue (and its dead-letter counterpart), binds it
// to exchange with bindingKey, and sets prefetch=1 on the channel so a
// worker processes one message at a time.
func NewConsumer(ch *amqp091.Channel, exchange, queue, bindingKey string) *AMQPConsumer {
	dlqExchange := queue + ".dlx"
	dlq := queue + ".dlq"

	if err := ch.ExchangeDeclare(dlqExchange, "fanout", true, false, false, false, nil); err != nil {
		log.Fatalf("dlx declare: %v", err)
	}
	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		log.Fatalf("dlq declare: %v", err)
	}
	if err := ch.QueueBind(dlq, "", dlqExchange, false, nil); err != nil {
		log.Fatalf("dlq bind: %v", err)
	}

	args := amqp091.Table{"x-dead-letter-exchange": dlqExchange}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, args); err != nil {
		log.Fatalf("queue declare: %v", err)
	}
	if err := ch.QueueBind(queue, bindingKey, exchange, false, nil); err != nil {
		log.Fatalf("queue bind: %v", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	return &AMQPConsumer{ch: ch, exchange: exchange, queue: queue, key: bindingKey, dlqExchange: dlqExchange, dlq: dlq}
}

// Consume drains queue with manual acknowledgement. handler errors are
// retried up to MaxDeliveryAttempts, counting attempts from the delivery's
// x-delivery-count header (or its redelivered flag); once exhausted the message is nacked without requeue
// and lands on the dead-letter queue via the x-dead-letter-exchange
// binding declared in NewConsumer.
func (c *AMQPConsumer) Consume(queue string, handler func([]byte) error) error {
	msgs, err := c.ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for d := range msgs {
			attempt := attemptOf(d) + 1
			if err := handler(d.Body); err != nil {
				if attempt >= MaxDeliveryAttempts {
					log.Printf("consume %s: giving up after %d attempts: %v", queue, attempt, err)
					_ = d.Nack(false, false) // routed to DLQ, not requeued
					continue
				}
				log.Printf("consume %s: attempt %d failed: %v", queue, attempt, err)
				_ = d.Nack(false, true) // requeue for retry
				continue
			}
			_ = d.Ack(false)
		}
	}()
	return nil
}

func attemptOf(d amqp091.Delivery) int {
	if d.Headers == nil {
		return 0
	}
	if v, ok := d.Headers["x-delivery-count"]; ok {
		if n, ok := v.(int32); ok {
			return int(n)
		}
	}
	if d.Redelivered {
		return 1
	}
	return 0
}

// NoOpPublisher is a Publisher that only logs, for environments where
// RabbitMQ is intentionally disabled (e.g. unit tests).
type NoOpPublisher struct{}

func (p *NoOpPublisher) Publish(routingKey string, msg interface{}) error {
	log.Printf("NoOpPublisher: would publish to %s: %+v", routingKey, msg)
	return nil
}

// Dial connects with exponential backoff (capped at 30s), retrying until
// ctx is cancelled.
func Dial(ctx context.Context, url string) (*amqp091.Connection, error) {
	backoff := 500 * time.Millisecond
	for {
		conn, err := amqp091.DialConfig(url, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
		if err == nil {
			return conn, nil
		}
		log.Printf("rabbitmq dial failed, retrying in %s: %v", backoff, err)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("dial %s: %w", url, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > 30*time.Second {
			backoff = 30 * time.Second
		}
	}
}

// MustDial connects immediately and panics on failure, used at process
// startup where broker connectivity is a hard requirement.
func MustDial(url string) *amqp091.Connection {
	conn, err := amqp091.Dial(url)
	if err != nil {
		log.Fatalf("rabbitmq dial: %v", err)
	}
	return conn
}
