// Package rabbitmq publishes and consumes checkout events.
package rabbitmq

import (
	"encoding/json"
	"time"

	"storefront/internal/models"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog/log"
	amqp "github.com/streadway/amqp"
)

// DefaultQueue receives checkout.completed events.
const DefaultQueue = "checkout_events"

// EventCheckoutCompleted is the type header of a placed-order event.
const EventCheckoutCompleted = "checkout.completed"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient connects to RabbitMQ, opens a channel and declares the queue.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "connect to RabbitMQ")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}

	if err := declare(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info().Str("queue", cfg.Queue).Msg("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
	}, nil
}

func declare(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return errors.Wrapf(err, "declare queue %s", queue)
	}
	return nil
}

// Close closes the channel and the connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "close channel"))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "close connection"))
		}
	}
	if len(errs) > 0 {
		return errors.Errorf("close RabbitMQ client: %v", errs)
	}
	return nil
}

// PublishCheckoutCompleted publishes a placed order as a persistent JSON message.
func (c *Client) PublishCheckoutCompleted(event models.CheckoutEvent) error {
	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal checkout event")
	}

	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         EventCheckoutCompleted,
			MessageId:    event.OrderID,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return errors.Wrap(err, "publish checkout event")
	}

	log.Debug().Str("order_id", event.OrderID).Msg("checkout event sent")
	return nil
}

// ConsumeCheckoutEvents delivers every message of the queue to handler in a
// background goroutine. Messages are acked on success and requeued once on
// failure; a redelivered message that fails again is dropped.
func (c *Client) ConsumeCheckoutEvents(handler func(models.CheckoutEvent) error) error {
	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "register consumer")
	}

	log.Info().Str("queue", c.queue).Msg("waiting for checkout events")

	go func() {
		for msg := range msgs {
			handleDelivery(msg, handler)
		}
	}()

	return nil
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleDelivery(msg amqp.Delivery, handler func(models.CheckoutEvent) error) {
	process(&msg, msg.Body, msg.Redelivered, handler)
}

func process(ack acknowledger, body []byte, redelivered bool, handler func(models.CheckoutEvent) error) {
	var event models.CheckoutEvent
	err := json.Unmarshal(body, &event)
	if err != nil {
		// Malformed payloads never succeed; drop them.
		log.Error().Err(err).Msg("discarding malformed checkout event")
		if nackErr := ack.Nack(false, false); nackErr != nil {
			log.Error().Err(nackErr).Msg("nack failed")
		}
		return
	}

	if err := handler(event); err != nil {
		log.Error().Err(err).Str("order_id", event.OrderID).Bool("redelivered", redelivered).Msg("checkout event handler failed")
		if nackErr := ack.Nack(false, !redelivered); nackErr != nil {
			log.Error().Err(nackErr).Msg("nack failed")
		}
		return
	}
	if ackErr := ack.Ack(false); ackErr != nil {
		log.Error().Err(ackErr).Msg("ack failed")
	}
}
