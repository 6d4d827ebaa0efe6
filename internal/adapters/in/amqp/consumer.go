// Package amqp provides the inbound message consumers: the assignment
// worker and the notification event feed.
package amqp

import (
	"context"
	"fmt"
	"log/slog"

	amqpout "fulfillment/internal/adapters/out/amqp"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

// Handler processes one delivery. The handler owns acknowledgement: it
// must ack or nack before returning nil.
type Handler func(ctx context.Context, delivery amqp091.Delivery) error

// Consumer runs a delivery loop over one queue, surviving reconnects.
type Consumer struct {
	conn     *amqpout.Connection
	logger   *slog.Logger
	queue    amqpout.Queue
	handler  Handler
	prefetch int
}

// ConsumerConfig configures a consumer.
type ConsumerConfig struct {
	Queue    amqpout.Queue
	Handler  Handler
	Prefetch int
}

// NewConsumer creates a consumer over an established connection.
func NewConsumer(conn *amqpout.Connection, logger *slog.Logger, cfg ConsumerConfig) *Consumer {
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}

	return &Consumer{
		conn:     conn,
		logger:   logger.With("component", "consumer", "queue", string(cfg.Queue)),
		queue:    cfg.Queue,
		handler:  cfg.Handler,
		prefetch: prefetch,
	}
}

// Start consumes until the context is canceled. On a dropped connection it
// waits for the reconnect notification and re-establishes the stream.
func (c *Consumer) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		deliveries, err := c.setupConsume(ctx)
		if err != nil {
			c.logger.Error("failed to setup consume", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.conn.ReconnectNotify():
				continue
			}
		}

		c.logger.Info("consumer started")

		if err := c.processDeliveries(ctx, deliveries); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("deliveries channel closed, waiting for reconnect")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.conn.ReconnectNotify():
				continue
			}
		}
	}
}

func (c *Consumer) setupConsume(ctx context.Context) (<-chan amqp091.Delivery, error) {
	var deliveries <-chan amqp091.Delivery
	err := c.conn.WithChannel(ctx, func(ch *amqp091.Channel) error {
		if err := ch.Qos(c.prefetch, 0, false); err != nil {
			return fmt.Errorf("set qos: %w", err)
		}

		d, err := ch.Consume(
			string(c.queue),
			"",    // consumer tag
			false, // auto-ack
			false, // exclusive
			false, // no-local
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("consume %s: %w", c.queue, err)
		}
		deliveries = d
		return nil
	})
	return deliveries, err
}

func (c *Consumer) processDeliveries(ctx context.Context,
	deliveries <-chan amqp091.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("deliveries channel closed")
			}
			if err := c.handler(ctx, delivery); err != nil {
				c.logger.Error("handler failed", "error", err,
					"message_id", delivery.MessageId)
			}
		}
	}
}

// deathCount reads how many times a delivery has been dead-lettered, which
// equals the number of redelivery rounds it went through.
func deathCount(delivery amqp091.Delivery) int64 {
	deaths, ok := delivery.Headers["x-death"].([]any)
	if !ok {
		return 0
	}

	var count int64
	for _, death := range deaths {
		entry, ok := death.(amqp091.Table)
		if !ok {
			continue
		}
		if entry["queue"] != string(amqpout.QueueAssignments) {
			continue
		}
		if n, ok := entry["count"].(int64); ok {
			count += n
		}
	}
	return count
}
