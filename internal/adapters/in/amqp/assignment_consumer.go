package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	amqpout "fulfillment/internal/adapters/out/amqp"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

// AssignmentConsumer drives staff assignment from the work queue. A
// delivery that cannot be satisfied right now (no candidate, order not
// ready yet) is nacked without requeue, which routes it through the retry
// queue for a delayed redelivery. Deliveries that exhaust the retry budget
// are parked on the DLQ.
type AssignmentConsumer struct {
	conn       *amqpout.Connection
	handler    commands.AssignStaffCommandHandler
	maxRetries int64
	logger     *slog.Logger
}

// NewAssignmentConsumer creates the assignment worker.
func NewAssignmentConsumer(conn *amqpout.Connection,
	handler commands.AssignStaffCommandHandler, maxRetries int64,
	logger *slog.Logger) *AssignmentConsumer {
	return &AssignmentConsumer{
		conn:       conn,
		handler:    handler,
		maxRetries: maxRetries,
		logger:     logger.With("component", "assignment_consumer"),
	}
}

// Start runs the consume loop until the context is canceled.
func (c *AssignmentConsumer) Start(ctx context.Context) error {
	consumer := NewConsumer(c.conn, c.logger, ConsumerConfig{
		Queue:    amqpout.QueueAssignments,
		Handler:  c.handle,
		Prefetch: 1,
	})
	return consumer.Start(ctx)
}

func (c *AssignmentConsumer) handle(ctx context.Context, delivery amqp091.Delivery) error {
	var msg ports.AssignmentMessage
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		// A malformed body never becomes valid; park it immediately.
		c.logger.Error("malformed assignment message", "error", err,
			"message_id", delivery.MessageId)
		return c.park(ctx, delivery)
	}

	orderID, err := kernel.UUIDFromString(msg.OrderID)
	if err != nil {
		c.logger.Error("invalid order id in assignment", "error", err,
			"order_id", msg.OrderID)
		return c.park(ctx, delivery)
	}

	command, err := commands.NewAssignStaffCommand(orderID, msg.TenantID, msg.StaffType)
	if err != nil {
		c.logger.Error("invalid assignment message", "error", err,
			"order_id", msg.OrderID)
		return c.park(ctx, delivery)
	}

	err = c.handler.Handle(ctx, command)
	switch {
	case err == nil:
		return delivery.Ack(false)

	case errors.Is(err, commands.ErrNoCandidateAvailable),
		errors.Is(err, commands.ErrOrderNotReady):
		if deathCount(delivery) >= c.maxRetries {
			c.logger.Warn("assignment retries exhausted",
				"order_id", msg.OrderID, "staff_type", msg.StaffType)
			return c.park(ctx, delivery)
		}
		c.logger.Info("assignment deferred for retry",
			"order_id", msg.OrderID, "reason", err)
		return delivery.Nack(false, false)

	default:
		c.logger.Error("assignment failed", "order_id", msg.OrderID, "error", err)
		if deathCount(delivery) >= c.maxRetries {
			return c.park(ctx, delivery)
		}
		return delivery.Nack(false, false)
	}
}

// park republishes the delivery to the DLQ and acks the original.
func (c *AssignmentConsumer) park(ctx context.Context, delivery amqp091.Delivery) error {
	err := c.conn.WithChannel(ctx, func(ch *amqp091.Channel) error {
		return ch.PublishWithContext(
			ctx,
			string(amqpout.ExchangeDLQ),
			string(amqpout.RoutingKeyAssignment),
			false,
			false,
			amqp091.Publishing{
				ContentType:  delivery.ContentType,
				DeliveryMode: amqp091.Persistent,
				MessageId:    delivery.MessageId,
				Timestamp:    time.Now().UTC(),
				Body:         delivery.Body,
			},
		)
	})
	if err != nil {
		// Keep the message alive; another redelivery round beats losing it.
		c.logger.Error("failed to park message on DLQ", "error", err,
			"message_id", delivery.MessageId)
		return delivery.Nack(false, false)
	}

	return delivery.Ack(false)
}
