package amqp

import (
	"context"
	"encoding/json"
	"log/slog"

	amqpout "fulfillment/internal/adapters/out/amqp"
	"fulfillment/internal/core/application/notifications"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

// EventConsumer feeds published order events into the notification fan-out.
// Notification delivery is best-effort, so every well-formed event is acked
// regardless of fan-out outcome; only a failed subscriber lookup triggers a
// redelivery.
type EventConsumer struct {
	conn    *amqpout.Connection
	service *notifications.Service
	logger  *slog.Logger
}

// NewEventConsumer creates the notification event feed.
func NewEventConsumer(conn *amqpout.Connection, service *notifications.Service,
	logger *slog.Logger) *EventConsumer {
	return &EventConsumer{
		conn:    conn,
		service: service,
		logger:  logger.With("component", "event_consumer"),
	}
}

// Start runs the consume loop until the context is canceled.
func (c *EventConsumer) Start(ctx context.Context) error {
	consumer := NewConsumer(c.conn, c.logger, ConsumerConfig{
		Queue:    amqpout.QueueEventsNotifications,
		Handler:  c.handle,
		Prefetch: 8,
	})
	return consumer.Start(ctx)
}

func (c *EventConsumer) handle(ctx context.Context, delivery amqp091.Delivery) error {
	var envelope amqpout.EventEnvelope
	if err := json.Unmarshal(delivery.Body, &envelope); err != nil {
		c.logger.Error("malformed event message", "error", err,
			"message_id", delivery.MessageId)
		return delivery.Ack(false)
	}

	orderID, err := kernel.UUIDFromString(envelope.OrderID)
	if err != nil {
		c.logger.Error("invalid order id in event", "error", err,
			"order_id", envelope.OrderID)
		return delivery.Ack(false)
	}

	status, err := order.StatusFromString(envelope.Status)
	if err != nil {
		c.logger.Error("invalid status in event", "error", err,
			"status", envelope.Status)
		return delivery.Ack(false)
	}

	event := order.Event{
		Type:       envelope.Type,
		OrderID:    orderID,
		TenantID:   envelope.TenantID,
		Status:     status,
		OccurredAt: envelope.OccurredAt,
		Detail:     envelope.Detail,
	}

	if err := c.service.Notify(ctx, event); err != nil {
		c.logger.Error("failed to fan out event", "error", err,
			"event", envelope.Type, "order_id", envelope.OrderID)
		return delivery.Nack(false, true)
	}

	return delivery.Ack(false)
}
