package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	amqp091 "github.com/rabbitmq/amqp091-go"
)

// EventEnvelope is the wire shape of a published domain event.
type EventEnvelope struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	OrderID    string         `json:"order_id"`
	TenantID   string         `json:"tenant_id"`
	Status     string         `json:"status"`
	OccurredAt time.Time      `json:"occurred_at"`
	Detail     map[string]any `json:"detail,omitempty"`
}

// EventPublisher publishes order events to the events exchange. It
// implements the event publisher port; callers treat failures as
// best-effort and only log them.
type EventPublisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewEventPublisher creates a publisher over an established connection.
func NewEventPublisher(conn *Connection, logger *slog.Logger) *EventPublisher {
	return &EventPublisher{
		conn:   conn,
		logger: logger.With("component", "event_publisher"),
	}
}

// Publish sends one domain event to the fanout exchange.
func (p *EventPublisher) Publish(ctx context.Context, event order.Event) error {
	envelope := EventEnvelope{
		ID:         uuid.New().String(),
		Type:       event.Type,
		OrderID:    event.OrderID.String(),
		TenantID:   event.TenantID,
		Status:     event.Status.String(),
		OccurredAt: event.OccurredAt,
		Detail:     event.Detail,
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp091.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(ExchangeEvents),
			"", // fanout ignores the routing key
			false,
			false,
			amqp091.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp091.Persistent,
				MessageId:    envelope.ID,
				Timestamp:    envelope.OccurredAt,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish event %s: %w", event.Type, err)
		}

		p.logger.Debug("published event",
			"event", event.Type,
			"order_id", envelope.OrderID,
			"message_id", envelope.ID,
		)
		return nil
	})
}
