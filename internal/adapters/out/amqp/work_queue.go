package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/ports"

	"github.com/google/uuid"
	amqp091 "github.com/rabbitmq/amqp091-go"
)

// WorkQueue hands assignment work to the assignments exchange. It
// implements the work queue port with at-least-once delivery; the
// consumer-side status guard absorbs duplicates.
type WorkQueue struct {
	conn   *Connection
	logger *slog.Logger
}

// NewWorkQueue creates a work queue over an established connection.
func NewWorkQueue(conn *Connection, logger *slog.Logger) *WorkQueue {
	return &WorkQueue{
		conn:   conn,
		logger: logger.With("component", "work_queue"),
	}
}

// EnqueueAssignment publishes one assignment message.
func (q *WorkQueue) EnqueueAssignment(ctx context.Context, msg ports.AssignmentMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal assignment: %w", err)
	}

	messageID := uuid.New().String()
	return q.conn.WithChannel(ctx, func(ch *amqp091.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(ExchangeAssignments),
			string(RoutingKeyAssignment),
			false,
			false,
			amqp091.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp091.Persistent,
				MessageId:    messageID,
				Timestamp:    time.Now().UTC(),
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish assignment: %w", err)
		}

		q.logger.Debug("enqueued assignment",
			"order_id", msg.OrderID,
			"staff_type", msg.StaffType,
			"message_id", messageID,
		)
		return nil
	})
}
