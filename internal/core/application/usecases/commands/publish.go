package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// publishEvents flushes the aggregate's collected events to the event bus
// after the owning transaction committed. Publishing is best-effort: a
// failure is logged and never fails the command.
func publishEvents(ctx context.Context, publisher ports.EventPublisher,
	logger *slog.Logger, aggregate *order.Order) {
	for _, event := range aggregate.Events() {
		if err := publisher.Publish(ctx, event); err != nil {
			logger.Error("failed to publish domain event",
				"event_type", event.Type,
				"order_id", event.OrderID.String(),
				"error", err)
		}
	}
	aggregate.ClearEvents()
}
