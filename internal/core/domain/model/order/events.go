package order

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// Event types published to the event bus. Consumers (the notification
// fan-out among them) dispatch on these names.
const (
	EventOrderCreated        = "OrderCreated"
	EventOrderStatusChanged  = "OrderStatusChanged"
	EventOrderAssignedToChef = "OrderAssignedToChef"
	EventOrderPickedUp       = "OrderPickedUp"
	EventOrderDelivered      = "OrderDelivered"
	EventOrderPickupCanceled = "OrderPickupCanceled"
	EventOrderFailed         = "OrderFailed"
)

// Event is a domain event raised by the Order aggregate. Events are
// collected on the aggregate and published after the owning transaction
// commits.
type Event struct {
	Type       string
	OrderID    kernel.UUID
	TenantID   string
	Status     Status
	OccurredAt time.Time
	Detail     map[string]any
}

func newEvent(eventType string, o *Order, at time.Time, detail map[string]any) Event {
	if detail == nil {
		detail = map[string]any{}
	}
	return Event{
		Type:       eventType,
		OrderID:    o.id,
		TenantID:   o.tenantID,
		Status:     o.status,
		OccurredAt: at,
		Detail:     detail,
	}
}
