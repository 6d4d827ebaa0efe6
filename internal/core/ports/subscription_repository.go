package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// Connection is a registered push channel endpoint.
type Connection struct {
	ConnectionID string
	UserID       string
	UserType     kernel.Role
	TenantID     string
	ConnectedAt  time.Time
	ExpiresAt    time.Time
}

// SubscriptionRepository stores push connections and their per-order
// subscriptions. It lives outside the Unit of Work: notification state is
// best-effort and must never participate in workflow transactions.
type SubscriptionRepository interface {
	// AddConnection registers a connection with its TTL.
	AddConnection(ctx context.Context, conn Connection) error

	// RemoveConnection deletes a connection and all its subscriptions.
	RemoveConnection(ctx context.Context, connectionID string) error

	// Subscribe adds a connection to an order's audience. Subscribing
	// twice is a no-op.
	Subscribe(ctx context.Context, orderID kernel.UUID, connectionID string) error

	// Unsubscribe removes a connection from an order's audience.
	Unsubscribe(ctx context.Context, orderID kernel.UUID, connectionID string) error

	// GetSubscribers returns the distinct connection ids subscribed to
	// an order.
	GetSubscribers(ctx context.Context, orderID kernel.UUID) ([]string, error)

	// DeleteExpired removes connections whose TTL lapsed, with their
	// subscriptions. Returns the number of connections removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
