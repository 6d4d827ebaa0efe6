// Package subscriptionrepo stores push connections and their per-order
// subscriptions. It runs over the plain database handle, outside the unit
// of work: notification state never joins a workflow transaction.
package subscriptionrepo

import (
	"time"

	"github.com/google/uuid"
)

// ConnectionDTO represents the database structure for push connections.
type ConnectionDTO struct {
	ConnectionID string `gorm:"primaryKey"`
	UserID       string `gorm:"index"`
	UserType     string
	TenantID     string    `gorm:"index"`
	ConnectedAt  time.Time
	ExpiresAt    time.Time `gorm:"index"`
}

// TableName specifies the database table name for connections.
func (ConnectionDTO) TableName() string {
	return "connections"
}

// SubscriptionDTO represents one connection's interest in one order.
type SubscriptionDTO struct {
	OrderID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConnectionID string    `gorm:"primaryKey;index"`
	CreatedAt    time.Time
}

// TableName specifies the database table name for subscriptions.
func (SubscriptionDTO) TableName() string {
	return "order_subscriptions"
}
