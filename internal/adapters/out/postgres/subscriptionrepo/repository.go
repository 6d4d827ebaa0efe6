package subscriptionrepo

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSubscriptionRepository implements SubscriptionRepository using GORM.
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GORM subscription repository.
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// AddConnection registers a connection with its TTL. Re-registering the same
// connection id refreshes it.
func (r *GormSubscriptionRepository) AddConnection(ctx context.Context,
	conn ports.Connection) error {
	if conn.ConnectionID == "" {
		return errs.NewValueIsRequiredError("connectionID")
	}

	dto := ConnectionDTO{
		ConnectionID: conn.ConnectionID,
		UserID:       conn.UserID,
		UserType:     conn.UserType.String(),
		TenantID:     conn.TenantID,
		ConnectedAt:  conn.ConnectedAt,
		ExpiresAt:    conn.ExpiresAt,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "connection_id"}},
			UpdateAll: true,
		}).
		Create(&dto).Error
}

// RemoveConnection deletes a connection and all its subscriptions.
func (r *GormSubscriptionRepository) RemoveConnection(ctx context.Context,
	connectionID string) error {
	if connectionID == "" {
		return errs.NewValueIsRequiredError("connectionID")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&SubscriptionDTO{},
			"connection_id = ?", connectionID).Error; err != nil {
			return err
		}
		return tx.Delete(&ConnectionDTO{},
			"connection_id = ?", connectionID).Error
	})
}

// Subscribe adds a connection to an order's audience. Subscribing twice
// is a no-op.
func (r *GormSubscriptionRepository) Subscribe(ctx context.Context,
	orderID kernel.UUID, connectionID string) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if connectionID == "" {
		return errs.NewValueIsRequiredError("connectionID")
	}

	dto := SubscriptionDTO{
		OrderID:      orderID.Bytes(),
		ConnectionID: connectionID,
		CreatedAt:    time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&dto).Error
}

// Unsubscribe removes a connection from an order's audience.
func (r *GormSubscriptionRepository) Unsubscribe(ctx context.Context,
	orderID kernel.UUID, connectionID string) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if connectionID == "" {
		return errs.NewValueIsRequiredError("connectionID")
	}

	return r.db.WithContext(ctx).Delete(&SubscriptionDTO{},
		"order_id = ? AND connection_id = ?", orderID.Bytes(), connectionID).Error
}

// GetSubscribers returns the distinct connection ids subscribed to an order.
func (r *GormSubscriptionRepository) GetSubscribers(ctx context.Context,
	orderID kernel.UUID) ([]string, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var connectionIDs []string
	err := r.db.WithContext(ctx).Model(&SubscriptionDTO{}).
		Where("order_id = ?", orderID.Bytes()).
		Pluck("connection_id", &connectionIDs).Error
	if err != nil {
		return nil, err
	}

	return connectionIDs, nil
}

// DeleteExpired removes connections whose TTL lapsed, with their
// subscriptions. Returns the number of connections removed.
func (r *GormSubscriptionRepository) DeleteExpired(ctx context.Context,
	now time.Time) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("connection_id IN (?)", tx.Session(&gorm.Session{NewDB: true}).
				Model(&ConnectionDTO{}).
				Select("connection_id").
				Where("expires_at < ?", now)).
			Delete(&SubscriptionDTO{}).Error; err != nil {
			return err
		}

		result := tx.Where("expires_at < ?", now).Delete(&ConnectionDTO{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		return nil
	})
	return removed, err
}
