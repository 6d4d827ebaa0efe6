package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrdersQueryHandler retrieves order summaries from the database.
type GetOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetOrdersQueryHandler creates a handler for order list queries.
func NewGetOrdersQueryHandler(db *gorm.DB) GetOrdersQueryHandler {
	return GetOrdersQueryHandler{db: db}
}

// Handle executes the query within the caller's scope. Results are sorted
// newest first.
func (h GetOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetOrdersQuery,
) ([]GetOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	auth := query.Auth()
	sql := `
		SELECT
			id,
			customer_id,
			status,
			total,
			delivery_address,
			assigned_chef,
			assigned_courier,
			created_at,
			updated_at
		FROM orders
		WHERE tenant_id = ?
	`
	args := []any{auth.TenantID()}
	switch auth.Role() {
	case kernel.RoleCustomer:
		sql += ` AND customer_id = ?`
		args = append(args, auth.UserID())
	case kernel.RoleCourier:
		// Couriers see the ready pool plus their own deliveries.
		sql += ` AND (status = ? OR assigned_courier = ?)`
		args = append(args, order.StatusReady.String(), auth.Identifier())
	}
	if status := query.Status(); status != nil {
		sql += ` AND status = ?`
		args = append(args, status.String())
	}
	sql += ` ORDER BY created_at DESC`

	rows, err := h.db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]GetOrdersQueryResponse, 0)
	for rows.Next() {
		var response GetOrdersQueryResponse
		var id uuid.UUID

		err = rows.Scan(
			&id,
			&response.CustomerID,
			&response.Status,
			&response.Total,
			&response.DeliveryAddress,
			&response.AssignedChef,
			&response.AssignedCourier,
			&response.CreatedAt,
			&response.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		response.OrderID = orderID
		orders = append(orders, response)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
