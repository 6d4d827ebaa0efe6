package queries

import (
	"context"
	"encoding/json"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderQueryHandler retrieves a single order read model from the database.
// Uses direct SQL for read performance; scoping happens in the WHERE clause
// so a foreign-tenant order is indistinguishable from a missing one.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for single order queries.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the query for one order within the caller's scope.
func (h GetOrderQueryHandler) Handle(
	ctx context.Context,
	query GetOrderQuery,
) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	auth := query.Auth()
	sql := `
		SELECT
			id,
			customer_id,
			status,
			items,
			total,
			delivery_address,
			assigned_chef,
			assigned_courier,
			created_at,
			updated_at,
			pickup_time,
			ready_at,
			delivered_at,
			delivery_notes,
			cancellation_reason,
			failure_reason
		FROM orders
		WHERE id = ? AND tenant_id = ?
	`
	args := []any{query.OrderID().Bytes(), auth.TenantID()}
	switch auth.Role() {
	case kernel.RoleCustomer:
		sql += ` AND customer_id = ?`
		args = append(args, auth.UserID())
	case kernel.RoleCourier:
		// Couriers see the ready pool plus their own deliveries.
		sql += ` AND (status = ? OR assigned_courier = ?)`
		args = append(args, order.StatusReady.String(), auth.Identifier())
	}

	rows, err := h.db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return GetOrderQueryResponse{}, err
		}
		return GetOrderQueryResponse{}, errs.NewObjectNotFoundError(
			"order", query.OrderID().String())
	}

	var response GetOrderQueryResponse
	var id uuid.UUID
	var rawItems []byte

	err = rows.Scan(
		&id,
		&response.CustomerID,
		&response.Status,
		&rawItems,
		&response.Total,
		&response.DeliveryAddress,
		&response.AssignedChef,
		&response.AssignedCourier,
		&response.CreatedAt,
		&response.UpdatedAt,
		&response.PickupTime,
		&response.ReadyAt,
		&response.DeliveredAt,
		&response.DeliveryNotes,
		&response.CancellationReason,
		&response.FailureReason,
	)
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	orderID, idErr := kernel.UUIDFromBytes(id[:])
	if idErr != nil {
		return GetOrderQueryResponse{}, idErr
	}
	response.OrderID = orderID

	if err = json.Unmarshal(rawItems, &response.Items); err != nil {
		return GetOrderQueryResponse{}, err
	}

	return response, rows.Err()
}
