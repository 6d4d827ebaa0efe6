// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return optimized read models and never touch the aggregates.
package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery retrieves one order scoped to the caller. Customers only
// see their own orders; staff and admins see any order of their tenant.
type GetOrderQuery struct {
	orderID kernel.UUID
	auth    kernel.AuthContext

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for a single order.
func NewGetOrderQuery(orderID kernel.UUID, auth kernel.AuthContext) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	if err := auth.Validate(); err != nil {
		return GetOrderQuery{}, err
	}

	return GetOrderQuery{
		orderID: orderID,
		auth:    auth,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q GetOrderQuery) Auth() kernel.AuthContext {
	return q.auth
}

// OrderItemResponse is one line item in the order read model.
type OrderItemResponse struct {
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// GetOrderQueryResponse is the full order read model.
type GetOrderQueryResponse struct {
	OrderID         kernel.UUID         `json:"order_id"`
	CustomerID      string              `json:"customer_id"`
	Status          string              `json:"status"`
	Items           []OrderItemResponse `json:"items"`
	Total           string              `json:"total"`
	DeliveryAddress string              `json:"delivery_address"`
	AssignedChef    string              `json:"assigned_chef,omitempty"`
	AssignedCourier string              `json:"assigned_courier,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	PickupTime      *time.Time          `json:"pickup_time,omitempty"`
	ReadyAt         *time.Time          `json:"ready_at,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`

	DeliveryNotes      string `json:"delivery_notes,omitempty"`
	CancellationReason string `json:"cancellation_reason,omitempty"`
	FailureReason      string `json:"failure_reason,omitempty"`
}
