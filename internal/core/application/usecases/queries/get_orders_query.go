package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var ErrGetOrdersQueryIsNotConstructed = errors.New(
	"GetOrdersQuery must be created via NewGetOrdersQuery constructor",
)

// GetOrdersQuery lists orders for the caller: customers see their own,
// staff and admins see the tenant's. An optional status narrows the list.
type GetOrdersQuery struct {
	auth   kernel.AuthContext
	status *order.Status

	guard guard.ConstructorGuard
}

// NewGetOrdersQuery creates an order list query. Pass an empty status for
// an unfiltered list.
func NewGetOrdersQuery(auth kernel.AuthContext, status string) (GetOrdersQuery, error) {
	if err := auth.Validate(); err != nil {
		return GetOrdersQuery{}, err
	}

	var statusFilter *order.Status
	if status != "" {
		parsed, err := order.StatusFromString(status)
		if err != nil {
			return GetOrdersQuery{}, err
		}
		statusFilter = &parsed
	}

	return GetOrdersQuery{
		auth:   auth,
		status: statusFilter,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetOrdersQueryIsNotConstructed)
}

func (q GetOrdersQuery) Auth() kernel.AuthContext {
	return q.auth
}

func (q GetOrdersQuery) Status() *order.Status {
	return q.status
}

// GetOrdersQueryResponse is one order summary in the list read model.
type GetOrdersQueryResponse struct {
	OrderID         kernel.UUID `json:"order_id"`
	CustomerID      string      `json:"customer_id"`
	Status          string      `json:"status"`
	Total           string      `json:"total"`
	DeliveryAddress string      `json:"delivery_address"`
	AssignedChef    string      `json:"assigned_chef,omitempty"`
	AssignedCourier string      `json:"assigned_courier,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
