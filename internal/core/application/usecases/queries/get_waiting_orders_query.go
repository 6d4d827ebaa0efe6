package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrGetWaitingOrdersQueryIsNotConstructed = errors.New(
	"GetWaitingOrdersQuery must be created via NewGetWaitingOrdersQuery constructor",
)

// GetWaitingOrdersQuery is the operator view of orders parked on an
// orchestration wait token. Waits older than the staleness window are
// flagged but never expired by this query; it only reads.
type GetWaitingOrdersQuery struct {
	auth       kernel.AuthContext
	staleAfter time.Duration

	guard guard.ConstructorGuard
}

// NewGetWaitingOrdersQuery creates a waiting orders query. Only staff and
// admin roles may run it.
func NewGetWaitingOrdersQuery(auth kernel.AuthContext,
	staleAfter time.Duration) (GetWaitingOrdersQuery, error) {
	if err := auth.Validate(); err != nil {
		return GetWaitingOrdersQuery{}, err
	}
	if !auth.Role().IsStaff() {
		return GetWaitingOrdersQuery{}, errs.NewUnauthorizedError(
			auth.Role().String(), "list waiting orders")
	}
	if staleAfter <= 0 {
		return GetWaitingOrdersQuery{}, errs.NewValueIsRequiredError("staleAfter")
	}

	return GetWaitingOrdersQuery{
		auth:       auth,
		staleAfter: staleAfter,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetWaitingOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetWaitingOrdersQueryIsNotConstructed)
}

func (q GetWaitingOrdersQuery) Auth() kernel.AuthContext {
	return q.auth
}

func (q GetWaitingOrdersQuery) StaleAfter() time.Duration {
	return q.staleAfter
}

// GetWaitingOrdersQueryResponse is one parked wait in the read model.
type GetWaitingOrdersQueryResponse struct {
	OrderID          kernel.UUID `json:"order_id"`
	OrderStatus      string      `json:"order_status"`
	Stage            string      `json:"stage"`
	StageLabel       string      `json:"stage_label"`
	ActionRequiredBy string      `json:"action_required_by"`
	WaitStartedAt    time.Time   `json:"wait_started_at"`
	IsStale          bool        `json:"is_stale"`
}
