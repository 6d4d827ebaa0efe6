package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrGetWorkflowQueryIsNotConstructed = errors.New(
	"GetWorkflowQuery must be created via NewGetWorkflowQuery constructor",
)

// GetWorkflowQuery retrieves the workflow ledger view of one order: the
// step history and any stages currently parked on a wait token. Scoping
// follows the order itself.
type GetWorkflowQuery struct {
	orderID kernel.UUID
	auth    kernel.AuthContext

	guard guard.ConstructorGuard
}

// NewGetWorkflowQuery creates a workflow view query.
func NewGetWorkflowQuery(orderID kernel.UUID, auth kernel.AuthContext) (GetWorkflowQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetWorkflowQuery{}, err
	}
	if err := auth.Validate(); err != nil {
		return GetWorkflowQuery{}, err
	}

	return GetWorkflowQuery{
		orderID: orderID,
		auth:    auth,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetWorkflowQuery) Validate() error {
	return q.guard.Validate(ErrGetWorkflowQueryIsNotConstructed)
}

func (q GetWorkflowQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q GetWorkflowQuery) Auth() kernel.AuthContext {
	return q.auth
}

// WorkflowStepResponse is one step of the ledger history.
type WorkflowStepResponse struct {
	Status      string     `json:"status"`
	AssignedTo  string     `json:"assigned_to"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// ActiveWaitResponse describes a stage parked on an orchestration token.
type ActiveWaitResponse struct {
	Stage         string    `json:"stage"`
	WaitStartedAt time.Time `json:"wait_started_at"`
}

// ProgressResponse summarizes how far the order moved along the happy path.
type ProgressResponse struct {
	CompletedSteps int `json:"completed_steps"`
	TotalSteps     int `json:"total_steps"`
	Percent        int `json:"percent"`
}

// GetWorkflowQueryResponse is the workflow view read model.
type GetWorkflowQueryResponse struct {
	OrderID       kernel.UUID            `json:"order_id"`
	CurrentStatus string                 `json:"current_status"`
	Steps         []WorkflowStepResponse `json:"steps"`
	ActiveWaits   []ActiveWaitResponse   `json:"active_waits"`
	Progress      ProgressResponse       `json:"progress"`
	UpdatedAt     time.Time              `json:"updated_at"`
}
