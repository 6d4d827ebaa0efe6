package queries

import (
	"context"
	"encoding/json"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/workflow"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetWorkflowQueryHandler retrieves the workflow view of one order. The
// ledger row joins the orders table for tenant and customer scoping.
type GetWorkflowQueryHandler struct {
	db *gorm.DB
}

// NewGetWorkflowQueryHandler creates a handler for workflow view queries.
func NewGetWorkflowQueryHandler(db *gorm.DB) GetWorkflowQueryHandler {
	return GetWorkflowQueryHandler{db: db}
}

// Handle executes the workflow view query within the caller's scope.
func (h GetWorkflowQueryHandler) Handle(
	ctx context.Context,
	query GetWorkflowQuery,
) (GetWorkflowQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetWorkflowQueryResponse{}, err
	}

	auth := query.Auth()
	sql := `
		SELECT
			w.order_id,
			w.current_status,
			w.steps,
			w.updated_at,
			w.confirmation_wait_started_at,
			w.cooking_wait_started_at,
			w.packing_wait_started_at,
			w.courier_pickup_wait_started_at,
			w.courier_delivery_wait_started_at
		FROM workflows w
		JOIN orders o ON o.id = w.order_id
		WHERE w.order_id = ? AND o.tenant_id = ?
	`
	args := []any{query.OrderID().Bytes(), auth.TenantID()}
	if auth.Role() == kernel.RoleCustomer {
		sql += ` AND o.customer_id = ?`
		args = append(args, auth.UserID())
	}

	rows, err := h.db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return GetWorkflowQueryResponse{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return GetWorkflowQueryResponse{}, err
		}
		return GetWorkflowQueryResponse{}, errs.NewObjectNotFoundError(
			"workflow", query.OrderID().String())
	}

	var response GetWorkflowQueryResponse
	var id uuid.UUID
	var rawSteps []byte
	waitStarts := make([]*time.Time, len(workflow.Stages()))

	scanTargets := []any{&id, &response.CurrentStatus, &rawSteps, &response.UpdatedAt}
	for i := range waitStarts {
		scanTargets = append(scanTargets, &waitStarts[i])
	}
	if err = rows.Scan(scanTargets...); err != nil {
		return GetWorkflowQueryResponse{}, err
	}

	orderID, idErr := kernel.UUIDFromBytes(id[:])
	if idErr != nil {
		return GetWorkflowQueryResponse{}, idErr
	}
	response.OrderID = orderID

	if err = json.Unmarshal(rawSteps, &response.Steps); err != nil {
		return GetWorkflowQueryResponse{}, err
	}

	// Happy path length: pending through delivered.
	const totalSteps = 7
	completed := 0
	for _, step := range response.Steps {
		if step.CompletedAt != nil {
			completed++
		}
	}
	response.Progress = ProgressResponse{
		CompletedSteps: completed,
		TotalSteps:     totalSteps,
		Percent:        completed * 100 / totalSteps,
	}

	response.ActiveWaits = make([]ActiveWaitResponse, 0)
	for i, stage := range workflow.Stages() {
		if waitStarts[i] != nil {
			response.ActiveWaits = append(response.ActiveWaits, ActiveWaitResponse{
				Stage:         stage.String(),
				WaitStartedAt: *waitStarts[i],
			})
		}
	}

	return response, rows.Err()
}
