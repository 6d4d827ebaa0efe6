package queries

import (
	"context"
	"sort"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetWaitingOrdersQueryHandler retrieves the orders parked on a wait token
// within the caller's tenant. One order can contribute several rows when
// more than one stage holds a token.
type GetWaitingOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetWaitingOrdersQueryHandler creates a handler for waiting order queries.
func NewGetWaitingOrdersQueryHandler(db *gorm.DB) GetWaitingOrdersQueryHandler {
	return GetWaitingOrdersQueryHandler{db: db}
}

// Handle executes the waiting orders query. Results are sorted oldest
// wait first so stale entries surface at the top.
func (h GetWaitingOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetWaitingOrdersQuery,
) ([]GetWaitingOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			w.order_id,
			o.status,
			w.confirmation_wait_started_at,
			w.cooking_wait_started_at,
			w.packing_wait_started_at,
			w.courier_pickup_wait_started_at,
			w.courier_delivery_wait_started_at
		FROM workflows w
		JOIN orders o ON o.id = w.order_id
		WHERE o.tenant_id = ?
		  AND (w.confirmation_task_token IS NOT NULL
			OR w.cooking_task_token IS NOT NULL
			OR w.packing_task_token IS NOT NULL
			OR w.courier_pickup_task_token IS NOT NULL
			OR w.courier_delivery_task_token IS NOT NULL)
	`, query.Auth().TenantID()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now().UTC()
	cutoff := now.Add(-query.StaleAfter())

	waiting := make([]GetWaitingOrdersQueryResponse, 0)
	for rows.Next() {
		var id uuid.UUID
		var status string
		waitStarts := make([]*time.Time, len(workflow.Stages()))

		scanTargets := []any{&id, &status}
		for i := range waitStarts {
			scanTargets = append(scanTargets, &waitStarts[i])
		}
		if err = rows.Scan(scanTargets...); err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}

		for i, stage := range workflow.Stages() {
			if waitStarts[i] == nil {
				continue
			}
			waiting = append(waiting, GetWaitingOrdersQueryResponse{
				OrderID:          orderID,
				OrderStatus:      status,
				Stage:            stage.String(),
				StageLabel:       stage.Label(),
				ActionRequiredBy: stage.ActionRequiredBy(),
				WaitStartedAt:    *waitStarts[i],
				IsStale:          waitStarts[i].Before(cutoff),
			})
		}
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(waiting, func(i, j int) bool {
		return waiting[i].WaitStartedAt.Before(waiting[j].WaitStartedAt)
	})
	return waiting, nil
}
