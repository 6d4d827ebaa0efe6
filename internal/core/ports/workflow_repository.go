package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/workflow"
)

// WorkflowRepository defines the persistence contract for workflow ledgers.
// Ledgers are keyed by the order they describe.
type WorkflowRepository interface {
	// Add persists the ledger opened for a freshly created order.
	Add(ctx context.Context, aggregate *workflow.Ledger) error

	// Update persists changes to an existing ledger.
	Update(ctx context.Context, aggregate *workflow.Ledger) error

	// Get retrieves the ledger for an order.
	Get(ctx context.Context, orderID kernel.UUID) (*workflow.Ledger, error)
}
