package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/workflow"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// CreateOrderCommandHandler handles order placement. It creates the order
// aggregate, opens its workflow ledger and launches the orchestration run
// that drives the order through its stages.
type CreateOrderCommandHandler struct {
	uowFactory   UoWFactory
	orchestrator ports.OrchestrationClient
	publisher    ports.EventPublisher
	logger       *slog.Logger
}

// NewCreateOrderCommandHandler creates a handler for order placement.
func NewCreateOrderCommandHandler(uowFactory UoWFactory,
	orchestrator ports.OrchestrationClient, publisher ports.EventPublisher,
	logger *slog.Logger) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory:   uowFactory,
		orchestrator: orchestrator,
		publisher:    publisher,
		logger:       logger.With("component", "create_order"),
	}
}

// Handle processes the order placement command.
//
// Only customers place orders. The order total is computed from the line
// items; a declared total that disagrees beyond the money tolerance
// rejects the order. The order and its ledger are persisted in one
// transaction, then the orchestration run is started and the creation
// event is published, both best-effort.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, command CreateOrderCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	auth := command.Auth()
	if auth.Role() != kernel.RoleCustomer {
		return errs.NewUnauthorizedError(auth.Role().String(), "create order")
	}

	now := time.Now().UTC()

	newOrder, err := order.NewOrder(command.OrderID(), auth.TenantID(), auth.UserID(),
		command.Items(), command.DeliveryAddress(), now)
	if err != nil {
		return err
	}

	if declared := command.DeclaredTotal(); declared != nil &&
		!newOrder.Total().WithinTolerance(*declared) {
		return errs.NewValueIsInvalidErrorWithCause("total",
			fmt.Errorf("declared %s does not match computed %s",
				declared.String(), newOrder.Total().String()))
	}

	ledger, err := workflow.NewLedger(newOrder.ID(), now)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return err
	}

	if err = uow.WorkflowRepository().Add(ctx, ledger); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if err = h.orchestrator.StartRun(ctx, ports.StartRunInput{
		OrderID:  newOrder.ID().String(),
		TenantID: newOrder.TenantID(),
	}); err != nil {
		// The order is already committed, keep it.
		h.logger.Error("failed to start orchestration run",
			"order_id", newOrder.ID().String(),
			"error", err)
	}

	publishEvents(ctx, h.publisher, h.logger, newOrder)
	return nil
}
