package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/staff"
	"fulfillment/internal/core/domain/model/workflow"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// CancelPickupCommandHandler compensates an abandoned delivery: the order
// returns to ready, the courier is released without completion credit and
// a courier reassignment is queued.
type CancelPickupCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.EventPublisher
	queue      ports.WorkQueue
	logger     *slog.Logger
}

// NewCancelPickupCommandHandler creates a handler for pickup cancellations.
func NewCancelPickupCommandHandler(uowFactory UoWFactory, publisher ports.EventPublisher,
	queue ports.WorkQueue, logger *slog.Logger) CancelPickupCommandHandler {
	return CancelPickupCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		queue:      queue,
		logger:     logger.With("component", "cancel_pickup"),
	}
}

// Handle processes a pickup cancellation.
//
// The aggregate enforces that only the assigned courier or an admin may
// cancel, and only while the order is in delivery. The ledger's open
// delivery step is closed with the cancellation note and a fresh ready
// step is opened by the system. The courier is released without a
// completion credit. After commit a courier reassignment is enqueued.
func (h CancelPickupCommandHandler) Handle(ctx context.Context, command CancelPickupCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	auth := command.Auth()
	now := time.Now().UTC()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	workflowRepo := uow.WorkflowRepository()
	staffRepo := uow.StaffRepository()

	fulfillmentOrder, err := orderRepo.Get(ctx, command.OrderID())
	if err != nil {
		return err
	}
	if fulfillmentOrder.TenantID() != auth.TenantID() {
		return errs.NewObjectNotFoundError("orderID", command.OrderID().String())
	}

	courierID := fulfillmentOrder.AssignedCourier()
	if err = fulfillmentOrder.CancelPickup(auth, command.Reason(), now); err != nil {
		return err
	}

	ledger, err := workflowRepo.Get(ctx, fulfillmentOrder.ID())
	if err != nil {
		return err
	}
	ledger.CloseOpenStep(
		fmt.Sprintf("Canceled by %s. Reason: %s", courierID, command.Reason()), now)
	if err = ledger.RecordTransition(order.StatusReady, workflow.SystemActor,
		"Awaiting courier reassignment", now); err != nil {
		return err
	}

	if courierID != "" {
		record, getErr := staffRepo.Get(ctx, courierID)
		switch {
		case errors.Is(getErr, errs.ErrObjectNotFound):
			h.logger.Warn("canceled courier has no roster record",
				"order_id", fulfillmentOrder.ID().String(),
				"staff_id", courierID)
		case getErr != nil:
			return getErr
		default:
			record.ClearAssignment(now)
			if err = staffRepo.Upsert(ctx, record); err != nil {
				return err
			}
		}
	}

	if err = orderRepo.Update(ctx, fulfillmentOrder); err != nil {
		return err
	}
	if err = workflowRepo.Update(ctx, ledger); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if err = h.queue.EnqueueAssignment(ctx, ports.AssignmentMessage{
		OrderID:   fulfillmentOrder.ID().String(),
		TenantID:  fulfillmentOrder.TenantID(),
		StaffType: staff.TypeCourier,
	}); err != nil {
		h.logger.Error("failed to enqueue courier reassignment",
			"order_id", fulfillmentOrder.ID().String(),
			"error", err)
	}

	publishEvents(ctx, h.publisher, h.logger, fulfillmentOrder)
	return nil
}
