package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/staff"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrNoCandidateAvailable signals the queue transport to redeliver the
	// work item with a delay instead of dropping it.
	ErrNoCandidateAvailable = errors.New("no candidate available")

	// ErrOrderNotReady signals that the order has not reached the status
	// the assignment expects yet. Also a redelivery signal.
	ErrOrderNotReady = errors.New("order is not ready for assignment")
)

// AssignStaffCommandHandler is the assignment processor. It picks the
// least-loaded available staff member of the requested type and assigns
// the order, flipping the member busy in the same transaction.
type AssignStaffCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewAssignStaffCommandHandler creates a handler for assignment work items.
func NewAssignStaffCommandHandler(uowFactory UoWFactory, publisher ports.EventPublisher,
	logger *slog.Logger) AssignStaffCommandHandler {
	return AssignStaffCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger.With("component", "assign_staff"),
	}
}

// Handle processes one assignment work item.
//
// Chef assignments expect a confirmed order, courier assignments a ready
// one. An order already past the expected status makes the item a no-op:
// queue delivery is at-least-once and duplicates are normal. An order
// behind the expected status, or an empty candidate pool, reports a
// redelivery signal so the transport retries later.
func (h AssignStaffCommandHandler) Handle(ctx context.Context, command AssignStaffCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

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
	if fulfillmentOrder.TenantID() != command.TenantID() {
		return errs.NewObjectNotFoundError("orderID", command.OrderID().String())
	}

	expected := order.StatusConfirmed
	target := order.StatusCooking
	if command.StaffType() == staff.TypeCourier {
		expected = order.StatusReady
		target = order.StatusInDelivery
	}

	if fulfillmentOrder.Status() != expected {
		if fulfillmentOrder.Status().IsAheadOf(expected) {
			h.logger.Info("order already progressed, dropping assignment",
				"order_id", fulfillmentOrder.ID().String(),
				"status", fulfillmentOrder.Status().String())
			return nil
		}
		return ErrOrderNotReady
	}

	candidates, err := staffRepo.GetAvailable(ctx, command.TenantID(), command.StaffType())
	if err != nil {
		return err
	}

	chosen, err := services.NewStaffSelector().Select(candidates, now)
	if errors.Is(err, services.ErrNoStaffAvailable) {
		return ErrNoCandidateAvailable
	}
	if err != nil {
		return err
	}

	if err = chosen.MarkBusy(fulfillmentOrder.ID(), now); err != nil {
		return err
	}

	if command.StaffType() == staff.TypeChef {
		err = fulfillmentOrder.AssignChef(chosen.StaffID(), "queue", now)
	} else {
		err = fulfillmentOrder.AssignCourier(chosen.StaffID(), "queue", now)
	}
	if err != nil {
		return err
	}

	ledger, err := workflowRepo.Get(ctx, fulfillmentOrder.ID())
	if err != nil {
		return err
	}
	if err = ledger.RecordTransition(target, chosen.StaffID(), "Assigned via queue", now); err != nil {
		return err
	}

	if err = staffRepo.Upsert(ctx, chosen); err != nil {
		return err
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

	h.logger.Info("staff assigned",
		"order_id", fulfillmentOrder.ID().String(),
		"staff_id", chosen.StaffID(),
		"staff_type", command.StaffType().String())

	publishEvents(ctx, h.publisher, h.logger, fulfillmentOrder)
	return nil
}
