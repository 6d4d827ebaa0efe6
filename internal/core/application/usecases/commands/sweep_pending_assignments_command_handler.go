package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/staff"
	"fulfillment/internal/core/ports"
)

// SweepPendingAssignmentsCommandHandler re-enqueues assignment work for
// orders whose original queue message was lost: confirmed orders without
// a chef and ready orders without a courier. The consumer-side status
// guard absorbs any duplicate this produces.
type SweepPendingAssignmentsCommandHandler struct {
	uowFactory UoWFactory
	queue      ports.WorkQueue
	logger     *slog.Logger
}

// NewSweepPendingAssignmentsCommandHandler creates a handler for the
// assignment sweep.
func NewSweepPendingAssignmentsCommandHandler(uowFactory UoWFactory,
	queue ports.WorkQueue, logger *slog.Logger) SweepPendingAssignmentsCommandHandler {
	return SweepPendingAssignmentsCommandHandler{
		uowFactory: uowFactory,
		queue:      queue,
		logger:     logger.With("component", "assignment_sweep"),
	}
}

// Handle re-enqueues assignment work for stuck orders. The scan is
// read-only; enqueue failures are logged and the sweep moves on, the
// next run retries.
func (h SweepPendingAssignmentsCommandHandler) Handle(ctx context.Context,
	command SweepPendingAssignmentsCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	confirmed, err := orderRepo.GetAllInStatus(ctx, order.StatusConfirmed)
	if err != nil {
		return err
	}
	ready, err := orderRepo.GetAllInStatus(ctx, order.StatusReady)
	if err != nil {
		return err
	}

	for _, stuck := range confirmed {
		if stuck.AssignedChef() != "" {
			continue
		}
		h.enqueue(ctx, stuck, staff.TypeChef)
	}
	for _, stuck := range ready {
		if stuck.AssignedCourier() != "" {
			continue
		}
		h.enqueue(ctx, stuck, staff.TypeCourier)
	}

	return nil
}

func (h SweepPendingAssignmentsCommandHandler) enqueue(ctx context.Context,
	stuck *order.Order, staffType staff.Type) {
	err := h.queue.EnqueueAssignment(ctx, ports.AssignmentMessage{
		OrderID:   stuck.ID().String(),
		TenantID:  stuck.TenantID(),
		StaffType: staffType,
	})
	if err != nil {
		h.logger.Error("failed to re-enqueue assignment",
			"order_id", stuck.ID().String(),
			"staff_type", staffType.String(),
			"error", err)
		return
	}

	h.logger.Info("re-enqueued stuck order",
		"order_id", stuck.ID().String(),
		"staff_type", staffType.String())
}
