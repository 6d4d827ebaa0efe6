package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/staff"
	"fulfillment/internal/core/domain/model/workflow"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// RequestTransitionCommandHandler applies a requested status change to the
// order, its workflow ledger and the staff roster in one transaction, then
// resumes the parked orchestration wait for the completed stage.
type RequestTransitionCommandHandler struct {
	uowFactory   UoWFactory
	orchestrator ports.OrchestrationClient
	publisher    ports.EventPublisher
	queue        ports.WorkQueue
	logger       *slog.Logger
}

// NewRequestTransitionCommandHandler creates a handler for status change requests.
func NewRequestTransitionCommandHandler(uowFactory UoWFactory,
	orchestrator ports.OrchestrationClient, publisher ports.EventPublisher,
	queue ports.WorkQueue, logger *slog.Logger) RequestTransitionCommandHandler {
	return RequestTransitionCommandHandler{
		uowFactory:   uowFactory,
		orchestrator: orchestrator,
		publisher:    publisher,
		queue:        queue,
		logger:       logger.With("component", "request_transition"),
	}
}

// Handle processes a status change request.
//
// The aggregate enforces role policy and the state machine. On success the
// handler records the ledger step, releases staff finished by the move
// (ready releases the chef, delivered releases the courier) and consumes
// the wait token of the completed stage to resume the orchestration. A
// stale token is logged and skipped. After commit, reaching confirmed
// enqueues chef assignment, and the raised events are published.
func (h RequestTransitionCommandHandler) Handle(ctx context.Context,
	command RequestTransitionCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	auth := command.Auth()
	target := command.Target()
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

	if err = fulfillmentOrder.TransitionTo(target, auth, command.Notes(), now); err != nil {
		return err
	}

	ledger, err := workflowRepo.Get(ctx, fulfillmentOrder.ID())
	if err != nil {
		return err
	}
	if err = ledger.RecordTransition(target, auth.Identifier(), command.Notes(), now); err != nil {
		return err
	}

	if err = h.releaseStaff(ctx, staffRepo, fulfillmentOrder, target, now); err != nil {
		return err
	}

	if err = h.resumeStage(ctx, ledger, fulfillmentOrder, target, now); err != nil {
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

	if target == order.StatusConfirmed {
		if err = h.queue.EnqueueAssignment(ctx, ports.AssignmentMessage{
			OrderID:   fulfillmentOrder.ID().String(),
			TenantID:  fulfillmentOrder.TenantID(),
			StaffType: staff.TypeChef,
		}); err != nil {
			// The sweep job re-enqueues confirmed orders without a chef.
			h.logger.Error("failed to enqueue chef assignment",
				"order_id", fulfillmentOrder.ID().String(),
				"error", err)
		}
	}

	publishEvents(ctx, h.publisher, h.logger, fulfillmentOrder)
	return nil
}

// releaseStaff frees the member whose work the transition completed and
// credits the completion. A missing roster record is logged and skipped:
// the roster is self-reported and may lag behind assignments.
func (h RequestTransitionCommandHandler) releaseStaff(ctx context.Context,
	staffRepo ports.StaffRepository, fulfillmentOrder *order.Order,
	target order.Status, now time.Time) error {
	var staffID string
	switch target {
	case order.StatusReady:
		staffID = fulfillmentOrder.AssignedChef()
	case order.StatusDelivered:
		staffID = fulfillmentOrder.AssignedCourier()
	default:
		return nil
	}
	if staffID == "" {
		return nil
	}

	record, err := staffRepo.Get(ctx, staffID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		h.logger.Warn("assigned staff has no roster record",
			"order_id", fulfillmentOrder.ID().String(),
			"staff_id", staffID)
		return nil
	}
	if err != nil {
		return err
	}

	record.CompleteAssignment(now)
	return staffRepo.Upsert(ctx, record)
}

// resumeStage consumes the completed stage's wait token and resumes the
// orchestration run. A stale resume (token already consumed or never
// parked) is a logged no-op. A resume transport failure aborts the
// transaction so the token stays parked for a retry.
func (h RequestTransitionCommandHandler) resumeStage(ctx context.Context,
	ledger *workflow.Ledger, fulfillmentOrder *order.Order,
	target order.Status, now time.Time) error {
	stage, ok := workflow.StageCompletedBy(target)
	if !ok {
		return nil
	}

	token, err := ledger.ConsumeToken(stage, now)
	if errors.Is(err, errs.ErrStaleTokenResume) {
		h.logger.Info("no wait token parked for completed stage",
			"order_id", fulfillmentOrder.ID().String(),
			"stage", stage.String())
		return nil
	}
	if err != nil {
		return err
	}

	return h.orchestrator.Resume(ctx, token, map[string]any{
		"order_id": fulfillmentOrder.ID().String(),
		"status":   target.String(),
	})
}
