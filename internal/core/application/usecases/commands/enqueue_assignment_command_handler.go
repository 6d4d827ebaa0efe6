package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/ports"
)

// EnqueueAssignmentCommandHandler hands an assignment work item to the
// queue transport. Processing happens asynchronously in the assignment
// consumer.
type EnqueueAssignmentCommandHandler struct {
	queue  ports.WorkQueue
	logger *slog.Logger
}

// NewEnqueueAssignmentCommandHandler creates a handler for assignment enqueueing.
func NewEnqueueAssignmentCommandHandler(queue ports.WorkQueue,
	logger *slog.Logger) EnqueueAssignmentCommandHandler {
	return EnqueueAssignmentCommandHandler{
		queue:  queue,
		logger: logger.With("component", "enqueue_assignment"),
	}
}

// Handle queues one assignment work item.
func (h EnqueueAssignmentCommandHandler) Handle(ctx context.Context,
	command EnqueueAssignmentCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	if err := h.queue.EnqueueAssignment(ctx, ports.AssignmentMessage{
		OrderID:   command.OrderID().String(),
		TenantID:  command.TenantID(),
		StaffType: command.StaffType(),
	}); err != nil {
		return err
	}

	h.logger.Info("assignment enqueued",
		"order_id", command.OrderID().String(),
		"staff_type", command.StaffType().String())
	return nil
}
