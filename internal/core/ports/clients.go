package ports

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/staff"
	"fulfillment/internal/core/domain/model/workflow"
)

// EventPublisher publishes domain events to the event bus after the owning
// transaction commits. Publishing is best-effort: implementations report
// errors for logging, and callers never fail the business operation on them.
type EventPublisher interface {
	Publish(ctx context.Context, event order.Event) error
}

// AssignmentMessage is one unit of work for the assignment queue.
type AssignmentMessage struct {
	OrderID   string     `json:"order_id"`
	TenantID  string     `json:"tenant_id"`
	StaffType staff.Type `json:"staff_type"`
}

// WorkQueue hands assignment work to the queue transport. Delivery is
// at-least-once; the consumer-side status guard absorbs duplicates.
type WorkQueue interface {
	EnqueueAssignment(ctx context.Context, msg AssignmentMessage) error
}

// StartRunInput describes a new orchestration run for an order.
type StartRunInput struct {
	OrderID  string `json:"order_id"`
	TenantID string `json:"tenant_id"`
}

// OrchestrationClient talks to the external workflow orchestrator.
type OrchestrationClient interface {
	// StartRun launches the orchestration for a freshly created order.
	StartRun(ctx context.Context, input StartRunInput) error

	// Resume releases a parked wait with the step outcome. The token must
	// have been issued by the orchestrator via a stage-wait registration.
	Resume(ctx context.Context, token workflow.WaitToken, output map[string]any) error
}

// ErrChannelGone reports a push endpoint that no longer accepts writes.
// The fan-out removes the connection and its subscriptions on it.
var ErrChannelGone = errors.New("push channel gone")

// PushChannel delivers a payload to one registered connection.
type PushChannel interface {
	Send(ctx context.Context, connectionID string, payload []byte) error
}
