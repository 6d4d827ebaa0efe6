package commands

import (
	"errors"

	"fulfillment/internal/pkg/guard"
)

var ErrSweepPendingAssignmentsCommandIsNotConstructed = errors.New(
	"SweepPendingAssignmentsCommand must be created via NewSweepPendingAssignmentsCommand constructor",
)

// SweepPendingAssignmentsCommand represents a scheduled request to
// re-enqueue assignment work for orders stuck without staff.
type SweepPendingAssignmentsCommand struct {
	guard guard.ConstructorGuard
}

// NewSweepPendingAssignmentsCommand creates a command to sweep stuck orders.
func NewSweepPendingAssignmentsCommand() SweepPendingAssignmentsCommand {
	return SweepPendingAssignmentsCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c SweepPendingAssignmentsCommand) Validate() error {
	return c.guard.Validate(ErrSweepPendingAssignmentsCommandIsNotConstructed)
}
