package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/staff"
	"fulfillment/internal/pkg/guard"
)

var ErrEnqueueAssignmentCommandIsNotConstructed = errors.New(
	"EnqueueAssignmentCommand must be created via NewEnqueueAssignmentCommand constructor",
)

// EnqueueAssignmentCommand represents a request to queue an assignment
// work item for an order. The orchestrator calls this through the
// internal API when a stage needs staff.
type EnqueueAssignmentCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	tenantID  string
	staffType staff.Type

	guard guard.ConstructorGuard
}

// NewEnqueueAssignmentCommand creates a command to queue an assignment.
func NewEnqueueAssignmentCommand(orderID kernel.UUID, tenantID string,
	staffType staff.Type) (EnqueueAssignmentCommand, error) {
	command := EnqueueAssignmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setTenantID(tenantID),
		command.setStaffType(staffType),
	); err != nil {
		return EnqueueAssignmentCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c EnqueueAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrEnqueueAssignmentCommandIsNotConstructed)
}

// OrderID returns the identifier of the order needing staff.
func (c EnqueueAssignmentCommand) OrderID() kernel.UUID {
	return c.orderID
}

// TenantID returns the tenant that owns the order.
func (c EnqueueAssignmentCommand) TenantID() string {
	return c.tenantID
}

// StaffType returns the staff kind to assign.
func (c EnqueueAssignmentCommand) StaffType() staff.Type {
	return c.staffType
}

func (c *EnqueueAssignmentCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *EnqueueAssignmentCommand) setTenantID(tenantID string) error {
	if tenantID == "" {
		return ErrTenantIsRequired
	}

	c.tenantID = tenantID
	return nil
}

func (c *EnqueueAssignmentCommand) setStaffType(staffType staff.Type) error {
	if _, err := staff.TypeFromString(string(staffType)); err != nil {
		return err
	}

	c.staffType = staffType
	return nil
}
