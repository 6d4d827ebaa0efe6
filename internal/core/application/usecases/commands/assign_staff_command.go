package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/staff"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrAssignStaffCommandIsNotConstructed = errors.New(
		"AssignStaffCommand must be created via NewAssignStaffCommand constructor",
	)
	ErrTenantIsRequired = errors.New("tenant is required")
)

// AssignStaffCommand represents one assignment work item pulled from the
// queue: pick a staff member of the given type for the order.
type AssignStaffCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	tenantID  string
	staffType staff.Type

	guard guard.ConstructorGuard
}

// NewAssignStaffCommand creates a command to assign staff to an order.
func NewAssignStaffCommand(orderID kernel.UUID, tenantID string,
	staffType staff.Type) (AssignStaffCommand, error) {
	command := AssignStaffCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setTenantID(tenantID),
		command.setStaffType(staffType),
	); err != nil {
		return AssignStaffCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c AssignStaffCommand) Validate() error {
	return c.guard.Validate(ErrAssignStaffCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to staff.
func (c AssignStaffCommand) OrderID() kernel.UUID {
	return c.orderID
}

// TenantID returns the tenant that owns the order.
func (c AssignStaffCommand) TenantID() string {
	return c.tenantID
}

// StaffType returns the staff kind to assign.
func (c AssignStaffCommand) StaffType() staff.Type {
	return c.staffType
}

func (c *AssignStaffCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *AssignStaffCommand) setTenantID(tenantID string) error {
	if tenantID == "" {
		return ErrTenantIsRequired
	}

	c.tenantID = tenantID
	return nil
}

func (c *AssignStaffCommand) setStaffType(staffType staff.Type) error {
	if _, err := staff.TypeFromString(string(staffType)); err != nil {
		return err
	}

	c.staffType = staffType
	return nil
}
