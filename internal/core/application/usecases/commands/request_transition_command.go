package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var ErrRequestTransitionCommandIsNotConstructed = errors.New(
	"RequestTransitionCommand must be created via NewRequestTransitionCommand constructor",
)

// RequestTransitionCommand represents a staff member's request to move an
// order to a new status, for example a chef completing packing or a
// courier confirming delivery.
type RequestTransitionCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	target  order.Status
	auth    kernel.AuthContext
	notes   string

	guard guard.ConstructorGuard
}

// NewRequestTransitionCommand creates a command to request a status change.
// Validates the order ID, the target status and the caller identity. Role
// and state-machine checks happen on the aggregate.
func NewRequestTransitionCommand(orderID kernel.UUID, target order.Status,
	auth kernel.AuthContext, notes string) (RequestTransitionCommand, error) {
	command := RequestTransitionCommand{
		notes: notes,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setTarget(target),
		command.setAuth(auth),
	); err != nil {
		return RequestTransitionCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c RequestTransitionCommand) Validate() error {
	return c.guard.Validate(ErrRequestTransitionCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to transition.
func (c RequestTransitionCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Target returns the requested status.
func (c RequestTransitionCommand) Target() order.Status {
	return c.target
}

// Auth returns the authenticated caller requesting the change.
func (c RequestTransitionCommand) Auth() kernel.AuthContext {
	return c.auth
}

// Notes returns the free-form notes attached to the change.
func (c RequestTransitionCommand) Notes() string {
	return c.notes
}

func (c *RequestTransitionCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *RequestTransitionCommand) setTarget(target order.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}

	c.target = target
	return nil
}

func (c *RequestTransitionCommand) setAuth(auth kernel.AuthContext) error {
	if err := auth.Validate(); err != nil {
		return err
	}

	c.auth = auth
	return nil
}
