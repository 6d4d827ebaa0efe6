package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrCancelPickupCommandIsNotConstructed = errors.New(
		"CancelPickupCommand must be created via NewCancelPickupCommand constructor",
	)
	ErrReasonIsRequired = errors.New("cancellation reason is required")
)

// CancelPickupCommand represents a courier's request to abandon an
// in-flight delivery, returning the order to the ready pool.
type CancelPickupCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	auth    kernel.AuthContext
	reason  string

	guard guard.ConstructorGuard
}

// NewCancelPickupCommand creates a command to cancel a pickup.
// A reason is mandatory: cancellations are audited on the workflow ledger.
func NewCancelPickupCommand(orderID kernel.UUID, auth kernel.AuthContext,
	reason string) (CancelPickupCommand, error) {
	command := CancelPickupCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setAuth(auth),
		command.setReason(reason),
	); err != nil {
		return CancelPickupCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c CancelPickupCommand) Validate() error {
	return c.guard.Validate(ErrCancelPickupCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to release.
func (c CancelPickupCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Auth returns the authenticated caller canceling the pickup.
func (c CancelPickupCommand) Auth() kernel.AuthContext {
	return c.auth
}

// Reason returns the cancellation reason.
func (c CancelPickupCommand) Reason() string {
	return c.reason
}

func (c *CancelPickupCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CancelPickupCommand) setAuth(auth kernel.AuthContext) error {
	if err := auth.Validate(); err != nil {
		return err
	}

	c.auth = auth
	return nil
}

func (c *CancelPickupCommand) setReason(reason string) error {
	if reason == "" {
		return ErrReasonIsRequired
	}

	c.reason = reason
	return nil
}
