package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/workflow"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrRegisterStageWaitCommandIsNotConstructed = errors.New(
	"RegisterStageWaitCommand must be created via NewRegisterStageWaitCommand constructor",
)

// RegisterStageWaitCommand represents the orchestrator parking a wait
// token on a workflow stage. The matching status change later consumes
// the token to resume the run.
type RegisterStageWaitCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	stage   workflow.Stage
	token   string

	guard guard.ConstructorGuard
}

// NewRegisterStageWaitCommand creates a command to park a wait token.
func NewRegisterStageWaitCommand(orderID kernel.UUID, stage workflow.Stage,
	token string) (RegisterStageWaitCommand, error) {
	command := RegisterStageWaitCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setStage(stage),
		command.setToken(token),
	); err != nil {
		return RegisterStageWaitCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c RegisterStageWaitCommand) Validate() error {
	return c.guard.Validate(ErrRegisterStageWaitCommandIsNotConstructed)
}

// OrderID returns the identifier of the waiting order.
func (c RegisterStageWaitCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Stage returns the workflow stage the run is parked on.
func (c RegisterStageWaitCommand) Stage() workflow.Stage {
	return c.stage
}

// Token returns the opaque resume token issued by the orchestrator.
func (c RegisterStageWaitCommand) Token() string {
	return c.token
}

func (c *RegisterStageWaitCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *RegisterStageWaitCommand) setStage(stage workflow.Stage) error {
	if _, err := workflow.StageFromString(string(stage)); err != nil {
		return err
	}

	c.stage = stage
	return nil
}

func (c *RegisterStageWaitCommand) setToken(token string) error {
	if token == "" {
		return errs.NewValueIsRequiredError("token")
	}

	c.token = token
	return nil
}
