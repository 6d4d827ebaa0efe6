package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/staff"
	"fulfillment/internal/pkg/guard"
)

var ErrReportAvailabilityCommandIsNotConstructed = errors.New(
	"ReportAvailabilityCommand must be created via NewReportAvailabilityCommand constructor",
)

// ReportAvailabilityCommand represents a staff member's self-report of
// their working status. Reports both register new members and refresh
// the 24 hour availability window of known ones.
type ReportAvailabilityCommand struct { //nolint:recvcheck //using for validation
	auth   kernel.AuthContext
	status staff.Status

	guard guard.ConstructorGuard
}

// NewReportAvailabilityCommand creates a command to report availability.
func NewReportAvailabilityCommand(auth kernel.AuthContext,
	status staff.Status) (ReportAvailabilityCommand, error) {
	command := ReportAvailabilityCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setAuth(auth),
		command.setStatus(status),
	); err != nil {
		return ReportAvailabilityCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c ReportAvailabilityCommand) Validate() error {
	return c.guard.Validate(ErrReportAvailabilityCommandIsNotConstructed)
}

// Auth returns the reporting staff member's identity.
func (c ReportAvailabilityCommand) Auth() kernel.AuthContext {
	return c.auth
}

// ReportedStatus returns the self-reported working status.
func (c ReportAvailabilityCommand) ReportedStatus() staff.Status {
	return c.status
}

func (c *ReportAvailabilityCommand) setAuth(auth kernel.AuthContext) error {
	if err := auth.Validate(); err != nil {
		return err
	}

	c.auth = auth
	return nil
}

func (c *ReportAvailabilityCommand) setStatus(status staff.Status) error {
	if _, err := staff.StatusFromString(string(status)); err != nil {
		return err
	}

	c.status = status
	return nil
}
