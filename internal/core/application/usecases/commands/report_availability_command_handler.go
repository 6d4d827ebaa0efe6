package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/staff"
	"fulfillment/internal/pkg/errs"
)

// ReportAvailabilityCommandHandler records a staff member's self-reported
// working status on the roster, creating the record on first report.
type ReportAvailabilityCommandHandler struct {
	uowFactory StaffUoWFactory
	logger     *slog.Logger
}

// NewReportAvailabilityCommandHandler creates a handler for availability reports.
func NewReportAvailabilityCommandHandler(uowFactory StaffUoWFactory,
	logger *slog.Logger) ReportAvailabilityCommandHandler {
	return ReportAvailabilityCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With("component", "report_availability"),
	}
}

// Handle processes an availability report. Only chefs and couriers have
// roster records; other roles are rejected. A first report registers the
// member as the reported status with zero load.
func (h ReportAvailabilityCommandHandler) Handle(ctx context.Context,
	command ReportAvailabilityCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	auth := command.Auth()
	staffType, err := staff.TypeFromRole(auth.Role())
	if err != nil {
		return errs.NewUnauthorizedErrorWithCause(auth.Role().String(),
			"report availability", err)
	}

	now := time.Now().UTC()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	staffRepo := uow.StaffRepository()

	record, err := staffRepo.Get(ctx, auth.Identifier())
	if errors.Is(err, errs.ErrObjectNotFound) {
		record, err = staff.NewStaffAvailability(auth.Identifier(), staffType,
			auth.TenantID(), now)
	}
	if err != nil {
		return err
	}

	if err = record.Report(command.ReportedStatus(), now); err != nil {
		return err
	}

	if err = staffRepo.Upsert(ctx, record); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.Info("availability reported",
		"staff_id", auth.Identifier(),
		"staff_type", staffType.String(),
		"status", command.ReportedStatus().String())
	return nil
}
