package commands

import (
	"context"
	"log/slog"
	"time"
)

// RegisterStageWaitCommandHandler parks an orchestration wait token on
// the order's workflow ledger.
type RegisterStageWaitCommandHandler struct {
	uowFactory WorkflowUoWFactory
	logger     *slog.Logger
}

// NewRegisterStageWaitCommandHandler creates a handler for stage wait
// registrations.
func NewRegisterStageWaitCommandHandler(uowFactory WorkflowUoWFactory,
	logger *slog.Logger) RegisterStageWaitCommandHandler {
	return RegisterStageWaitCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With("component", "register_stage_wait"),
	}
}

// Handle parks the wait token. Re-registering a stage overwrites the
// previous token: the orchestrator only ever has one live wait per stage.
func (h RegisterStageWaitCommandHandler) Handle(ctx context.Context,
	command RegisterStageWaitCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	workflowRepo := uow.WorkflowRepository()

	ledger, err := workflowRepo.Get(ctx, command.OrderID())
	if err != nil {
		return err
	}

	if err = ledger.StoreToken(command.Stage(), command.Token(), now); err != nil {
		return err
	}

	if err = workflowRepo.Update(ctx, ledger); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.Info("stage wait registered",
		"order_id", command.OrderID().String(),
		"stage", command.Stage().String())
	return nil
}
