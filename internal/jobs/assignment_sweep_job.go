package jobs

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// AssignmentSweepJob periodically re-enqueues assignment work for orders
// stuck without staff. A lost queue message would otherwise strand the
// order forever.
type AssignmentSweepJob struct {
	handler commands.SweepPendingAssignmentsCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewAssignmentSweepJob creates a new job for sweeping stuck orders.
func NewAssignmentSweepJob(handler commands.SweepPendingAssignmentsCommandHandler,
	logger *slog.Logger) *AssignmentSweepJob {
	return &AssignmentSweepJob{
		handler: handler,
		cron:    cron.New(),
		logger:  logger.With("component", "assignment_sweep_job"),
	}
}

// Start begins the assignment sweep job to run every minute.
func (j *AssignmentSweepJob) Start() error {
	_, err := j.cron.AddFunc("* * * * *", func() {
		ctx := context.Background()
		cmd := commands.NewSweepPendingAssignmentsCommand()

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Assignment sweep job failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Assignment sweep job started (running every minute)")
	return nil
}

// Stop stops the assignment sweep job.
func (j *AssignmentSweepJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Assignment sweep job stopped")
}
