package jobs

import (
	"fmt"
	"log/slog"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/ports"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	assignmentSweepJob     *AssignmentSweepJob
	subscriptionCleanupJob *SubscriptionCleanupJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes the sweep handler and the subscription repository as dependencies
// to wire up the job execution.
func NewJobManager(
	sweepHandler commands.SweepPendingAssignmentsCommandHandler,
	subscriptions ports.SubscriptionRepository,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		assignmentSweepJob:     NewAssignmentSweepJob(sweepHandler, logger),
		subscriptionCleanupJob: NewSubscriptionCleanupJob(subscriptions, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.assignmentSweepJob.Start(); err != nil {
		return fmt.Errorf("failed to start assignment sweep job: %w", err)
	}

	if err := jm.subscriptionCleanupJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.assignmentSweepJob.Stop()
		return fmt.Errorf("failed to start subscription cleanup job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.subscriptionCleanupJob.Stop()
	jm.assignmentSweepJob.Stop()
}
