// Package jobs provides scheduled background tasks for the fulfillment system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic housekeeping required for the fulfillment service.
//
// # Available Jobs
//
// 1. AssignmentSweepJob - Runs every minute to re-enqueue assignment work for orders stuck without staff
// 2. SubscriptionCleanupJob - Runs every five minutes to purge expired push connections and their subscriptions
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required dependencies
//	jobManager := jobs.NewJobManager(sweepHandler, subscriptionRepository, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - The sweep job logs failures and relies on the consumer-side status guard to absorb duplicates it produces
// - The cleanup job logs failures and reports the number of connections it removed
// - Failed job starts will stop any already running jobs
package jobs
