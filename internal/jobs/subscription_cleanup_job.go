package jobs

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// SubscriptionCleanupJob removes push connections whose TTL lapsed,
// together with their order subscriptions. Clients that vanished without
// a clean disconnect would otherwise accumulate forever.
type SubscriptionCleanupJob struct {
	subscriptions ports.SubscriptionRepository
	cron          *cron.Cron
	logger        *slog.Logger
}

// NewSubscriptionCleanupJob creates a new job for purging expired connections.
func NewSubscriptionCleanupJob(subscriptions ports.SubscriptionRepository,
	logger *slog.Logger) *SubscriptionCleanupJob {
	return &SubscriptionCleanupJob{
		subscriptions: subscriptions,
		cron:          cron.New(),
		logger:        logger.With("component", "subscription_cleanup_job"),
	}
}

// Start begins the subscription cleanup job to run every five minutes.
func (j *SubscriptionCleanupJob) Start() error {
	_, err := j.cron.AddFunc("*/5 * * * *", func() {
		ctx := context.Background()

		removed, err := j.subscriptions.DeleteExpired(ctx, time.Now().UTC())
		if err != nil {
			j.logger.ErrorContext(ctx, "Subscription cleanup job failed", "error", err)
			return
		}

		if removed > 0 {
			j.logger.InfoContext(ctx, "Expired connections removed", "count", removed)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Subscription cleanup job started (running every five minutes)")
	return nil
}

// Stop stops the subscription cleanup job.
func (j *SubscriptionCleanupJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Subscription cleanup job stopped")
}
