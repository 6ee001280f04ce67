package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// KeyCleaner prunes entries older than retention. shared.IdempotencyStore
// satisfies it.
type KeyCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

// IdempotencyCleanup is the task handler for TaskIdempotencyCleanup.
type IdempotencyCleanup struct {
	cleaner   KeyCleaner
	retention time.Duration
	logger    *slog.Logger
}

// NewIdempotencyCleanup constructs the cleanup handler.
func NewIdempotencyCleanup(cleaner KeyCleaner, retention time.Duration, logger *slog.Logger) *IdempotencyCleanup {
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IdempotencyCleanup{cleaner: cleaner, retention: retention, logger: logger}
}

// HandleTask prunes keys past retention.
func (c *IdempotencyCleanup) HandleTask(ctx context.Context, t *asynq.Task) error {
	if err := c.cleaner.Cleanup(ctx, c.retention); err != nil {
		c.logger.Error("idempotency cleanup failed", slog.Any("error", err))
		return err
	}
	c.logger.Info("idempotency cleanup done", slog.Duration("retention", c.retention))
	return nil
}
