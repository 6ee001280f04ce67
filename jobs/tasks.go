// Package jobs contains the background worker: nightly ledger
// reconciliation and idempotency key cleanup, scheduled via Asynq cron.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerReconcile recomputes per-product ledger balances and
	// reports drift against the live stock counters.
	TaskLedgerReconcile = "ledger:reconcile"
	// TaskIdempotencyCleanup prunes processed idempotency keys past
	// retention.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// ReconcilePayload carries scheduling metadata.
type ReconcilePayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewLedgerReconcileTask constructs the nightly reconciliation task.
func NewLedgerReconcileTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ReconcilePayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerReconcile, body, asynq.Queue(QueueDefault)), nil
}

// NewIdempotencyCleanupTask constructs the key cleanup task.
func NewIdempotencyCleanupTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskIdempotencyCleanup, nil, asynq.Queue(QueueDefault)), nil
}
