package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerAudit replays the stock ledger of every shop and reports
	// drift against the cached product totals.
	TaskLedgerAudit = "ledger:audit"
	// TaskRateStaleScan flags shops whose metal rates have not been
	// refreshed recently.
	TaskRateStaleScan = "rates:stale_scan"
	// TaskIdempotencyCleanup prunes expired idempotency keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// LedgerAuditPayload scopes an audit run. An empty ShopID audits all shops.
type LedgerAuditPayload struct {
	ShopID string `json:"shop_id,omitempty"`
}

// NewLedgerAuditTask constructs a ledger audit task.
func NewLedgerAuditTask(payload LedgerAuditPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerAudit, data), nil
}

// NewRateStaleScanTask constructs a rate staleness scan task.
func NewRateStaleScanTask() *asynq.Task {
	return asynq.NewTask(TaskRateStaleScan, nil)
}

// NewIdempotencyCleanupTask constructs an idempotency cleanup task.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskIdempotencyCleanup, nil)
}
