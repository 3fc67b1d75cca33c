package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// IdempotencyCleaner prunes recorded idempotency keys.
type IdempotencyCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

// Keys older than this are safe to forget; clients do not retry that late.
const idempotencyRetention = 48 * time.Hour

// NewIdempotencyCleanupHandler builds the handler for TaskIdempotencyCleanup.
func NewIdempotencyCleanupHandler(logger *slog.Logger, cleaner IdempotencyCleaner) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		if err := cleaner.Cleanup(ctx, idempotencyRetention); err != nil {
			return err
		}
		logger.Info("idempotency keys pruned", "retention", idempotencyRetention.String())
		return nil
	}
}
