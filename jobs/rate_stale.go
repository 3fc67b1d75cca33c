package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/aurumpos/aurumpos/internal/pricing"
	"github.com/aurumpos/aurumpos/internal/shared"
)

// RateReader reads a shop's current metal rate.
type RateReader interface {
	Get(ctx context.Context, shopID string) (pricing.MetalRate, error)
}

// NewRateStaleScanHandler builds the handler for TaskRateStaleScan. Shops
// selling against an out-of-date rate are a pricing hazard, so each one gets
// a warning in the log.
func NewRateStaleScanHandler(logger *slog.Logger, rates RateReader, lister ShopLister, staleAfter time.Duration) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		all, err := lister.List(ctx)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, shop := range all {
			if !shop.IsActive {
				continue
			}
			rate, err := rates.Get(ctx, shop.ID)
			if errors.Is(err, shared.ErrNotFound) {
				logger.Warn("shop has no published metal rates", "shop_id", shop.ID)
				continue
			}
			if err != nil {
				return err
			}
			if rate.StaleAfter(staleAfter, now) {
				logger.Warn("metal rates are stale",
					"shop_id", shop.ID,
					"updated_at", rate.UpdatedAt,
					"age", now.Sub(rate.UpdatedAt).String(),
				)
			}
		}
		return nil
	}
}
