package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/aurumpos/aurumpos/internal/ledger"
	"github.com/aurumpos/aurumpos/internal/shops"
)

// LedgerAuditor replays a shop's ledger against cached totals.
type LedgerAuditor interface {
	Audit(ctx context.Context, shopID string) ([]ledger.Drift, error)
}

// ShopLister enumerates tenants.
type ShopLister interface {
	List(ctx context.Context) ([]shops.Shop, error)
}

// NewLedgerAuditHandler builds the handler for TaskLedgerAudit. Drift is
// logged, not repaired: the ledger is the source of truth and a correction
// needs a human decision.
func NewLedgerAuditHandler(logger *slog.Logger, auditor LedgerAuditor, lister ShopLister) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload LedgerAuditPayload
		if len(t.Payload()) > 0 {
			if err := json.Unmarshal(t.Payload(), &payload); err != nil {
				return asynq.SkipRetry
			}
		}

		shopIDs := []string{payload.ShopID}
		if payload.ShopID == "" {
			all, err := lister.List(ctx)
			if err != nil {
				return err
			}
			shopIDs = shopIDs[:0]
			for _, shop := range all {
				shopIDs = append(shopIDs, shop.ID)
			}
		}

		for _, shopID := range shopIDs {
			drifts, err := auditor.Audit(ctx, shopID)
			if err != nil {
				return err
			}
			if len(drifts) == 0 {
				logger.Info("ledger audit clean", "shop_id", shopID)
				continue
			}
			for _, d := range drifts {
				logger.Error("ledger drift detected",
					"shop_id", shopID,
					"product_id", d.ProductID,
					"cached_quantity", d.CachedQuantity,
					"ledger_quantity", d.LedgerQuantity,
					"cached_weight", d.CachedWeight,
					"ledger_weight", d.LedgerWeight,
				)
			}
		}
		return nil
	}
}
