package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aurumpos/aurumpos/internal/catalog"
	"github.com/aurumpos/aurumpos/internal/ledger"
	"github.com/aurumpos/aurumpos/internal/pricing"
	"github.com/aurumpos/aurumpos/internal/shared"
	"github.com/aurumpos/aurumpos/internal/shops"
)

// RepositoryPort abstracts reporting aggregates.
type RepositoryPort interface {
	CategoryTotals(ctx context.Context, shopID string) ([]CategorySummary, error)
	LowStock(ctx context.Context, shopID string, threshold float64) ([]LowStockItem, error)
}

// RatePort reads the shop's current metal rates.
type RatePort interface {
	Get(ctx context.Context, shopID string) (pricing.MetalRate, error)
}

// SettingsPort reads the shop's reorder level.
type SettingsPort interface {
	GetSettings(ctx context.Context, shopID string) (shops.Settings, error)
}

// LedgerPort lists stock transactions for export.
type LedgerPort interface {
	ListTransactions(ctx context.Context, filter ledger.ListFilter) ([]ledger.Transaction, error)
}

// Service assembles stock reports.
type Service struct {
	repo     RepositoryPort
	rates    RatePort
	settings SettingsPort
	ledger   LedgerPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, rates RatePort, settings SettingsPort, led LedgerPort) *Service {
	return &Service{repo: repo, rates: rates, settings: settings, ledger: led}
}

// StockReport values the shop's on-hand stock at the current metal rates.
// The aggregate and the rate are fetched concurrently. A shop with no
// published rate gets a report valued at zero rather than an error.
func (s *Service) StockReport(ctx context.Context, shopID string) (StockReport, error) {
	if shopID == "" {
		return StockReport{}, fmt.Errorf("%w: shop required", shared.ErrValidation)
	}

	var (
		categories []CategorySummary
		rate       pricing.MetalRate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = s.repo.CategoryTotals(gctx, shopID)
		return err
	})
	g.Go(func() error {
		var err error
		rate, err = s.rates.Get(gctx, shopID)
		if errors.Is(err, shared.ErrNotFound) {
			rate = pricing.MetalRate{ShopID: shopID}
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return StockReport{}, err
	}

	report := StockReport{
		ShopID:      shopID,
		GeneratedAt: time.Now().UTC(),
		GoldRate:    rate.GoldRate,
		SilverRate:  rate.SilverRate,
		Categories:  categories,
	}
	for i := range report.Categories {
		c := &report.Categories[i]
		switch c.Metal {
		case catalog.MetalGold:
			c.MetalValue = c.Weight * rate.GoldRate
		case catalog.MetalSilver:
			c.MetalValue = c.Weight * rate.SilverRate
		}
		report.TotalQuantity += c.Quantity
		report.TotalWeight += c.Weight
		report.TotalMetalValue += c.MetalValue
	}
	return report, nil
}

// LowStock returns products at or below the shop's reorder level. Shops
// without explicit settings use the default level.
func (s *Service) LowStock(ctx context.Context, shopID string) ([]LowStockItem, error) {
	if shopID == "" {
		return nil, fmt.Errorf("%w: shop required", shared.ErrValidation)
	}
	threshold := shops.DefaultSettings(shopID).LowStockLevel
	settings, err := s.settings.GetSettings(ctx, shopID)
	switch {
	case err == nil:
		threshold = settings.LowStockLevel
	case errors.Is(err, shared.ErrNotFound):
	default:
		return nil, err
	}
	return s.repo.LowStock(ctx, shopID, threshold)
}

// Transactions lists ledger entries for export.
func (s *Service) Transactions(ctx context.Context, shopID, productID string, limit int) ([]ledger.Transaction, error) {
	if shopID == "" {
		return nil, fmt.Errorf("%w: shop required", shared.ErrValidation)
	}
	return s.ledger.ListTransactions(ctx, ledger.ListFilter{ShopID: shopID, ProductID: productID, Limit: limit})
}
