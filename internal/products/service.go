package products

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aurumpos/aurumpos/internal/catalog"
	"github.com/aurumpos/aurumpos/internal/ledger"
	"github.com/aurumpos/aurumpos/internal/pricing"
	"github.com/aurumpos/aurumpos/internal/shared"
)

// RepositoryPort abstracts product storage.
type RepositoryPort interface {
	Create(ctx context.Context, p Product) error
	Get(ctx context.Context, shopID, id string) (Product, error)
	Update(ctx context.Context, p Product) error
	Delete(ctx context.Context, shopID, id string) error
	List(ctx context.Context, filter ListFilter) ([]Product, int, error)
}

// CatalogPort is the slice of the catalog service products need: resolving
// typed category names into canonical rows.
type CatalogPort interface {
	ResolveCategory(ctx context.Context, shopID, typedName string, metalIfNew catalog.MetalType) (catalog.Category, error)
	ResolveSubCategory(ctx context.Context, shopID, categoryID, typedName string) (catalog.SubCategory, error)
	GetCategory(ctx context.Context, shopID, id string) (catalog.Category, error)
}

// LedgerPort records stock movements.
type LedgerPort interface {
	RecordTransaction(ctx context.Context, input ledger.MovementInput) (ledger.Transaction, ledger.ProductTotals, error)
}

// RatePort reads the shop's current metal rates.
type RatePort interface {
	Get(ctx context.Context, shopID string) (pricing.MetalRate, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates product master data with the catalog resolver and the
// stock ledger.
type Service struct {
	repo    RepositoryPort
	catalog CatalogPort
	ledger  LedgerPort
	rates   RatePort
	audit   AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, cat CatalogPort, led LedgerPort, rates RatePort, audit AuditPort) *Service {
	return &Service{repo: repo, catalog: cat, ledger: led, rates: rates, audit: audit}
}

// CreateInput carries a product creation request. Category and sub-category
// arrive as typed names and are resolved find-or-create.
type CreateInput struct {
	ShopID           string
	Name             string
	CategoryName     string
	Metal            catalog.MetalType
	SubCategoryName  string
	SKU              string
	Barcode          string
	HSNCode          string
	ItemType         ItemType
	UnitWeight       float64
	InitialQuantity  float64
	MakingCharge     float64
	MakingChargeType pricing.MakingChargeType
	ProfitPercent    float64
	ActorID          string
}

func (in CreateInput) validate() error {
	if in.ShopID == "" || in.Name == "" {
		return fmt.Errorf("%w: shop and name are required", shared.ErrValidation)
	}
	if !in.ItemType.Valid() {
		return fmt.Errorf("%w: unknown item type %q", shared.ErrValidation, in.ItemType)
	}
	if !in.MakingChargeType.Valid() {
		return fmt.Errorf("%w: unknown making charge type %q", shared.ErrValidation, in.MakingChargeType)
	}
	if in.UnitWeight < 0 || in.InitialQuantity < 0 || in.MakingCharge < 0 || in.ProfitPercent < 0 {
		return fmt.Errorf("%w: numeric fields must be non-negative", shared.ErrValidation)
	}
	return nil
}

// Create inserts the product with zero on-hand totals, then posts the
// opening stock as a regular STOCK_IN ledger entry so the initial quantity
// has the same provenance as every later movement. If the opening entry
// fails, the insert is compensated by deleting the product again.
func (s *Service) Create(ctx context.Context, in CreateInput) (Product, error) {
	if err := in.validate(); err != nil {
		return Product{}, err
	}
	category, err := s.catalog.ResolveCategory(ctx, in.ShopID, in.CategoryName, in.Metal)
	if err != nil {
		return Product{}, err
	}
	sub, err := s.catalog.ResolveSubCategory(ctx, in.ShopID, category.ID, in.SubCategoryName)
	if err != nil {
		return Product{}, err
	}

	now := time.Now().UTC()
	p := Product{
		ID:               uuid.NewString(),
		ShopID:           in.ShopID,
		Name:             in.Name,
		CategoryID:       category.ID,
		SubCategoryID:    sub.ID,
		SKU:              in.SKU,
		Barcode:          in.Barcode,
		HSNCode:          in.HSNCode,
		ItemType:         in.ItemType,
		Status:           StatusActive,
		UnitWeight:       in.UnitWeight,
		MakingCharge:     in.MakingCharge,
		MakingChargeType: in.MakingChargeType,
		ProfitPercent:    in.ProfitPercent,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Product{}, err
	}

	if in.InitialQuantity > 0 {
		_, totals, err := s.ledger.RecordTransaction(ctx, ledger.MovementInput{
			ShopID:    in.ShopID,
			ProductID: p.ID,
			Type:      ledger.StockIn,
			Quantity:  in.InitialQuantity,
			Weight:    in.UnitWeight * in.InitialQuantity,
			Reason:    ledger.ReasonPurchase,
			ActorID:   in.ActorID,
		})
		if err != nil {
			if delErr := s.repo.Delete(ctx, in.ShopID, p.ID); delErr != nil {
				return Product{}, errors.Join(err, delErr)
			}
			return Product{}, err
		}
		p.Quantity = totals.Quantity
		p.Weight = totals.Weight
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  in.ActorID,
			ShopID:   in.ShopID,
			Action:   "product:create",
			Entity:   "product",
			EntityID: p.ID,
			Meta:     map[string]any{"name": p.Name, "initial_quantity": in.InitialQuantity},
		})
	}
	return p, nil
}

// UpdateInput carries a product update. Zero-value strings keep the current
// category and sub-category.
type UpdateInput struct {
	ShopID           string
	ProductID        string
	Name             string
	CategoryName     string
	Metal            catalog.MetalType
	SubCategoryName  string
	SKU              string
	Barcode          string
	HSNCode          string
	ItemType         ItemType
	Status           Status
	UnitWeight       float64
	MakingCharge     float64
	MakingChargeType pricing.MakingChargeType
	ProfitPercent    float64
	ActorID          string
}

// Update rewrites product master data. On-hand totals are ledger-owned and
// cannot be edited here; stock corrections go through stock transactions.
func (s *Service) Update(ctx context.Context, in UpdateInput) (Product, error) {
	existing, err := s.repo.Get(ctx, in.ShopID, in.ProductID)
	if err != nil {
		return Product{}, err
	}
	if in.Name == "" {
		return Product{}, fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	if !in.ItemType.Valid() || !in.Status.Valid() || !in.MakingChargeType.Valid() {
		return Product{}, fmt.Errorf("%w: unknown enum value", shared.ErrValidation)
	}
	if in.UnitWeight < 0 || in.MakingCharge < 0 || in.ProfitPercent < 0 {
		return Product{}, fmt.Errorf("%w: numeric fields must be non-negative", shared.ErrValidation)
	}

	categoryID := existing.CategoryID
	subCategoryID := existing.SubCategoryID
	if in.CategoryName != "" {
		category, err := s.catalog.ResolveCategory(ctx, in.ShopID, in.CategoryName, in.Metal)
		if err != nil {
			return Product{}, err
		}
		categoryID = category.ID
		sub, err := s.catalog.ResolveSubCategory(ctx, in.ShopID, category.ID, in.SubCategoryName)
		if err != nil {
			return Product{}, err
		}
		subCategoryID = sub.ID
	}

	updated := existing
	updated.Name = in.Name
	updated.CategoryID = categoryID
	updated.SubCategoryID = subCategoryID
	updated.SKU = in.SKU
	updated.Barcode = in.Barcode
	updated.HSNCode = in.HSNCode
	updated.ItemType = in.ItemType
	updated.Status = in.Status
	updated.UnitWeight = in.UnitWeight
	updated.MakingCharge = in.MakingCharge
	updated.MakingChargeType = in.MakingChargeType
	updated.ProfitPercent = in.ProfitPercent
	updated.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, updated); err != nil {
		return Product{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  in.ActorID,
			ShopID:   in.ShopID,
			Action:   "product:update",
			Entity:   "product",
			EntityID: updated.ID,
			Meta:     map[string]any{"name": updated.Name},
		})
	}
	return updated, nil
}

// Delete removes the product together with its ledger history.
func (s *Service) Delete(ctx context.Context, shopID, id, actorID string) error {
	if err := s.repo.Delete(ctx, shopID, id); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			ShopID:   shopID,
			Action:   "product:delete",
			Entity:   "product",
			EntityID: id,
		})
	}
	return nil
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, shopID, id string) (Product, error) {
	return s.repo.Get(ctx, shopID, id)
}

// List returns a page of products with pagination metadata.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, shared.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// Quote prices the product's cached on-hand weight at the shop's current
// metal rates. A product whose category was deleted prices to zero; a shop
// with no published rates prices the metal component at zero. Neither fails.
func (s *Service) Quote(ctx context.Context, shopID, id string) (Product, pricing.Quote, error) {
	p, err := s.repo.Get(ctx, shopID, id)
	if err != nil {
		return Product{}, pricing.Quote{}, err
	}

	var metal catalog.MetalType
	category, err := s.catalog.GetCategory(ctx, shopID, p.CategoryID)
	switch {
	case err == nil:
		metal = category.Type
	case errors.Is(err, shared.ErrNotFound):
		// dangling category reference after a cascade delete
	default:
		return Product{}, pricing.Quote{}, err
	}

	var goldRate, silverRate float64
	rate, err := s.rates.Get(ctx, shopID)
	switch {
	case err == nil:
		goldRate, silverRate = rate.GoldRate, rate.SilverRate
	case errors.Is(err, shared.ErrNotFound):
	default:
		return Product{}, pricing.Quote{}, err
	}

	quote := pricing.Calculate(pricing.Inputs{
		WeightGrams:      p.Weight,
		MakingCharge:     p.MakingCharge,
		MakingChargeType: p.MakingChargeType,
		ProfitPercent:    p.ProfitPercent,
		Metal:            metal,
		GoldRate:         goldRate,
		SilverRate:       silverRate,
	})
	return p, quote, nil
}
