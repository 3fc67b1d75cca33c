package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/aurumpos/aurumpos/internal/catalog"
	"github.com/aurumpos/aurumpos/internal/ledger"
	"github.com/aurumpos/aurumpos/internal/pricing"
	"github.com/aurumpos/aurumpos/internal/shared"
)

type memoryRepo struct {
	products map[string]Product
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: map[string]Product{}}
}

func (r *memoryRepo) key(shopID, id string) string { return shopID + "/" + id }

func (r *memoryRepo) Create(_ context.Context, p Product) error {
	for _, existing := range r.products {
		if existing.ShopID == p.ShopID && p.Barcode != "" && existing.Barcode == p.Barcode {
			return shared.ErrDuplicate
		}
	}
	r.products[r.key(p.ShopID, p.ID)] = p
	return nil
}

func (r *memoryRepo) Get(_ context.Context, shopID, id string) (Product, error) {
	p, ok := r.products[r.key(shopID, id)]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (r *memoryRepo) Update(_ context.Context, p Product) error {
	if _, ok := r.products[r.key(p.ShopID, p.ID)]; !ok {
		return shared.ErrNotFound
	}
	r.products[r.key(p.ShopID, p.ID)] = p
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, shopID, id string) error {
	if _, ok := r.products[r.key(shopID, id)]; !ok {
		return shared.ErrNotFound
	}
	delete(r.products, r.key(shopID, id))
	return nil
}

func (r *memoryRepo) List(_ context.Context, filter ListFilter) ([]Product, int, error) {
	items := []Product{}
	for _, p := range r.products {
		if p.ShopID != filter.ShopID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		items = append(items, p)
	}
	return items, len(items), nil
}

type fakeCatalog struct {
	categories map[string]catalog.Category // keyed by shopID + "/" + folded name
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{categories: map[string]catalog.Category{}}
}

func (c *fakeCatalog) ResolveCategory(_ context.Context, shopID, typedName string, metalIfNew catalog.MetalType) (catalog.Category, error) {
	name := strings.TrimSpace(typedName)
	if name == "" {
		return catalog.Category{}, shared.ErrMissingCategory
	}
	key := shopID + "/" + strings.ToLower(name)
	if existing, ok := c.categories[key]; ok {
		return existing, nil
	}
	created := catalog.Category{ID: uuid.NewString(), ShopID: shopID, Name: name, Type: metalIfNew}
	c.categories[key] = created
	return created, nil
}

func (c *fakeCatalog) ResolveSubCategory(_ context.Context, shopID, categoryID, typedName string) (catalog.SubCategory, error) {
	if strings.TrimSpace(typedName) == "" {
		return catalog.SubCategory{}, nil
	}
	return catalog.SubCategory{ID: uuid.NewString(), ShopID: shopID, CategoryID: categoryID, Name: typedName}, nil
}

func (c *fakeCatalog) GetCategory(_ context.Context, shopID, id string) (catalog.Category, error) {
	for _, category := range c.categories {
		if category.ShopID == shopID && category.ID == id {
			return category, nil
		}
	}
	return catalog.Category{}, shared.ErrNotFound
}

type fakeLedger struct {
	repo      *memoryRepo
	movements []ledger.MovementInput
	fail      error
}

func (l *fakeLedger) RecordTransaction(ctx context.Context, in ledger.MovementInput) (ledger.Transaction, ledger.ProductTotals, error) {
	if l.fail != nil {
		return ledger.Transaction{}, ledger.ProductTotals{}, l.fail
	}
	p, err := l.repo.Get(ctx, in.ShopID, in.ProductID)
	if err != nil {
		return ledger.Transaction{}, ledger.ProductTotals{}, err
	}
	if in.Type == ledger.StockIn {
		p.Quantity += in.Quantity
		p.Weight += in.Weight
	} else {
		if in.Quantity > p.Quantity || in.Weight > p.Weight {
			return ledger.Transaction{}, ledger.ProductTotals{}, shared.ErrInsufficientStock
		}
		p.Quantity -= in.Quantity
		p.Weight -= in.Weight
	}
	l.repo.products[l.repo.key(p.ShopID, p.ID)] = p
	l.movements = append(l.movements, in)
	return ledger.Transaction{ID: uuid.NewString()}, ledger.ProductTotals{
		ProductID: p.ID, ShopID: p.ShopID, Quantity: p.Quantity, Weight: p.Weight,
	}, nil
}

type fakeRates struct {
	rate pricing.MetalRate
	err  error
}

func (r *fakeRates) Get(context.Context, string) (pricing.MetalRate, error) {
	if r.err != nil {
		return pricing.MetalRate{}, r.err
	}
	return r.rate, nil
}

func newTestService(repo *memoryRepo) (*Service, *fakeLedger, *fakeRates) {
	led := &fakeLedger{repo: repo}
	rates := &fakeRates{rate: pricing.MetalRate{GoldRate: 6000, SilverRate: 80}}
	return NewService(repo, newFakeCatalog(), led, rates, nil), led, rates
}

func validCreate() CreateInput {
	return CreateInput{
		ShopID:           "shop-1",
		Name:             "Gold Ring",
		CategoryName:     "Rings",
		Metal:            catalog.MetalGold,
		ItemType:         ItemGroup,
		UnitWeight:       10,
		InitialQuantity:  5,
		MakingCharge:     500,
		MakingChargeType: pricing.PerGram,
		ProfitPercent:    10,
		ActorID:          "user-1",
	}
}

func TestCreatePostsOpeningStock(t *testing.T) {
	repo := newMemoryRepo()
	svc, led, _ := newTestService(repo)

	p, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)
	require.Equal(t, float64(5), p.Quantity)
	require.Equal(t, float64(50), p.Weight)
	require.Equal(t, StatusActive, p.Status)
	require.NotEmpty(t, p.CategoryID)

	require.Len(t, led.movements, 1)
	movement := led.movements[0]
	require.Equal(t, ledger.StockIn, movement.Type)
	require.Equal(t, ledger.ReasonPurchase, movement.Reason)
	require.Equal(t, float64(5), movement.Quantity)
	require.Equal(t, float64(50), movement.Weight)

	stored, err := repo.Get(context.Background(), "shop-1", p.ID)
	require.NoError(t, err)
	require.Equal(t, float64(5), stored.Quantity)
}

func TestCreateWithoutOpeningStock(t *testing.T) {
	repo := newMemoryRepo()
	svc, led, _ := newTestService(repo)

	in := validCreate()
	in.InitialQuantity = 0
	p, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	require.Zero(t, p.Quantity)
	require.Empty(t, led.movements)
}

func TestCreateCompensatesOnLedgerFailure(t *testing.T) {
	repo := newMemoryRepo()
	svc, led, _ := newTestService(repo)
	led.fail = fmt.Errorf("ledger unavailable")

	_, err := svc.Create(context.Background(), validCreate())
	require.Error(t, err)
	require.Empty(t, repo.products)
}

func TestCreateRequiresCategory(t *testing.T) {
	svc, _, _ := newTestService(newMemoryRepo())
	in := validCreate()
	in.CategoryName = "  "
	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrMissingCategory)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(newMemoryRepo())

	in := validCreate()
	in.ItemType = "Bundle"
	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrValidation)

	in = validCreate()
	in.MakingChargeType = "per_lot"
	_, err = svc.Create(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrValidation)

	in = validCreate()
	in.UnitWeight = -1
	_, err = svc.Create(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateKeepsLedgerOwnedTotals(t *testing.T) {
	repo := newMemoryRepo()
	svc, _, _ := newTestService(repo)

	p, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), UpdateInput{
		ShopID:           "shop-1",
		ProductID:        p.ID,
		Name:             "Gold Ring 22k",
		ItemType:         ItemGroup,
		Status:           StatusInactive,
		UnitWeight:       12,
		MakingCharge:     550,
		MakingChargeType: pricing.PerGram,
		ProfitPercent:    12,
	})
	require.NoError(t, err)
	require.Equal(t, "Gold Ring 22k", updated.Name)
	require.Equal(t, StatusInactive, updated.Status)
	require.Equal(t, p.CategoryID, updated.CategoryID)
	require.Equal(t, float64(5), updated.Quantity)
	require.Equal(t, float64(50), updated.Weight)
}

func TestDeleteRemovesProduct(t *testing.T) {
	repo := newMemoryRepo()
	svc, _, _ := newTestService(repo)

	p, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "shop-1", p.ID, "user-1"))
	_, err = svc.Get(context.Background(), "shop-1", p.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.ErrorIs(t, svc.Delete(context.Background(), "shop-1", p.ID, "user-1"), shared.ErrNotFound)
}

func TestQuoteUsesShopRates(t *testing.T) {
	repo := newMemoryRepo()
	svc, _, _ := newTestService(repo)

	p, err := svc.Create(context.Background(), validCreate())
	require.NoError(t, err)

	// 5 pieces at 10g each: the quote covers the full cached on-hand weight.
	_, quote, err := svc.Quote(context.Background(), "shop-1", p.ID)
	require.NoError(t, err)
	require.InDelta(t, 300000, quote.MetalValue, 1e-9)
	require.InDelta(t, 25000, quote.MakingCost, 1e-9)
	require.InDelta(t, 357500, quote.Exact, 1e-9)
	require.Equal(t, int64(357500), quote.Display)
}

func TestQuoteDanglingCategoryPricesToZero(t *testing.T) {
	repo := newMemoryRepo()
	cat := newFakeCatalog()
	led := &fakeLedger{repo: repo}
	rates := &fakeRates{rate: pricing.MetalRate{GoldRate: 6000, SilverRate: 80}}
	svc := NewService(repo, cat, led, rates, nil)

	in := validCreate()
	in.InitialQuantity = 1
	p, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	// simulate a category cascade delete leaving the product dangling
	for key := range cat.categories {
		delete(cat.categories, key)
	}

	// The entire price collapses to zero, making cost and margin included.
	_, quote, err := svc.Quote(context.Background(), "shop-1", p.ID)
	require.NoError(t, err)
	require.Zero(t, quote.Exact)
	require.Zero(t, quote.Display)
	require.Zero(t, quote.MakingCost)
}

func TestQuotePropagatesRepoErrors(t *testing.T) {
	svc, _, _ := newTestService(newMemoryRepo())
	_, _, err := svc.Quote(context.Background(), "shop-1", "missing")
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.False(t, errors.Is(err, shared.ErrValidation))
}
