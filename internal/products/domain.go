package products

import (
	"time"

	"github.com/aurumpos/aurumpos/internal/pricing"
)

// ItemType distinguishes individually tracked pieces from grouped lots.
type ItemType string

const (
	ItemIndividual ItemType = "Individual"
	ItemGroup      ItemType = "Group"
)

// Valid reports whether the item type is known.
func (t ItemType) Valid() bool {
	return t == ItemIndividual || t == ItemGroup
}

// Status marks whether a product is sellable.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// Valid reports whether the status is known.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Product is a catalogued jewellery item. Quantity and Weight are cached
// on-hand totals whose source of truth is the stock ledger; everything else
// is master data.
type Product struct {
	ID               string                   `json:"id"`
	ShopID           string                   `json:"shopId"`
	Name             string                   `json:"name"`
	CategoryID       string                   `json:"categoryId"`
	SubCategoryID    string                   `json:"subCategoryId,omitempty"`
	SKU              string                   `json:"sku,omitempty"`
	Barcode          string                   `json:"barcode,omitempty"`
	HSNCode          string                   `json:"hsnCode,omitempty"`
	ItemType         ItemType                 `json:"itemType"`
	Status           Status                   `json:"status"`
	UnitWeight       float64                  `json:"unitWeight"`
	Quantity         float64                  `json:"quantity"`
	Weight           float64                  `json:"weight"`
	MakingCharge     float64                  `json:"makingCharge"`
	MakingChargeType pricing.MakingChargeType `json:"makingChargeType"`
	ProfitPercent    float64                  `json:"profitPercent"`
	CreatedAt        time.Time                `json:"createdAt"`
	UpdatedAt        time.Time                `json:"updatedAt"`
}

// ListFilter narrows product listings.
type ListFilter struct {
	ShopID  string
	Search  string
	Status  Status
	Page    int
	PerPage int
}
