package reports

import (
	"time"

	"github.com/aurumpos/aurumpos/internal/catalog"
)

// CategorySummary aggregates on-hand stock for one category, valued at the
// shop's current metal rate.
type CategorySummary struct {
	CategoryID   string            `json:"categoryId"`
	CategoryName string            `json:"categoryName"`
	Metal        catalog.MetalType `json:"metal"`
	Products     int               `json:"products"`
	Quantity     float64           `json:"quantity"`
	Weight       float64           `json:"weight"`
	MetalValue   float64           `json:"metalValue"`
}

// StockReport is the point-in-time stock position of one shop.
type StockReport struct {
	ShopID          string            `json:"shopId"`
	GeneratedAt     time.Time         `json:"generatedAt"`
	GoldRate        float64           `json:"goldRate"`
	SilverRate      float64           `json:"silverRate"`
	Categories      []CategorySummary `json:"categories"`
	TotalQuantity   float64           `json:"totalQuantity"`
	TotalWeight     float64           `json:"totalWeight"`
	TotalMetalValue float64           `json:"totalMetalValue"`
}

// LowStockItem is an active product at or below the shop's reorder level.
type LowStockItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	SKU       string  `json:"sku,omitempty"`
	Quantity  float64 `json:"quantity"`
	Threshold float64 `json:"threshold"`
}
