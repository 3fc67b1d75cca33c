package shops

import "time"

// Shop is one tenant. Every product, category, transaction and rate row is
// scoped to exactly one shop.
type Shop struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	GSTIN     string    `json:"gstin,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Settings holds per-shop invoice and display preferences. ShopName mirrors
// the shop row so the settings screen can rename the shop in place.
type Settings struct {
	ShopID        string  `json:"shopId"`
	ShopName      string  `json:"shopName"`
	Currency      string  `json:"currency"`
	InvoicePrefix string  `json:"invoicePrefix"`
	GSTPercent    float64 `json:"gstPercent"`
	LowStockLevel float64 `json:"lowStockLevel"`
}

// DefaultSettings is applied when a shop is provisioned.
func DefaultSettings(shopID string) Settings {
	return Settings{
		ShopID:        shopID,
		Currency:      "INR",
		InvoicePrefix: "INV",
		GSTPercent:    3,
		LowStockLevel: 5,
	}
}
