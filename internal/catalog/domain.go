package catalog

import "time"

// MetalType selects which metal rate applies to a category's products.
type MetalType string

const (
	MetalGold   MetalType = "Gold"
	MetalSilver MetalType = "Silver"
)

// Valid reports whether the metal type is known.
func (m MetalType) Valid() bool {
	return m == MetalGold || m == MetalSilver
}

// Category groups products of one metal type within a shop. Names are unique
// per shop, case-insensitively.
type Category struct {
	ID        string    `json:"id"`
	ShopID    string    `json:"shopId"`
	Name      string    `json:"name"`
	Type      MetalType `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubCategory is owned by a category; names are unique per category,
// case-insensitively.
type SubCategory struct {
	ID         string    `json:"id"`
	ShopID     string    `json:"shopId"`
	CategoryID string    `json:"categoryId"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
}
