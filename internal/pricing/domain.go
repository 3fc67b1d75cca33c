package pricing

import "time"

// MetalRate is the current per-gram gold and silver rate for one shop.
// Only the latest value is kept; price quotes tolerate reading a rate that a
// concurrent update is about to replace.
type MetalRate struct {
	ShopID     string    `json:"shopId"`
	GoldRate   float64   `json:"goldRate"`
	SilverRate float64   `json:"silverRate"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// StaleAfter reports whether the rate is older than the given age.
func (r MetalRate) StaleAfter(age time.Duration, now time.Time) bool {
	return now.Sub(r.UpdatedAt) > age
}
