package ledger

import "time"

// TransactionType enumerates stock movement directions.
type TransactionType string

const (
	// StockIn increases a product's on-hand quantity and weight.
	StockIn TransactionType = "STOCK_IN"
	// StockOut decreases a product's on-hand quantity and weight.
	StockOut TransactionType = "STOCK_OUT"
)

// Valid reports whether the transaction type is known.
func (t TransactionType) Valid() bool {
	return t == StockIn || t == StockOut
}

// Reason labels why stock moved.
type Reason string

const (
	ReasonPurchase   Reason = "Purchase"
	ReasonReturn     Reason = "Return"
	ReasonAdjustment Reason = "Adjustment"
	ReasonSale       Reason = "Sale"
	ReasonDamage     Reason = "Damage"
	ReasonTransfer   Reason = "Transfer"
	ReasonOther      Reason = "Other"
)

// Valid reports whether the reason is known.
func (r Reason) Valid() bool {
	switch r {
	case ReasonPurchase, ReasonReturn, ReasonAdjustment, ReasonSale, ReasonDamage, ReasonTransfer, ReasonOther:
		return true
	}
	return false
}

// Transaction is one immutable entry in the append-only stock ledger.
// Once written it is never mutated; it is deleted only when its parent
// product is deleted.
type Transaction struct {
	ID        string          `json:"id"`
	ShopID    string          `json:"shopId"`
	ProductID string          `json:"productId"`
	Type      TransactionType `json:"type"`
	Quantity  float64         `json:"quantity"`
	Weight    float64         `json:"weight"`
	Reason    Reason          `json:"reason"`
	Date      time.Time       `json:"date"`
	Timestamp int64           `json:"timestamp"`
}

// ProductTotals is the slice of a product the reconciler reads and writes:
// the cached on-hand quantity and weight whose source of truth is the ledger.
type ProductTotals struct {
	ProductID string
	ShopID    string
	Quantity  float64
	Weight    float64
}

// Drift reports a product whose cached totals disagree with the replayed
// ledger, found by the integrity audit.
type Drift struct {
	ProductID      string  `json:"productId"`
	CachedQuantity float64 `json:"cachedQuantity"`
	LedgerQuantity float64 `json:"ledgerQuantity"`
	CachedWeight   float64 `json:"cachedWeight"`
	LedgerWeight   float64 `json:"ledgerWeight"`
}

// ListFilter narrows transaction listings.
type ListFilter struct {
	ShopID    string
	ProductID string
	Limit     int
}
