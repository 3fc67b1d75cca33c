package pricing

import (
	"math"

	"github.com/aurumpos/aurumpos/internal/catalog"
)

// MakingChargeType says how the making charge applies to a line item.
type MakingChargeType string

const (
	// PerGram multiplies the charge by the item's weight.
	PerGram MakingChargeType = "per_gram"
	// PerPiece applies the charge once per line item, regardless of quantity.
	PerPiece MakingChargeType = "per_piece"
)

// Valid reports whether the making charge type is known.
func (m MakingChargeType) Valid() bool {
	return m == PerGram || m == PerPiece
}

// Inputs carries everything the engine needs to price a line item.
type Inputs struct {
	WeightGrams      float64
	MakingCharge     float64
	MakingChargeType MakingChargeType
	ProfitPercent    float64
	Metal            catalog.MetalType
	GoldRate         float64
	SilverRate       float64
}

// Quote is a computed sell price. Exact keeps full float precision for
// downstream consumers that round differently; Display is rounded to the
// nearest whole currency unit.
type Quote struct {
	MetalValue float64 `json:"metalValue"`
	MakingCost float64 `json:"makingCost"`
	Cost       float64 `json:"cost"`
	Exact      float64 `json:"exact"`
	Display    int64   `json:"display"`
}

// Calculate derives a sell price from metal value, making cost and margin.
// It is pure: no I/O, no side effects, identical inputs give identical
// output, and it is monotonic in weight, rate, charge and profit percent.
func Calculate(in Inputs) Quote {
	// An unknown metal means the product's category no longer exists (e.g.
	// after a cascade delete). The whole price is zero, not an error.
	var rate float64
	switch in.Metal {
	case catalog.MetalGold:
		rate = in.GoldRate
	case catalog.MetalSilver:
		rate = in.SilverRate
	default:
		return Quote{}
	}
	metalValue := in.WeightGrams * rate

	var makingCost float64
	switch in.MakingChargeType {
	case PerGram:
		makingCost = in.MakingCharge * in.WeightGrams
	case PerPiece:
		makingCost = in.MakingCharge
	}

	cost := metalValue + makingCost
	exact := cost * (1 + in.ProfitPercent/100)
	return Quote{
		MetalValue: metalValue,
		MakingCost: makingCost,
		Cost:       cost,
		Exact:      exact,
		Display:    int64(math.Round(exact)),
	}
}
