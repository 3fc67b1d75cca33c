package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aurumpos/aurumpos/internal/catalog"
)

func TestCalculatePerGram(t *testing.T) {
	quote := Calculate(Inputs{
		WeightGrams:      10,
		MakingCharge:     500,
		MakingChargeType: PerGram,
		ProfitPercent:    10,
		Metal:            catalog.MetalGold,
		GoldRate:         6000,
		SilverRate:       80,
	})
	require.InDelta(t, 60000, quote.MetalValue, 1e-9)
	require.InDelta(t, 5000, quote.MakingCost, 1e-9)
	require.InDelta(t, 65000, quote.Cost, 1e-9)
	require.InDelta(t, 71500, quote.Exact, 1e-9)
	require.Equal(t, int64(71500), quote.Display)
}

func TestCalculatePerPiece(t *testing.T) {
	quote := Calculate(Inputs{
		WeightGrams:      2.5,
		MakingCharge:     1200,
		MakingChargeType: PerPiece,
		ProfitPercent:    20,
		Metal:            catalog.MetalSilver,
		GoldRate:         6000,
		SilverRate:       80,
	})
	require.InDelta(t, 200, quote.MetalValue, 1e-9)
	require.InDelta(t, 1200, quote.MakingCost, 1e-9)
	require.InDelta(t, 1680, quote.Exact, 1e-9)
	require.Equal(t, int64(1680), quote.Display)
}

func TestCalculateZeroRate(t *testing.T) {
	// A shop with no published rate prices metal value at zero; only making
	// cost and margin survive.
	quote := Calculate(Inputs{
		WeightGrams:      5,
		MakingCharge:     100,
		MakingChargeType: PerGram,
		ProfitPercent:    10,
		Metal:            catalog.MetalGold,
	})
	require.Zero(t, quote.MetalValue)
	require.InDelta(t, 550, quote.Exact, 1e-9)
}

func TestCalculateUnknownMetal(t *testing.T) {
	// Dangling category reference: rates are published but the metal type
	// cannot be determined. The whole price is zero, making cost included.
	quote := Calculate(Inputs{
		WeightGrams:      10,
		MakingCharge:     500,
		MakingChargeType: PerGram,
		ProfitPercent:    10,
		Metal:            "",
		GoldRate:         6000,
		SilverRate:       80,
	})
	require.Equal(t, Quote{}, quote)
	require.Zero(t, quote.Exact)
	require.Zero(t, quote.Display)
}

func TestCalculateDeterministic(t *testing.T) {
	in := Inputs{
		WeightGrams:      7.321,
		MakingCharge:     433.5,
		MakingChargeType: PerGram,
		ProfitPercent:    12.5,
		Metal:            catalog.MetalGold,
		GoldRate:         6123.45,
	}
	first := Calculate(in)
	for i := 0; i < 100; i++ {
		require.Equal(t, first, Calculate(in))
	}
}

func TestCalculateMonotonic(t *testing.T) {
	base := Inputs{
		WeightGrams:      10,
		MakingCharge:     500,
		MakingChargeType: PerGram,
		ProfitPercent:    10,
		Metal:            catalog.MetalGold,
		GoldRate:         6000,
	}
	ref := Calculate(base).Exact

	heavier := base
	heavier.WeightGrams += 1
	require.Greater(t, Calculate(heavier).Exact, ref)

	dearer := base
	dearer.GoldRate += 100
	require.Greater(t, Calculate(dearer).Exact, ref)

	pricier := base
	pricier.MakingCharge += 50
	require.Greater(t, Calculate(pricier).Exact, ref)

	greedier := base
	greedier.ProfitPercent += 5
	require.Greater(t, Calculate(greedier).Exact, ref)
}

func TestCalculateDisplayRounding(t *testing.T) {
	quote := Calculate(Inputs{
		WeightGrams:      1,
		MakingCharge:     0.4,
		MakingChargeType: PerPiece,
		Metal:            catalog.MetalGold,
		GoldRate:         100,
	})
	require.InDelta(t, 100.4, quote.Exact, 1e-9)
	require.Equal(t, int64(100), quote.Display)
}
