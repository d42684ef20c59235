package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluateTierSelection(t *testing.T) {
	tiers := []Tier{
		{MinQty: 5, Kind: KindPercent, Value: 1000},
		{MinQty: 10, Kind: KindPercent, Value: 2000},
	}
	base := Money(10000)

	q := Evaluate(base, tiers, 4)
	require.Nil(t, q.Tier)
	require.Equal(t, Money(10000), q.UnitPrice)

	q = Evaluate(base, tiers, 5)
	require.NotNil(t, q.Tier)
	require.Equal(t, Money(9000), q.UnitPrice)
	require.Equal(t, Money(45000), q.LineTotal)

	q = Evaluate(base, tiers, 12)
	require.Equal(t, Money(8000), q.UnitPrice)
	require.Equal(t, Money(96000), q.LineTotal)
}

func TestEvaluateFixedAmountFloor(t *testing.T) {
	tiers := []Tier{{MinQty: 1, Kind: KindAmount, Value: 15000}}
	q := Evaluate(10000, tiers, 2)
	require.Equal(t, Money(0), q.UnitPrice)
	require.Equal(t, Money(0), q.LineTotal)
}

func TestEvaluateZeroQuantity(t *testing.T) {
	tiers := []Tier{{MinQty: 1, Kind: KindPercent, Value: 500}}
	q := Evaluate(10000, tiers, 0)
	require.Nil(t, q.Tier)
	require.Equal(t, Money(10000), q.UnitPrice)
	require.Equal(t, Money(0), q.LineTotal)
}

func TestEvaluateDuplicateThresholdLastWins(t *testing.T) {
	tiers := []Tier{
		{MinQty: 5, Kind: KindPercent, Value: 1000},
		{MinQty: 5, Kind: KindPercent, Value: 2500},
	}
	q := Evaluate(10000, tiers, 6)
	require.Equal(t, Money(7500), q.UnitPrice)
}

func TestCompute(t *testing.T) {
	items := []Item{
		{Qty: 2, UnitPrice: 1000},
		{Qty: 0, UnitPrice: 500},
		{Qty: 3, UnitPrice: 1200},
	}
	sum := Compute(items, 900)
	require.Equal(t, Money(5600), sum.Subtotal)
	require.Equal(t, Money(900), sum.Shipping)
	require.Equal(t, Money(6500), sum.Total)
}
