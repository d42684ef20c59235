package cart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keepsakehq/backend-souvenir/internal/pricing"
)

func TestAddMergesMatchingLines(t *testing.T) {
	agg := NewAggregate()
	agg.Add(NewLine{ProductID: "p1", UnitPrice: 1000, Qty: 2, MaxQty: 10})
	agg.Add(NewLine{ProductID: "p1", UnitPrice: 1000, Qty: 3, MaxQty: 10})

	require.Len(t, agg.Items, 1)
	require.Equal(t, 5, agg.Items[0].Qty)
	require.Equal(t, pricing.Money(5000), agg.Subtotal)
	require.Equal(t, agg.Subtotal, agg.Total)
	require.Equal(t, 5, agg.ItemCount)
}

func TestAddClampsAtStockCeiling(t *testing.T) {
	agg := NewAggregate()
	agg.Add(NewLine{ProductID: "p1", UnitPrice: 1000, Qty: 4, MaxQty: 5})
	agg.Add(NewLine{ProductID: "p1", UnitPrice: 1000, Qty: 4, MaxQty: 5})

	require.Len(t, agg.Items, 1)
	require.Equal(t, 5, agg.Items[0].Qty)
}

func TestAddDistinctPrintTextKeepsSeparateLines(t *testing.T) {
	agg := NewAggregate()
	agg.Add(NewLine{ProductID: "p1", UnitPrice: 1000, Qty: 1, MaxQty: 10, CustomPrint: true, PrintText: "Hi", PrintSurcharge: 200})
	agg.Add(NewLine{ProductID: "p1", UnitPrice: 1000, Qty: 1, MaxQty: 10, CustomPrint: true, PrintText: "Bye", PrintSurcharge: 200})

	require.Len(t, agg.Items, 2)
	require.Equal(t, pricing.Money(2400), agg.Subtotal)
}

func TestUpdateQtyClamps(t *testing.T) {
	agg := NewAggregate()
	agg.Add(NewLine{ProductID: "p1", UnitPrice: 1000, Qty: 2, MaxQty: 8})
	id := agg.Items[0].ID

	agg.UpdateQty(id, 100)
	require.Equal(t, 8, agg.Items[0].Qty)

	agg.UpdateQty(id, -3)
	require.Equal(t, 1, agg.Items[0].Qty)

	agg.UpdateQty("missing", 4)
	require.Equal(t, 1, agg.Items[0].Qty)
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	agg := NewAggregate()
	agg.Add(NewLine{ProductID: "p1", UnitPrice: 1000, Qty: 2, MaxQty: 8})
	agg.Remove("missing")
	require.Len(t, agg.Items, 1)

	agg.Remove(agg.Items[0].ID)
	require.Empty(t, agg.Items)
	require.Equal(t, pricing.Money(0), agg.Subtotal)
}

func TestClearResetsTotals(t *testing.T) {
	agg := NewAggregate()
	agg.Add(NewLine{ProductID: "p1", UnitPrice: 1000, Qty: 2, MaxQty: 8})
	agg.Add(NewLine{ProductID: "p2", UnitPrice: 500, Qty: 1, MaxQty: 8})

	agg.Clear()
	require.Empty(t, agg.Items)
	require.Equal(t, pricing.Money(0), agg.Subtotal)
	require.Equal(t, pricing.Money(0), agg.Total)
	require.Equal(t, 0, agg.ItemCount)
}

func TestTotalsConsistencyAfterMutations(t *testing.T) {
	agg := NewAggregate()
	agg.Add(NewLine{ProductID: "p1", UnitPrice: 1500, Qty: 2, MaxQty: 20})
	agg.Add(NewLine{ProductID: "p2", UnitPrice: 700, Qty: 5, MaxQty: 20, CustomPrint: true, PrintText: "Team", PrintSurcharge: 150})
	agg.UpdateQty(agg.Items[0].ID, 4)
	agg.Add(NewLine{ProductID: "p2", UnitPrice: 700, Qty: 1, MaxQty: 20, CustomPrint: true, PrintText: "Team", PrintSurcharge: 150})
	agg.Remove(agg.Items[0].ID)

	var subtotal pricing.Money
	count := 0
	for _, l := range agg.Items {
		subtotal += l.EffectiveUnitPrice() * pricing.Money(l.Qty)
		count += l.Qty
	}
	require.Equal(t, subtotal, agg.Subtotal)
	require.Equal(t, subtotal, agg.Total)
	require.Equal(t, count, agg.ItemCount)
}

func TestOpenFlagNotSerialized(t *testing.T) {
	agg := NewAggregate()
	agg.SetOpen(true)
	data, err := json.Marshal(agg)
	require.NoError(t, err)
	require.NotContains(t, string(data), "Open")

	agg.ToggleOpen()
	require.False(t, agg.Open)
}
