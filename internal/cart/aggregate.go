package cart

import (
	"github.com/google/uuid"

	"github.com/keepsakehq/backend-souvenir/internal/pricing"
)

// Line represents one distinct purchasable configuration in the cart. A
// product may appear on multiple lines when the custom-print text differs.
type Line struct {
	ID             string        `json:"id"`
	ProductID      string        `json:"productId"`
	Title          string        `json:"title"`
	Slug           string        `json:"slug"`
	UnitPrice      pricing.Money `json:"unitPrice"`
	Qty            int           `json:"qty"`
	MaxQty         int           `json:"maxQty"`
	CustomPrint    bool          `json:"customPrint"`
	PrintText      string        `json:"printText,omitempty"`
	PrintSurcharge pricing.Money `json:"printSurcharge,omitempty"`
}

// EffectiveUnitPrice returns the unit price including the print surcharge
// when custom printing is enabled.
func (l Line) EffectiveUnitPrice() pricing.Money {
	if l.CustomPrint {
		return l.UnitPrice + l.PrintSurcharge
	}
	return l.UnitPrice
}

// NewLine carries the fields of a line to be added; the aggregate assigns the id.
type NewLine struct {
	ProductID      string
	Title          string
	Slug           string
	UnitPrice      pricing.Money
	Qty            int
	MaxQty         int
	CustomPrint    bool
	PrintText      string
	PrintSurcharge pricing.Money
}

// Aggregate owns the ordered cart line list and its derived totals. All
// mutations are total: out-of-range inputs clamp instead of failing. Totals
// are recomputed after every mutation and after deserialization.
type Aggregate struct {
	Items     []Line        `json:"items"`
	Subtotal  pricing.Money `json:"subtotal"`
	Total     pricing.Money `json:"total"`
	ItemCount int           `json:"itemCount"`

	// Open is a UI visibility flag; it carries no business meaning and is
	// never persisted.
	Open bool `json:"-"`
}

// NewAggregate returns an empty cart.
func NewAggregate() *Aggregate {
	return &Aggregate{Items: []Line{}}
}

// sameLine reports whether an existing line matches the configuration being
// added. Two lines are the same iff product, print flag, and print text agree.
func sameLine(l Line, n NewLine) bool {
	return l.ProductID == n.ProductID && l.CustomPrint == n.CustomPrint && l.PrintText == n.PrintText
}

// Add merges the new line into a matching existing line, clamping the
// combined quantity at the line's stock ceiling, or appends a fresh line.
func (a *Aggregate) Add(n NewLine) {
	for i := range a.Items {
		if sameLine(a.Items[i], n) {
			qty := a.Items[i].Qty + n.Qty
			if qty > a.Items[i].MaxQty {
				qty = a.Items[i].MaxQty
			}
			if qty < 1 {
				qty = 1
			}
			a.Items[i].Qty = qty
			a.Recompute()
			return
		}
	}
	qty := n.Qty
	if qty > n.MaxQty {
		qty = n.MaxQty
	}
	if qty < 1 {
		qty = 1
	}
	a.Items = append(a.Items, Line{
		ID:             uuid.NewString(),
		ProductID:      n.ProductID,
		Title:          n.Title,
		Slug:           n.Slug,
		UnitPrice:      n.UnitPrice,
		Qty:            qty,
		MaxQty:         n.MaxQty,
		CustomPrint:    n.CustomPrint,
		PrintText:      n.PrintText,
		PrintSurcharge: n.PrintSurcharge,
	})
	a.Recompute()
}

// Remove deletes the line with the given id. Absent ids are a no-op.
func (a *Aggregate) Remove(lineID string) {
	for i := range a.Items {
		if a.Items[i].ID == lineID {
			a.Items = append(a.Items[:i], a.Items[i+1:]...)
			break
		}
	}
	a.Recompute()
}

// UpdateQty sets the quantity for a line, clamped to [1, MaxQty]. Absent ids
// are a no-op.
func (a *Aggregate) UpdateQty(lineID string, qty int) {
	for i := range a.Items {
		if a.Items[i].ID != lineID {
			continue
		}
		if qty > a.Items[i].MaxQty {
			qty = a.Items[i].MaxQty
		}
		if qty < 1 {
			qty = 1
		}
		a.Items[i].Qty = qty
		break
	}
	a.Recompute()
}

// Clear empties the cart and resets derived totals.
func (a *Aggregate) Clear() {
	a.Items = []Line{}
	a.Recompute()
}

// SetOpen sets the UI visibility flag.
func (a *Aggregate) SetOpen(open bool) { a.Open = open }

// ToggleOpen flips the UI visibility flag.
func (a *Aggregate) ToggleOpen() { a.Open = !a.Open }

// Recompute rebuilds subtotal, total, and item count from the line list. No
// tax applies, so the total always equals the subtotal.
func (a *Aggregate) Recompute() {
	var subtotal pricing.Money
	count := 0
	for _, l := range a.Items {
		subtotal += l.EffectiveUnitPrice() * pricing.Money(l.Qty)
		count += l.Qty
	}
	a.Subtotal = subtotal
	a.Total = subtotal
	a.ItemCount = count
}
