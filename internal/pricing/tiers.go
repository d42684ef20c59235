package pricing

// Money represents a monetary value stored in minor units.
type Money = int64

// DiscountKind enumerates the supported tier discount types.
type DiscountKind int

const (
	// KindPercent discounts the base price by a basis-point fraction.
	KindPercent DiscountKind = iota
	// KindAmount discounts the base price by a fixed amount.
	KindAmount
)

func (k DiscountKind) String() string {
	switch k {
	case KindPercent:
		return "percent"
	case KindAmount:
		return "amount"
	default:
		return "unknown"
	}
}

// Tier describes a quantity threshold that unlocks a discount on a product's
// unit price. Value is basis points for KindPercent and minor units for
// KindAmount.
type Tier struct {
	MinQty int
	Kind   DiscountKind
	Value  Money
}

// Quote is the result of evaluating tiers for a base price and quantity.
type Quote struct {
	UnitPrice Money
	LineTotal Money
	Tier      *Tier
}

// Evaluate computes the effective per-unit price and line total for the given
// base price, tier list, and quantity. The tier with the largest MinQty not
// exceeding qty applies; when thresholds collide the last defined tier wins.
// Discounts clamp at a zero unit price and never error.
func Evaluate(base Money, tiers []Tier, qty int) Quote {
	if base < 0 {
		base = 0
	}
	applied := selectTier(tiers, qty)
	unit := base
	if applied != nil {
		unit = base - discount(base, *applied)
		if unit < 0 {
			unit = 0
		}
	}
	total := Money(0)
	if qty > 0 {
		total = unit * Money(qty)
	}
	return Quote{UnitPrice: unit, LineTotal: total, Tier: applied}
}

func selectTier(tiers []Tier, qty int) *Tier {
	var best *Tier
	for i := range tiers {
		t := &tiers[i]
		if t.MinQty > qty {
			continue
		}
		if best == nil || t.MinQty >= best.MinQty {
			best = t
		}
	}
	return best
}

func discount(base Money, t Tier) Money {
	var d Money
	switch t.Kind {
	case KindPercent:
		d = base * t.Value / 10000
	case KindAmount:
		d = t.Value
	}
	if d < 0 {
		d = 0
	}
	return d
}

// Item describes a line item used for order total calculation.
type Item struct {
	Qty       int
	UnitPrice Money
}

// Summary aggregates computed order totals. No tax applies in this design.
type Summary struct {
	Subtotal Money
	Shipping Money
	Total    Money
}

// Compute calculates order totals given the provided line items and shipping.
func Compute(items []Item, shipping Money) Summary {
	var subtotal Money
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		subtotal += Money(it.Qty) * it.UnitPrice
	}
	if shipping < 0 {
		shipping = 0
	}
	return Summary{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal + shipping,
	}
}
