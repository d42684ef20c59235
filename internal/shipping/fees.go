package shipping

import "github.com/keepsakehq/backend-souvenir/internal/pricing"

// State is a top-level delivery region.
type State struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Location is a delivery area within a state carrying a flat shipping fee.
// A nil fee means the location has no configured charge and ships free.
type Location struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	StateID string         `json:"stateId"`
	Fee     *pricing.Money `json:"shippingFee"`
}

// ResolveFee determines the shipping charge for a selected location and cart
// subtotal. No location selected is an incomplete-selection state, not an
// error: the fee is zero and checkout validation blocks submission elsewhere.
// A subtotal at or above the free-shipping threshold waives the fee.
func ResolveFee(loc *Location, subtotal, threshold pricing.Money) pricing.Money {
	if loc == nil {
		return 0
	}
	if threshold > 0 && subtotal >= threshold {
		return 0
	}
	if loc.Fee == nil || *loc.Fee < 0 {
		return 0
	}
	return *loc.Fee
}
