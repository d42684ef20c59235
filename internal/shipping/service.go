package shipping

import (
	"context"
	"errors"
	"fmt"

	"github.com/keepsakehq/backend-souvenir/internal/obs"
	"github.com/keepsakehq/backend-souvenir/internal/pricing"
)

// ErrNotFound indicates the requested state or location does not exist.
var ErrNotFound = errors.New("shipping: not found")

// Directory lists the delivery reference data.
type Directory interface {
	ListStates(ctx context.Context) ([]State, error)
	ListLocationsByState(ctx context.Context, stateID string) ([]Location, error)
	GetLocation(ctx context.Context, locationID string) (Location, error)
}

// ThresholdSource supplies the free-shipping threshold. Implementations fall
// back to a default when the setting is absent.
type ThresholdSource interface {
	FreeShippingThreshold(ctx context.Context) (pricing.Money, error)
}

// FeeQuote is the result of resolving a shipping fee.
type FeeQuote struct {
	LocationID string        `json:"locationId"`
	Fee        pricing.Money `json:"fee"`
	Free       bool          `json:"free"`
	Threshold  pricing.Money `json:"freeShippingThreshold"`
}

// Service resolves shipping fees against the location directory and the
// configured free-shipping threshold.
type Service struct {
	Dir       Directory
	Threshold ThresholdSource
}

// States lists the available delivery states.
func (s *Service) States(ctx context.Context) ([]State, error) {
	if s == nil || s.Dir == nil {
		return nil, errors.New("shipping service not configured")
	}
	return s.Dir.ListStates(ctx)
}

// Locations lists the delivery locations in a state.
func (s *Service) Locations(ctx context.Context, stateID string) ([]Location, error) {
	if s == nil || s.Dir == nil {
		return nil, errors.New("shipping service not configured")
	}
	return s.Dir.ListLocationsByState(ctx, stateID)
}

// QuoteFee resolves the shipping charge for a location and subtotal.
func (s *Service) QuoteFee(ctx context.Context, locationID string, subtotal pricing.Money) (FeeQuote, error) {
	if s == nil || s.Dir == nil {
		return FeeQuote{}, errors.New("shipping service not configured")
	}
	loc, err := s.Dir.GetLocation(ctx, locationID)
	if err != nil {
		return FeeQuote{}, fmt.Errorf("lookup location: %w", err)
	}
	threshold := s.threshold(ctx)
	fee := ResolveFee(&loc, subtotal, threshold)
	if threshold > 0 && subtotal >= threshold && obs.FreeShippingTotal != nil {
		obs.FreeShippingTotal.Inc()
	}
	return FeeQuote{
		LocationID: loc.ID,
		Fee:        fee,
		Free:       fee == 0,
		Threshold:  threshold,
	}, nil
}

func (s *Service) threshold(ctx context.Context) pricing.Money {
	if s.Threshold == nil {
		return 0
	}
	threshold, err := s.Threshold.FreeShippingThreshold(ctx)
	if err != nil {
		return 0
	}
	return threshold
}
