package shipping

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keepsakehq/backend-souvenir/internal/pricing"
)

func money(v pricing.Money) *pricing.Money { return &v }

func TestResolveFee(t *testing.T) {
	loc := &Location{ID: "l1", StateID: "s1", Fee: money(1500)}

	tests := []struct {
		name      string
		loc       *Location
		subtotal  pricing.Money
		threshold pricing.Money
		want      pricing.Money
	}{
		{"no location selected", nil, 100000, 50000, 0},
		{"below threshold charges fee", loc, 49999, 50000, 1500},
		{"at threshold ships free", loc, 50000, 50000, 0},
		{"above threshold ships free", loc, 80000, 50000, 0},
		{"nil fee treated as zero", &Location{ID: "l2"}, 100, 50000, 0},
		{"zero threshold never free", loc, 1000000, 0, 1500},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ResolveFee(tc.loc, tc.subtotal, tc.threshold))
		})
	}
}

type fakeDirectory struct {
	locations map[string]Location
}

func (f fakeDirectory) ListStates(context.Context) ([]State, error) { return nil, nil }

func (f fakeDirectory) ListLocationsByState(context.Context, string) ([]Location, error) {
	return nil, nil
}

func (f fakeDirectory) GetLocation(_ context.Context, id string) (Location, error) {
	loc, ok := f.locations[id]
	if !ok {
		return Location{}, ErrNotFound
	}
	return loc, nil
}

type fixedThreshold pricing.Money

func (f fixedThreshold) FreeShippingThreshold(context.Context) (pricing.Money, error) {
	return pricing.Money(f), nil
}

func TestQuoteFee(t *testing.T) {
	svc := &Service{
		Dir: fakeDirectory{locations: map[string]Location{
			"l1": {ID: "l1", Name: "Ikeja", StateID: "s1", Fee: money(2000)},
		}},
		Threshold: fixedThreshold(50000),
	}

	quote, err := svc.QuoteFee(context.Background(), "l1", 10000)
	require.NoError(t, err)
	require.Equal(t, pricing.Money(2000), quote.Fee)
	require.False(t, quote.Free)

	quote, err = svc.QuoteFee(context.Background(), "l1", 50000)
	require.NoError(t, err)
	require.Equal(t, pricing.Money(0), quote.Fee)
	require.True(t, quote.Free)

	_, err = svc.QuoteFee(context.Background(), "ghost", 1)
	require.ErrorIs(t, err, ErrNotFound)
}
