package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/keepsakehq/backend-souvenir/internal/pricing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &Store{R: client, TTL: time.Hour}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.Create(ctx)
	require.NoError(t, err)

	_, err = store.Mutate(ctx, id, func(a *Aggregate) {
		a.Add(NewLine{ProductID: "p1", UnitPrice: 1000, Qty: 2, MaxQty: 10})
	})
	require.NoError(t, err)

	agg, err := store.Load(ctx, id)
	require.NoError(t, err)
	require.Len(t, agg.Items, 1)
	require.Equal(t, pricing.Money(2000), agg.Subtotal)
	require.Equal(t, 2, agg.ItemCount)
}

func TestStoreLoadMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Load(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreRecomputesOnLoad(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// A payload with stale totals must be corrected on restore.
	err := store.R.Set(ctx, store.key("c1"),
		`{"items":[{"id":"l1","productId":"p1","unitPrice":500,"qty":3,"maxQty":10}],"subtotal":1,"total":1,"itemCount":99}`,
		time.Hour).Err()
	require.NoError(t, err)

	agg, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, pricing.Money(1500), agg.Subtotal)
	require.Equal(t, 3, agg.ItemCount)
}
