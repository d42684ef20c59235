package settings_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/keepsakehq/backend-souvenir/internal/settings"
	"github.com/keepsakehq/backend-souvenir/internal/store"
)

type fakeProvider struct {
	values map[string]string
	reads  int
}

func (f *fakeProvider) GetSetting(_ context.Context, key string) (string, error) {
	f.reads++
	v, ok := f.values[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (f *fakeProvider) ListSettings(context.Context) (map[string]string, error) {
	return f.values, nil
}

func (f *fakeProvider) UpsertSetting(_ context.Context, key, value string) error {
	f.values[key] = value
	return nil
}

func newService(t *testing.T, values map[string]string) (*settings.Service, *fakeProvider) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	provider := &fakeProvider{values: values}
	return &settings.Service{
		Provider:            provider,
		Cache:               client,
		TTL:                 time.Minute,
		DefaultFreeShipping: 5_000_000,
	}, provider
}

func TestFreeShippingThresholdFromSetting(t *testing.T) {
	svc, _ := newService(t, map[string]string{store.SettingFreeShippingThreshold: "250000"})
	threshold, err := svc.FreeShippingThreshold(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 250000, threshold)
}

func TestFreeShippingThresholdDefaultsWhenMissing(t *testing.T) {
	svc, _ := newService(t, map[string]string{})
	threshold, err := svc.FreeShippingThreshold(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 5_000_000, threshold)
}

func TestFreeShippingThresholdDefaultsOnGarbage(t *testing.T) {
	svc, _ := newService(t, map[string]string{store.SettingFreeShippingThreshold: "soon"})
	threshold, err := svc.FreeShippingThreshold(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 5_000_000, threshold)
}

func TestGetUsesCache(t *testing.T) {
	svc, provider := newService(t, map[string]string{"store_email": "hello@example.com"})
	ctx := context.Background()

	_, err := svc.Get(ctx, "store_email")
	require.NoError(t, err)
	_, err = svc.Get(ctx, "store_email")
	require.NoError(t, err)
	require.Equal(t, 1, provider.reads)
}

func TestSetInvalidatesCache(t *testing.T) {
	svc, _ := newService(t, map[string]string{"store_email": "old@example.com"})
	ctx := context.Background()

	_, err := svc.Get(ctx, "store_email")
	require.NoError(t, err)
	require.NoError(t, svc.Set(ctx, "store_email", "new@example.com"))

	v, err := svc.Get(ctx, "store_email")
	require.NoError(t, err)
	require.Equal(t, "new@example.com", v)
}
