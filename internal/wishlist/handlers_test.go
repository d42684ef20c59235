package wishlist

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/keepsakehq/backend-souvenir/internal/store"
)

type fakeProducts struct {
	products map[string]ProductInfo
}

// fakeProducts mirrors the production catalog adapter, which reports unknown
// and inactive products with the store sentinel.
func (f fakeProducts) ProductForWishlist(_ context.Context, id string) (ProductInfo, error) {
	p, ok := f.products[id]
	if !ok {
		return ProductInfo{}, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
	}
	return p, nil
}

func newHandlerRouter(t *testing.T) *chi.Mux {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	handler := &Handler{
		Store: &Store{R: client, TTL: time.Hour},
		Products: fakeProducts{products: map[string]ProductInfo{
			"mug-01": {Title: "Custom Mug", Slug: "custom-mug", Price: 1000},
		}},
	}

	r := chi.NewRouter()
	r.Get("/wishlists/{id}", handler.Get)
	r.Post("/wishlists/{id}/items", handler.AddItem)
	r.Delete("/wishlists/{id}/items/{productId}", handler.RemoveItem)
	return r
}

func TestAddItemStoresProduct(t *testing.T) {
	r := newHandlerRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/wishlists/s1/items", strings.NewReader(`{"productId":"mug-01"}`))
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data Aggregate `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data.Items, 1)
	require.Equal(t, "Custom Mug", resp.Data.Items[0].Title)
}

func TestAddItemUnknownProductIsNotFound(t *testing.T) {
	r := newHandlerRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/wishlists/s1/items", strings.NewReader(`{"productId":"ghost"}`))
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "NOT_FOUND", body.Error.Code)
}
