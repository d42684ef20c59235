package cart_test

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

	"github.com/keepsakehq/backend-souvenir/internal/cart"
	"github.com/keepsakehq/backend-souvenir/internal/pricing"
	"github.com/keepsakehq/backend-souvenir/internal/store"
)

type fakeProducts struct {
	products map[string]cart.Product
}

// fakeProducts mirrors the production catalog adapter, which reports unknown
// and inactive products with the store sentinel.
func (f fakeProducts) ProductForCart(_ context.Context, id string) (cart.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return cart.Product{}, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
	}
	return p, nil
}

type cartResponse struct {
	Data cart.Aggregate `json:"data"`
}

func newRouter(t *testing.T) (*chi.Mux, *cart.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := &cart.Store{R: client, TTL: time.Hour}
	handler := &cart.Handler{
		Store: store,
		Products: fakeProducts{products: map[string]cart.Product{
			"mug-01": {Title: "Custom Mug", Slug: "custom-mug", Price: 1000, Stock: 10, PrintAvailable: true, PrintSurcharge: 200},
			"pen-02": {Title: "Engraved Pen", Slug: "engraved-pen", Price: 500, Stock: 3},
		}},
	}

	r := chi.NewRouter()
	r.Post("/carts", handler.Create)
	r.Get("/carts/{id}", handler.Get)
	r.Post("/carts/{id}/items", handler.AddItem)
	r.Patch("/carts/{id}/items/{itemId}", handler.UpdateItem)
	r.Delete("/carts/{id}/items/{itemId}", handler.RemoveItem)
	r.Delete("/carts/{id}/items", handler.Clear)
	return r, store
}

func createCart(t *testing.T, r http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/carts", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	var payload struct {
		Data struct {
			CartID string `json:"cartId"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	return payload.Data.CartID
}

func addItem(t *testing.T, r http.Handler, cartID, body string) cartResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/carts/"+cartID+"/items", strings.NewReader(body))
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp cartResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestAddSameConfigurationMerges(t *testing.T) {
	r, _ := newRouter(t)
	id := createCart(t, r)

	addItem(t, r, id, `{"productId":"mug-01","qty":2}`)
	resp := addItem(t, r, id, `{"productId":"mug-01","qty":3}`)

	require.Len(t, resp.Data.Items, 1)
	require.Equal(t, 5, resp.Data.Items[0].Qty)
	require.Equal(t, pricing.Money(5000), resp.Data.Subtotal)
	require.Equal(t, 5, resp.Data.ItemCount)
}

func TestAddDistinctPrintTexts(t *testing.T) {
	r, _ := newRouter(t)
	id := createCart(t, r)

	addItem(t, r, id, `{"productId":"mug-01","qty":1,"customPrint":true,"printText":"Hi"}`)
	resp := addItem(t, r, id, `{"productId":"mug-01","qty":1,"customPrint":true,"printText":"Bye"}`)

	require.Len(t, resp.Data.Items, 2)
	require.Equal(t, pricing.Money(2400), resp.Data.Subtotal)
}

func TestAddRejectsUnknownProduct(t *testing.T) {
	r, _ := newRouter(t)
	id := createCart(t, r)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/carts/"+id+"/items", strings.NewReader(`{"productId":"ghost","qty":1}`))
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestAddRejectsPrintWhenUnavailable(t *testing.T) {
	r, _ := newRouter(t)
	id := createCart(t, r)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/carts/"+id+"/items", strings.NewReader(`{"productId":"pen-02","qty":1,"customPrint":true,"printText":"x"}`))
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateClampsAndClearResets(t *testing.T) {
	r, _ := newRouter(t)
	id := createCart(t, r)

	resp := addItem(t, r, id, `{"productId":"pen-02","qty":2}`)
	lineID := resp.Data.Items[0].ID

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/carts/"+id+"/items/"+lineID, strings.NewReader(`{"qty":99}`))
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated cartResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	require.Equal(t, 3, updated.Data.Items[0].Qty)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/carts/"+id+"/items", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var cleared cartResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cleared))
	require.Empty(t, cleared.Data.Items)
	require.Equal(t, pricing.Money(0), cleared.Data.Subtotal)
}

func TestGetUnknownCart(t *testing.T) {
	r, _ := newRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/carts/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
