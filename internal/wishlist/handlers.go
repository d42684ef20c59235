package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/keepsakehq/backend-souvenir/internal/common"
	"github.com/keepsakehq/backend-souvenir/internal/pricing"
	"github.com/keepsakehq/backend-souvenir/internal/store"
)

// ProductInfo carries the catalog fields stored on a wishlist item.
type ProductInfo struct {
	Title string
	Slug  string
	Price pricing.Money
}

// ProductSource resolves catalog data for wishlist additions.
type ProductSource interface {
	ProductForWishlist(ctx context.Context, productID string) (ProductInfo, error)
}

// Handler wires the wishlist store to HTTP.
type Handler struct {
	Store    *Store
	Products ProductSource
}

// Get returns the wishlist for a session.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "wishlist store not configured", nil)
		return
	}
	agg, err := h.Store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": agg})
}

// AddItem saves a product; duplicates are silently ignored.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil || h.Products == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "wishlist handler not configured", nil)
		return
	}
	var payload struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	payload.ProductID = strings.TrimSpace(payload.ProductID)
	if payload.ProductID == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "productId is required", nil)
		return
	}
	info, err := h.Products.ProductForWishlist(r.Context(), payload.ProductID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, store.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
		return
	}
	agg, err := h.Store.Mutate(r.Context(), chi.URLParam(r, "id"), func(a *Aggregate) {
		a.Add(Item{ProductID: payload.ProductID, Title: info.Title, Slug: info.Slug, Price: info.Price})
	})
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": agg})
}

// RemoveItem drops a saved product.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "wishlist store not configured", nil)
		return
	}
	productID := chi.URLParam(r, "productId")
	agg, err := h.Store.Mutate(r.Context(), chi.URLParam(r, "id"), func(a *Aggregate) { a.Remove(productID) })
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": agg})
}

// Clear empties the wishlist.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "wishlist store not configured", nil)
		return
	}
	agg, err := h.Store.Mutate(r.Context(), chi.URLParam(r, "id"), func(a *Aggregate) { a.Clear() })
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": agg})
}
