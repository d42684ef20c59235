package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/keepsakehq/backend-souvenir/internal/common"
	"github.com/keepsakehq/backend-souvenir/internal/obs"
	"github.com/keepsakehq/backend-souvenir/internal/pricing"
	"github.com/keepsakehq/backend-souvenir/internal/store"
)

func countCartOp(op string) {
	if obs.CartOpsTotal != nil {
		obs.CartOpsTotal.WithLabelValues(op).Inc()
	}
}

// Product carries the catalog fields the cart needs when adding a line.
type Product struct {
	Title          string
	Slug           string
	Price          pricing.Money
	Stock          int
	PrintAvailable bool
	PrintSurcharge pricing.Money
}

// ProductSource resolves catalog data for add-to-cart requests.
type ProductSource interface {
	ProductForCart(ctx context.Context, productID string) (Product, error)
}

// Handler wires the cart store to HTTP.
type Handler struct {
	Store    *Store
	Products ProductSource
}

// Create allocates a new empty cart session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart store not configured", nil)
		return
	}
	id, err := h.Store.Create(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	countCartOp("create")
	common.JSON(w, http.StatusCreated, map[string]any{"data": map[string]any{"cartId": id}})
}

// Get returns the cart aggregate with derived totals.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart store not configured", nil)
		return
	}
	agg, err := h.Store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": agg})
}

// AddItem adds or merges a cart line. The catalog supplies price, stock
// ceiling, and print surcharge; the client only names the configuration.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil || h.Products == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart handler not configured", nil)
		return
	}
	cartID := chi.URLParam(r, "id")
	var payload struct {
		ProductID   string `json:"productId"`
		Qty         int    `json:"qty"`
		CustomPrint bool   `json:"customPrint"`
		PrintText   string `json:"printText"`
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
	if payload.Qty <= 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "qty must be positive", nil)
		return
	}
	product, err := h.Products.ProductForCart(r.Context(), payload.ProductID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if product.Stock <= 0 {
		common.JSONError(w, http.StatusConflict, "OUT_OF_STOCK", "product is out of stock", nil)
		return
	}
	if payload.CustomPrint && !product.PrintAvailable {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "custom printing is not available for this product", nil)
		return
	}
	line := NewLine{
		ProductID:   payload.ProductID,
		Title:       product.Title,
		Slug:        product.Slug,
		UnitPrice:   product.Price,
		Qty:         payload.Qty,
		MaxQty:      product.Stock,
		CustomPrint: payload.CustomPrint,
	}
	if payload.CustomPrint {
		line.PrintText = strings.TrimSpace(payload.PrintText)
		line.PrintSurcharge = product.PrintSurcharge
	}
	agg, err := h.Store.Mutate(r.Context(), cartID, func(a *Aggregate) { a.Add(line) })
	if err != nil {
		h.writeError(w, err)
		return
	}
	countCartOp("add")
	common.JSON(w, http.StatusOK, map[string]any{"data": agg})
}

// UpdateItem sets the quantity for a cart line.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart store not configured", nil)
		return
	}
	cartID := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemId")
	var payload struct {
		Qty int `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	agg, err := h.Store.Mutate(r.Context(), cartID, func(a *Aggregate) { a.UpdateQty(itemID, payload.Qty) })
	if err != nil {
		h.writeError(w, err)
		return
	}
	countCartOp("update")
	common.JSON(w, http.StatusOK, map[string]any{"data": agg})
}

// RemoveItem deletes a cart line.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart store not configured", nil)
		return
	}
	cartID := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemId")
	agg, err := h.Store.Mutate(r.Context(), cartID, func(a *Aggregate) { a.Remove(itemID) })
	if err != nil {
		h.writeError(w, err)
		return
	}
	countCartOp("remove")
	common.JSON(w, http.StatusOK, map[string]any{"data": agg})
}

// Clear empties the cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart store not configured", nil)
		return
	}
	agg, err := h.Store.Mutate(r.Context(), chi.URLParam(r, "id"), func(a *Aggregate) { a.Clear() })
	if err != nil {
		h.writeError(w, err)
		return
	}
	countCartOp("clear")
	common.JSON(w, http.StatusOK, map[string]any{"data": agg})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unknown error", nil)
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, store.ErrNotFound):
		// the catalog lookup reports unknown or inactive products this way
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
	default:
		appErr, ok := common.AsAppError(err)
		if !ok {
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
			return
		}
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusBadRequest
		}
		common.JSONError(w, status, appErr.Code, appErr.Message, appErr.Details)
	}
}
