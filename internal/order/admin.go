package order

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keepsakehq/backend-souvenir/internal/common"
	"github.com/keepsakehq/backend-souvenir/internal/store"
)

// AdminHandler exposes the back-office order endpoints.
type AdminHandler struct {
	Store *store.Store
}

// List handles GET /admin/orders.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 20)
	filter := store.OrderFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}
	if filter.Status != "" && !store.ValidOrderStatus(filter.Status) {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown order status", nil)
		return
	}
	orders, err := h.Store.ListOrders(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	total, err := h.Store.CountOrders(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"items": orders,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: total,
		},
	})
}

// Get handles GET /admin/orders/{id}.
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.Store.GetOrderByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := h.Store.ListOrderItems(r.Context(), order.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"order": order, "items": items})
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /admin/orders/{id}/status.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON payload", nil)
		return
	}
	if !store.ValidOrderStatus(req.Status) {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown order status", nil)
		return
	}
	order, err := h.Store.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, order)
}
