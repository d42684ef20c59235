package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keepsakehq/backend-souvenir/internal/common"
	"github.com/keepsakehq/backend-souvenir/internal/store"
)

// Handler exposes the public storefront catalog endpoints.
type Handler struct {
	Service *Service
}

// ListProducts handles GET /products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params, err := h.Service.ParseListParams(r.URL.Query())
	if err != nil {
		respondError(w, err)
		return
	}
	result, err := h.Service.ListProducts(r.Context(), params)
	if err != nil {
		respondError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"items": result.Items,
		"pagination": common.Pagination{
			Page:       result.Page,
			PerPage:    result.Limit,
			TotalItems: result.Total,
		},
	})
}

// GetProduct handles GET /products/{slug}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Service.GetProduct(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, detail)
}

// QuoteProduct handles GET /products/{slug}/quote.
func (h *Handler) QuoteProduct(w http.ResponseWriter, r *http.Request) {
	qty := common.AtoiDefault(r.URL.Query().Get("quantity"), 1)
	quote, err := h.Service.QuoteProduct(r.Context(), chi.URLParam(r, "slug"), qty)
	if err != nil {
		respondError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, quote)
}

// ListCategories handles GET /categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.ListCategories(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"items": categories})
}

func respondError(w http.ResponseWriter, err error) {
	if appErr, ok := common.AsAppError(err); ok {
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}
