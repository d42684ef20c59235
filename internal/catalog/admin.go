package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/keepsakehq/backend-souvenir/internal/common"
	"github.com/keepsakehq/backend-souvenir/internal/store"
)

// AdminHandler exposes the back-office catalog endpoints.
type AdminHandler struct {
	Store    *store.Store
	Cache    *Cache
	Validate *validator.Validate
}

type productRequest struct {
	Title          string  `json:"title" validate:"required,min=2"`
	Slug           string  `json:"slug" validate:"required,min=2"`
	Description    string  `json:"description"`
	CategoryID     *string `json:"categoryId" validate:"omitempty,uuid"`
	Price          int64   `json:"price" validate:"gte=0"`
	Stock          int     `json:"stock" validate:"gte=0"`
	PrintAvailable bool    `json:"printAvailable"`
	PrintSurcharge int64   `json:"printSurcharge" validate:"gte=0"`
	ImageURL       *string `json:"imageUrl"`
	Active         bool    `json:"active"`
}

func (h *AdminHandler) decodeProduct(r *http.Request) (store.ProductInput, error) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return store.ProductInput{}, badRequest("body", "invalid JSON payload")
	}
	if err := h.Validate.Struct(req); err != nil {
		return store.ProductInput{}, badRequest("body", err.Error())
	}
	return store.ProductInput{
		Title:          req.Title,
		Slug:           req.Slug,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		Price:          req.Price,
		Stock:          req.Stock,
		PrintAvailable: req.PrintAvailable,
		PrintSurcharge: req.PrintSurcharge,
		ImageURL:       req.ImageURL,
		Active:         req.Active,
	}, nil
}

func (h *AdminHandler) invalidateProduct(r *http.Request, slug string) {
	h.Cache.Invalidate(r.Context(), "souvenir:catalog:product:"+slug, "souvenir:catalog:categories")
}

// CreateProduct handles POST /admin/products.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	input, err := h.decodeProduct(r)
	if err != nil {
		respondError(w, err)
		return
	}
	product, err := h.Store.CreateProduct(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}
	h.invalidateProduct(r, product.Slug)
	common.JSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /admin/products/{id}.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	input, err := h.decodeProduct(r)
	if err != nil {
		respondError(w, err)
		return
	}
	product, err := h.Store.UpdateProduct(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		respondError(w, err)
		return
	}
	h.invalidateProduct(r, product.Slug)
	common.JSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /admin/products/{id}.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, err := h.Store.GetProductByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Store.DeleteProduct(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	h.invalidateProduct(r, product.Slug)
	w.WriteHeader(http.StatusNoContent)
}

type tierRequest struct {
	MinQty int    `json:"minQuantity" validate:"gte=1"`
	Kind   string `json:"kind" validate:"required,oneof=percent amount"`
	Value  int64  `json:"value" validate:"gte=0"`
}

type tiersRequest struct {
	Tiers []tierRequest `json:"tiers" validate:"dive"`
}

// ReplaceTiers handles PUT /admin/products/{id}/tiers.
func (h *AdminHandler) ReplaceTiers(w http.ResponseWriter, r *http.Request) {
	var req tiersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, badRequest("body", "invalid JSON payload"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		respondError(w, badRequest("tiers", err.Error()))
		return
	}
	id := chi.URLParam(r, "id")
	product, err := h.Store.GetProductByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	tiers := make([]store.TierInput, 0, len(req.Tiers))
	for _, t := range req.Tiers {
		tiers = append(tiers, store.TierInput{MinQty: t.MinQty, Kind: t.Kind, Value: t.Value})
	}
	if err := h.Store.ReplaceTiers(r.Context(), id, tiers); err != nil {
		respondError(w, err)
		return
	}
	h.invalidateProduct(r, product.Slug)
	w.WriteHeader(http.StatusNoContent)
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,min=2"`
	Slug string `json:"slug" validate:"required,min=2"`
}

// CreateCategory handles POST /admin/categories.
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, badRequest("body", "invalid JSON payload"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		respondError(w, badRequest("body", err.Error()))
		return
	}
	category, err := h.Store.CreateCategory(r.Context(), req.Name, req.Slug)
	if err != nil {
		respondError(w, err)
		return
	}
	h.Cache.Invalidate(r.Context(), "souvenir:catalog:categories")
	common.JSON(w, http.StatusCreated, category)
}

// UpdateCategory handles PUT /admin/categories/{id}.
func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, badRequest("body", "invalid JSON payload"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		respondError(w, badRequest("body", err.Error()))
		return
	}
	category, err := h.Store.UpdateCategory(r.Context(), chi.URLParam(r, "id"), req.Name, req.Slug)
	if err != nil {
		respondError(w, err)
		return
	}
	h.Cache.Invalidate(r.Context(), "souvenir:catalog:categories")
	common.JSON(w, http.StatusOK, category)
}

// DeleteCategory handles DELETE /admin/categories/{id}.
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	h.Cache.Invalidate(r.Context(), "souvenir:catalog:categories")
	w.WriteHeader(http.StatusNoContent)
}
