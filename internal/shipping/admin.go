package shipping

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/keepsakehq/backend-souvenir/internal/common"
	"github.com/keepsakehq/backend-souvenir/internal/store"
)

// AdminHandler manages the delivery directory: states and the locations
// beneath them, each with its flat shipping fee.
type AdminHandler struct {
	Store    *store.Store
	Validate *validator.Validate
}

type stateRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}

// CreateState handles POST /admin/states.
func (h *AdminHandler) CreateState(w http.ResponseWriter, r *http.Request) {
	var req stateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", nil)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid state payload", nil)
		return
	}
	st, err := h.Store.CreateState(r.Context(), req.Name)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to create state", nil)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": st})
}

// DeleteState handles DELETE /admin/states/{id}. Locations under the state are
// removed with it.
func (h *AdminHandler) DeleteState(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteState(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type locationRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
	Fee  *int64 `json:"fee" validate:"omitempty,min=0"`
}

// CreateLocation handles POST /admin/states/{id}/locations.
func (h *AdminHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", nil)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid location payload", nil)
		return
	}
	loc, err := h.Store.CreateLocation(r.Context(), chi.URLParam(r, "id"), req.Name, req.Fee)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": loc})
}

// UpdateLocation handles PUT /admin/locations/{id}.
func (h *AdminHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", nil)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid location payload", nil)
		return
	}
	loc, err := h.Store.UpdateLocation(r.Context(), chi.URLParam(r, "id"), req.Name, req.Fee)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": loc})
}

// DeleteLocation handles DELETE /admin/locations/{id}.
func (h *AdminHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteLocation(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "operation failed", nil)
}
