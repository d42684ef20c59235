// Package printer manages the partner print shops that fulfil custom print
// jobs.
package printer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/keepsakehq/backend-souvenir/internal/common"
	"github.com/keepsakehq/backend-souvenir/internal/store"
)

type provider interface {
	ListPrinters(ctx context.Context, activeOnly bool) ([]store.Printer, error)
	CreatePrinter(ctx context.Context, name, contact string, surcharge int64, active bool) (store.Printer, error)
	UpdatePrinter(ctx context.Context, id, name, contact string, surcharge int64, active bool) (store.Printer, error)
	DeletePrinter(ctx context.Context, id string) error
}

// View is the public printer payload. Contact details stay back-office only.
type View struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Surcharge int64  `json:"surcharge"`
}

// Handler exposes the public printer listing.
type Handler struct {
	Provider provider
}

// List handles GET /printers.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	printers, err := h.Provider.ListPrinters(r.Context(), true)
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]View, 0, len(printers))
	for _, p := range printers {
		items = append(items, View{ID: p.ID, Name: p.Name, Surcharge: p.Surcharge})
	}
	common.JSON(w, http.StatusOK, map[string]any{"items": items})
}

// AdminHandler exposes the back-office printer endpoints.
type AdminHandler struct {
	Provider provider
	Validate *validator.Validate
}

type printerRequest struct {
	Name      string `json:"name" validate:"required,min=2"`
	Contact   string `json:"contact"`
	Surcharge int64  `json:"surcharge" validate:"gte=0"`
	Active    bool   `json:"active"`
}

// ListAll handles GET /admin/printers.
func (h *AdminHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	printers, err := h.Provider.ListPrinters(r.Context(), false)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"items": printers})
}

// Create handles POST /admin/printers.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req printerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON payload", nil)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	p, err := h.Provider.CreatePrinter(r.Context(), req.Name, req.Contact, req.Surcharge, req.Active)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, p)
}

// Update handles PUT /admin/printers/{id}.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req printerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON payload", nil)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	p, err := h.Provider.UpdatePrinter(r.Context(), chi.URLParam(r, "id"), req.Name, req.Contact, req.Surcharge, req.Active)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, p)
}

// Delete handles DELETE /admin/printers/{id}.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Provider.DeletePrinter(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}
