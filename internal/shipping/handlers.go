package shipping

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/keepsakehq/backend-souvenir/internal/common"
	"github.com/keepsakehq/backend-souvenir/internal/pricing"
)

// Handler exposes the delivery directory and fee quotes over HTTP.
type Handler struct {
	Svc *Service
}

// States lists delivery states.
func (h *Handler) States(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "shipping service not configured", nil)
		return
	}
	states, err := h.Svc.States(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load states", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": states})
}

// Locations lists the locations within a state.
func (h *Handler) Locations(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "shipping service not configured", nil)
		return
	}
	locations, err := h.Svc.Locations(r.Context(), chi.URLParam(r, "stateId"))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load locations", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": locations})
}

// Quote resolves the shipping fee for a location and cart subtotal.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "shipping service not configured", nil)
		return
	}
	var payload struct {
		LocationID string        `json:"locationId"`
		Subtotal   pricing.Money `json:"subtotal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	payload.LocationID = strings.TrimSpace(payload.LocationID)
	if payload.LocationID == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "locationId is required", nil)
		return
	}
	quote, err := h.Svc.QuoteFee(r.Context(), payload.LocationID, payload.Subtotal)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "location not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to resolve fee", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": quote})
}
