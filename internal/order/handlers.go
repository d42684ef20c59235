package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/keepsakehq/backend-souvenir/internal/cart"
	"github.com/keepsakehq/backend-souvenir/internal/common"
	"github.com/keepsakehq/backend-souvenir/internal/shipping"
	"github.com/keepsakehq/backend-souvenir/internal/store"
)

// Handler exposes the public checkout and order lookup endpoints.
type Handler struct {
	Service  *Service
	Validate *validator.Validate
}

type checkoutRequest struct {
	CartID       string `json:"cartId" validate:"required,uuid"`
	CustomerName string `json:"customerName" validate:"required,min=2,max=120"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,min=7,max=20"`
	Address      string `json:"address" validate:"required,min=5,max=500"`
	LocationID   string `json:"locationId" validate:"omitempty,uuid"`
}

// Checkout handles POST /checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON payload", nil)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	placed, err := h.Service.Checkout(r.Context(), CheckoutInput{
		CartID:       req.CartID,
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		LocationID:   req.LocationID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, placed)
}

// Lookup handles GET /orders/{reference}.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Service.Lookup(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, detail)
}

func writeError(w http.ResponseWriter, err error) {
	if appErr, ok := common.AsAppError(err); ok {
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	switch {
	case errors.Is(err, cart.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "CART_NOT_FOUND", "cart not found", nil)
	case errors.Is(err, store.ErrNotFound), errors.Is(err, shipping.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
	}
}
