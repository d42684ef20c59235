// Package carousel manages the homepage hero slides.
package carousel

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
	ListSlides(ctx context.Context, activeOnly bool) ([]store.Slide, error)
	CreateSlide(ctx context.Context, in store.SlideInput) (store.Slide, error)
	UpdateSlide(ctx context.Context, id string, in store.SlideInput) (store.Slide, error)
	DeleteSlide(ctx context.Context, id string) error
}

// SlideView is the public slide payload.
type SlideView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	ImageURL string `json:"imageUrl"`
	LinkURL  string `json:"linkUrl"`
}

// Handler exposes the public carousel endpoint.
type Handler struct {
	Provider provider
}

// ListSlides handles GET /carousel.
func (h *Handler) ListSlides(w http.ResponseWriter, r *http.Request) {
	slides, err := h.Provider.ListSlides(r.Context(), true)
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]SlideView, 0, len(slides))
	for _, s := range slides {
		items = append(items, SlideView{
			ID:       s.ID,
			Title:    s.Title,
			Subtitle: s.Subtitle,
			ImageURL: s.ImageURL,
			LinkURL:  s.LinkURL,
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{"items": items})
}

// AdminHandler exposes the back-office carousel endpoints.
type AdminHandler struct {
	Provider provider
	Validate *validator.Validate
}

type slideRequest struct {
	Title    string `json:"title" validate:"required,min=2"`
	Subtitle string `json:"subtitle"`
	ImageURL string `json:"imageUrl" validate:"required,url"`
	LinkURL  string `json:"linkUrl" validate:"omitempty,url"`
	Position int    `json:"position" validate:"gte=0"`
	Active   bool   `json:"active"`
}

func (h *AdminHandler) decode(r *http.Request) (store.SlideInput, error) {
	var req slideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return store.SlideInput{}, errors.New("invalid JSON payload")
	}
	if err := h.Validate.Struct(req); err != nil {
		return store.SlideInput{}, err
	}
	return store.SlideInput{
		Title:    req.Title,
		Subtitle: req.Subtitle,
		ImageURL: req.ImageURL,
		LinkURL:  req.LinkURL,
		Position: req.Position,
		Active:   req.Active,
	}, nil
}

// ListAll handles GET /admin/carousel, including inactive slides.
func (h *AdminHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	slides, err := h.Provider.ListSlides(r.Context(), false)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"items": slides})
}

// CreateSlide handles POST /admin/carousel.
func (h *AdminHandler) CreateSlide(w http.ResponseWriter, r *http.Request) {
	input, err := h.decode(r)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	slide, err := h.Provider.CreateSlide(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, slide)
}

// UpdateSlide handles PUT /admin/carousel/{id}.
func (h *AdminHandler) UpdateSlide(w http.ResponseWriter, r *http.Request) {
	input, err := h.decode(r)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	slide, err := h.Provider.UpdateSlide(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, slide)
}

// DeleteSlide handles DELETE /admin/carousel/{id}.
func (h *AdminHandler) DeleteSlide(w http.ResponseWriter, r *http.Request) {
	if err := h.Provider.DeleteSlide(r.Context(), chi.URLParam(r, "id")); err != nil {
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
