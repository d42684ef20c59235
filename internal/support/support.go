// Package support serves the storefront help surfaces: the FAQ list and the
// contact form, plus their back-office management endpoints.
package support

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/keepsakehq/backend-souvenir/internal/common"
	"github.com/keepsakehq/backend-souvenir/internal/obs"
	"github.com/keepsakehq/backend-souvenir/internal/store"
	"github.com/keepsakehq/backend-souvenir/internal/tasks"
)

type provider interface {
	ListFAQs(ctx context.Context) ([]store.FAQ, error)
	CreateFAQ(ctx context.Context, question, answer string, position int) (store.FAQ, error)
	UpdateFAQ(ctx context.Context, id, question, answer string, position int) (store.FAQ, error)
	DeleteFAQ(ctx context.Context, id string) error
	InsertContactMessage(ctx context.Context, name, email, subject, message string) (store.ContactMessage, error)
	ListContactMessages(ctx context.Context, limit, offset int) ([]store.ContactMessage, error)
	ResolveContactMessage(ctx context.Context, id string) (store.ContactMessage, error)
}

// Handler exposes the public help endpoints.
type Handler struct {
	Provider provider
	Enqueuer tasks.Enqueuer
	Validate *validator.Validate
	Log      zerolog.Logger
}

// FAQView is the public FAQ payload.
type FAQView struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ListFAQs handles GET /faqs.
func (h *Handler) ListFAQs(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.Provider.ListFAQs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]FAQView, 0, len(faqs))
	for _, f := range faqs {
		items = append(items, FAQView{ID: f.ID, Question: f.Question, Answer: f.Answer})
	}
	common.JSON(w, http.StatusOK, map[string]any{"items": items})
}

type contactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,min=10,max=4000"`
}

// SubmitContact handles POST /contact.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON payload", nil)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		countContact("rejected")
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	msg, err := h.Provider.InsertContactMessage(r.Context(), req.Name, req.Email, req.Subject, req.Message)
	if err != nil {
		countContact("error")
		writeError(w, err)
		return
	}
	countContact("accepted")

	if h.Enqueuer != nil {
		task, err := tasks.NewContactReceivedTask(tasks.ContactReceivedPayload{MessageID: msg.ID, Email: msg.Email})
		if err == nil {
			if _, err := h.Enqueuer.Enqueue(task); err != nil {
				h.Log.Warn().Err(err).Str("message_id", msg.ID).Msg("enqueue contact task failed")
			}
		}
	}

	common.JSON(w, http.StatusCreated, map[string]any{"id": msg.ID, "status": msg.Status})
}

func countContact(result string) {
	if obs.ContactMessagesTotal != nil {
		obs.ContactMessagesTotal.WithLabelValues(result).Inc()
	}
}

// AdminHandler exposes the back-office help endpoints.
type AdminHandler struct {
	Provider provider
	Validate *validator.Validate
}

type faqRequest struct {
	Question string `json:"question" validate:"required,min=5"`
	Answer   string `json:"answer" validate:"required,min=2"`
	Position int    `json:"position" validate:"gte=0"`
}

// CreateFAQ handles POST /admin/faqs.
func (h *AdminHandler) CreateFAQ(w http.ResponseWriter, r *http.Request) {
	var req faqRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON payload", nil)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	faq, err := h.Provider.CreateFAQ(r.Context(), req.Question, req.Answer, req.Position)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, faq)
}

// UpdateFAQ handles PUT /admin/faqs/{id}.
func (h *AdminHandler) UpdateFAQ(w http.ResponseWriter, r *http.Request) {
	var req faqRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON payload", nil)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	faq, err := h.Provider.UpdateFAQ(r.Context(), chi.URLParam(r, "id"), req.Question, req.Answer, req.Position)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, faq)
}

// DeleteFAQ handles DELETE /admin/faqs/{id}.
func (h *AdminHandler) DeleteFAQ(w http.ResponseWriter, r *http.Request) {
	if err := h.Provider.DeleteFAQ(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListContactMessages handles GET /admin/contact-messages.
func (h *AdminHandler) ListContactMessages(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 20)
	messages, err := h.Provider.ListContactMessages(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"items": messages})
}

// ResolveContactMessage handles POST /admin/contact-messages/{id}/resolve.
func (h *AdminHandler) ResolveContactMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := h.Provider.ResolveContactMessage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, msg)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}
