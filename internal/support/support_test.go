package support_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/keepsakehq/backend-souvenir/internal/store"
	"github.com/keepsakehq/backend-souvenir/internal/support"
	"github.com/keepsakehq/backend-souvenir/internal/tasks"
)

type fakeProvider struct {
	faqs     []store.FAQ
	messages []store.ContactMessage
}

func (f *fakeProvider) ListFAQs(context.Context) ([]store.FAQ, error) { return f.faqs, nil }

func (f *fakeProvider) CreateFAQ(_ context.Context, q, a string, pos int) (store.FAQ, error) {
	faq := store.FAQ{ID: "f1", Question: q, Answer: a, Position: pos}
	f.faqs = append(f.faqs, faq)
	return faq, nil
}

func (f *fakeProvider) UpdateFAQ(_ context.Context, id, q, a string, pos int) (store.FAQ, error) {
	for i := range f.faqs {
		if f.faqs[i].ID == id {
			f.faqs[i] = store.FAQ{ID: id, Question: q, Answer: a, Position: pos}
			return f.faqs[i], nil
		}
	}
	return store.FAQ{}, store.ErrNotFound
}

func (f *fakeProvider) DeleteFAQ(_ context.Context, id string) error {
	for i := range f.faqs {
		if f.faqs[i].ID == id {
			f.faqs = append(f.faqs[:i], f.faqs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeProvider) InsertContactMessage(_ context.Context, name, email, subject, message string) (store.ContactMessage, error) {
	msg := store.ContactMessage{ID: "m1", Name: name, Email: email, Subject: subject, Message: message, Status: store.ContactStatusNew}
	f.messages = append(f.messages, msg)
	return msg, nil
}

func (f *fakeProvider) ListContactMessages(context.Context, int, int) ([]store.ContactMessage, error) {
	return f.messages, nil
}

func (f *fakeProvider) ResolveContactMessage(_ context.Context, id string) (store.ContactMessage, error) {
	for i := range f.messages {
		if f.messages[i].ID == id {
			f.messages[i].Status = store.ContactStatusResolved
			return f.messages[i], nil
		}
	}
	return store.ContactMessage{}, store.ErrNotFound
}

type fakeEnqueuer struct {
	enqueued []*asynq.Task
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.enqueued = append(f.enqueued, task)
	return &asynq.TaskInfo{}, nil
}

func TestSubmitContactEnqueuesTask(t *testing.T) {
	provider := &fakeProvider{}
	enqueuer := &fakeEnqueuer{}
	h := &support.Handler{
		Provider: provider,
		Enqueuer: enqueuer,
		Validate: validator.New(),
		Log:      zerolog.Nop(),
	}

	body := `{"name":"Ada","email":"ada@example.com","message":"Do you ship custom mugs to Abuja?"}`
	rec := httptest.NewRecorder()
	h.SubmitContact(rec, httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, provider.messages, 1)
	require.Len(t, enqueuer.enqueued, 1)
	require.Equal(t, tasks.TypeContactReceived, enqueuer.enqueued[0].Type())
}

func TestSubmitContactRejectsShortMessage(t *testing.T) {
	h := &support.Handler{Provider: &fakeProvider{}, Validate: validator.New(), Log: zerolog.Nop()}

	body := `{"name":"Ada","email":"ada@example.com","message":"hi"}`
	rec := httptest.NewRecorder()
	h.SubmitContact(rec, httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFAQAdminFlow(t *testing.T) {
	provider := &fakeProvider{}
	admin := &support.AdminHandler{Provider: provider, Validate: validator.New()}
	public := &support.Handler{Provider: provider, Validate: validator.New(), Log: zerolog.Nop()}

	r := chi.NewRouter()
	r.Post("/admin/faqs", admin.CreateFAQ)
	r.Put("/admin/faqs/{id}", admin.UpdateFAQ)
	r.Delete("/admin/faqs/{id}", admin.DeleteFAQ)
	r.Get("/faqs", public.ListFAQs)

	body := `{"question":"How long does printing take?","answer":"Three working days.","position":1}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/faqs", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/faqs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Items []support.FAQView `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/faqs/f1", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/faqs/f1", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResolveContactMessage(t *testing.T) {
	provider := &fakeProvider{messages: []store.ContactMessage{{ID: "m1", Status: store.ContactStatusNew}}}
	admin := &support.AdminHandler{Provider: provider, Validate: validator.New()}

	r := chi.NewRouter()
	r.Post("/admin/contact-messages/{id}/resolve", admin.ResolveContactMessage)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/contact-messages/m1/resolve", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var msg store.ContactMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	require.Equal(t, store.ContactStatusResolved, msg.Status)
}
