package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/require"

	"github.com/keepsakehq/backend-souvenir/internal/common"
	"github.com/keepsakehq/backend-souvenir/internal/store"
)

type fakeAdmins struct {
	admin store.Admin
}

func (f *fakeAdmins) GetAdminByEmail(_ context.Context, email string) (store.Admin, error) {
	if email != f.admin.Email {
		return store.Admin{}, store.ErrNotFound
	}
	return f.admin, nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	hash, err := argon2id.CreateHash("correct-horse-battery", argon2id.DefaultParams)
	require.NoError(t, err)
	svc, err := NewService(Config{
		Admins: &fakeAdmins{admin: store.Admin{
			ID:           "admin-1",
			Email:        "ops@example.com",
			Name:         "Ops",
			PasswordHash: hash,
		}},
		Secret:         "test-secret-test-secret",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)
	return svc
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	session, err := svc.Login(ctx, "ops@example.com", "correct-horse-battery")
	require.NoError(t, err)
	require.Equal(t, "admin-1", session.AdminID)
	require.NotEmpty(t, session.Token)

	adminID, err := svc.ParseAccessToken(session.Token)
	require.NoError(t, err)
	require.Equal(t, "admin-1", adminID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Login(context.Background(), "ops@example.com", "wrong-password-here")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Login(context.Background(), "ghost@example.com", "whatever-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	svc := newTestService(t)
	session, err := svc.Login(context.Background(), "ops@example.com", "correct-horse-battery")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ParseAccessToken(session.Token)
	require.Error(t, err)
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.ParseAccessToken("not.a.token")
	require.Error(t, err)
	_, err = svc.ParseAccessToken("")
	require.Error(t, err)
}

func TestRequireAuthMiddleware(t *testing.T) {
	svc := newTestService(t)
	session, err := svc.Login(context.Background(), "ops@example.com", "correct-horse-battery")
	require.NoError(t, err)

	var gotAdminID string
	handler := Middleware{Service: svc}.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAdminID, _ = common.AdminID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "admin-1", gotAdminID)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/orders", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
