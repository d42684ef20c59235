// Package auth authenticates back-office admins. The storefront itself is
// anonymous; only the admin surface sits behind bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/keepsakehq/backend-souvenir/internal/common"
	"github.com/keepsakehq/backend-souvenir/internal/store"
)

const defaultAccessTTL = 12 * time.Hour

// ErrInvalidCredentials is returned for unknown emails and wrong passwords
// alike.
var ErrInvalidCredentials = &common.AppError{
	Code:       "INVALID_CREDENTIALS",
	Message:    "invalid email or password",
	HTTPStatus: http.StatusUnauthorized,
}

type adminSource interface {
	GetAdminByEmail(ctx context.Context, email string) (store.Admin, error)
}

// Service signs and validates admin access tokens.
type Service struct {
	admins    adminSource
	secret    []byte
	accessTTL time.Duration
	signer    jwa.SignatureAlgorithm
	issuer    string
	now       func() time.Time
}

// Config configures the auth service.
type Config struct {
	Admins         adminSource
	Secret         string
	AccessTokenTTL time.Duration
	Issuer         string
}

// NewService constructs a Service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Admins == nil {
		return nil, errors.New("auth: admin source is required")
	}
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("auth: secret is required")
	}
	ttl := cfg.AccessTokenTTL
	if ttl <= 0 {
		ttl = defaultAccessTTL
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "backend-souvenir"
	}
	return &Service{
		admins:    cfg.Admins,
		secret:    []byte(cfg.Secret),
		accessTTL: ttl,
		signer:    jwa.HS256,
		issuer:    issuer,
		now:       time.Now,
	}, nil
}

// Session is the payload returned on a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	AdminID   string    `json:"adminId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
}

// Login verifies the credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	admin, err := s.admins.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("load admin: %w", err)
	}
	ok, err := argon2id.ComparePasswordAndHash(password, admin.PasswordHash)
	if err != nil {
		return Session{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return Session{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.signAccessToken(admin.ID)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{
		Token:     token,
		ExpiresAt: expiresAt,
		AdminID:   admin.ID,
		Name:      admin.Name,
		Email:     admin.Email,
	}, nil
}

func (s *Service) signAccessToken(adminID string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTTL)
	token, err := jwt.NewBuilder().
		Subject(adminID).
		Issuer(s.issuer).
		IssuedAt(now).
		Expiration(expiresAt).
		Build()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(s.signer, s.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), expiresAt, nil
}

// ParseAccessToken validates an access token and returns the admin id.
func (s *Service) ParseAccessToken(token string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", unauthorized(errors.New("auth: empty token"))
	}
	if err := verifyAlgorithm(trimmed, s.signer); err != nil {
		return "", unauthorized(err)
	}
	parsed, err := jwt.ParseString(trimmed,
		jwt.WithKey(s.signer, s.secret),
		jwt.WithIssuer(s.issuer),
		jwt.WithClock(jwt.ClockFunc(s.now)),
	)
	if err != nil {
		return "", unauthorized(err)
	}
	if parsed.Subject() == "" {
		return "", unauthorized(errors.New("auth: token missing subject"))
	}
	return parsed.Subject(), nil
}

// verifyAlgorithm rejects tokens whose header algorithm differs from the one
// this service signs with, including alg none.
func verifyAlgorithm(token string, want jwa.SignatureAlgorithm) error {
	message, err := jws.ParseString(token)
	if err != nil {
		return err
	}
	signatures := message.Signatures()
	if len(signatures) == 0 {
		return errors.New("auth: token contains no signatures")
	}
	for _, sig := range signatures {
		headers := sig.ProtectedHeaders()
		if headers == nil {
			return errors.New("auth: token missing protected headers")
		}
		alg := headers.Algorithm()
		if alg == jwa.NoSignature || alg != want {
			return fmt.Errorf("auth: unexpected token algorithm %s", alg)
		}
	}
	return nil
}

func unauthorized(err error) error {
	return common.NewAppError("UNAUTHORIZED", "missing or invalid token", http.StatusUnauthorized, err)
}
