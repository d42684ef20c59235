// Package settings stores small key/value store configuration, such as the
// free shipping threshold, with a short-lived Redis cache in front of
// Postgres.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/keepsakehq/backend-souvenir/internal/common"
	"github.com/keepsakehq/backend-souvenir/internal/pricing"
	"github.com/keepsakehq/backend-souvenir/internal/store"
)

type provider interface {
	GetSetting(ctx context.Context, key string) (string, error)
	ListSettings(ctx context.Context) (map[string]string, error)
	UpsertSetting(ctx context.Context, key, value string) error
}

// Service reads and caches store settings.
type Service struct {
	Provider provider
	Cache    *redis.Client
	TTL      time.Duration

	// DefaultFreeShipping applies when the threshold setting is absent or
	// malformed, in minor units.
	DefaultFreeShipping pricing.Money
}

const cachePrefix = "souvenir:settings:"

// Get returns one setting value, consulting the cache first.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	if s.Cache != nil {
		if v, err := s.Cache.Get(ctx, cachePrefix+key).Result(); err == nil {
			return v, nil
		}
	}
	v, err := s.Provider.GetSetting(ctx, key)
	if err != nil {
		return "", err
	}
	if s.Cache != nil {
		_ = s.Cache.Set(ctx, cachePrefix+key, v, s.TTL).Err()
	}
	return v, nil
}

// Set writes a setting and drops its cached copy.
func (s *Service) Set(ctx context.Context, key, value string) error {
	if err := s.Provider.UpsertSetting(ctx, key, value); err != nil {
		return err
	}
	if s.Cache != nil {
		_ = s.Cache.Del(ctx, cachePrefix+key).Err()
	}
	return nil
}

// FreeShippingThreshold returns the subtotal at which delivery becomes free.
// Missing or malformed values fall back to the configured default.
func (s *Service) FreeShippingThreshold(ctx context.Context) (pricing.Money, error) {
	raw, err := s.Get(ctx, store.SettingFreeShippingThreshold)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s.DefaultFreeShipping, nil
		}
		return s.DefaultFreeShipping, err
	}
	threshold, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || threshold < 0 {
		return s.DefaultFreeShipping, nil
	}
	return threshold, nil
}

// AdminHandler exposes the back-office settings endpoints.
type AdminHandler struct {
	Service *Service
}

// List handles GET /admin/settings.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	values, err := h.Service.Provider.ListSettings(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"settings": values})
}

type updateRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Update handles PUT /admin/settings.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "key and value are required", nil)
		return
	}
	if req.Key == store.SettingFreeShippingThreshold {
		if v, err := strconv.ParseInt(req.Value, 10, 64); err != nil || v < 0 {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR",
				"free_shipping_threshold must be a non-negative integer", nil)
			return
		}
	}
	if err := h.Service.Set(r.Context(), req.Key, req.Value); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]string{"key": req.Key, "value": req.Value})
}
