// Package ratelimit throttles abuse-prone public endpoints, currently the
// contact form. Limits are expressed in limiter's formatted syntax ("5-H" is
// five requests per hour) and counted per client IP in Redis.
package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"

	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/keepsakehq/backend-souvenir/internal/common"
)

// Limiter wraps a configured rate limit instance.
type Limiter struct {
	instance *limiter.Limiter

	// Key derives the limit bucket from a request. Defaults to client IP.
	Key func(*http.Request) string
}

// New builds a Redis-backed limiter from a formatted rate such as "5-H".
func New(client *redis.Client, formatted, prefix string) (*Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", formatted, err)
	}
	if prefix == "" {
		prefix = "souvenir:ratelimit"
	}
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: prefix})
	if err != nil {
		return nil, fmt.Errorf("limiter store: %w", err)
	}
	return &Limiter{instance: limiter.New(store, rate)}, nil
}

// Middleware enforces the limit before delegating to the next handler. Store
// errors fail open.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := common.ClientIP(r)
		if l.Key != nil {
			key = l.Key(r)
		}
		lctx, err := l.instance.Get(r.Context(), key)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		headers.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, try again later", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
