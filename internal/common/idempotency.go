package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const idemPrefix = "idem:"

// Idem rejects replays of write requests that carry the same
// Idempotency-Key header within the TTL window.
type Idem struct {
	R   *redis.Client
	TTL time.Duration
}

// Middleware claims the key before the handler runs. Requests without an
// Idempotency-Key header pass through untouched.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Idempotency-Key")
		if header == "" || i.R == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := i.storageKey(header)
		claimed, err := i.R.SetNX(r.Context(), key, "locked", i.TTL).Result()
		if err != nil {
			JSONError(w, http.StatusInternalServerError, "INTERNAL", "idempotency store error", map[string]any{"error": err.Error()})
			return
		}
		if !claimed {
			JSONError(w, http.StatusConflict, "IDEMPOTENT_REPLAY", "duplicate request", nil)
			return
		}

		defer func() {
			// keep the key expiring even if the handler panics
			_ = i.R.Expire(context.Background(), key, i.TTL).Err()
		}()
		next.ServeHTTP(w, r)
	})
}

// storageKey hashes the raw header so arbitrary client input never lands in
// Redis key space verbatim.
func (i Idem) storageKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return idemPrefix + hex.EncodeToString(sum[:])
}
