package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// ErrNotFound indicates the requested cart could not be located.
var ErrNotFound = errors.New("cart not found")

const defaultTTL = 7 * 24 * time.Hour

// Store persists cart aggregates as JSON blobs in Redis, one key per session.
// Each mutation is load-modify-save; the session that owns the key is the
// only writer, so the last write wins.
type Store struct {
	R      *redis.Client
	TTL    time.Duration
	Prefix string
}

func (s *Store) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return defaultTTL
	}
	return s.TTL
}

func (s *Store) key(cartID string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "souvenir:cart:"
	}
	return prefix + cartID
}

// Create persists a fresh empty aggregate and returns its identifier.
func (s *Store) Create(ctx context.Context) (string, error) {
	if s == nil || s.R == nil {
		return "", errors.New("cart store not configured")
	}
	id := uuid.NewString()
	if err := s.Save(ctx, id, NewAggregate()); err != nil {
		return "", err
	}
	return id, nil
}

// Load restores the aggregate stored under the given id. Derived totals are
// recomputed after deserialization rather than trusted from the payload.
func (s *Store) Load(ctx context.Context, cartID string) (*Aggregate, error) {
	if s == nil || s.R == nil {
		return nil, errors.New("cart store not configured")
	}
	data, err := s.R.Get(ctx, s.key(cartID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	agg := NewAggregate()
	if err := json.Unmarshal(data, agg); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if agg.Items == nil {
		agg.Items = []Line{}
	}
	agg.Recompute()
	return agg, nil
}

// Save serializes the aggregate and refreshes the session TTL.
func (s *Store) Save(ctx context.Context, cartID string, agg *Aggregate) error {
	if s == nil || s.R == nil {
		return errors.New("cart store not configured")
	}
	if agg == nil {
		agg = NewAggregate()
	}
	data, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.R.Set(ctx, s.key(cartID), data, s.ttl()).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Mutate loads the aggregate, applies fn, and saves the result.
func (s *Store) Mutate(ctx context.Context, cartID string, fn func(*Aggregate)) (*Aggregate, error) {
	agg, err := s.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	fn(agg)
	if err := s.Save(ctx, cartID, agg); err != nil {
		return nil, err
	}
	return agg, nil
}
