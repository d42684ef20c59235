package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/keepsakehq/backend-souvenir/internal/pricing"
)

// ErrNotFound indicates the requested wishlist could not be located.
var ErrNotFound = errors.New("wishlist not found")

const defaultTTL = 30 * 24 * time.Hour

// Item is a saved product reference. Items are keyed by product id.
type Item struct {
	ProductID string        `json:"productId"`
	Title     string        `json:"title"`
	Slug      string        `json:"slug"`
	Price     pricing.Money `json:"price"`
}

// Aggregate owns a set of distinct items keyed by product id. Adding an item
// already present is a no-op; there are no derived totals.
type Aggregate struct {
	Items []Item `json:"items"`
}

// NewAggregate returns an empty wishlist.
func NewAggregate() *Aggregate {
	return &Aggregate{Items: []Item{}}
}

// Add appends the item unless its product id is already present.
func (a *Aggregate) Add(item Item) {
	for _, existing := range a.Items {
		if existing.ProductID == item.ProductID {
			return
		}
	}
	a.Items = append(a.Items, item)
}

// Remove drops every item with the given product id.
func (a *Aggregate) Remove(productID string) {
	kept := a.Items[:0]
	for _, item := range a.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	a.Items = kept
}

// Clear empties the wishlist.
func (a *Aggregate) Clear() {
	a.Items = []Item{}
}

// Contains reports whether a product is saved.
func (a *Aggregate) Contains(productID string) bool {
	for _, item := range a.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// Store persists wishlist aggregates as JSON in Redis, one key per session.
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

func (s *Store) key(id string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "souvenir:wishlist:"
	}
	return prefix + id
}

// Load restores the wishlist for a session; a missing key yields an empty
// aggregate, not an error.
func (s *Store) Load(ctx context.Context, id string) (*Aggregate, error) {
	if s == nil || s.R == nil {
		return nil, errors.New("wishlist store not configured")
	}
	data, err := s.R.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return NewAggregate(), nil
		}
		return nil, fmt.Errorf("load wishlist: %w", err)
	}
	agg := NewAggregate()
	if err := json.Unmarshal(data, agg); err != nil {
		return nil, fmt.Errorf("decode wishlist: %w", err)
	}
	if agg.Items == nil {
		agg.Items = []Item{}
	}
	return agg, nil
}

// Save serializes the aggregate and refreshes the session TTL.
func (s *Store) Save(ctx context.Context, id string, agg *Aggregate) error {
	if s == nil || s.R == nil {
		return errors.New("wishlist store not configured")
	}
	if agg == nil {
		agg = NewAggregate()
	}
	data, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("encode wishlist: %w", err)
	}
	if err := s.R.Set(ctx, s.key(id), data, s.ttl()).Err(); err != nil {
		return fmt.Errorf("save wishlist: %w", err)
	}
	return nil
}

// Mutate loads the aggregate, applies fn, and saves the result.
func (s *Store) Mutate(ctx context.Context, id string, fn func(*Aggregate)) (*Aggregate, error) {
	agg, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(agg)
	if err := s.Save(ctx, id, agg); err != nil {
		return nil, err
	}
	return agg, nil
}
