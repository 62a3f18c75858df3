package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shoptools/shoptools-go/internal/catalogue"
	pkgredis "github.com/shoptools/shoptools-go/pkg/redis"
	"github.com/shoptools/shoptools-go/pkg/types"
)

// sessionSnapshot is the persisted shape of a session cart.
type sessionSnapshot struct {
	Lines           []sessionLine         `json:"lines,omitempty"`
	ShippingOptions types.ShippingOptions `json:"shipping_options,omitempty"`
	VoucherCodes    []string              `json:"voucher_codes,omitempty"`
}

// keyValueStore is the slice of the redis client the store depends on.
type keyValueStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SessionCartKey(token string) string
}

// SessionStore persists session carts as JSON snapshots with a sliding TTL.
type SessionStore struct {
	kv       keyValueStore
	ttl      time.Duration
	registry *catalogue.Registry
	opts     []SessionCartOption
}

// NewSessionStore wires the store. The cart options are applied to every
// cart the store loads so capabilities survive the round trip.
func NewSessionStore(kv keyValueStore, ttl time.Duration, registry *catalogue.Registry, opts ...SessionCartOption) *SessionStore {
	return &SessionStore{kv: kv, ttl: ttl, registry: registry, opts: opts}
}

// Load returns the cart stored for the token, or a fresh empty cart when
// nothing is stored yet.
func (s *SessionStore) Load(ctx context.Context, token string) (*SessionCart, error) {
	c := NewSessionCart(token, s.registry, s.opts...)

	raw, err := s.kv.Get(ctx, s.kv.SessionCartKey(token))
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return c, nil
		}
		return nil, fmt.Errorf("loading session cart: %w", err)
	}

	var snap sessionSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("decoding session cart: %w", err)
	}
	c.lines = snap.Lines
	c.shippingOptions = snap.ShippingOptions
	c.voucherCodes = snap.VoucherCodes
	return c, nil
}

// Save writes the cart snapshot, resetting the TTL. An empty cart is removed
// instead of stored.
func (s *SessionStore) Save(ctx context.Context, c *SessionCart) error {
	snap := sessionSnapshot{
		Lines:           c.lines,
		ShippingOptions: c.shippingOptions,
		VoucherCodes:    c.voucherCodes,
	}
	if len(snap.Lines) == 0 && len(snap.ShippingOptions) == 0 && len(snap.VoucherCodes) == 0 {
		return s.Delete(ctx, c.token)
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding session cart: %w", err)
	}
	if err := s.kv.Set(ctx, s.kv.SessionCartKey(c.token), string(raw), s.ttl); err != nil {
		return fmt.Errorf("storing session cart: %w", err)
	}
	return nil
}

// Delete removes the stored snapshot for the token.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.kv.Del(ctx, s.kv.SessionCartKey(token)); err != nil {
		return fmt.Errorf("deleting session cart: %w", err)
	}
	return nil
}
