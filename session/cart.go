// Package session holds the per-run client state: the cart-entry cache
// with its load/mutate lifecycle, the search sequence guard and the
// input debouncer. All durable state lives behind the backend; this
// package only caches the last known-good view of it.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storefront_cli/domain"
)

// CartService is the slice of the backend the cart session needs.
type CartService interface {
	FetchCart(ctx context.Context) ([]domain.CartEntry, error)
	UpsertCartItem(ctx context.Context, productID string, qty int) ([]domain.CartEntry, error)
}

// State is the lifecycle of the cart-entries cache.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
)

// String implements fmt.Stringer for State
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	default:
		return "unloaded"
	}
}

// Cart is a read-through cache of the server's cart entries. The server
// is the source of truth: every successful mutation replaces the whole
// cache with the returned list, and a failed call leaves the cache at
// its last known-good value (no optimistic update to roll back).
type Cart struct {
	mu      sync.Mutex
	svc     CartService
	entries []domain.CartEntry
	state   State
}

// NewCart constructs an unloaded cart session over the given service.
func NewCart(svc CartService) *Cart {
	return &Cart{svc: svc, state: StateUnloaded}
}

// Entries returns a copy of the cached cart entries.
func (c *Cart) Entries() []domain.CartEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CartEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// State returns the cache lifecycle state.
func (c *Cart) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Refresh fetches the authoritative entry list from the backend. On
// failure the cache keeps its prior value and the error is returned for
// the caller to surface.
func (c *Cart) Refresh(ctx context.Context, token string) ([]domain.CartEntry, error) {
	if token == "" {
		return nil, domain.NewAuthRequiredError("fetch cart")
	}

	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()

	entries, err := c.svc.FetchCart(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateLoaded
	if err != nil {
		// stale but loaded; keep last known good
		return nil, err
	}
	c.entries = entries
	return c.snapshot(), nil
}

// ApplyChange runs the add/update policy for a single product:
//
//  1. no token: rejected locally, no network call;
//  2. initialAdd targeting a product already in the cart: rejected
//     locally, no network call;
//  3. otherwise the quantity is upserted and the whole cache is
//     replaced by the server's returned list.
//
// The quantity is forwarded uninterpreted; zero or negative values mean
// whatever the backend decides they mean.
func (c *Cart) ApplyChange(ctx context.Context, token, productID string, qty int, initialAdd bool) ([]domain.CartEntry, error) {
	if token == "" {
		return nil, domain.NewAuthRequiredError("add to cart")
	}

	c.mu.Lock()
	if initialAdd && domain.InCart(c.entries, productID) {
		c.mu.Unlock()
		return nil, domain.NewDuplicateItemError(productID)
	}
	c.state = StateLoading
	c.mu.Unlock()

	start := time.Now()
	entries, err := c.svc.UpsertCartItem(ctx, productID, qty)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateLoaded
	if err != nil {
		slog.Error("cart change failed", "product_id", productID, "qty", qty, "error", err)
		return nil, err
	}
	c.entries = entries
	slog.Info("cart updated",
		"product_id", productID,
		"qty", qty,
		"items", len(entries),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return c.snapshot(), nil
}

// Reset drops the cache back to an empty loaded state. Used after a
// successful checkout and on logout.
func (c *Cart) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.state = StateUnloaded
}

// snapshot copies entries; callers must hold c.mu.
func (c *Cart) snapshot() []domain.CartEntry {
	out := make([]domain.CartEntry, len(c.entries))
	copy(out, c.entries)
	return out
}
