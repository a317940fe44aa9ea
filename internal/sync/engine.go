// Package sync keeps a per-user cached cart consistent with the
// authoritative store. Every mutation follows a write-then-refetch protocol:
// the store call happens first, and the cache is only ever replaced by a full
// successful fetch, never by client-side arithmetic. This costs a second
// round trip per mutation but the cache can never drift from server-side
// business rules.
package sync

import (
	"context"
	"log"
	"sync"

	"github.com/andreasstove999/menucart/internal/cart"
	"github.com/andreasstove999/menucart/internal/store"
)

// Engine owns the cached cart of a single user. One engine per user cart;
// engines for different users share no state and may run concurrently.
//
// The engine does not serialize overlapping mutations on the same cart. If
// two mutations are issued concurrently their store calls and refreshes may
// interleave, and the cache reflects whichever refresh completes last.
// Callers at the boundary are responsible for not overlapping mutation calls
// on one cart (e.g. disabling the trigger while a call is in flight).
type Engine struct {
	store  store.Store
	logger *log.Logger

	mu      sync.Mutex
	userID  string
	items   []cart.Item
	loading bool
	lastErr error
}

func NewEngine(st store.Store, logger *log.Logger) *Engine {
	return &Engine{store: st, logger: logger}
}

// Bind attaches the engine to a user. It does not touch the cache; the next
// Refresh replaces it wholesale.
func (e *Engine) Bind(userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.userID = userID
}

// Reset detaches the engine from its user and drops the cached cart. Used on
// logout; no store calls are made.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.userID = ""
	e.items = nil
	e.lastErr = nil
}

// UserID returns the currently bound user, or "" when unbound.
func (e *Engine) UserID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.userID
}

// Items returns a copy of the cached cart rows.
func (e *Engine) Items() []cart.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]cart.Item, len(e.items))
	copy(out, e.items)
	return out
}

// Count is the total number of units in the cached cart.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cart.Count(e.items)
}

// Total is the monetary total of the cached cart.
func (e *Engine) Total() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cart.Total(e.items)
}

// Loading reports whether a store operation is in flight.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// Err returns the error surfaced by the most recent mutation, or nil after a
// successful one. Refresh failures never show up here.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Refresh replaces the cached cart with the store's current state. A fetch
// failure is logged and the cache is left as it was: stale but consistent.
// Refresh is best-effort resynchronization, not a user action, so the failure
// is never returned.
func (e *Engine) Refresh(ctx context.Context) {
	e.mu.Lock()
	userID := e.userID
	e.mu.Unlock()

	if userID == "" {
		e.mu.Lock()
		e.items = nil
		e.mu.Unlock()
		return
	}

	rows, err := e.store.FetchCart(ctx, userID)
	if err != nil {
		e.logger.Printf("refresh cart for %s: %v", userID, err)
		return
	}

	e.mu.Lock()
	// Wholesale replace; a caller that abandoned this refresh loses nothing,
	// there are no partial writes to the cache.
	e.items = rows
	e.mu.Unlock()
}

// AddItem merges a menu item into the user's cart: an existing row for the
// same menu item gets its quantity incremented by one, otherwise a new row is
// created with quantity one. The cache is untouched until the store confirms.
func (e *Engine) AddItem(ctx context.Context, menuItem cart.Item) error {
	e.mu.Lock()
	userID := e.userID
	e.mu.Unlock()

	if userID == "" {
		return e.fail(cart.ErrAuthenticationRequired)
	}

	e.setLoading(true)
	defer e.setLoading(false)

	existing, err := e.store.FindCartItemByMenuID(ctx, menuItem.MenuItemID, userID)
	if err != nil {
		return e.fail(cart.NewStoreError("find cart item", err))
	}

	if existing != nil {
		if _, err := e.store.UpdateCartItem(ctx, existing.ID, existing.Quantity+1); err != nil {
			return e.fail(cart.NewStoreError("update cart item", err))
		}
	} else {
		item := cart.Item{
			MenuItemID: menuItem.MenuItemID,
			Name:       menuItem.Name,
			Price:      menuItem.Price,
			Quantity:   1,
			UserID:     userID,
		}
		if _, err := e.store.AddCartItem(ctx, item); err != nil {
			return e.fail(cart.NewStoreError("add cart item", err))
		}
	}

	e.Refresh(ctx)
	return e.ok()
}

// UpdateQuantity sets a row's quantity, clamped at zero. Zero deletes the
// row; a cart never holds a row with quantity zero.
func (e *Engine) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity < 0 {
		quantity = 0
	}

	e.setLoading(true)
	defer e.setLoading(false)

	if quantity == 0 {
		if err := e.store.RemoveCartItem(ctx, itemID); err != nil {
			return e.fail(cart.NewStoreError("remove cart item", err))
		}
	} else {
		if _, err := e.store.UpdateCartItem(ctx, itemID, quantity); err != nil {
			return e.fail(cart.NewStoreError("update cart item", err))
		}
	}

	e.Refresh(ctx)
	return e.ok()
}

// RemoveItem deletes a row outright. Equivalent to UpdateQuantity(itemID, 0).
func (e *Engine) RemoveItem(ctx context.Context, itemID string) error {
	return e.UpdateQuantity(ctx, itemID, 0)
}

// ClearCart deletes every row the server currently holds for the bound user,
// then refreshes. It works from a fresh fetch, not the cache, so rows added
// from elsewhere are cleared too. Row deletes are idempotent, so a partially
// failed clear can simply be retried.
func (e *Engine) ClearCart(ctx context.Context) error {
	e.mu.Lock()
	userID := e.userID
	e.mu.Unlock()

	if userID == "" {
		return e.fail(cart.ErrAuthenticationRequired)
	}

	e.setLoading(true)
	defer e.setLoading(false)

	rows, err := e.store.FetchCart(ctx, userID)
	if err != nil {
		return e.fail(cart.NewStoreError("fetch cart", err))
	}

	for _, it := range rows {
		if err := e.store.RemoveCartItem(ctx, it.ID); err != nil {
			return e.fail(cart.NewStoreError("remove cart item", err))
		}
	}

	e.Refresh(ctx)
	return e.ok()
}

func (e *Engine) setLoading(v bool) {
	e.mu.Lock()
	e.loading = v
	e.mu.Unlock()
}

func (e *Engine) fail(err error) error {
	e.mu.Lock()
	e.lastErr = err
	e.mu.Unlock()
	return err
}

func (e *Engine) ok() error {
	e.mu.Lock()
	e.lastErr = nil
	e.mu.Unlock()
	return nil
}
