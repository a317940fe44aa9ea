package sync

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/andreasstove999/menucart/internal/cart"
	"github.com/andreasstove999/menucart/internal/order"
	"github.com/andreasstove999/menucart/internal/store"
)

// fakeStore lets individual store calls fail while counting them, in the
// spirit of the function-field fakes used across the repo.
type fakeStore struct {
	fetchCartFunc  func(ctx context.Context, userID string) ([]cart.Item, error)
	findFunc       func(ctx context.Context, menuItemID, userID string) (*cart.Item, error)
	addFunc        func(ctx context.Context, item cart.Item) (*cart.Item, error)
	updateFunc     func(ctx context.Context, itemID string, quantity int) (*cart.Item, error)
	removeFunc     func(ctx context.Context, itemID string) error
	fetchCartCalls int
	removeCalls    int
}

func (f *fakeStore) FetchCart(ctx context.Context, userID string) ([]cart.Item, error) {
	f.fetchCartCalls++
	if f.fetchCartFunc != nil {
		return f.fetchCartFunc(ctx, userID)
	}
	return nil, nil
}

func (f *fakeStore) FindCartItemByMenuID(ctx context.Context, menuItemID, userID string) (*cart.Item, error) {
	if f.findFunc != nil {
		return f.findFunc(ctx, menuItemID, userID)
	}
	return nil, nil
}

func (f *fakeStore) AddCartItem(ctx context.Context, item cart.Item) (*cart.Item, error) {
	if f.addFunc != nil {
		return f.addFunc(ctx, item)
	}
	return &item, nil
}

func (f *fakeStore) UpdateCartItem(ctx context.Context, itemID string, quantity int) (*cart.Item, error) {
	if f.updateFunc != nil {
		return f.updateFunc(ctx, itemID, quantity)
	}
	return &cart.Item{ID: itemID, Quantity: quantity}, nil
}

func (f *fakeStore) RemoveCartItem(ctx context.Context, itemID string) error {
	f.removeCalls++
	if f.removeFunc != nil {
		return f.removeFunc(ctx, itemID)
	}
	return nil
}

func (f *fakeStore) CreateOrder(ctx context.Context, o *order.Order) error { return nil }

func testLogger() *log.Logger {
	return log.New(io.Discard, "", log.LstdFlags)
}

func newTestEngine(t *testing.T, st store.Store, userID string) *Engine {
	t.Helper()
	e := NewEngine(st, testLogger())
	e.Bind(userID)
	return e
}

func TestAddItemMergesExistingRow(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	e := newTestEngine(t, st, "u1")

	menuItem := cart.Item{MenuItemID: "m1", Name: "Beef Noodles", Price: 10}

	if err := e.AddItem(ctx, menuItem); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := e.AddItem(ctx, menuItem); err != nil {
		t.Fatalf("second add: %v", err)
	}

	items := e.Items()
	if len(items) != 1 {
		t.Fatalf("expected one merged row, got %d", len(items))
	}
	if items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", items[0].Quantity)
	}
	if got := e.Count(); got != 2 {
		t.Fatalf("Count = %d, want 2", got)
	}
	if got := e.Total(); got != 20 {
		t.Fatalf("Total = %v, want 20", got)
	}
}

func TestAddItemDistinctMenuItems(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	e := newTestEngine(t, st, "u1")

	if err := e.AddItem(ctx, cart.Item{MenuItemID: "m1", Price: 10}); err != nil {
		t.Fatalf("add m1: %v", err)
	}
	if err := e.AddItem(ctx, cart.Item{MenuItemID: "m2", Price: 5}); err != nil {
		t.Fatalf("add m2: %v", err)
	}

	if len(e.Items()) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(e.Items()))
	}
	if got := e.Total(); got != 15 {
		t.Fatalf("Total = %v, want 15", got)
	}
}

func TestAddItemRequiresUser(t *testing.T) {
	e := NewEngine(store.NewMemoryStore(), testLogger())

	err := e.AddItem(context.Background(), cart.Item{MenuItemID: "m1"})
	if !errors.Is(err, cart.ErrAuthenticationRequired) {
		t.Fatalf("expected ErrAuthenticationRequired, got %v", err)
	}
	if !errors.Is(e.Err(), cart.ErrAuthenticationRequired) {
		t.Fatalf("expected Err() to surface the failure, got %v", e.Err())
	}
}

func TestAddItemStoreFailureLeavesCacheUntouched(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	e := newTestEngine(t, st, "u1")

	if err := e.AddItem(ctx, cart.Item{MenuItemID: "m1", Price: 10}); err != nil {
		t.Fatalf("seed add: %v", err)
	}
	before := e.Items()

	failing := &fakeStore{
		findFunc: func(ctx context.Context, menuItemID, userID string) (*cart.Item, error) {
			return nil, errors.New("connection refused")
		},
	}
	e2 := newTestEngine(t, failing, "u1")
	// carry over a cached state to prove it survives the failure
	e2.items = before

	err := e2.AddItem(ctx, cart.Item{MenuItemID: "m2", Price: 5})
	var storeErr *cart.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected StoreError, got %v", err)
	}

	after := e2.Items()
	if len(after) != len(before) {
		t.Fatalf("cache changed on failed mutation: %+v", after)
	}
}

func TestUpdateQuantityClampsToZeroAndDeletes(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	e := newTestEngine(t, st, "u1")

	if err := e.AddItem(ctx, cart.Item{MenuItemID: "m1", Price: 10}); err != nil {
		t.Fatalf("add: %v", err)
	}
	itemID := e.Items()[0].ID

	tests := map[string]int{
		"zero":     0,
		"negative": -3,
	}
	for name, qty := range tests {
		qty := qty
		t.Run(name, func(t *testing.T) {
			if err := e.AddItem(ctx, cart.Item{MenuItemID: "m1", Price: 10}); err != nil {
				t.Fatalf("re-add: %v", err)
			}
			itemID = e.Items()[0].ID

			if err := e.UpdateQuantity(ctx, itemID, qty); err != nil {
				t.Fatalf("update: %v", err)
			}
			if len(e.Items()) != 0 {
				t.Fatalf("expected empty cart, got %+v", e.Items())
			}
			if e.Count() != 0 {
				t.Fatalf("Count = %d, want 0", e.Count())
			}
		})
	}
}

func TestUpdateQuantitySetsNewValue(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	e := newTestEngine(t, st, "u1")

	if err := e.AddItem(ctx, cart.Item{MenuItemID: "m1", Price: 10}); err != nil {
		t.Fatalf("add: %v", err)
	}
	itemID := e.Items()[0].ID

	if err := e.UpdateQuantity(ctx, itemID, 5); err != nil {
		t.Fatalf("update: %v", err)
	}

	items := e.Items()
	if len(items) != 1 || items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %+v", items)
	}
	if got := e.Total(); got != 50 {
		t.Fatalf("Total = %v, want 50", got)
	}
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	e := newTestEngine(t, st, "u1")

	if err := e.AddItem(ctx, cart.Item{MenuItemID: "m1", Price: 10}); err != nil {
		t.Fatalf("add: %v", err)
	}
	itemID := e.Items()[0].ID

	if err := e.RemoveItem(ctx, itemID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(e.Items()) != 0 {
		t.Fatalf("expected empty cart, got %+v", e.Items())
	}
}

func TestRefreshFailureKeepsStaleCache(t *testing.T) {
	ctx := context.Background()

	cached := []cart.Item{{ID: "i1", MenuItemID: "m1", Price: 10, Quantity: 2, UserID: "u1"}}
	st := &fakeStore{
		fetchCartFunc: func(ctx context.Context, userID string) ([]cart.Item, error) {
			return nil, errors.New("store down")
		},
	}
	e := newTestEngine(t, st, "u1")
	e.items = cached

	e.Refresh(ctx)

	items := e.Items()
	if len(items) != 1 || items[0].ID != "i1" {
		t.Fatalf("stale cache lost on failed refresh: %+v", items)
	}
	if e.Err() != nil {
		t.Fatalf("refresh failure must not surface as Err(), got %v", e.Err())
	}
}

func TestRefreshReplacesWholesale(t *testing.T) {
	ctx := context.Background()

	serverRows := []cart.Item{
		{ID: "i9", MenuItemID: "m9", Price: 1, Quantity: 4, UserID: "u1"},
	}
	st := &fakeStore{
		fetchCartFunc: func(ctx context.Context, userID string) ([]cart.Item, error) {
			return serverRows, nil
		},
	}
	e := newTestEngine(t, st, "u1")
	e.items = []cart.Item{{ID: "stale"}}

	e.Refresh(ctx)

	items := e.Items()
	if len(items) != 1 || items[0].ID != "i9" {
		t.Fatalf("expected wholesale replace, got %+v", items)
	}
}

func TestClearCartDeletesEveryServerRow(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	e := newTestEngine(t, st, "u1")

	for _, m := range []string{"m1", "m2", "m3"} {
		if err := e.AddItem(ctx, cart.Item{MenuItemID: m, Price: 2}); err != nil {
			t.Fatalf("add %s: %v", m, err)
		}
	}

	// A row added outside this engine's cache must be cleared too.
	if _, err := st.AddCartItem(ctx, cart.Item{MenuItemID: "m4", Price: 1, Quantity: 1, UserID: "u1"}); err != nil {
		t.Fatalf("external add: %v", err)
	}

	if err := e.ClearCart(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if len(e.Items()) != 0 {
		t.Fatalf("expected empty cache, got %+v", e.Items())
	}
	rows, err := st.FetchCart(ctx, "u1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty server cart, got %+v", rows)
	}
}

func TestEnginesAreIndependentPerUser(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	a := newTestEngine(t, st, "alice")
	b := newTestEngine(t, st, "bob")

	if err := a.AddItem(ctx, cart.Item{MenuItemID: "m1", Price: 10}); err != nil {
		t.Fatalf("alice add: %v", err)
	}
	if err := b.AddItem(ctx, cart.Item{MenuItemID: "m1", Price: 10}); err != nil {
		t.Fatalf("bob add: %v", err)
	}
	if err := b.AddItem(ctx, cart.Item{MenuItemID: "m1", Price: 10}); err != nil {
		t.Fatalf("bob second add: %v", err)
	}

	if a.Count() != 1 {
		t.Fatalf("alice Count = %d, want 1", a.Count())
	}
	if b.Count() != 2 {
		t.Fatalf("bob Count = %d, want 2", b.Count())
	}
}
