package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/andreasstove999/menucart/internal/cart"
	"github.com/andreasstove999/menucart/internal/order"
)

// MemoryStore backs the disconnected/demo configuration: the same contract as
// the Postgres store, held in process. The sync engine runs the identical
// write-then-refetch protocol against it, so merge and clamp semantics are the
// same in both modes. An engine binds one Store for its whole lifetime; the
// two modes are never mixed inside one cart.
type MemoryStore struct {
	mu     sync.Mutex
	items  []cart.Item
	orders []order.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) FetchCart(ctx context.Context, userID string) ([]cart.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []cart.Item
	for _, it := range s.items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *MemoryStore) FindCartItemByMenuID(ctx context.Context, menuItemID, userID string) (*cart.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range s.items {
		if it.MenuItemID == menuItemID && it.UserID == userID {
			found := it
			return &found, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) AddCartItem(ctx context.Context, item cart.Item) (*cart.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	s.items = append(s.items, item)
	added := item
	return &added, nil
}

func (s *MemoryStore) UpdateCartItem(ctx context.Context, itemID string, quantity int) (*cart.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items[i].Quantity = quantity
			updated := s.items[i]
			return &updated, nil
		}
	}
	return nil, fmt.Errorf("cart item %s not found", itemID)
}

func (s *MemoryStore) RemoveCartItem(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.items[:0]
	for _, it := range s.items {
		if it.ID != itemID {
			out = append(out, it)
		}
	}
	s.items = out
	return nil
}

func (s *MemoryStore) CreateOrder(ctx context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	s.orders = append(s.orders, *o)
	return nil
}

// Orders returns a copy of every order created so far; test helper.
func (s *MemoryStore) Orders() []order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]order.Order, len(s.orders))
	copy(out, s.orders)
	return out
}
