package store

import (
	"context"

	"github.com/andreasstove999/menucart/internal/cart"
	"github.com/andreasstove999/menucart/internal/order"
)

// Store is the authoritative system of record for carts and orders. The sync
// engine never treats its own cache as truth; every mutation goes through one
// of these calls and is followed by a full FetchCart.
type Store interface {
	// FetchCart returns all cart rows for a user in insertion order.
	FetchCart(ctx context.Context, userID string) ([]cart.Item, error)

	// FindCartItemByMenuID returns the user's row for a menu item, or
	// (nil, nil) when no such row exists.
	FindCartItemByMenuID(ctx context.Context, menuItemID, userID string) (*cart.Item, error)

	// AddCartItem inserts a new row and returns it with its assigned ID.
	AddCartItem(ctx context.Context, item cart.Item) (*cart.Item, error)

	// UpdateCartItem sets the quantity of an existing row.
	UpdateCartItem(ctx context.Context, itemID string, quantity int) (*cart.Item, error)

	// RemoveCartItem deletes a row. Deleting an absent row is a no-op so a
	// partially failed cart clear can be retried.
	RemoveCartItem(ctx context.Context, itemID string) error

	// CreateOrder persists an order and fills in its ID.
	CreateOrder(ctx context.Context, o *order.Order) error
}
