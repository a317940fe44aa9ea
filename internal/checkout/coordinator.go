// Package checkout converts a cart into a persisted order and empties the
// cart. Order creation and cart clearing are two separate store operations,
// not one transaction: a failure between them leaves a real order with
// leftover cart rows. That risk is surfaced to the caller, never masked; the
// clear is idempotent and can be retried.
package checkout

import (
	"context"
	"log"
	"time"

	"github.com/andreasstove999/menucart/internal/cart"
	"github.com/andreasstove999/menucart/internal/order"
	"github.com/andreasstove999/menucart/internal/store"
)

// CartClearer empties the server-side cart and resynchronizes the local
// cache. Implemented by sync.Engine.
type CartClearer interface {
	ClearCart(ctx context.Context) error
}

// Publisher announces a created order to downstream consumers. The publish
// is best-effort; checkout never fails because of it.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, o *order.Order) error
}

type Coordinator struct {
	store  store.Store
	carts  CartClearer
	pub    Publisher
	logger *log.Logger

	now func() time.Time
}

// NewCoordinator wires a coordinator. pub may be nil when no broker is
// configured (the disconnected/demo mode).
func NewCoordinator(st store.Store, carts CartClearer, pub Publisher, logger *log.Logger) *Coordinator {
	return &Coordinator{
		store:  st,
		carts:  carts,
		pub:    pub,
		logger: logger,
		now:    time.Now,
	}
}

// Checkout builds an immutable order from the snapshot, persists it, then
// clears the cart.
//
// When the order has been created but the clear fails, the returned order is
// non-nil alongside the error: the order is committed, the cart still shows
// its pre-checkout rows, and the caller retries the clear.
func (c *Coordinator) Checkout(ctx context.Context, userID string, snapshot []cart.Item) (*order.Order, error) {
	if userID == "" {
		return nil, cart.ErrAuthenticationRequired
	}
	if len(snapshot) == 0 {
		return nil, cart.ErrEmptyCart
	}

	o := order.FromCart(userID, snapshot, c.now().UTC())

	if err := c.store.CreateOrder(ctx, o); err != nil {
		// Cart untouched; the caller may retry the whole checkout.
		return nil, cart.NewStoreError("create order", err)
	}

	if c.pub != nil {
		if err := c.pub.PublishOrderCreated(ctx, o); err != nil {
			c.logger.Printf("publish OrderCreated for %s: %v", o.ID, err)
		}
	}

	if err := c.carts.ClearCart(ctx); err != nil {
		c.logger.Printf("order %s created but cart clear failed: %v", o.ID, err)
		return o, err
	}

	return o, nil
}
