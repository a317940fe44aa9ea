package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/andreasstove999/menucart/internal/cart"
)

type Item struct {
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

type Order struct {
	ID             string    `json:"orderId"`
	UserID         string    `json:"userId"`
	Items          []Item    `json:"items"`
	TotalAmount    float64   `json:"totalAmount"`
	Status         Status    `json:"status"`
	IdempotencyKey string    `json:"idempotencyKey"`
	CreatedAt      time.Time `json:"createdAt"`
}

// FromCart builds the immutable order payload for a checkout. Items are
// copied row by row so later cart mutations cannot reach into the order, and
// the total is computed from the snapshot, not trusted from the caller.
func FromCart(userID string, rows []cart.Item, now time.Time) *Order {
	o := &Order{
		UserID:         userID,
		Items:          make([]Item, 0, len(rows)),
		Status:         StatusPending,
		IdempotencyKey: uuid.NewString(),
		CreatedAt:      now,
	}

	for _, r := range rows {
		o.Items = append(o.Items, Item{
			MenuItemID: r.MenuItemID,
			Name:       r.Name,
			Price:      r.Price,
			Quantity:   r.Quantity,
		})
		o.TotalAmount += r.Price * float64(r.Quantity)
	}

	return o
}
