package cart

// Item is one row in a user's cart: a menu reference plus a price snapshot
// and quantity. ID is assigned by the store on insert and is empty until the
// row has been persisted.
type Item struct {
	ID         string  `json:"id,omitempty"`
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	UserID     string  `json:"userId"`
}
