package events

import "time"

const EventTypeOrderCreated = "OrderCreated"

type OrderCreated struct {
	EventType      string      `json:"eventType"`
	OrderID        string      `json:"orderId"`
	UserID         string      `json:"userId"`
	Items          []OrderItem `json:"items"`
	TotalAmount    float64     `json:"totalAmount"`
	IdempotencyKey string      `json:"idempotencyKey"`
	Timestamp      time.Time   `json:"timestamp"`
}

type OrderItem struct {
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}
