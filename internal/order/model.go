package order

import "time"

// StatusPending is the only status an order carries today; fulfillment
// transitions live outside this service.
const StatusPending = "PENDING"

type Order struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	// UserEmail is filled on admin reads only.
	UserEmail string `json:"user_email,omitempty"`
	Status    string `json:"status"`
	// NUMERIC -> string, exact to the cent
	TotalAmount string    `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Lines       []Line    `json:"items"`
}

// Line is a write-once order line; PriceAtOrder snapshots the product price
// at acceptance time and never follows later catalog changes.
type Line struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
	// ProductName is the snapshot carried on reads; the product row may be
	// gone by then.
	ProductName  string `json:"product_name,omitempty"`
	Quantity     int    `json:"quantity"`
	PriceAtOrder string `json:"price_at_order"`
}
