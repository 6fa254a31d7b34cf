package order

// ItemRequest is one requested line: product plus desired quantity.
// swagger:model OrderItemRequest
type ItemRequest struct {
	ProductID int64 `json:"product_id" example:"42"`
	Quantity  int   `json:"quantity"   example:"2"`
}

// CreateOrderRequest payload of order creation. The requester identity
// comes from the bearer token, never from the body.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	Items []ItemRequest `json:"items"`
}
