// Package events publishes order lifecycle facts for downstream consumers
// (fulfillment, analytics). Publishing is fire-and-forget: order placement
// never waits on, or fails because of, the broker.
package events

import (
	"encoding/json"
	"strconv"
	"time"
)

const EventOrderCreated = "OrderCreated"

// Envelope is the versioned wrapper every published event travels in.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	RequestID    string          `json:"request_id,omitempty"`
	Payload      json.RawMessage `json:"payload"`
}

type OrderLine struct {
	ProductID    int64  `json:"product_id"`
	Quantity     int    `json:"quantity"`
	PriceAtOrder string `json:"price_at_order"`
}

type OrderCreatedPayload struct {
	OrderID     int64       `json:"order_id"`
	UserID      int64       `json:"user_id"`
	TotalAmount string      `json:"total_amount"`
	Lines       []OrderLine `json:"lines"`
}

// PartitionKey keeps every event of one order on the same partition.
func PartitionKey(orderID int64) []byte {
	return []byte(strconv.FormatInt(orderID, 10))
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
