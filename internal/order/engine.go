// Package order holds the stock reservation engine: the one subsystem with
// real consistency invariants. An order request either commits as a whole
// (order header, lines, stock decrements) or leaves zero trace.
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/inventory-api/internal/apperr"
)

// IdemGuard optionally fences duplicate submissions keyed by a
// client-supplied idempotency key. A claim that could not be committed is
// released so the client may retry the same key.
type IdemGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

const (
	defaultAttempts  = 3
	defaultTxTimeout = 10 * time.Second
)

// Engine validates an order request against current stock, snapshots
// pricing and applies the atomic multi-row mutation.
type Engine struct {
	ledger    Ledger
	guard     IdemGuard // nil disables the idempotency fence
	attempts  int
	txTimeout time.Duration
}

func NewEngine(ledger Ledger, guard IdemGuard) *Engine {
	return &Engine{
		ledger:    ledger,
		guard:     guard,
		attempts:  defaultAttempts,
		txTimeout: defaultTxTimeout,
	}
}

// PlaceOrder reserves stock for every item and commits the order, or fails
// with a typed error and no side effects. Items are processed in caller
// order; the first item that cannot be satisfied is the one blamed.
//
// Duplicate product ids are kept as independent lines, but validation
// tracks the quantity already reserved by earlier lines of the same request
// so the combined decrement can never cross the stock floor.
func (e *Engine) PlaceOrder(ctx context.Context, userID int64, items []ItemRequest, idemKey string) (*Order, error) {
	if userID <= 0 {
		return nil, apperr.New(apperr.KindUnauthenticated, "user not authenticated for order creation")
	}
	if len(items) == 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "order must contain at least one item")
	}
	for _, it := range items {
		if it.ProductID <= 0 {
			return nil, apperr.New(apperr.KindInvalidInput, "product_id must be a positive integer")
		}
		if it.Quantity <= 0 {
			return nil, &apperr.Error{
				Kind:      apperr.KindInvalidInput,
				Message:   "quantity must be a positive integer",
				ProductID: it.ProductID,
			}
		}
	}

	if e.guard != nil && idemKey != "" {
		ok, err := e.guard.Acquire(ctx, idemKey)
		if err != nil {
			return nil, apperr.New(apperr.KindUnavailable, "idempotency check failed: %v", err)
		}
		if !ok {
			return nil, apperr.New(apperr.KindConflict, "duplicate order request")
		}
	}

	o, err := e.placeWithRetry(ctx, userID, items)
	if err != nil && e.guard != nil && idemKey != "" {
		// Nothing committed; free the key so the client can retry it.
		_ = e.guard.Release(ctx, idemKey)
	}
	return o, err
}

// placeWithRetry re-runs the unit of work on store-reported conflicts
// (serialization failure, deadlock). Safe because a failed attempt leaves
// no side effects. Business failures are terminal.
func (e *Engine) placeWithRetry(ctx context.Context, userID int64, items []ItemRequest) (*Order, error) {
	var lastErr error
	for attempt := 0; attempt < e.attempts; attempt++ {
		o, err := e.place(ctx, userID, items)
		if err == nil {
			return o, nil
		}
		lastErr = err
		if !apperr.IsRetryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (e *Engine) place(ctx context.Context, userID int64, items []ItemRequest) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, e.txTimeout)
	defer cancel()

	var committed *Order
	err := e.ledger.InTx(ctx, func(tx Tx) error {
		total := decimal.Zero
		reserved := make(map[int64]int, len(items))
		lines := make([]Line, 0, len(items))

		// Validation pass: lock, check, price. No mutation yet, so the
		// first failing item aborts with nothing to undo.
		for _, it := range items {
			p, err := tx.ProductForUpdate(ctx, it.ProductID)
			if err != nil {
				return err
			}
			available := p.Stock - reserved[p.ID]
			if available < it.Quantity {
				return apperr.InsufficientStock(p.ID, p.Name, available, it.Quantity)
			}
			price, err := decimal.NewFromString(p.Price)
			if err != nil {
				return apperr.New(apperr.KindInternal, "bad price for product %d: %v", p.ID, err)
			}
			reserved[p.ID] += it.Quantity
			total = total.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
			lines = append(lines, Line{
				ProductID:    p.ID,
				ProductName:  p.Name,
				Quantity:     it.Quantity,
				PriceAtOrder: p.Price,
			})
		}

		o := &Order{
			UserID:      userID,
			Status:      StatusPending,
			TotalAmount: total.StringFixed(2),
		}
		if err := tx.InsertOrder(ctx, o); err != nil {
			return err
		}
		for i := range lines {
			lines[i].OrderID = o.ID
			if err := tx.InsertLine(ctx, &lines[i]); err != nil {
				return err
			}
			if err := tx.DecrementStock(ctx, lines[i].ProductID, lines[i].Quantity); err != nil {
				return err
			}
		}
		o.Lines = lines
		committed = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return committed, nil
}
