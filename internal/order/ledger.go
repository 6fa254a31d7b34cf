package order

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/inventory-api/internal/apperr"
)

// ProductRow is the slice of a product the engine needs: identity, the
// current sellable count and the price to snapshot.
type ProductRow struct {
	ID    int64
	Name  string
	Price string
	Stock int
}

// Tx is one atomic unit of work against the ledger. Reads lock the rows
// they touch; nothing is visible to other transactions until the unit
// commits.
type Tx interface {
	// ProductForUpdate reads a product row under a row lock, serializing
	// concurrent read-then-decrement sequences on the same product.
	ProductForUpdate(ctx context.Context, productID int64) (*ProductRow, error)
	InsertOrder(ctx context.Context, o *Order) error
	InsertLine(ctx context.Context, l *Line) error
	// DecrementStock applies a conditional decrement; it fails rather than
	// take stock below zero.
	DecrementStock(ctx context.Context, productID int64, quantity int) error
}

// Ledger runs a function inside one atomic unit of work. An error return
// rolls back every effect.
type Ledger interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

type PGLedger struct{ db *pgxpool.Pool }

func NewPGLedger(db *pgxpool.Pool) *PGLedger { return &PGLedger{db: db} }

func (l *PGLedger) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return translatePG(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return translatePG(err)
	}
	return translatePG(tx.Commit(ctx))
}

// translatePG maps store-level conflicts the caller may retry (serialization
// failure, deadlock) onto the retryable kind. Typed business errors pass
// through untouched.
func translatePG(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return apperr.New(apperr.KindUnavailable, "transaction conflict: %s", pgErr.Message)
		}
	}
	return err
}

type pgTx struct{ tx pgx.Tx }

func (t *pgTx) ProductForUpdate(ctx context.Context, productID int64) (*ProductRow, error) {
	var p ProductRow
	err := t.tx.QueryRow(ctx, `
		SELECT id, name, price::text, stock
		FROM products WHERE id=$1
		FOR UPDATE
	`, productID).Scan(&p.ID, &p.Name, &p.Price, &p.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ProductNotFound(productID)
		}
		return nil, err
	}
	return &p, nil
}

func (t *pgTx) InsertOrder(ctx context.Context, o *Order) error {
	return t.tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, status, total_amount, created_at, updated_at)
		VALUES ($1,$2,$3,NOW(),NOW())
		RETURNING id, created_at, updated_at
	`, o.UserID, o.Status, o.TotalAmount).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (t *pgTx) InsertLine(ctx context.Context, l *Line) error {
	return t.tx.QueryRow(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, price_at_order)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, l.OrderID, l.ProductID, l.Quantity, l.PriceAtOrder).Scan(&l.ID)
}

func (t *pgTx) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`, productID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Should be unreachable behind the FOR UPDATE read; kept as the
		// final floor guard.
		return apperr.New(apperr.KindConflict, "stock for product %d changed during reservation", productID)
	}
	return nil
}
