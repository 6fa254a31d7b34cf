package order

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the read-only projection over stored orders. Writes go
// through the Engine only.
type Repository interface {
	// ListAll returns every order across all users, newest first, with the
	// owner's identity attached. Admin-scoped.
	ListAll(ctx context.Context) ([]Order, error)
	// ListByUser returns only the given user's orders, newest first.
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) ListAll(ctx context.Context) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT o.id, o.user_id, u.email, o.status, o.total_amount::text, o.created_at, o.updated_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	var ids []int64
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.UserEmail, &o.Status, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return r.attachLines(ctx, out, ids)
}

func (r *PGRepo) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, status, total_amount::text, created_at, updated_at
		FROM orders WHERE user_id=$1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	var ids []int64
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return r.attachLines(ctx, out, ids)
}

// attachLines loads the lines of all listed orders in one query. The
// product join is LEFT: a product deleted after the order was placed still
// leaves the line intact with its price snapshot.
func (r *PGRepo) attachLines(ctx context.Context, orders []Order, ids []int64) ([]Order, error) {
	if len(ids) == 0 {
		return orders, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT i.id, i.order_id, i.product_id, COALESCE(p.name,''), i.quantity, i.price_at_order::text
		FROM order_items i
		LEFT JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.id
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byOrder := make(map[int64][]Line, len(ids))
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &l.PriceAtOrder); err != nil {
			return nil, err
		}
		byOrder[l.OrderID] = append(byOrder[l.OrderID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Lines = byOrder[orders[i].ID]
		if orders[i].Lines == nil {
			orders[i].Lines = []Line{}
		}
	}
	return orders, nil
}
