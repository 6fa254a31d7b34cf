package category

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/inventory-api/internal/apperr"
	"github.com/MikeMC777/inventory-api/internal/product"
)

type Repository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id int64) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, id int64, name string) (*Category, error)
	Delete(ctx context.Context, id int64) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO categories (name, created_at, updated_at)
		VALUES ($1,NOW(),NOW())
		RETURNING id, created_at, updated_at
	`, c.Name).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.New(apperr.KindConflict, "category with this name already exists")
		}
		return err
	}
	c.Products = []product.Product{}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (*Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c Category
	err := r.db.QueryRow(ctx, `
		SELECT id, name, created_at, updated_at FROM categories WHERE id=$1
	`, id).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, apperr.New(apperr.KindNotFound, "category not found")
	}
	products, err := r.productsFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	c.Products = products[id]
	if c.Products == nil {
		c.Products = []product.Product{}
	}
	return &c, nil
}

func (r *PGRepo) List(ctx context.Context) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT id, name, created_at, updated_at FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	var ids []int64
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	products, err := r.productsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Products = products[out[i].ID]
		if out[i].Products == nil {
			out[i].Products = []product.Product{}
		}
	}
	return out, nil
}

func (r *PGRepo) productsFor(ctx context.Context, categoryIDs []int64) (map[int64][]product.Product, error) {
	if len(categoryIDs) == 0 {
		return map[int64][]product.Product{}, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, name, COALESCE(description,''), price::text, stock, category_id, created_at, updated_at
		FROM products WHERE category_id = ANY($1)
		ORDER BY id
	`, categoryIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]product.Product)
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock,
			&p.CategoryID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out[p.CategoryID] = append(out[p.CategoryID], p)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, id int64, name string) (*Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c Category
	err := r.db.QueryRow(ctx, `
		UPDATE categories SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, created_at, updated_at
	`, id, name).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.KindNotFound, "category not found for update")
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperr.New(apperr.KindConflict, "category with this name already exists")
		}
		return nil, err
	}
	return &c, nil
}

// Delete refuses to remove a category that still has products; callers must
// reassign or delete them first.
func (r *PGRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE category_id=$1`, id).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return apperr.New(apperr.KindInvalidInput, "cannot delete category with associated products")
	}

	cmd, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.New(apperr.KindNotFound, "category not found for deletion")
	}
	return nil
}
