package warehouse

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists warehouse stock in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetItem returns the stock row for a product.
func (r *Repository) GetItem(ctx context.Context, productID int64) (Item, error) {
	var item Item
	err := r.pool.QueryRow(ctx, `SELECT product_id, quantity, reorder_point, updated_at
FROM main_inventory WHERE product_id=$1`, productID).
		Scan(&item.ProductID, &item.Quantity, &item.ReorderPoint, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrItemNotFound
		}
		return Item{}, err
	}
	return item, nil
}

// List returns all stock rows ordered by product.
func (r *Repository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT product_id, quantity, reorder_point, updated_at
FROM main_inventory ORDER BY product_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Item{}
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.ReorderPoint, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Upsert sets the absolute stock level and threshold for a product.
func (r *Repository) Upsert(ctx context.Context, item Item) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO main_inventory (product_id, quantity, reorder_point, updated_at)
VALUES ($1,$2,$3,NOW())
ON CONFLICT (product_id) DO UPDATE SET quantity=EXCLUDED.quantity, reorder_point=EXCLUDED.reorder_point, updated_at=NOW()`,
		item.ProductID, item.Quantity, item.ReorderPoint)
	return err
}

// Decrement subtracts qty from the stock level only when enough stock
// remains. The conditional update makes concurrent checkouts safe: two
// racing requests cannot both succeed against the same last unit.
func (r *Repository) Decrement(ctx context.Context, productID int64, qty float64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE main_inventory
SET quantity = quantity - $2, updated_at = NOW()
WHERE product_id = $1 AND quantity >= $2`, productID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetItem(ctx, productID); errors.Is(getErr, ErrItemNotFound) {
			return ErrItemNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}

// Increment adds qty to the stock level.
func (r *Repository) Increment(ctx context.Context, productID int64, qty float64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE main_inventory
SET quantity = quantity + $2, updated_at = NOW()
WHERE product_id = $1`, productID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}
