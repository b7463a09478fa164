package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists products in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `id, name, category, unit, supplier, sale_price, created_at, updated_at`

// Create inserts a product.
func (r *Repository) Create(ctx context.Context, input ProductInput) (Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx, `INSERT INTO products (name, category, unit, supplier, sale_price, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,NOW(),NOW()) RETURNING `+productColumns,
		input.Name, input.Category, input.Unit, input.Supplier, input.SalePrice).
		Scan(&p.ID, &p.Name, &p.Category, &p.Unit, &p.Supplier, &p.SalePrice, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Product{}, ErrDuplicateName
		}
		return Product{}, err
	}
	return p, nil
}

// Update rewrites the mutable fields of a product.
func (r *Repository) Update(ctx context.Context, id int64, input ProductInput) (Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx, `UPDATE products
SET name=$2, category=$3, unit=$4, supplier=$5, sale_price=$6, updated_at=NOW()
WHERE id=$1 RETURNING `+productColumns,
		id, input.Name, input.Category, input.Unit, input.Supplier, input.SalePrice).
		Scan(&p.ID, &p.Name, &p.Category, &p.Unit, &p.Supplier, &p.SalePrice, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		if isUniqueViolation(err) {
			return Product{}, ErrDuplicateName
		}
		return Product{}, err
	}
	return p, nil
}

// Get returns one product.
func (r *Repository) Get(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Category, &p.Unit, &p.Supplier, &p.SalePrice, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}
	return p, nil
}

// List returns products ordered by name, optionally filtered by category.
func (r *Repository) List(ctx context.Context, category string) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products
WHERE ($1 = '' OR category = $1) ORDER BY name ASC, id ASC`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Unit, &p.Supplier, &p.SalePrice, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Categories returns the distinct categories in use.
func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
