package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgRepository persists ledger records in PostgreSQL. Records are only
// ever inserted; there is no update or delete path.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs PgRepository.
func NewRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const recordColumns = `id, code, project_id, product_id, product_name, category, action, quantity, unit, supplier, sale_price, total_value, reorder_point, actor_id, actor_name, actor_role, notes, created_at`

// Append inserts one record and returns it with its assigned id.
func (r *PgRepository) Append(ctx context.Context, rec Record) (Record, error) {
	if r == nil {
		return Record{}, errors.New("ledger repository not initialised")
	}
	err := r.pool.QueryRow(ctx, `INSERT INTO inventory_ledger
(code, project_id, product_id, product_name, category, action, quantity, unit, supplier, sale_price, total_value, reorder_point, actor_id, actor_name, actor_role, notes, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
RETURNING id`,
		rec.Code, rec.ProjectID, rec.ProductID, rec.ProductName, rec.Category, string(rec.Action),
		rec.Quantity, rec.Unit, rec.Supplier, rec.SalePrice, rec.TotalValue, rec.ReorderPoint,
		rec.ActionBy.UserID, rec.ActionBy.Name, rec.ActionBy.Role, rec.Notes, rec.CreatedAt).
		Scan(&rec.ID)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ListByProject returns the full project ledger, oldest first.
func (r *PgRepository) ListByProject(ctx context.Context, projectID int64) ([]Record, error) {
	return r.list(ctx, `SELECT `+recordColumns+` FROM inventory_ledger
WHERE project_id=$1 ORDER BY created_at ASC, id ASC`, projectID)
}

// ListByProjectProduct returns the ledger for one product within a project.
func (r *PgRepository) ListByProjectProduct(ctx context.Context, projectID, productID int64) ([]Record, error) {
	return r.list(ctx, `SELECT `+recordColumns+` FROM inventory_ledger
WHERE project_id=$1 AND product_id=$2 ORDER BY created_at ASC, id ASC`, projectID, productID)
}

func (r *PgRepository) list(ctx context.Context, query string, args ...any) ([]Record, error) {
	if r == nil {
		return nil, errors.New("ledger repository not initialised")
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := []Record{}
	for rows.Next() {
		var rec Record
		var action string
		if err := rows.Scan(&rec.ID, &rec.Code, &rec.ProjectID, &rec.ProductID, &rec.ProductName, &rec.Category,
			&action, &rec.Quantity, &rec.Unit, &rec.Supplier, &rec.SalePrice, &rec.TotalValue, &rec.ReorderPoint,
			&rec.ActionBy.UserID, &rec.ActionBy.Name, &rec.ActionBy.Role, &rec.Notes, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Action = Action(action)
		records = append(records, rec)
	}
	return records, rows.Err()
}
