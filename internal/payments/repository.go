package payments

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository persists payments in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const paymentColumns = `id, project_id, amount, method, reference, notes, recorded_by, created_at`

// Create inserts a payment.
func (r *Repository) Create(ctx context.Context, input PaymentInput) (Payment, error) {
	var p Payment
	err := r.pool.QueryRow(ctx, `INSERT INTO payments
(project_id, amount, method, reference, notes, recorded_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW()) RETURNING `+paymentColumns,
		input.ProjectID, input.Amount, input.Method, input.Reference, input.Notes, input.RecordedBy).
		Scan(&p.ID, &p.ProjectID, &p.Amount, &p.Method, &p.Reference, &p.Notes, &p.RecordedBy, &p.CreatedAt)
	return p, err
}

// Get returns one payment.
func (r *Repository) Get(ctx context.Context, id int64) (Payment, error) {
	var p Payment
	err := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=$1`, id).
		Scan(&p.ID, &p.ProjectID, &p.Amount, &p.Method, &p.Reference, &p.Notes, &p.RecordedBy, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payment{}, ErrPaymentNotFound
	}
	return p, err
}

// ListByProject returns a project's payments, newest first.
func (r *Repository) ListByProject(ctx context.Context, projectID int64) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments
WHERE project_id=$1 ORDER BY created_at DESC, id DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.Amount, &p.Method, &p.Reference, &p.Notes, &p.RecordedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// TotalByProject sums a project's payments.
func (r *Repository) TotalByProject(ctx context.Context, projectID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE project_id=$1`, projectID).
		Scan(&total)
	return total, err
}
