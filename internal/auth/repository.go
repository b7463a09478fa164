package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sitetrack/sitetrack/internal/shared"
)

// Repository persists users in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, name, role, password_hash, google_id, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.GoogleID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	return u, err
}

// Create inserts a user.
func (r *Repository) Create(ctx context.Context, email, name, role, passwordHash, googleID string) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `INSERT INTO users
(email, name, role, password_hash, google_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,NOW(),NOW()) RETURNING `+userColumns,
		email, name, role, passwordHash, googleID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return u, nil
}

// GetByID returns one user by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

// GetByEmail returns one user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email)=lower($1)`, email))
}

// GetByGoogleID returns one user by Google subject id.
func (r *Repository) GetByGoogleID(ctx context.Context, googleID string) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE google_id=$1`, googleID))
}

// LinkGoogleID attaches a Google subject id to an existing account.
func (r *Repository) LinkGoogleID(ctx context.Context, userID int64, googleID string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET google_id=$2, updated_at=NOW() WHERE id=$1`, userID, googleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
