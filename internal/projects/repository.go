package projects

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists projects and timeline entries in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const projectColumns = `id, name, client_name, client_email, location, description, status, start_date, end_date, created_at, updated_at`

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Name, &p.ClientName, &p.ClientEmail, &p.Location,
		&p.Description, &p.Status, &p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Project{}, ErrProjectNotFound
	}
	return p, err
}

// Create inserts a project in the pending state.
func (r *Repository) Create(ctx context.Context, input ProjectInput) (Project, error) {
	return scanProject(r.pool.QueryRow(ctx, `INSERT INTO projects
(name, client_name, client_email, location, description, status, start_date, end_date, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW()) RETURNING `+projectColumns,
		input.Name, input.ClientName, input.ClientEmail, input.Location,
		input.Description, StatusPending, input.StartDate, input.EndDate))
}

// Update rewrites the descriptive fields of a project.
func (r *Repository) Update(ctx context.Context, id int64, input ProjectInput) (Project, error) {
	return scanProject(r.pool.QueryRow(ctx, `UPDATE projects
SET name=$2, client_name=$3, client_email=$4, location=$5, description=$6, start_date=$7, end_date=$8, updated_at=NOW()
WHERE id=$1 RETURNING `+projectColumns,
		id, input.Name, input.ClientName, input.ClientEmail, input.Location,
		input.Description, input.StartDate, input.EndDate))
}

// UpdateStatus moves a project to a new lifecycle state, guarding the
// transition at the database so two concurrent confirms cannot both win.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to Status) (Project, error) {
	p, err := scanProject(r.pool.QueryRow(ctx, `UPDATE projects
SET status=$3, updated_at=NOW()
WHERE id=$1 AND status=$2 RETURNING `+projectColumns, id, from, to))
	if errors.Is(err, ErrProjectNotFound) {
		// Row exists but the status no longer matches, or the id is
		// unknown. Distinguish for the caller.
		if _, getErr := r.Get(ctx, id); getErr == nil {
			return Project{}, ErrInvalidTransition
		}
		return Project{}, ErrProjectNotFound
	}
	return p, err
}

// Get returns one project.
func (r *Repository) Get(ctx context.Context, id int64) (Project, error) {
	return scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id=$1`, id))
}

// List returns projects newest first, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status Status) ([]Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	args := []any{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AddTimelineEntry inserts a progress update.
func (r *Repository) AddTimelineEntry(ctx context.Context, projectID int64, title, body string, photoURLs []string, postedBy int64) (TimelineEntry, error) {
	var e TimelineEntry
	err := r.pool.QueryRow(ctx, `INSERT INTO project_timeline
(project_id, title, body, photo_urls, posted_by, created_at)
VALUES ($1,$2,$3,$4,$5,NOW())
RETURNING id, project_id, title, body, photo_urls, posted_by, created_at`,
		projectID, title, body, photoURLs, postedBy).
		Scan(&e.ID, &e.ProjectID, &e.Title, &e.Body, &e.PhotoURLs, &e.PostedBy, &e.CreatedAt)
	return e, err
}

// Timeline returns the entries for a project, newest first.
func (r *Repository) Timeline(ctx context.Context, projectID int64) ([]TimelineEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, project_id, title, body, photo_urls, posted_by, created_at
FROM project_timeline WHERE project_id=$1 ORDER BY created_at DESC, id DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TimelineEntry
	for rows.Next() {
		var e TimelineEntry
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Title, &e.Body, &e.PhotoURLs, &e.PostedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteTimelineEntry removes an entry and returns its photo URLs so the
// caller can clean up object storage.
func (r *Repository) DeleteTimelineEntry(ctx context.Context, projectID, entryID int64) ([]string, error) {
	var urls []string
	err := r.pool.QueryRow(ctx, `DELETE FROM project_timeline
WHERE id=$1 AND project_id=$2 RETURNING photo_urls`, entryID, projectID).Scan(&urls)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	return urls, err
}
