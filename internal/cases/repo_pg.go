package cases

import (
	"context"
	"database/sql"
	"errors"

	"petition-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const caseColumns = `id, company_id, title, process_number, agency, description, status, created_at, updated_at`

// Create inserts a case. A missing company surfaces as not found.
func (r *PGRepo) Create(ctx context.Context, c Case) error {
	const query = `
INSERT INTO cases (` + caseColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.ExecContext(ctx, query,
		c.ID,
		c.CompanyID,
		c.Title,
		c.ProcessNumber,
		c.Agency,
		sql.NullString{String: c.Description, Valid: c.Description != ""},
		string(c.Status),
		c.CreatedAt,
		c.UpdatedAt,
	)
	return db.Translate("cases.create", err)
}

// GetByID returns a case by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Case, error) {
	const query = `SELECT ` + caseColumns + ` FROM cases WHERE id = $1`
	c, err := scanCase(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Case{}, ErrNotFound
		}
		return Case{}, db.Translate("cases.get", err)
	}
	return c, nil
}

// ListByCompany lists the company's cases ordered newest-first.
func (r *PGRepo) ListByCompany(ctx context.Context, companyID string) ([]Case, error) {
	const query = `SELECT ` + caseColumns + ` FROM cases WHERE company_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, db.Translate("cases.list", err)
	}
	defer rows.Close()

	out := make([]Case, 0)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, db.Translate("cases.list", err)
		}
		out = append(out, c)
	}
	return out, db.Translate("cases.list", rows.Err())
}

// UpdateStatus sets the status of a case.
func (r *PGRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	const query = `UPDATE cases SET status = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, string(status))
	if err != nil {
		return db.Translate("cases.update_status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCase(row scanner) (Case, error) {
	var c Case
	var description sql.NullString
	var status string
	err := row.Scan(
		&c.ID,
		&c.CompanyID,
		&c.Title,
		&c.ProcessNumber,
		&c.Agency,
		&description,
		&status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	c.Description = description.String
	c.Status = Status(status)
	return c, err
}

var _ Repo = (*PGRepo)(nil)
