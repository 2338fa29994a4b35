package companies

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

// Create inserts a company.
func (r *PGRepo) Create(ctx context.Context, c Company) error {
	const query = `
INSERT INTO companies (id, name, tax_id, email, phone, address, logo_url, logo_key, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.TaxID,
		nullable(c.Email),
		nullable(c.Phone),
		nullable(c.Address),
		nullable(c.LogoURL),
		nullable(c.LogoKey),
		c.CreatedAt,
		c.UpdatedAt,
	)
	return db.Translate("companies.create", err)
}

// GetByID returns a company by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Company, error) {
	const query = `
SELECT id, name, tax_id, email, phone, address, logo_url, logo_key, created_at, updated_at
FROM companies
WHERE id = $1`
	var c Company
	var email, phone, address, logoURL, logoKey sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.TaxID,
		&email,
		&phone,
		&address,
		&logoURL,
		&logoKey,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Company{}, ErrNotFound
		}
		return Company{}, db.Translate("companies.get", err)
	}
	c.Email, c.Phone, c.Address = email.String, phone.String, address.String
	c.LogoURL, c.LogoKey = logoURL.String, logoKey.String
	return c, nil
}

// Update overwrites the editable settings of a company.
func (r *PGRepo) Update(ctx context.Context, c Company) error {
	const query = `
UPDATE companies
SET name = $2, tax_id = $3, email = $4, phone = $5, address = $6, updated_at = $7
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.TaxID,
		nullable(c.Email),
		nullable(c.Phone),
		nullable(c.Address),
		c.UpdatedAt,
	)
	if err != nil {
		return db.Translate("companies.update", err)
	}
	return requireRow(res)
}

// UpdateLogo records the current logo object.
func (r *PGRepo) UpdateLogo(ctx context.Context, id, logoURL, logoKey string) error {
	const query = `
UPDATE companies
SET logo_url = $2, logo_key = $3, updated_at = NOW()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, logoURL, logoKey)
	if err != nil {
		return db.Translate("companies.update_logo", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Repo = (*PGRepo)(nil)
