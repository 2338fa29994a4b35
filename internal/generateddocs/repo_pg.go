package generateddocs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"petition-backend/internal/shared/storage/db"
	"petition-backend/petition/model"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const generatedColumns = `id, case_id, doc_type, storage_key, storage_url, size_bytes, parameters, created_at`

// Create inserts a generated document. Parameters are stored as JSONB.
func (r *PGRepo) Create(ctx context.Context, doc GeneratedDocument) error {
	params, err := json.Marshal(doc.Parameters)
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}
	const query = `
INSERT INTO generated_documents (` + generatedColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.CaseID,
		string(doc.DocType),
		doc.StorageKey,
		doc.StorageURL,
		doc.SizeBytes,
		params,
		doc.CreatedAt,
	)
	return db.Translate("generateddocs.create", err)
}

// GetByID returns a generated document by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (GeneratedDocument, error) {
	const query = `SELECT ` + generatedColumns + ` FROM generated_documents WHERE id = $1`
	doc, err := scanGenerated(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GeneratedDocument{}, ErrNotFound
		}
		return GeneratedDocument{}, db.Translate("generateddocs.get", err)
	}
	return doc, nil
}

// ListByCase lists a case's generated documents ordered newest-first.
func (r *PGRepo) ListByCase(ctx context.Context, caseID string) ([]GeneratedDocument, error) {
	const query = `SELECT ` + generatedColumns + ` FROM generated_documents WHERE case_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, db.Translate("generateddocs.list", err)
	}
	defer rows.Close()

	out := make([]GeneratedDocument, 0)
	for rows.Next() {
		doc, err := scanGenerated(rows)
		if err != nil {
			return nil, db.Translate("generateddocs.list", err)
		}
		out = append(out, doc)
	}
	return out, db.Translate("generateddocs.list", rows.Err())
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGenerated(row scanner) (GeneratedDocument, error) {
	var (
		doc     GeneratedDocument
		docType string
		params  []byte
	)
	if err := row.Scan(
		&doc.ID,
		&doc.CaseID,
		&docType,
		&doc.StorageKey,
		&doc.StorageURL,
		&doc.SizeBytes,
		&params,
		&doc.CreatedAt,
	); err != nil {
		return GeneratedDocument{}, err
	}
	doc.DocType = model.DocType(docType)
	if len(params) > 0 {
		if err := json.Unmarshal(params, &doc.Parameters); err != nil {
			return GeneratedDocument{}, fmt.Errorf("decode parameters: %w", err)
		}
	}
	return doc, nil
}

var _ Repo = (*PGRepo)(nil)
