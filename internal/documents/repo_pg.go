package documents

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

const documentColumns = `id, case_id, filename, kind, storage_key, content_type, size_bytes, uploaded_at`

// Create inserts a source document.
func (r *PGRepo) Create(ctx context.Context, doc SourceDocument) error {
	const query = `
INSERT INTO source_documents (` + documentColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.CaseID,
		doc.FileName,
		string(doc.Kind),
		doc.StorageKey,
		doc.ContentType,
		doc.SizeBytes,
		doc.UploadedAt,
	)
	return db.Translate("documents.create", err)
}

// GetByID returns a source document by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (SourceDocument, error) {
	const query = `SELECT ` + documentColumns + ` FROM source_documents WHERE id = $1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SourceDocument{}, ErrNotFound
		}
		return SourceDocument{}, db.Translate("documents.get", err)
	}
	return doc, nil
}

// ListByCase lists a case's documents ordered newest-first.
func (r *PGRepo) ListByCase(ctx context.Context, caseID string) ([]SourceDocument, error) {
	const query = `SELECT ` + documentColumns + ` FROM source_documents WHERE case_id = $1 ORDER BY uploaded_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, db.Translate("documents.list", err)
	}
	defer rows.Close()

	out := make([]SourceDocument, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, db.Translate("documents.list", err)
		}
		out = append(out, doc)
	}
	return out, db.Translate("documents.list", rows.Err())
}

// Delete removes the metadata row.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM source_documents WHERE id = $1`, id)
	if err != nil {
		return db.Translate("documents.delete", err)
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

func scanDocument(row scanner) (SourceDocument, error) {
	var doc SourceDocument
	var kind string
	err := row.Scan(
		&doc.ID,
		&doc.CaseID,
		&doc.FileName,
		&kind,
		&doc.StorageKey,
		&doc.ContentType,
		&doc.SizeBytes,
		&doc.UploadedAt,
	)
	doc.Kind = Kind(kind)
	return doc, err
}

var _ Repo = (*PGRepo)(nil)
