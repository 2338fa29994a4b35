package documents

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"petition-backend/internal/shared/apperror"
)

func newMock(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newMock(t)
	doc := SourceDocument{
		ID: "doc-1", CaseID: "case-1", FileName: "edital.pdf", Kind: KindEdital,
		StorageKey: "case-1/1-abc123-edital.pdf", ContentType: "application/pdf", SizeBytes: 2048,
		UploadedAt: time.Now().UTC(),
	}
	mock.ExpectExec("INSERT INTO source_documents").
		WithArgs(doc.ID, doc.CaseID, doc.FileName, "edital", doc.StorageKey, doc.ContentType, doc.SizeBytes, doc.UploadedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), doc))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoCreateConnectionLossIsRetryable(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec("INSERT INTO source_documents").
		WillReturnError(&pgconn.PgError{Code: "08006", Message: "connection failure"})

	err := repo.Create(context.Background(), SourceDocument{ID: "doc-1"})
	require.Equal(t, apperror.KindTransientIO, apperror.KindOf(err))
	require.Equal(t, apperror.CodeBackendUnavailable, apperror.CodeOf(err))
}

func TestPGRepoListByCase(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "case_id", "filename", "kind", "storage_key", "content_type", "size_bytes", "uploaded_at"}).
		AddRow("doc-2", "case-1", "recurso.pdf", "recurso_concorrente", "k2", "application/pdf", 10, now).
		AddRow("doc-1", "case-1", "edital.pdf", "edital", "k1", "application/pdf", 20, now.Add(-time.Hour))
	mock.ExpectQuery("SELECT id, case_id").WithArgs("case-1").WillReturnRows(rows)

	got, err := repo.ListByCase(context.Background(), "case-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, KindCompetitorAppeal, got[0].Kind)
}

func TestPGRepoDeleteMissing(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec("DELETE FROM source_documents").WithArgs("nope").WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.Delete(context.Background(), "nope"), ErrNotFound)
}
