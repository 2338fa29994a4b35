package generateddocs

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"petition-backend/internal/shared/apperror"
	"petition-backend/petition/model"
)

func newMock(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

var generatedRowColumns = []string{"id", "case_id", "doc_type", "storage_key", "storage_url", "size_bytes", "parameters", "created_at"}

func TestPGRepoCreateStoresParametersAsJSON(t *testing.T) {
	repo, mock := newMock(t)
	doc := GeneratedDocument{
		ID: "gen-1", CaseID: "case-1", DocType: model.DocTypeCounterArguments,
		StorageKey: "generated/case-1/1-abc123-contrarrazoes.docx", StorageURL: "/api/v1/files/generated/case-1/1-abc123-contrarrazoes.docx",
		SizeBytes: 4096, Parameters: Parameters{Text: "prazo vencido", DocType: "contrarrazoes"},
		CreatedAt: time.Now().UTC(),
	}
	mock.ExpectExec("INSERT INTO generated_documents").
		WithArgs(doc.ID, doc.CaseID, "contrarrazoes", doc.StorageKey, doc.StorageURL, doc.SizeBytes,
			[]byte(`{"params":"prazo vencido","docType":"contrarrazoes"}`), doc.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), doc))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoCreateMissingCase(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec("INSERT INTO generated_documents").
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"})

	err := repo.Create(context.Background(), GeneratedDocument{ID: "gen-1", CaseID: "missing"})
	require.True(t, apperror.IsNotFound(err))
}

func TestPGRepoListByCaseDecodesParameters(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows(generatedRowColumns).
		AddRow("gen-2", "case-1", "recurso_administrativo", "k2", "u2", 20, []byte(`{"params":"","docType":"recurso_administrativo"}`), now).
		AddRow("gen-1", "case-1", "prorrogacao_prazo", "k1", "u1", 10, []byte(`{"params":"30 dias","docType":"prorrogacao_prazo"}`), now.Add(-time.Hour))
	mock.ExpectQuery("SELECT id, case_id, doc_type").WithArgs("case-1").WillReturnRows(rows)

	got, err := repo.ListByCase(context.Background(), "case-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, model.DocTypeAdministrativeAppeal, got[0].DocType)
	require.Equal(t, "30 dias", got[1].Parameters.Text)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoGetByIDMissing(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("SELECT id, case_id, doc_type").WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}
