package cases

import (
	"context"
	"database/sql"
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

var columns = []string{"id", "company_id", "title", "process_number", "agency", "description", "status", "created_at", "updated_at"}

func TestPGRepoCreateUnknownCompany(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec("INSERT INTO cases").
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"})

	err := repo.Create(context.Background(), Case{ID: "case-1", CompanyID: "missing", Status: StatusActive})
	require.True(t, apperror.IsNotFound(err))
}

func TestPGRepoListByCompany(t *testing.T) {
	repo, mock := newMock(t)
	newer := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(columns).
		AddRow("case-2", "co-1", "Pregão 12", "12/2026", "Prefeitura", nil, "active", newer, newer).
		AddRow("case-1", "co-1", "Pregão 7", "7/2026", "Estado", "Obras", "archived", older, older)
	mock.ExpectQuery("SELECT id, company_id").WithArgs("co-1").WillReturnRows(rows)

	got, err := repo.ListByCompany(context.Background(), "co-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "case-2", got[0].ID)
	require.Equal(t, StatusArchived, got[1].Status)
	require.Equal(t, "Obras", got[1].Description)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoGetByIDMissing(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("SELECT id, company_id").WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPGRepoUpdateStatus(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec("UPDATE cases SET status").WithArgs("case-1", "completed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "case-1", StatusCompleted))
	require.NoError(t, mock.ExpectationsWereMet())
}
