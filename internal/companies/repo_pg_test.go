package companies

import (
	"context"
	"database/sql"
	"errors"
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
	now := time.Now().UTC()
	c := Company{ID: "co-1", Name: "Acme Ltda", TaxID: "00.000.000/0001-00", Email: "a@acme.com", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec("INSERT INTO companies").
		WithArgs(c.ID, c.Name, c.TaxID,
			sql.NullString{String: "a@acme.com", Valid: true},
			sql.NullString{}, sql.NullString{}, sql.NullString{}, sql.NullString{},
			now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), c))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoCreateDuplicateIsConflict(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec("INSERT INTO companies").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key"})

	err := repo.Create(context.Background(), Company{ID: "co-1"})
	require.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))
}

func TestPGRepoGetByID(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "name", "tax_id", "email", "phone", "address", "logo_url", "logo_key", "created_at", "updated_at"}).
		AddRow("co-1", "Acme Ltda", "1", nil, "(11) 5555-0000", nil, "http://x/logos/co-1.png", "logos/co-1.png", now, now)
	mock.ExpectQuery("SELECT id, name, tax_id").WithArgs("co-1").WillReturnRows(rows)

	c, err := repo.GetByID(context.Background(), "co-1")
	require.NoError(t, err)
	require.Equal(t, "(11) 5555-0000", c.Phone)
	require.Empty(t, c.Email)
	require.Equal(t, "logos/co-1.png", c.LogoKey)
}

func TestPGRepoGetByIDMissing(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("SELECT id, name, tax_id").WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestPGRepoUpdateLogoMissingRow(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec("UPDATE companies").
		WithArgs("co-9", "http://x/logos/co-9.png", "logos/co-9.png").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateLogo(context.Background(), "co-9", "http://x/logos/co-9.png", "logos/co-9.png")
	require.ErrorIs(t, err, ErrNotFound)
}
