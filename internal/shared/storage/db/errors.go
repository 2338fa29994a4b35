package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"petition-backend/internal/shared/apperror"
)

// Translate maps driver errors onto apperror codes. Connection-level
// failures become retryable BACKEND_UNAVAILABLE errors; constraint violations
// and missing rows are terminal.
func Translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.Terminal(apperror.CodeNotFound, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return apperror.Terminal(apperror.CodeConflict, op, err)
		case pgErr.Code == "23503":
			return apperror.Terminal(apperror.CodeNotFound, op, err)
		case strings.HasPrefix(pgErr.Code, "08"),
			pgErr.Code == "57P01", pgErr.Code == "57P02", pgErr.Code == "57P03",
			pgErr.Code == "53300",
			pgErr.Code == "40001", pgErr.Code == "40P01":
			return apperror.Transient(apperror.CodeBackendUnavailable, op, err)
		case strings.HasPrefix(pgErr.Code, "22"), strings.HasPrefix(pgErr.Code, "23"):
			return apperror.Wrap(err, apperror.KindValidation, "", op)
		default:
			return apperror.Terminal(apperror.CodeInternal, op, err)
		}
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) || errors.Is(err, driver.ErrBadConn) {
		return apperror.Transient(apperror.CodeBackendUnavailable, op, err)
	}
	return &apperror.Error{Op: op, Err: err}
}
