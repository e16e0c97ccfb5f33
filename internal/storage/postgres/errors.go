package postgres

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/souqly/storefront/internal/apperr"
)

// SQLSTATE codes mapped explicitly.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
)

// classify normalizes a driver error into an *apperr.Error. Domain sentinel
// errors returned by repositories are wrapped separately with notFound or
// conflict so errors.Is keeps working on them.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	return apperr.New(kindOf(err), op, err)
}

func kindOf(err error) apperr.Kind {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.KindNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || pgconn.Timeout(err) {
		return apperr.KindUnavailable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch code := pgErr.Code; {
		case code == codeUniqueViolation:
			return apperr.KindConflict
		case code == codeForeignKeyViolation, code == codeCheckViolation, code == codeNotNullViolation:
			return apperr.KindInvalid
		case strings.HasPrefix(code, "22"):
			// Data exception: bad input such as numeric overflow.
			return apperr.KindInvalid
		case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "53"), strings.HasPrefix(code, "57P"):
			// Connection exception, insufficient resources, operator intervention.
			return apperr.KindUnavailable
		}
		return apperr.KindInternal
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return apperr.KindUnavailable
	}
	return apperr.KindInternal
}

func notFound(op string, sentinel error) error {
	return apperr.New(apperr.KindNotFound, op, sentinel)
}

func conflict(op string, sentinel error) error {
	return apperr.New(apperr.KindConflict, op, sentinel)
}
