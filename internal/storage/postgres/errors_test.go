package postgres

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqly/storefront/internal/apperr"
	"github.com/souqly/storefront/internal/domain/product"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"no rows", pgx.ErrNoRows, apperr.KindNotFound},
		{"wrapped no rows", errors.Wrap(pgx.ErrNoRows, "scan"), apperr.KindNotFound},
		{"unique", &pgconn.PgError{Code: "23505"}, apperr.KindConflict},
		{"foreign key", &pgconn.PgError{Code: "23503"}, apperr.KindInvalid},
		{"check", &pgconn.PgError{Code: "23514"}, apperr.KindInvalid},
		{"numeric overflow", &pgconn.PgError{Code: "22003"}, apperr.KindInvalid},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, apperr.KindUnavailable},
		{"too many connections", &pgconn.PgError{Code: "53300"}, apperr.KindUnavailable},
		{"syntax", &pgconn.PgError{Code: "42601"}, apperr.KindInternal},
		{"deadline", context.DeadlineExceeded, apperr.KindUnavailable},
		{"other", errors.New("boom"), apperr.KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("op", tt.err)
			require.Error(t, err)
			assert.Equal(t, tt.want, apperr.KindOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.NoError(t, classify("op", nil))
}

func TestNotFoundKeepsSentinel(t *testing.T) {
	err := notFound("get product", product.ErrNotFound)
	assert.ErrorIs(t, err, product.ErrNotFound)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
