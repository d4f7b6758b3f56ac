// Package postgres implements the domain service interfaces on PostgreSQL
// via pgx. Each store owns its SQL; callers only see domain types.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dorianvale/praxis/internal/domain"
)

// DB is the connection pool shared by all stores.
type DB = *pgxpool.Pool

// notFound maps pgx.ErrNoRows onto a domain error, passing other errors
// through wrapped as internal.
func notFound(err error, sentinel error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return domain.WrapError(err, domain.EINTERNAL, op, "database query failed")
}

// isUniqueViolation reports whether err is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
