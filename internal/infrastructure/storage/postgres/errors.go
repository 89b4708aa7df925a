package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"tourreg/internal/core/apperror"
)

// SQLSTATE codes used by the registry.
const (
	uniqueViolation = "23505"
)

// IsUniqueViolation reports whether err is a unique constraint violation.
// constraint, when non-empty, must match the violated constraint name.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// WrapErr turns a driver error into EXTERNAL_SERVICE_ERROR. AppErrors pass through.
func WrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewExternalService(op, err)
}
