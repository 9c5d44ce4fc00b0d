package sql

import (
	"errors"
	"fmt"

	"github.com/iyhunko/inventory-manager/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// PostgreSQL error codes. See https://www.postgresql.org/docs/14/errcodes-appendix.html
const (
	pqUniqueViolationErrCode = "23505"
	pqNumericOutOfRangeCode  = "22003"
)

// mapError converts driver unique violations into *repository.UniqueConstraintError
// and numeric overflows into repository.ErrOutOfRange.
// Both pgx and lib/pq are supported since the driver is chosen at runtime.
func mapError(err error) error {
	code, message, detail := sqlState(err)
	switch code {
	case pqUniqueViolationErrCode:
		return &repository.UniqueConstraintError{Detail: detail}
	case pqNumericOutOfRangeCode:
		return fmt.Errorf("%s: %w", message, repository.ErrOutOfRange)
	}
	return err
}

func sqlState(err error) (code, message, detail string) {
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		return pgError.Code, pgError.Message, pgError.Detail
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Message, pqErr.Detail
	}
	return "", "", ""
}
