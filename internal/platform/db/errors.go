package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsDataException reports whether PostgreSQL rejected a value supplied by the
// caller (SQLSTATE class 22), such as "ge12x" cast to numeric in a search
// filter.
func IsDataException(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && len(pgErr.Code) == 5 && pgErr.Code[:2] == "22"
}
