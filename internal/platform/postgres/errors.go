package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bridgehead/bridgehead-api/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	// undefinedTableCode is returned when a query references a missing table,
	// typically because migrations have not been applied.
	undefinedTableCode = "42P01"

	// invalidTextRepresentationCode is returned for malformed literals.
	invalidTextRepresentationCode = "22P02"

	// adminShutdownCode and cannotConnectNowCode are returned while the server
	// is shutting down or starting up.
	adminShutdownCode    = "57P01"
	cannotConnectNowCode = "57P03"
)

// MapError maps a database error to an appropriate store error.
// It wraps the original error to preserve context and provide better debugging information.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	// Cancellation belongs to the caller and passes through untouched.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case undefinedTableCode:
			return fmt.Errorf("%w: schema not migrated (%s): %v",
				store.ErrUnavailable, pgErr.TableName, err)
		case adminShutdownCode, cannotConnectNowCode:
			return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
		case invalidTextRepresentationCode:
			return fmt.Errorf("%w: %v", store.ErrInvalidQuery, err)
		}
	}

	if errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	return err
}

// IsUndefinedTable reports whether err is a PostgreSQL undefined-table error.
func IsUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == undefinedTableCode
}
