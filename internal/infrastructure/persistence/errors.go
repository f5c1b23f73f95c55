package persistence

import (
	"errors"
	"fmt"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// SQLSTATE codes that signal a retryable transaction conflict
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgStringTooLong        = "22001"
)

// IsSerializationFailure reports whether err aborted a transaction because of a
// concurrent one: postgres serialization failures and deadlocks, sqlite busy/locked.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// translateError maps driver errors onto domain sentinels.
// Domain errors and unknown errors pass through unchanged.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case IsSerializationFailure(err):
		return fmt.Errorf("%w: %v", shared.Wrap(shared.ErrConcurrencyConflict, "Transaction conflicted with a concurrent writer"), err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", shared.ErrAlreadyExists, err)
	case isStringTooLong(err):
		return fmt.Errorf("%w: %v", shared.Wrap(shared.ErrInvalidInput, "Value exceeds the column length"), err)
	}
	return err
}

func isStringTooLong(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgStringTooLong
}
