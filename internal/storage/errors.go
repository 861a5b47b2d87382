package storage

import (
	"errors"
	"fmt"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrStorageUnavailable means the database file could not be opened or prepared.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrStorageFailure wraps any other store operation error.
	ErrStorageFailure = errors.New("storage failure")
	// ErrDuplicateUsername is returned when inserting a username that already exists.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrNotFound is returned when a row addressed by id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrBudgetAlreadySet is returned when the month already has a budget.
	ErrBudgetAlreadySet = errors.New("budget already set for this month")
)

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}

func failure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageFailure, err)
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
