package store

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Every error returned by this package wraps exactly one of these.
var (
	// ErrValidation marks bad input: a missing field, an out-of-range
	// number or a reference to a row that does not exist.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a target that is absent or already soft-deleted.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a duplicate name or a row still referenced by
	// active objects.
	ErrConflict = errors.New("conflict")
	// ErrStorage marks a failure of the database itself: connection,
	// lock timeout or I/O.
	ErrStorage = errors.New("storage failure")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// classified reports whether err already carries a taxonomy error.
func classified(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) || errors.Is(err, ErrStorage)
}

// storageError converts a driver error into the taxonomy. Constraint
// violations become validation or conflict errors; anything else is logged
// and reported as ErrStorage. The driver error is kept as text only, so
// callers never see raw *sqlite.Error values.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if classified(err) {
		return err
	}

	switch constraintKind(err) {
	case ErrValidation:
		return fmt.Errorf("%s: %w: %v", op, ErrValidation, err)
	case ErrConflict:
		return fmt.Errorf("%s: %w: %v", op, ErrConflict, err)
	}

	if isBusy(err) {
		slog.Error("database lock timeout", "op", op, "error", err)
	} else {
		slog.Error("database operation failed", "op", op, "error", err)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStorage, err)
}

// constraintKind maps SQLite constraint failures onto ErrValidation or
// ErrConflict. It returns nil for any other error.
func constraintKind(err error) error {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return nil
	}

	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return ErrValidation
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return ErrConflict
	}

	// Primary result code only: fall back to the message.
	if sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		message := strings.ToLower(err.Error())
		if strings.Contains(message, "unique constraint failed") {
			return ErrConflict
		}
		return ErrValidation
	}
	return nil
}

func isBusy(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code() & 0xff
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}
