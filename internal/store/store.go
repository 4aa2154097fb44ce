// Package store implements the inventory repositories on top of SQLite.
//
// Every function takes the database handle explicitly. Writes that touch
// more than one row run in a single transaction together with their
// history entries, so a failed call leaves committed state unchanged.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// TimeLayout is the ISO-8601 layout dates are stored in.
const TimeLayout = "2006-01-02 15:04:05"

// now is the clock used to stamp rows.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func timestamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

func requireUser(user string) (string, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return "", validationf("acting user is required")
	}
	return user, nil
}

// exists reports whether query returns at least one row.
func exists(ctx context.Context, q querier, query string, args ...any) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func ptr[T any](v T) *T {
	return &v
}

// deref turns an optional value into a query argument, nil meaning NULL.
func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
