package db

import (
	"context"
	"database/sql"
	"testing"
)

// NewTestDB creates a fresh in-memory SQLite database with the schema and
// seed rows applied.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := Init(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("initializing test database: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}
