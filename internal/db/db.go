package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// pragmas are applied to every pooled connection through the DSN, so the
// busy timeout and foreign key enforcement hold no matter which connection
// database/sql hands out.
var pragmas = []string{
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
}

// DSN builds the modernc.org/sqlite data source name for path. Write
// transactions use BEGIN IMMEDIATE so concurrent writers queue on the
// busy timeout instead of failing at commit.
func DSN(path string) string {
	params := make([]string, 0, len(pragmas)+1)
	for _, p := range pragmas {
		params = append(params, "_pragma="+p)
	}
	params = append(params, "_txlock=immediate")
	return path + "?" + strings.Join(params, "&")
}

// Open opens a SQLite database connection and verifies it is usable.
func Open(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("opening database: path is required")
	}

	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if isMemory(path) {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return db, nil
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}
