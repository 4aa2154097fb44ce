package db

import (
	"context"
	"database/sql"
	"fmt"
)

// DefaultZoneID is the zone that always exists and can never be removed.
const DefaultZoneID int64 = 1

// SeedUser is recorded as the creator of seeded rows.
const SeedUser = "system"

type seedRow struct {
	id   int64
	name string
}

var (
	seedStatuses = []seedRow{
		{1, "Active"},
		{2, "Maintenance"},
		{3, "Out of Service"},
		{4, "Reserved"},
	}

	seedCategories = []seedRow{
		{1, "Electronics"},
		{2, "Furniture"},
		{3, "Tools"},
		{4, "Office Supplies"},
	}

	seedZones = []seedRow{
		{DefaultZoneID, "General Zone"},
		{2, "Storage"},
		{3, "Office"},
	}
)

// Seed inserts the baseline statuses, categories and zones. Rows that
// already exist (by id or by name) are left untouched.
func Seed(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	tables := []struct {
		name string
		rows []seedRow
	}{
		{"statuses", seedStatuses},
		{"categories", seedCategories},
		{"zones", seedZones},
	}

	for _, table := range tables {
		query := fmt.Sprintf(`INSERT OR IGNORE INTO %s (id, name, creation_user) VALUES (?, ?, ?)`, table.name)
		for _, row := range table.rows {
			if _, err := tx.ExecContext(ctx, query, row.id, row.name, SeedUser); err != nil {
				return fmt.Errorf("seeding %s: %w", table.name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}
	return nil
}
