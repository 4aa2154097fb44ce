package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countRows(t *testing.T, database *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestInitSeedsReferenceTables(t *testing.T) {
	database := NewTestDB(t)

	assert.Equal(t, len(seedStatuses), countRows(t, database, "statuses"))
	assert.Equal(t, len(seedCategories), countRows(t, database, "categories"))
	assert.Equal(t, len(seedZones), countRows(t, database, "zones"))

	var name string
	require.NoError(t, database.QueryRow(`SELECT name FROM zones WHERE id = ?`, DefaultZoneID).Scan(&name))
	assert.Equal(t, "General Zone", name)
}

func TestInitIsIdempotent(t *testing.T) {
	database := NewTestDB(t)
	ctx := context.Background()

	// A renamed seed row must survive a restart.
	_, err := database.Exec(`UPDATE statuses SET name = 'Operational' WHERE id = 1`)
	require.NoError(t, err)

	require.NoError(t, Init(ctx, database))
	require.NoError(t, Init(ctx, database))

	assert.Equal(t, len(seedStatuses), countRows(t, database, "statuses"))

	var name string
	require.NoError(t, database.QueryRow(`SELECT name FROM statuses WHERE id = 1`).Scan(&name))
	assert.Equal(t, "Operational", name)
}

func TestOpenFileEnforcesForeignKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventar.sqlite3")
	database, err := Open(path)
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, Init(context.Background(), database))

	_, err = database.Exec(`INSERT INTO objects
		(name, price, quantity, category_id, zone_id, status_id, creation_user, modification_user, creation_date, modification_date)
		VALUES ('Orphan', 1, 1, 99, 1, 1, 'test', 'test', '2024-01-01 00:00:00', '2024-01-01 00:00:00')`)
	assert.Error(t, err, "expected foreign key violation for unknown category")

	var timeout int
	require.NoError(t, database.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout))
	assert.Equal(t, 5000, timeout)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	dsn := DSN("inventar.sqlite3")
	assert.Contains(t, dsn, "inventar.sqlite3?")
	assert.Contains(t, dsn, "_pragma=foreign_keys(1)")
	assert.Contains(t, dsn, "_pragma=busy_timeout(5000)")
	assert.Contains(t, dsn, "_txlock=immediate")
}
