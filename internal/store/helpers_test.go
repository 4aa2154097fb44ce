package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/inventar/internal/model"
)

func drill() model.ObjectInput {
	return model.ObjectInput{
		Name:        "Cordless Drill",
		Description: "18V, two batteries",
		Price:       decimal.NewFromInt(8),
		Quantity:    3,
		CategoryID:  3,
		ZoneID:      2,
		StatusID:    1,
	}
}

func createObject(t *testing.T, database *sql.DB, in model.ObjectInput) *model.Object {
	t.Helper()
	obj, err := CreateObject(context.Background(), database, in, "tester")
	require.NoError(t, err)
	return obj
}

func countTable(t *testing.T, database *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func objectHistory(t *testing.T, database *sql.DB, objectID int64) []model.HistoryEntry {
	t.Helper()
	entries, err := QueryHistory(context.Background(), database, model.HistoryFilter{ObjectID: objectID})
	require.NoError(t, err)
	return entries
}
