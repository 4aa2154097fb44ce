package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/inventar/internal/db"
	"github.com/erazemk/inventar/internal/model"
)

func TestAppendHistory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	entry, err := AppendHistory(ctx, database, model.HistoryEntry{
		ZoneID:           ptr(db.DefaultZoneID),
		ActionType:       model.ActionUpdate,
		FieldModified:    "note",
		NewValue:         ptr("inventory count"),
		ModifiedAt:       at,
		ModificationUser: "auditor",
		Comment:          "yearly check",
	})
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.Equal(t, at, entry.ModifiedAt)
	assert.Equal(t, "General Zone", entry.ZoneName)
	assert.Nil(t, entry.ObjectID)
	assert.Nil(t, entry.OldValue)
	assert.Equal(t, "yearly check", entry.Comment)
}

func TestAppendHistoryValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := AppendHistory(ctx, database, model.HistoryEntry{ActionType: "RENAME", ModificationUser: "a"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = AppendHistory(ctx, database, model.HistoryEntry{ActionType: model.ActionCreate})
	require.ErrorIs(t, err, ErrValidation)

	_, err = AppendHistory(ctx, database, model.HistoryEntry{
		ObjectID:         ptr(int64(321)),
		ActionType:       model.ActionCreate,
		ModificationUser: "a",
	})
	require.ErrorIs(t, err, ErrValidation, "dangling object reference")

	assert.Equal(t, 0, countTable(t, database, "history"))
}

func TestQueryHistoryDateRange(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	days := []time.Time{
		time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC),
	}
	for _, day := range days {
		_, err := AppendHistory(ctx, database, model.HistoryEntry{
			ZoneID:           ptr(int64(2)),
			ActionType:       model.ActionUpdate,
			ModifiedAt:       day,
			ModificationUser: "alice",
		})
		require.NoError(t, err)
	}

	entries, err := QueryHistory(ctx, database, model.HistoryFilter{From: days[1], To: days[2]})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, days[1], entries[0].ModifiedAt)

	entries, err = QueryHistory(ctx, database, model.HistoryFilter{ZoneID: 2, From: days[0]})
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	_, err = QueryHistory(ctx, database, model.HistoryFilter{From: days[2], To: days[0]})
	require.ErrorIs(t, err, ErrValidation)

	_, err = QueryHistory(ctx, database, model.HistoryFilter{ActionType: "MOVE"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestSummarizeHistory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first := createObject(t, database, drill())
	second := drill()
	second.Name = "Ladder"
	ladder := createObject(t, database, second)
	require.NoError(t, UpdateObject(ctx, database, first.ID, model.ObjectUpdate{Quantity: ptr(9)}, "alice"))
	require.NoError(t, UpdateObject(ctx, database, first.ID, model.ObjectUpdate{Quantity: ptr(1)}, "alice"))
	require.NoError(t, DeleteObject(ctx, database, ladder.ID, "alice"))

	summaries, err := SummarizeHistory(ctx, database)
	require.NoError(t, err)

	byAction := make(map[string]model.HistorySummary)
	for _, s := range summaries {
		require.NotNil(t, s.ZoneID)
		assert.Equal(t, int64(2), *s.ZoneID)
		assert.Equal(t, "Storage", s.ZoneName)
		assert.False(t, s.LastChange.IsZero())
		byAction[s.ActionType] = s
	}
	require.Len(t, byAction, 3)

	assert.Equal(t, 2, byAction[model.ActionCreate].Count)
	assert.ElementsMatch(t, []string{"Cordless Drill", "Ladder"}, byAction[model.ActionCreate].Objects)
	assert.Equal(t, 2, byAction[model.ActionUpdate].Count)
	assert.Equal(t, []string{"Cordless Drill"}, byAction[model.ActionUpdate].Objects)
	assert.Equal(t, 1, byAction[model.ActionDelete].Count)
	assert.Equal(t, []string{"Ladder"}, byAction[model.ActionDelete].Objects)
}

func TestDistinctNames(t *testing.T) {
	assert.Equal(t, []string{}, distinctNames(""))
	assert.Equal(t, []string{"b", "a"}, distinctNames("b\x1fa\x1fb\x1f\x1fa"))
}
