package console

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/inventar/internal/db"
	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/store"
)

var enter = tea.KeyMsg{Type: tea.KeyEnter}

// press feeds msg to m and runs the resulting command, if any, feeding its
// message back in.
func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		next, _ = m.Update(cmd())
		m = next.(Model)
	}
	return m
}

func TestBrowseObjectHistory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	obj, err := store.CreateObject(ctx, database, model.ObjectInput{
		Name: "Drill", Price: decimal.NewFromInt(8), Quantity: 3,
		CategoryID: 3, ZoneID: 2, StatusID: 1,
	}, "alice")
	require.NoError(t, err)
	qty := 5
	require.NoError(t, store.UpdateObject(ctx, database, obj.ID, model.ObjectUpdate{Quantity: &qty}, "bob"))

	m := New(ctx, database)
	assert.Equal(t, ModeMenu, m.Mode())

	m = press(t, m, enter)
	require.Equal(t, ModeSection, m.Mode())
	assert.Contains(t, m.View(), "Drill")

	m = press(t, m, enter)
	require.Equal(t, ModeDetail, m.Mode())
	view := m.View()
	assert.Contains(t, view, "CREATE")
	assert.Contains(t, view, "quantity: 3 → 5")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeSection, m.Mode())
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeMenu, m.Mode())
}

func TestSectionsLoad(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	for _, s := range sections {
		_, err := s.load(ctx, database)
		assert.NoError(t, err, s.name)
	}

	zones, err := loadZones(ctx, database)
	require.NoError(t, err)
	assert.NotEmpty(t, zones)
}

func TestLoadErrorShowsErrorScreen(t *testing.T) {
	database := db.NewTestDB(t)
	database.Close()

	m := press(t, New(context.Background(), database), enter)
	require.Equal(t, ModeError, m.Mode())
	assert.Contains(t, m.View(), "Error")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeMenu, m.Mode())
}

func TestQuit(t *testing.T) {
	m := New(context.Background(), db.NewTestDB(t))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
