package store

import (
	"context"
	"encoding/hex"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/inventar/internal/db"
)

func TestJWTSecretSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventar.sqlite3")
	ctx := context.Background()

	open := func() string {
		database, err := db.Open(path)
		require.NoError(t, err)
		defer database.Close()
		require.NoError(t, db.Init(ctx, database))

		secret, err := GetJWTSecret(ctx, database)
		require.NoError(t, err)
		return secret
	}

	first := open()
	raw, err := hex.DecodeString(first)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	assert.Equal(t, first, open(), "a restarted server must keep issued tokens valid")
}

func TestJWTSecretDiffersPerDatabase(t *testing.T) {
	ctx := context.Background()
	a, err := GetJWTSecret(ctx, db.NewTestDB(t))
	require.NoError(t, err)
	b, err := GetJWTSecret(ctx, db.NewTestDB(t))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
