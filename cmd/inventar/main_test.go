package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/inventar/internal/model"
)

type cli struct {
	t      *testing.T
	dbPath string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	for _, key := range []string{"INVENTAR_DB", "INVENTAR_ADDR", "INVENTAR_LOG", "INVENTAR_USER", "INVENTAR_ADMIN"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("HOME", dir)
	t.Chdir(dir)

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	return &cli{t: t, dbPath: filepath.Join(dir, "inventar.sqlite3")}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	cmd := newRootCmd()
	var out, stderr bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--db", c.dbPath, "--user", "tester"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func (c *cli) object(id string) model.Object {
	c.t.Helper()
	var obj model.Object
	require.NoError(c.t, json.Unmarshal([]byte(c.mustRun("--json", "objects", "get", id)), &obj))
	return obj
}

func TestVersion(t *testing.T) {
	c := newCLI(t)
	assert.Contains(t, c.mustRun("version"), "inventar dev")
}

func TestInitCreatesAdminOnce(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("init", "--admin", "root")
	assert.Contains(t, out, "Admin account created: root")
	assert.Contains(t, out, "Password:")

	_, err := c.run("init", "--admin", "root")
	assert.Error(t, err)

	var users []model.User
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("--json", "users", "list")), &users))
	require.Len(t, users, 1)
	assert.Equal(t, model.RoleAdmin, users[0].Role)
}

func TestObjectLifecycle(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("objects", "add", "Drill", "--price", "8.50", "--quantity", "3", "--category", "3", "--zone", "2", "--status", "1")
	assert.Contains(t, out, "Created object #1 Drill")

	c.mustRun("objects", "update", "1", "--quantity", "5", "--name", "Cordless drill", "--comment", "recount")
	obj := c.object("1")
	assert.Equal(t, "Cordless drill", obj.Name)
	assert.Equal(t, 5, obj.Quantity)
	assert.Equal(t, "tester", obj.ModificationUser)

	c.mustRun("objects", "adjust", "1", "--", "-2")
	assert.Equal(t, 3, c.object("1").Quantity)

	var entries []model.HistoryEntry
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("--json", "objects", "history", "1")), &entries))
	require.Len(t, entries, 4)
	assert.Equal(t, model.ActionCreate, entries[0].ActionType)
	assert.Equal(t, "recount", entries[1].Comment)

	c.mustRun("objects", "delete", "1")
	_, err := c.run("objects", "delete", "1")
	assert.Error(t, err)

	var active []model.Object
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("--json", "objects", "list")), &active))
	assert.Empty(t, active)
}

func TestUpdateWithoutFlagsFails(t *testing.T) {
	c := newCLI(t)
	c.mustRun("objects", "add", "Drill", "--price", "1", "--quantity", "1", "--category", "3", "--status", "1")

	_, err := c.run("objects", "update", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")
}

func TestZoneRemovalPolicy(t *testing.T) {
	c := newCLI(t)
	out := c.mustRun("--json", "zones", "add", "Attic")
	var zone model.Zone
	require.NoError(t, json.Unmarshal([]byte(out), &zone))
	id := strconv.FormatInt(zone.ID, 10)

	c.mustRun("objects", "add", "Ladder", "--price", "40", "--quantity", "1", "--category", "3", "--status", "1", "--zone", id)

	_, err := c.run("zones", "remove", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "active objects")

	c.mustRun("objects", "purge", "--zone", id, "--confirm")
	c.mustRun("zones", "remove", id, "--comment", "cleared out")

	out = c.mustRun("history", "list", "--action", "zone_deleted")
	assert.Contains(t, out, "cleared out")
}

func TestAddRequiresPriceAndQuantity(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("objects", "add", "Drill", "--quantity", "1", "--category", "3", "--status", "1")
	assert.Error(t, err)
	_, err = c.run("objects", "add", "Drill", "--price", "1", "--category", "3", "--status", "1")
	assert.Error(t, err)
}

func TestPurgeRequiresConfirm(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("objects", "purge")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--confirm")
}

func TestReferencesAndInventory(t *testing.T) {
	c := newCLI(t)
	assert.Contains(t, c.mustRun("categories", "add", "Garden"), "Created category")
	assert.Contains(t, c.mustRun("statuses", "add", "Lent out"), "Created status")

	_, err := c.run("categories", "add", "Garden")
	assert.Error(t, err)

	c.mustRun("objects", "add", "Drill", "--price", "10", "--quantity", "2", "--category", "3", "--status", "1")

	var zones []model.ZoneInventory
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("--json", "inventory")), &zones))
	require.NotEmpty(t, zones)
	assert.Equal(t, "20", zones[0].TotalValue.String())
}

func TestHistoryRejectsBadTime(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("history", "list", "--from", "yesterday")
	assert.Error(t, err)
}
