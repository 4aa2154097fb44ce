package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessages(t *testing.T) {
	var buf bytes.Buffer
	Success(&buf, "created object %d", 7)
	Error(&buf, "zone %q is in use", "Storage")

	out := buf.String()
	assert.Contains(t, out, "created object 7")
	assert.Contains(t, out, `zone "Storage" is in use`)
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, []string{"ID", "NAME"}, [][]string{{"1", "Drill"}, {"2", "Ladder"}})

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Drill")
	assert.Contains(t, out, "Ladder")
}

func TestEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, []string{"ID"}, nil)
	assert.Contains(t, buf.String(), "(none)")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, map[string]int{"deleted": 2}))
	assert.JSONEq(t, `{"deleted": 2}`, buf.String())
}
