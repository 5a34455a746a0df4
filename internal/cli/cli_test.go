package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artdesk/internal/config"
	"artdesk/internal/query"
	"artdesk/internal/server"
	"artdesk/internal/session"
	"artdesk/internal/storage"
)

type harness struct {
	dir     string
	url     string
	cfgPath string
}

func newHarness(t *testing.T) harness {
	t.Helper()
	t.Setenv(config.EnvToken, "")
	dir := t.TempDir()

	store, err := storage.Open(storage.BackendSQLite, filepath.Join(dir, "artdesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	ts := httptest.NewServer(server.New(store, server.Options{Token: "tok"}).Handler())
	t.Cleanup(ts.Close)

	h := harness{dir: dir, url: ts.URL}
	h.cfgPath = h.config(t, "config.toml", "tok")
	return h
}

// config writes a client config pointing at the test gateway.
func (h harness) config(t *testing.T, name, token string) string {
	t.Helper()
	return h.file(t, name, fmt.Sprintf(`
[client]
base_url = %q
token = %q
save_debounce = "10ms"

[log]
level = "error"
`, h.url, token))
}

func (h harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return h.runConfig(t, h.cfgPath, args...)
}

func (h harness) runConfig(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand("test")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func (h harness) file(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(h.dir, name)
	mustWriteFile(t, p, body)
	return p
}

func mustWriteFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestPushThenQueryFromGateway(t *testing.T) {
	h := newHarness(t)
	first := h.file(t, "first.csv", "Internal ID,Blank Silo\n1,Cotton\n2,Wool\n3,Cotton")

	out, err := h.run(t, "push", "--file", first)
	require.NoError(t, err)
	assert.Equal(t, "Saved 3 rows (3 new)\n", out)

	out, err = h.run(t, "query", "--filter", "Blank Silo=Cotton", "--sort", "Internal ID:desc")
	require.NoError(t, err)
	assert.Equal(t, "Internal ID,Blank Silo\n3,Cotton\n1,Cotton\n", out)

	second := h.file(t, "second.csv", "Internal ID,Blank Silo\n1,Cotton\n2,Wool\n3,Cotton\n4,Fleece")
	out, err = h.run(t, "push", "--file", second)
	require.NoError(t, err)
	assert.Equal(t, "Saved 4 rows (1 new)\n", out)
}

func TestQueryFileToOut(t *testing.T) {
	h := newHarness(t)
	src := h.file(t, "data.csv", "Internal ID,Name\n1,\"Smith, J\"\n2,Lee")
	dst := filepath.Join(h.dir, "out.csv")

	_, err := h.run(t, "query", "--file", src, "--search", "lee", "--all", "--out", dst)
	require.NoError(t, err)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "Internal ID,Name\n1,\"Smith, J\"\n2,Lee", string(data))

	out, err := h.run(t, "query", "--file", src, "--search", "lee")
	require.NoError(t, err)
	assert.Equal(t, "Internal ID,Name\n2,Lee\n", out)
}

func TestReportJSON(t *testing.T) {
	h := newHarness(t)
	src := h.file(t, "data.csv", "Internal ID,AW_Front,Spec_Sheet,Placement from Collar\n1,https://a,https://s,3\n2,,,")

	out, err := h.run(t, "report", "--file", src, "--kind", "missing-data", "--json")
	require.NoError(t, err)
	var got struct {
		TotalRows int `json:"totalRows"`
		CellsWith int `json:"cellsWith"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.TotalRows)
	assert.Equal(t, 3, got.CellsWith)

	_, err = h.run(t, "report", "--file", src, "--kind", "weekly")
	assert.ErrorContains(t, err, "unknown report kind")
}

func TestRecipesAndColorsRoundTrip(t *testing.T) {
	h := newHarness(t)
	recipes := h.file(t, "recipes.csv", "Blank Silo,Material Type,A,B,C,D,E\nCotton,Knit,Red,Blue,,,")

	out, err := h.run(t, "recipes", "import", recipes)
	require.NoError(t, err)
	assert.Equal(t, "Saved 1 recipes successfully\n", out)

	out, err = h.run(t, "recipes", "export")
	require.NoError(t, err)
	assert.Equal(t, "Blank Silo,Material Type,A,B,C,D,E\nCotton,Knit,Red,Blue,,,\n", out)

	colors := h.file(t, "colors.csv", "Color Name,Hex Value\nNavy,#000080\nPlain,")
	_, err = h.run(t, "colors", "import", colors)
	require.NoError(t, err)
	out, err = h.run(t, "colors", "export")
	require.NoError(t, err)
	assert.Equal(t, "Color Name,Hex Value\nNavy,#000080\nPlain,#000000\n", out)
}

func TestPushNeedsSource(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "push")
	assert.ErrorContains(t, err, "--file or --sheet")
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "artdesk test\n", out)
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, &query.Sort{Column: "Size", Direction: query.Ascending}, parseSort("Size"))
	assert.Equal(t, &query.Sort{Column: "Size", Direction: query.Descending}, parseSort("Size:DESC"))
	assert.Equal(t, &query.Sort{Column: "Ratio 1:2", Direction: query.Ascending}, parseSort("Ratio 1:2"))
}

func TestParseFilter(t *testing.T) {
	col, val, err := parseFilter(" Size = M ")
	require.NoError(t, err)
	assert.Equal(t, "Size", col)
	assert.Equal(t, "M", val)

	_, _, err = parseFilter("Size")
	assert.Error(t, err)
}

func TestQueryAllKeepsSort(t *testing.T) {
	h := newHarness(t)
	src := h.file(t, "data.csv", "Internal ID,Size\n1,S\n2,M\n3,S")

	out, err := h.run(t, "query", "--file", src, "--filter", "Size=S", "--sort", "Internal ID:desc", "--all")
	require.NoError(t, err)
	assert.Equal(t, "Internal ID,Size\n3,S\n2,M\n1,S\n", out)
}

// addedID pulls the id out of an "Added ... <id>" line.
func addedID(t *testing.T, out string) string {
	t.Helper()
	fields := strings.Fields(out)
	require.Len(t, fields, 3, out)
	return fields[2]
}

func TestRecipeEditCommands(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "recipes", "import", h.file(t, "recipes.csv", "Blank Silo,Material Type,A,B,C,D,E\nCotton,Knit,Red,Blue,,,"))
	require.NoError(t, err)

	out, err := h.run(t, "recipes", "add", "--silo", "Wool", "--material", "Felt", "--slot", "A=Red", "--slot", "e = Cream")
	require.NoError(t, err)
	id := addedID(t, out)

	out, err = h.run(t, "recipes", "set", id[:8], "--slot", "B=Navy")
	require.NoError(t, err)
	assert.Equal(t, "Updated recipe "+id+"\n", out)

	out, err = h.run(t, "recipes", "export")
	require.NoError(t, err)
	assert.Equal(t, "Blank Silo,Material Type,A,B,C,D,E\nCotton,Knit,Red,Blue,,,\nWool,Felt,Red,Navy,,,Cream\n", out)

	out, err = h.run(t, "recipes", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	_, err = h.run(t, "recipes", "add", "--silo", "Silk", "--slot", "F=x")
	assert.ErrorContains(t, err, "invalid --slot")

	out, err = h.run(t, "recipes", "delete", id)
	require.NoError(t, err)
	assert.Equal(t, "Deleted recipe "+id+"\n", out)

	out, err = h.run(t, "recipes", "export")
	require.NoError(t, err)
	assert.Equal(t, "Blank Silo,Material Type,A,B,C,D,E\nCotton,Knit,Red,Blue,,,\n", out, "failed add saves nothing")

	_, err = h.run(t, "recipes", "set", "no-such-id", "--silo", "X")
	assert.ErrorIs(t, err, session.ErrEntryNotFound)
}

func TestColorEditCommands(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "colors", "add", "Navy", "--hex", "#000080")
	require.NoError(t, err)
	navy := addedID(t, out)
	out, err = h.run(t, "colors", "add", "Plain")
	require.NoError(t, err)
	plain := addedID(t, out)

	_, err = h.run(t, "colors", "set", navy, "--name", "Dark Navy")
	require.NoError(t, err)

	out, err = h.run(t, "colors", "export")
	require.NoError(t, err)
	assert.Equal(t, "Color Name,Hex Value\nDark Navy,#000080\nPlain,#000000\n", out)

	out, err = h.run(t, "colors", "list")
	require.NoError(t, err)
	assert.Contains(t, out, plain)

	_, err = h.run(t, "colors", "delete", plain)
	require.NoError(t, err)
	out, err = h.run(t, "colors", "export")
	require.NoError(t, err)
	assert.Equal(t, "Color Name,Hex Value\nDark Navy,#000080\n", out)
}

func TestPreflightRejectsBadToken(t *testing.T) {
	h := newHarness(t)
	bad := h.config(t, "bad.toml", "wrong")
	src := h.file(t, "data.csv", "Internal ID\n1")

	_, err := h.runConfig(t, bad, "push", "--file", src)
	assert.ErrorContains(t, err, "not reachable")
	_, err = h.runConfig(t, bad, "colors", "add", "Navy")
	assert.ErrorContains(t, err, "not reachable")
}

func TestMatchID(t *testing.T) {
	ids := []string{"abc1", "abc2", "abd"}

	i, err := matchID(ids, "abd")
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	i, err = matchID(ids, "abc2")
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = matchID(ids, "abc")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = matchID(ids, "zz")
	assert.ErrorIs(t, err, session.ErrEntryNotFound)
}
