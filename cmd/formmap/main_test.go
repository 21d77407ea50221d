package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/formmap/internal/config"
	"github.com/v0xg/formmap/internal/form"
	"github.com/v0xg/formmap/internal/store"
)

const savedPage = `<html><body><form>
	<div><label for="firstName">First name</label><input type="text" id="firstName" required></div>
	<div><label for="country">Country</label><select id="country"><option>Canada</option><option>Mexico</option></select></div>
</form></body></html>`

// testConfig writes a config that keeps logs and history inside a temp dir
func testConfig(t *testing.T) (path, storeDir string) {
	t.Helper()
	for _, k := range []string{"FORMMAP_URL", "FORMMAP_USERNAME", "FORMMAP_PASSWORD", "WORKDAY_URL", "WORKDAY_USERNAME", "WORKDAY_PASSWORD"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	storeDir = filepath.Join(dir, "data")
	path = filepath.Join(dir, "formmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logger:
  log_file: ""
  level: error
store:
  dir: `+storeDir+`
`), 0o600))
	return path, storeDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCrawlRequiresCredentials(t *testing.T) {
	cfgPath, _ := testConfig(t)
	_, err := execute(t, "--config", cfgPath)
	require.ErrorIs(t, err, config.ErrMissingCredentials)
	assert.Contains(t, err.Error(), "target.url")
}

func TestExtractToStdout(t *testing.T) {
	cfgPath, _ := testConfig(t)
	page := filepath.Join(t.TempDir(), "step1.html")
	require.NoError(t, os.WriteFile(page, []byte(savedPage), 0o600))

	out, err := execute(t, "extract", page, "--config", cfgPath, "--url", "https://acme.example.com/apply/step1")
	require.NoError(t, err)

	var cat form.Catalog
	require.NoError(t, json.Unmarshal([]byte(out), &cat))
	assert.Equal(t, "https://acme.example.com/apply/step1", cat.Metadata.SourceURL)
	assert.Equal(t, 2, cat.Metadata.TotalElements)
	assert.NotEmpty(t, cat.Metadata.RunID)
	require.Len(t, cat.Elements, 2)
	assert.Equal(t, form.Element{Label: "First name", ID: "firstName", Required: true, Category: form.Text, SampleValues: []string{"John"}}, cat.Elements[0])
	assert.Equal(t, []string{"Canada", "Mexico"}, cat.Elements[1].Options)
}

func TestExtractToFile(t *testing.T) {
	cfgPath, _ := testConfig(t)
	dir := t.TempDir()
	page := filepath.Join(dir, "step1.html")
	require.NoError(t, os.WriteFile(page, []byte(savedPage), 0o600))
	target := filepath.Join(dir, "catalog.md")

	out, err := execute(t, "extract", page, "--config", cfgPath, "-o", target, "-f", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "→ Writing "+target+"... done (2 form elements)")
	assert.Contains(t, out, "✓ Extracted 2 form elements from 1 pages")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Form catalog")
	assert.Contains(t, string(data), "file://")
}

func TestExtractMissingFile(t *testing.T) {
	cfgPath, _ := testConfig(t)
	_, err := execute(t, "extract", filepath.Join(t.TempDir(), "absent.html"), "--config", cfgPath)
	assert.ErrorContains(t, err, "read page")
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formmap.yaml")
	out, err := execute(t, "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Wrote "+path)

	_, err = execute(t, "init", path)
	assert.ErrorIs(t, err, config.ErrConfigExists)
}

func TestHistory(t *testing.T) {
	cfgPath, storeDir := testConfig(t)

	out, err := execute(t, "history", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")

	s, err := store.Open(storeDir)
	require.NoError(t, err)
	cat := form.NewCatalog(form.Metadata{
		RunID:       "run-1",
		Timestamp:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		SourceURL:   "https://acme.example.com",
		VisitedURLs: []string{"https://acme.example.com/home"},
	}, []form.Element{{Label: "First name", ID: "firstName", Category: form.Text}})
	_, err = s.Save(context.Background(), cat)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	out, err = execute(t, "history", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "[1] run-1")
	assert.Contains(t, out, "1 pages  1 elements  https://acme.example.com")

	out, err = execute(t, "history", "run-1", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"id_of_input_component": "firstName"`)

	out, err = execute(t, "history", "--element", "firstName", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "firstName was recorded in 1 runs\n  run-1\n", out)

	_, err = execute(t, "history", "missing", "--config", cfgPath)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
