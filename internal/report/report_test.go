package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/formmap/internal/form"
)

func testCatalog() *form.Catalog {
	return form.NewCatalog(form.Metadata{
		RunID:       "3f1c2a9e-5b7d-4c1e-9a2b-8d6f0e4c7a11",
		Timestamp:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		SourceURL:   "https://acme.wd5.myworkdayjobs.com/en-US/External",
		VisitedURLs: []string{"https://acme.wd5.myworkdayjobs.com/en-US/candidate/home", "https://acme.wd5.myworkdayjobs.com/en-US/candidate/step1"},
	}, []form.Element{
		{Label: "First name", ID: "firstName", Required: true, Category: form.Text, SampleValues: []string{"John"}},
		{Label: "Country", ID: "country", Category: form.Select, Options: []string{"Canada", "México"}, SampleValues: []string{"Canada"}},
		{Label: "Résumé <PDF>", ID: "resume", Category: form.File, Options: []string{".pdf"}, SampleValues: []string{"resume.pdf"}},
		{Label: "I agree | terms", ID: "terms", Required: true, Category: form.Checkbox, Options: []string{"Yes", "No"}, SampleValues: []string{"Yes"}},
	})
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, testCatalog()))

	out := buf.String()
	assert.Contains(t, out, "\n  \"metadata\": {", "two-space indentation")
	assert.Contains(t, out, "Résumé <PDF>", "no escaping of non-ASCII or markup")
	assert.True(t, strings.HasSuffix(out, "}\n"))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	meta := doc["metadata"].(map[string]any)
	assert.EqualValues(t, 4, meta["total_elements"])
	assert.EqualValues(t, 2, meta["pages_visited"])
	assert.Equal(t, "2024-03-01T12:00:00Z", meta["timestamp"])

	elements := doc["form_elements"].([]any)
	require.Len(t, elements, 4)
	first := elements[0].(map[string]any)
	assert.Equal(t, "firstName", first["id_of_input_component"])
	assert.Equal(t, "text", first["type_of_input"])
	assert.Equal(t, []any{"John"}, first["user_data_select_values"])
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, testCatalog()))

	out := buf.String()
	assert.Contains(t, out, "# Form catalog")
	assert.Contains(t, out, "## Elements by type")
	assert.Contains(t, out, "## Elements")
	assert.Contains(t, out, "## Visited pages")
	assert.Contains(t, out, "`firstName`")
	assert.Contains(t, out, "Canada, México")
	assert.Contains(t, out, "I agree")
	assert.Contains(t, out, "2024-03-01 12:00:00 UTC")
}

func TestWriteMarkdownEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, form.NewCatalog(form.Metadata{}, nil)))
	assert.Contains(t, buf.String(), "No form elements found.")
	assert.NotContains(t, buf.String(), "## Elements\n")
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("xml"), testCatalog())
	assert.ErrorContains(t, err, `unknown report format "xml"`)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "catalog.md")
	require.NoError(t, WriteFile(path, Markdown, testCatalog()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Form catalog")
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, testCatalog())
	out := buf.String()

	assert.Contains(t, out, "✓ Extracted 4 form elements from 2 pages")
	assert.Contains(t, out, "  checkbox: 1\n  file: 1\n  select: 1\n  text: 1\n", "types sorted by name")
	assert.Contains(t, out, "Sample results (first 3 elements):")
	assert.Contains(t, out, "1. First name\n   ID: firstName\n   Type: text\n   Required: true\n")
	assert.Contains(t, out, `Options: ["Canada" "México"]`)
	assert.NotContains(t, out, "I agree", "only the first three elements are listed")
}

func TestPrintSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, form.NewCatalog(form.Metadata{}, nil))
	assert.Equal(t, "⚠ No form elements extracted\n", buf.String())
}
