package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/v0xg/formmap/internal/form"
)

const timeLayout = "2006-01-02 15:04:05 MST"

// WriteMarkdown writes the catalog as a Markdown document with a metadata
// table, per-category counts and one row per element
func WriteMarkdown(w io.Writer, c *form.Catalog) error {
	md := markdown.NewMarkdown(w)

	md.H1("Form catalog")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run", code(c.Metadata.RunID)},
			{"Source", code(c.Metadata.SourceURL)},
			{"Timestamp", c.Metadata.Timestamp.Format(timeLayout)},
			{"Pages visited", strconv.Itoa(c.Metadata.PagesVisited)},
			{"Total elements", strconv.Itoa(c.Metadata.TotalElements)},
		},
	})
	md.PlainText("")

	writeCounts(md, c.Elements)
	writeElements(md, c.Elements)

	if len(c.Metadata.VisitedURLs) > 0 {
		md.H2("Visited pages")
		md.PlainText("")
		md.BulletList(c.Metadata.VisitedURLs...)
		md.PlainText("")
	}
	return md.Build()
}

func writeCounts(md *markdown.Markdown, elements []form.Element) {
	md.H2("Elements by type")
	md.PlainText("")
	counts := form.CountByCategory(elements)
	var rows [][]string
	for _, cat := range form.Categories {
		if n := counts[cat]; n > 0 {
			rows = append(rows, []string{string(cat), strconv.Itoa(n)})
		}
	}
	if len(rows) == 0 {
		md.PlainText("No form elements found.")
		md.PlainText("")
		return
	}
	md.Table(markdown.TableSet{Header: []string{"Type", "Count"}, Rows: rows})
	md.PlainText("")
}

func writeElements(md *markdown.Markdown, elements []form.Element) {
	if len(elements) == 0 {
		return
	}
	md.H2("Elements")
	md.PlainText("")
	rows := make([][]string, 0, len(elements))
	for _, el := range elements {
		required := ""
		if el.Required {
			required = "yes"
		}
		rows = append(rows, []string{
			cell(el.Label),
			code(el.ID),
			string(el.Category),
			required,
			cell(strings.Join(el.Options, ", ")),
			cell(strings.Join(el.SampleValues, ", ")),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Label", "ID", "Type", "Required", "Options", "Sample values"},
		Rows:   rows,
	})
	md.PlainText("")
}

// cell keeps pipes and line breaks from splitting a table row
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

func code(s string) string {
	if s == "" {
		return ""
	}
	return "`" + cell(s) + "`"
}
