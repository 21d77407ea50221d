package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/v0xg/formmap/internal/form"
)

// sampleCount is how many elements PrintSummary lists in full
const sampleCount = 3

// PrintSummary prints per-type counts and the first few elements of the catalog
func PrintSummary(w io.Writer, c *form.Catalog) {
	if len(c.Elements) == 0 {
		fmt.Fprintln(w, "⚠ No form elements extracted")
		return
	}
	fmt.Fprintf(w, "✓ Extracted %d form elements from %d pages\n", c.Metadata.TotalElements, c.Metadata.PagesVisited)

	counts := form.CountByCategory(c.Elements)
	types := make([]string, 0, len(counts))
	for cat := range counts {
		types = append(types, string(cat))
	}
	sort.Strings(types)

	fmt.Fprintln(w, "\nForm elements by type:")
	for _, t := range types {
		fmt.Fprintf(w, "  %s: %d\n", t, counts[form.Category(t)])
	}

	n := min(sampleCount, len(c.Elements))
	fmt.Fprintf(w, "\nSample results (first %d elements):\n", n)
	for i, el := range c.Elements[:n] {
		fmt.Fprintf(w, "\n%d. %s\n", i+1, el.Label)
		fmt.Fprintf(w, "   ID: %s\n", el.ID)
		fmt.Fprintf(w, "   Type: %s\n", el.Category)
		fmt.Fprintf(w, "   Required: %t\n", el.Required)
		if len(el.Options) > 0 {
			fmt.Fprintf(w, "   Options: %q\n", el.Options)
		}
		if len(el.SampleValues) > 0 {
			fmt.Fprintf(w, "   Sample values: %q\n", el.SampleValues)
		}
	}
}
