package report

import (
	"encoding/json"
	"io"

	"github.com/v0xg/formmap/internal/form"
)

// WriteJSON writes the catalog as indented JSON. Non-ASCII labels and markup
// characters are written as-is.
func WriteJSON(w io.Writer, c *form.Catalog) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(c)
}
