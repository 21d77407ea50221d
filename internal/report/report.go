// Package report writes a form catalog as JSON or Markdown and prints run summaries.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/v0xg/formmap/internal/form"
)

// Format names an output format
type Format string

const (
	JSON     Format = "json"
	Markdown Format = "markdown"
)

// Write renders the catalog to w in the given format
func Write(w io.Writer, format Format, c *form.Catalog) error {
	switch format {
	case JSON:
		return WriteJSON(w, c)
	case Markdown:
		return WriteMarkdown(w, c)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// WriteFile renders the catalog to path, creating parent directories
func WriteFile(path string, format Format, c *form.Catalog) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Write(f, format, c)
}
