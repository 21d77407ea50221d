package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/v0xg/formmap/internal/browser/htmldoc"
	"github.com/v0xg/formmap/internal/extract"
	"github.com/v0xg/formmap/internal/form"
	"github.com/v0xg/formmap/internal/report"
)

func (a *app) newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <page.html>",
		Short: "Extract form controls from a saved HTML page without a browser",
		Long: `extract runs the form extraction over a saved HTML document. No sign-in
or crawling happens and custom dropdowns only yield what the document holds.
The catalog goes to stdout unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: a.runExtract,
	}
}

func (a *app) runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := a.load()
	if err != nil {
		return err
	}
	path := args[0]
	html, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read page: %w", err)
	}

	sourceURL := cfg.Target.URL
	if !cmd.Flags().Changed("url") {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		sourceURL = "file://" + filepath.ToSlash(abs)
	}

	page := htmldoc.New()
	if err := page.Load(sourceURL, string(html)); err != nil {
		return err
	}
	elements := extract.New(page, extract.DefaultOptions(), a.logger.Named("extract")).Scan(cmd.Context())

	cat := form.NewCatalog(form.Metadata{
		RunID:       uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		SourceURL:   sourceURL,
		VisitedURLs: []string{sourceURL},
	}, elements)

	format := report.Format(cfg.Output.Format)
	if !cmd.Flags().Changed("output") {
		return report.Write(cmd.OutOrStdout(), format, cat)
	}
	out := cmd.OutOrStdout()
	if err := step(out, "Writing "+cfg.Output.Path, func() (string, error) {
		return fmt.Sprintf("%d form elements", len(cat.Elements)), report.WriteFile(cfg.Output.Path, format, cat)
	}); err != nil {
		return err
	}
	report.PrintSummary(out, cat)
	return nil
}
