package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/v0xg/formmap/internal/auth"
	"github.com/v0xg/formmap/internal/browser"
	"github.com/v0xg/formmap/internal/config"
	"github.com/v0xg/formmap/internal/crawler"
	"github.com/v0xg/formmap/internal/form"
	"github.com/v0xg/formmap/internal/report"
	"github.com/v0xg/formmap/internal/store"
)

func (a *app) newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Sign in and crawl the application flow (default command)",
		Args:  cobra.NoArgs,
		RunE:  a.runCrawl,
	}
}

func (a *app) runCrawl(cmd *cobra.Command, _ []string) error {
	cfg, err := a.load()
	if err != nil {
		return err
	}
	if err := cfg.Target.Validate(); err != nil {
		return fmt.Errorf("%w (set it in formmap.yaml or as an environment variable)", err)
	}
	out := cmd.OutOrStdout()

	a.logger.Debug("Starting formmap",
		zap.String("url", cfg.Target.URL),
		zap.Int("max_pages", cfg.Crawl.MaxPages),
		zap.Bool("headless", cfg.Browser.Headless))

	creds := auth.Credentials{URL: cfg.Target.URL, Username: cfg.Target.Username, Password: cfg.Target.Password}
	session := crawler.NewSession(crawler.RodLauncher(browserOptions(cfg)), creds, crawlOptions(cfg), a.logger)

	var res *crawler.Report
	crawlErr := step(out, "Crawling "+cfg.Target.URL, func() (string, error) {
		var err error
		res, err = session.Run(cmd.Context())
		if err != nil && (res == nil || res.Catalog == nil) {
			return "", err
		}
		cat := res.Catalog
		return fmt.Sprintf("%d pages, %d form elements", cat.Metadata.PagesVisited, cat.Metadata.TotalElements), err
	})
	if res == nil || res.Catalog == nil {
		if res != nil && res.Login != nil {
			printLoginDiagnostics(out, res.Login)
		}
		return fmt.Errorf("crawl failed: %w", crawlErr)
	}
	if crawlErr != nil {
		// Cancelled mid-crawl; export what was collected
		fmt.Fprintln(out, "⚠ Crawl interrupted, saving partial results")
	}

	if err := a.export(cmd.Context(), out, cfg, res.Catalog); err != nil {
		return err
	}
	report.PrintSummary(out, res.Catalog)
	return crawlErr
}

// export writes the catalog file and records the run in the history store
func (a *app) export(ctx context.Context, out io.Writer, cfg *config.Config, cat *form.Catalog) error {
	err := step(out, "Writing "+cfg.Output.Path, func() (string, error) {
		return "", report.WriteFile(cfg.Output.Path, report.Format(cfg.Output.Format), cat)
	})
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if !cfg.Store.Enabled {
		return nil
	}
	// Recorded even after an interrupt so partial runs show up in history
	err = step(out, "Recording run", func() (string, error) {
		return saveRun(context.WithoutCancel(ctx), cfg.StoreDir(), cat)
	})
	if err != nil {
		// History is best effort; the catalog file is already written
		a.logger.Warn("Failed to record run", zap.Error(err))
	}
	return nil
}

func saveRun(ctx context.Context, dir string, cat *form.Catalog) (string, error) {
	s, err := store.Open(dir)
	if err != nil {
		return "", err
	}
	defer s.Close()
	return s.Save(ctx, cat)
}

func printLoginDiagnostics(out io.Writer, res *auth.Result) {
	for _, msg := range res.ErrorMessages {
		fmt.Fprintf(out, "  error shown: %s\n", msg)
	}
	if len(res.Diagnostics) == 0 {
		return
	}
	fmt.Fprintln(out, "  inputs on the login page:")
	for i, in := range res.Diagnostics {
		fmt.Fprintf(out, "  [%d] type=%q automation-id=%q name=%q placeholder=%q visible=%t\n",
			i+1, in.Type, in.AutomationID, in.Name, in.Placeholder, in.Visible)
	}
}

func crawlOptions(cfg *config.Config) crawler.Options {
	opts := crawler.DefaultOptions()
	opts.MaxPages = cfg.Crawl.MaxPages
	opts.InterPageDelay = cfg.Crawl.InterPageDelay
	opts.NavigationTimeout = cfg.Crawl.NavigationTimeout
	opts.LinksPerPage = cfg.Crawl.LinksPerPage
	return opts
}

func browserOptions(cfg *config.Config) browser.Options {
	return browser.Options{
		Width:      cfg.Browser.Width,
		Height:     cfg.Browser.Height,
		Headless:   cfg.Browser.Headless,
		SlowMotion: cfg.Browser.SlowMotion,
		Bin:        cfg.Browser.Bin,
		ProfileDir: cfg.Browser.ProfileDir,
		UserAgent:  cfg.Browser.UserAgent,
	}
}
