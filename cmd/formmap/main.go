package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/v0xg/formmap/internal/config"
	"github.com/v0xg/formmap/internal/observability"
)

// app holds state shared by the subcommands
type app struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
	cfg     *config.Config
	logger  *zap.Logger
}

func main() {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	observability.Sync()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "interrupted")
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	config.SetDefaults(a.v)

	rootCmd := &cobra.Command{
		Use:   "formmap",
		Short: "Map the form controls of an authenticated multi-page application flow",
		Long: `formmap signs in to a web application, walks its pages breadth-first and
writes a catalog of every form control it finds: label, id, type, whether it
is required, its choices and a sample value.

Credentials come from formmap.yaml, FORMMAP_URL / FORMMAP_USERNAME /
FORMMAP_PASSWORD or a .env file.

Example:
  formmap --url "https://acme.wd5.myworkdayjobs.com/en-US/External" -o form.json`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         a.runCrawl,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "Config file (default: ./formmap.yaml or the user config dir)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Show detailed progress")
	flags.String("url", "", "Application URL to start from")
	flags.StringP("output", "o", "", "Output filename (default: form_elements.json)")
	flags.StringP("format", "f", "", "Output format: json, markdown")
	flags.Int("max-pages", 0, "Maximum number of pages to visit")
	flags.Bool("headless", true, "Run the browser without a window")
	flags.String("profile", "", "Chrome/Chromium profile directory for authenticated sessions (close browser first)")

	for key, name := range map[string]string{
		"target.url":          "url",
		"output.path":         "output",
		"output.format":       "format",
		"crawl.max_pages":     "max-pages",
		"browser.headless":    "headless",
		"browser.profile_dir": "profile",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}

	rootCmd.AddCommand(
		a.newCrawlCmd(),
		a.newExtractCmd(),
		a.newInitCmd(),
		a.newHistoryCmd(),
	)
	return rootCmd
}

// load reads the configuration once and sets up logging
func (a *app) load() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	if err := config.Load(a.v, a.cfgFile); err != nil {
		return nil, err
	}
	cfg, err := config.NewConfigFromViper(a.v)
	if err != nil {
		return nil, err
	}
	if a.verbose {
		cfg.Logger.Level = "debug"
	}
	observability.InitializeLogger(cfg.Logger)
	a.logger = observability.GetLogger()
	a.cfg = cfg
	return cfg, nil
}

// step prints a "→ title... done" progress line around fn
func step(w io.Writer, title string, fn func() (string, error)) error {
	fmt.Fprintf(w, "→ %s... ", title)
	detail, err := fn()
	if err != nil {
		fmt.Fprintln(w, "failed")
		return err
	}
	if detail != "" {
		fmt.Fprintf(w, "done (%s)\n", detail)
	} else {
		fmt.Fprintln(w, "done")
	}
	return nil
}
