package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/v0xg/formmap/internal/auth"
	"github.com/v0xg/formmap/internal/browser"
	"github.com/v0xg/formmap/internal/form"
)

// Browser is the resource a session acquires; Close must release it
type Browser interface {
	Page() browser.Page
	Close()
}

// Launcher acquires a browser for one session
type Launcher func(ctx context.Context) (Browser, error)

// RodLauncher launches Chromium through go-rod
func RodLauncher(opts browser.Options) Launcher {
	return func(ctx context.Context) (Browser, error) {
		s, err := browser.Launch(ctx, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Report is everything a session produced
type Report struct {
	Catalog *form.Catalog
	Login   *auth.Result
	Pages   []PageMap
}

// Session signs in and crawls one application flow
type Session struct {
	launch Launcher
	creds  auth.Credentials
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// NewSession creates a session that signs in with creds
func NewSession(launch Launcher, creds auth.Credentials, opts Options, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{launch: launch, creds: creds, opts: opts, logger: logger, now: time.Now}
}

// Run acquires a browser, signs in, crawls and returns the catalog. The
// browser is released on every path. A failed sign-in returns an error
// wrapping auth.ErrLoginFailed with the login diagnostics in the report.
// Cancellation returns the partial catalog with the context error.
func (s *Session) Run(ctx context.Context) (*Report, error) {
	b, err := s.launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("start browser: %w", err)
	}
	defer b.Close()
	page := b.Page()

	loginURL := auth.NewLocator(page, s.opts.Auth, s.logger.Named("auth")).Locate(ctx, s.creds.URL)
	login, err := auth.NewResolver(page, nil, s.opts.Auth, s.logger.Named("auth")).Login(ctx, loginURL, s.creds)
	report := &Report{Login: login}
	if err != nil {
		return report, fmt.Errorf("login: %w", err)
	}

	c, err := New(page, s.creds.URL, s.opts, s.logger.Named("crawler"))
	if err != nil {
		return report, err
	}
	res, crawlErr := c.Crawl(ctx, page.URL(ctx))

	report.Pages = res.Pages
	report.Catalog = form.NewCatalog(form.Metadata{
		RunID:       uuid.NewString(),
		Timestamp:   s.now().UTC(),
		SourceURL:   s.creds.URL,
		VisitedURLs: res.Visited,
	}, res.Elements())
	return report, crawlErr
}
