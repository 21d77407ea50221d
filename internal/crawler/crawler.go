// Package crawler walks an application flow page by page and collects the
// form controls of every page it visits.
package crawler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/v0xg/formmap/internal/auth"
	"github.com/v0xg/formmap/internal/browser"
	"github.com/v0xg/formmap/internal/extract"
	"github.com/v0xg/formmap/internal/navigate"
)

// Options configures the crawler behavior
type Options struct {
	MaxPages          int
	InterPageDelay    time.Duration
	NavigationTimeout time.Duration
	// PageSettle is waited after navigating to a page
	PageSettle time.Duration
	// LinksPerPage caps the frontier entries taken from one page
	LinksPerPage int
	// LinkSettle is waited before scanning a page for links
	LinkSettle time.Duration
	Extract    extract.Options
	Auth       auth.Timing
}

// DefaultOptions returns the crawl settings used against live sites
func DefaultOptions() Options {
	return Options{
		MaxPages:          10,
		InterPageDelay:    2 * time.Second,
		NavigationTimeout: 45 * time.Second,
		PageSettle:        3 * time.Second,
		LinksPerPage:      5,
		LinkSettle:        2 * time.Second,
		Extract:           extract.DefaultOptions(),
		Auth:              auth.DefaultTiming(),
	}
}

// Crawler visits pages breadth-first from a seed URL
type Crawler struct {
	page      browser.Page
	opts      Options
	extractor *extract.Extractor
	links     *navigate.Discoverer
	logger    *zap.Logger
}

// New creates a crawler that follows links on the host of baseURL
func New(page browser.Page, baseURL string, opts Options, logger *zap.Logger) (*Crawler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	links, err := navigate.New(page, baseURL, navigate.Timing{
		LoadTimeout: opts.NavigationTimeout,
		Settle:      opts.LinkSettle,
	}, logger.Named("navigate"))
	if err != nil {
		return nil, err
	}
	return &Crawler{
		page:      page,
		opts:      opts,
		extractor: extract.New(page, opts.Extract, logger.Named("extract")),
		links:     links,
		logger:    logger,
	}, nil
}

// Crawl processes pages from seed until the frontier is empty or MaxPages
// pages were visited. A page that cannot be opened is recorded and skipped
// without counting as visited; only context cancellation ends the crawl
// early, returning the partial result with the context error.
func (c *Crawler) Crawl(ctx context.Context, seed string) (*Result, error) {
	state := NewState(seed, c.opts.MaxPages)
	res := &Result{}
	defer func() { res.Visited = state.VisitedURLs() }()

	for !state.Done() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		u, _ := state.Next()
		if state.Visited(u) {
			continue
		}
		c.logger.Info("Processing page",
			zap.Int("page", state.Processed+1),
			zap.Int("max_pages", state.Budget),
			zap.String("url", u))

		pm, ok := c.visit(ctx, state, u)
		res.Pages = append(res.Pages, pm)
		if !ok {
			continue
		}
		state.Processed++

		if !state.Done() && c.opts.InterPageDelay > 0 {
			if err := c.page.Wait(ctx, c.opts.InterPageDelay); err != nil {
				return res, err
			}
		}
	}

	c.logger.Info("Crawl complete",
		zap.Int("pages", state.Processed),
		zap.Int("pending", state.Pending()))
	return res, nil
}

// visit opens u, extracts it and feeds its links to the frontier. ok is
// false when the page could not be opened.
func (c *Crawler) visit(ctx context.Context, state *State, u string) (pm PageMap, ok bool) {
	pm = PageMap{URL: u}
	if c.page.URL(ctx) != u {
		if err := c.open(ctx, u); err != nil {
			c.logger.Error("Page failed", zap.String("url", u), zap.Error(err))
			state.Fail(u)
			pm.Error = err.Error()
			return pm, false
		}
	}
	state.Visit(u)

	pm.Elements = c.extractor.Extract(ctx)

	found := c.links.Discover(ctx, state.Known)
	added := state.Enqueue(found, c.opts.LinksPerPage)
	pm.Links = found
	if len(found) > added {
		pm.Links = found[:added]
	}
	c.logger.Info("Page done",
		zap.String("url", u),
		zap.Int("elements", len(pm.Elements)),
		zap.Int("links_queued", added))
	return pm, true
}

func (c *Crawler) open(ctx context.Context, u string) error {
	if err := c.page.Navigate(ctx, u, browser.WaitDOMContentLoaded, c.opts.NavigationTimeout); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	return c.page.Wait(ctx, c.opts.PageSettle)
}
