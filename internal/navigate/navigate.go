// Package navigate discovers in-flow links to further pages of an application.
package navigate

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/v0xg/formmap/internal/browser"
)

// navSelectors match in-flow links, step controls and tab/menu controls, in priority order
var navSelectors = []string{
	`a[href*="/candidate/"]`,
	`a[data-automation-id*="navigationLink"]`,
	`a[data-automation-id*="stepNavigationButton"]`,
	`button[data-automation-id*="navigationButton"]`,
	`.wd-navigation a`,
	`[role="navigation"] a`,
	`a[href*="/application/"]`,
	`a[data-automation-id*="continueButton"]`,
	`button[data-automation-id*="continueButton"]`,
	`a[data-automation-id*="nextButton"]`,
	`button[data-automation-id*="nextButton"]`,
	`a[data-automation-id*="menuItem"]`,
	`a[data-automation-id*="tabPanel"]`,
	`[role="tab"] a`,
	`.wd-step-navigation a`,
}

// excludedWords mark links that leave or abort the flow
var excludedWords = []string{"logout", "signout", "exit", "cancel"}

// Timing bounds the waits made before each link scan
type Timing struct {
	// LoadTimeout bounds the DOM content wait
	LoadTimeout time.Duration
	// Settle lets client-side navigation render
	Settle time.Duration
}

// Discoverer finds same-domain navigation links on the current page
type Discoverer struct {
	page       browser.Page
	baseDomain string
	timing     Timing
	logger     *zap.Logger
}

// New creates a discoverer restricted to the host of baseURL
func New(page browser.Page, baseURL string, timing Timing, logger *zap.Logger) (*Discoverer, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", baseURL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discoverer{page: page, baseDomain: u.Host, timing: timing, logger: logger}, nil
}

// Discover returns candidate links in first-seen order. known reports URLs
// the caller has already visited or queued; they are never returned.
func (d *Discoverer) Discover(ctx context.Context, known func(string) bool) []string {
	if err := d.page.WaitForLoadState(ctx, browser.WaitDOMContentLoaded, d.timing.LoadTimeout); err != nil {
		d.logger.Debug("DOM content wait failed", zap.Error(err))
	}
	if err := d.page.Wait(ctx, d.timing.Settle); err != nil {
		return nil
	}

	current := d.page.URL(ctx)
	base, err := url.Parse(current)
	if err != nil {
		d.logger.Error("Current URL unparsable", zap.String("url", current), zap.Error(err))
		return nil
	}

	var links []string
	for _, selector := range navSelectors {
		els, err := d.page.QueryAll(ctx, selector)
		if err != nil {
			d.logger.Debug("Selector failed", zap.String("selector", selector), zap.Error(err))
			continue
		}
		for _, el := range els {
			if !browser.Visible(ctx, el) {
				continue
			}
			href := browser.Attr(ctx, el, "href")
			if href == "" {
				continue
			}
			link, ok := d.accept(base, href, links, known)
			if !ok {
				continue
			}
			text, _ := el.InnerText(ctx)
			d.logger.Info("Found navigation link", zap.String("text", strings.TrimSpace(text)), zap.String("url", link))
			links = append(links, link)
		}
	}
	d.logger.Info("Navigation links found", zap.Int("count", len(links)))
	return links
}

// accept resolves href against the current page and applies the link filters
func (d *Discoverer) accept(current *url.URL, href string, collected []string, known func(string) bool) (string, bool) {
	link, err := d.absolute(current, href)
	if err != nil {
		return "", false
	}
	u, err := url.Parse(link)
	if err != nil {
		return "", false
	}
	switch {
	case u.Host != d.baseDomain:
		return "", false
	case known != nil && known(link):
		return "", false
	case contains(collected, link):
		return "", false
	case u.Path == current.Path:
		return "", false
	case containsAny(strings.ToLower(link), excludedWords):
		return "", false
	}
	return link, true
}

// absolute resolves root-relative links against the configured domain and
// other relative links against the current page
func (d *Discoverer) absolute(current *url.URL, href string) (string, error) {
	switch {
	case strings.HasPrefix(href, "/"):
		return "https://" + d.baseDomain + href, nil
	case strings.HasPrefix(href, "http"):
		return href, nil
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return current.ResolveReference(ref).String(), nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
