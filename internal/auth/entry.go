// Package auth finds the sign-in page of an application flow and signs in.
package auth

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/v0xg/formmap/internal/browser"
)

// Timing bounds every wait made while locating the sign-in page and signing in
type Timing struct {
	NavigationTimeout time.Duration
	// Settle is waited after navigating, for client-side redirects
	Settle time.Duration
	// ClickSettle is waited after clicking an entry point or probing a candidate URL
	ClickSettle  time.Duration
	FieldTimeout time.Duration
	IdleTimeout  time.Duration
	// IdleFallback is waited when the network never goes idle after submitting
	IdleFallback time.Duration
}

// DefaultTiming returns the waits used against live sites
func DefaultTiming() Timing {
	return Timing{
		NavigationTimeout: 60 * time.Second,
		Settle:            3 * time.Second,
		ClickSettle:       2 * time.Second,
		FieldTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
		IdleFallback:      5 * time.Second,
	}
}

// entryKeywords mark a URL that already is a sign-in or candidate page
var entryKeywords = []string{"signin", "sign-in", "login", "candidate"}

// entryPoints are controls that lead to the sign-in page, in priority order
var entryPoints = []Target{
	T(`a[data-automation-id*="signIn"]`),
	T(`button[data-automation-id*="signIn"]`),
	T(`a[href*="signin"]`),
	T(`a[href*="login"]`),
	T(`a[href*="candidate"]`),

	T(`a[data-automation-id*="apply"]`),
	T(`button[data-automation-id*="apply"]`),

	{Selector: "a", Text: "Sign In"},
	{Selector: "button", Text: "Sign In"},
	{Selector: "a", Text: "Apply Now"},
	{Selector: "button", Text: "Apply Now"},
	{Selector: "a", Text: "Apply"},
	{Selector: "button", Text: "Apply"},

	T(`a[href*="careers"]`),
	T(`a[href*="jobs"]`),
}

// candidateSuffixes are appended to the site origin when no entry point is clickable
var candidateSuffixes = []string{"/candidate", "/signin", "/login"}

// loginFormSelector identifies a page that can take credentials
const loginFormSelector = `input[type="email"], input[type="password"], input[data-automation-id*="email"]`

// Locator finds the sign-in page reachable from an arbitrary start URL
type Locator struct {
	page   browser.Page
	timing Timing
	logger *zap.Logger
}

// NewLocator creates a locator driving page
func NewLocator(page browser.Page, timing Timing, logger *zap.Logger) *Locator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locator{page: page, timing: timing, logger: logger}
}

// Locate returns the sign-in URL for startURL. It never fails: when nothing
// better is found startURL itself is returned.
func (l *Locator) Locate(ctx context.Context, startURL string) string {
	l.logger.Info("Analyzing start URL", zap.String("url", startURL))
	if err := l.page.Navigate(ctx, startURL, browser.WaitDOMContentLoaded, l.timing.NavigationTimeout); err != nil {
		l.logger.Error("Start URL unreachable", zap.String("url", startURL), zap.Error(err))
		return startURL
	}
	if err := l.page.Wait(ctx, l.timing.Settle); err != nil {
		return startURL
	}

	current := l.page.URL(ctx)
	if containsAny(strings.ToLower(current), entryKeywords) {
		l.logger.Info("Already on sign-in page", zap.String("url", current))
		return current
	}

	if u, ok := l.clickEntryPoint(ctx, startURL); ok {
		return u
	}
	if u, ok := l.probeCandidates(ctx, startURL); ok {
		return u
	}
	l.logger.Warn("No sign-in page found, using start URL", zap.String("url", startURL))
	return startURL
}

func (l *Locator) clickEntryPoint(ctx context.Context, startURL string) (string, bool) {
	for _, target := range entryPoints {
		for _, el := range target.all(ctx, l.page) {
			if ctx.Err() != nil {
				return "", false
			}
			if !browser.Visible(ctx, el) {
				continue
			}
			text, _ := el.InnerText(ctx)
			l.logger.Info("Trying entry point",
				zap.String("text", strings.TrimSpace(text)),
				zap.String("href", browser.Attr(ctx, el, "href")))

			if err := el.Click(ctx); err != nil {
				l.logger.Debug("Entry point click failed", zap.String("selector", target.Selector), zap.Error(err))
				continue
			}
			if err := l.page.WaitForLoadState(ctx, browser.WaitDOMContentLoaded, l.timing.NavigationTimeout); err != nil {
				l.logger.Debug("Entry point did not load", zap.Error(err))
			}
			_ = l.page.Wait(ctx, l.timing.ClickSettle)

			if next := l.page.URL(ctx); next != startURL {
				l.logger.Info("Entry point led to new page", zap.String("url", next))
				return next, true
			}
		}
	}
	return "", false
}

func (l *Locator) probeCandidates(ctx context.Context, startURL string) (string, bool) {
	for _, candidate := range candidateURLs(startURL) {
		if ctx.Err() != nil {
			return "", false
		}
		l.logger.Info("Trying candidate URL", zap.String("url", candidate))
		if err := l.page.Navigate(ctx, candidate, browser.WaitDOMContentLoaded, l.timing.NavigationTimeout); err != nil {
			l.logger.Debug("Candidate URL unreachable", zap.String("url", candidate), zap.Error(err))
			continue
		}
		_ = l.page.Wait(ctx, l.timing.ClickSettle)
		if _, ok := browser.FirstVisible(ctx, l.page, loginFormSelector); ok {
			l.logger.Info("Found sign-in form", zap.String("url", candidate))
			return candidate, true
		}
	}
	return "", false
}

// candidateURLs derives likely sign-in URLs from the origin of startURL and
// from startURL with its job-detail segment and query removed
func candidateURLs(startURL string) []string {
	var out []string
	if u, err := url.Parse(startURL); err == nil && u.Host != "" {
		origin := u.Scheme + "://" + u.Host
		for _, suffix := range candidateSuffixes {
			out = append(out, origin+suffix)
		}
	}
	stripped := strings.ReplaceAll(startURL, "/details/", "/")
	if i := strings.Index(stripped, "?"); i >= 0 {
		stripped = stripped[:i]
	}
	return append(out, stripped)
}
