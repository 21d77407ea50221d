// Package htmldoc implements the browser capability over in-memory HTML
// documents. Scripts never run: visibility comes from markup (hidden,
// inline display/visibility styles, hidden inputs), clicks on links follow
// registered pages, and dynamic behaviour is supplied through hooks.
// Waits advance a virtual clock instead of sleeping.
package htmldoc

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/v0xg/formmap/internal/browser"
)

// ErrNoPage is returned when navigating to a URL with no registered document
var ErrNoPage = errors.New("no document registered for url")

// maxRedirects bounds redirect chains between registered pages
const maxRedirects = 10

// Hook mutates the page in response to an interaction on el
type Hook func(p *Page, el *goquery.Selection) error

type hook struct {
	match cascadia.Selector
	fn    Hook
}

// Page is an in-memory browser.Page
type Page struct {
	pages     map[string]string
	redirects map[string]string
	current   string
	doc       *goquery.Document

	clickHooks []hook
	typeHooks  []hook
	keyHooks   map[string][]Hook

	networkIdle bool
	elapsed     time.Duration
	navigations []string
}

var _ browser.Page = (*Page)(nil)

// New returns an empty page with no registered documents
func New() *Page {
	doc, _ := goquery.NewDocumentFromReader(strings.NewReader(""))
	return &Page{
		pages:       make(map[string]string),
		redirects:   make(map[string]string),
		keyHooks:    make(map[string][]Hook),
		doc:         doc,
		networkIdle: true,
	}
}

// AddPage registers the document served at rawURL
func (p *Page) AddPage(rawURL, html string) *Page {
	p.pages[rawURL] = html
	return p
}

// AddRedirect makes navigations to from land on to
func (p *Page) AddRedirect(from, to string) *Page {
	p.redirects[from] = to
	return p
}

// OnClick registers fn for clicks on elements matching selector.
// It panics if selector does not compile.
func (p *Page) OnClick(selector string, fn Hook) *Page {
	p.clickHooks = append(p.clickHooks, hook{match: cascadia.MustCompile(selector), fn: fn})
	return p
}

// OnType registers fn for keystrokes typed into elements matching selector.
// It panics if selector does not compile.
func (p *Page) OnType(selector string, fn Hook) *Page {
	p.typeHooks = append(p.typeHooks, hook{match: cascadia.MustCompile(selector), fn: fn})
	return p
}

// OnKey registers fn for page-level key presses
func (p *Page) OnKey(key string, fn Hook) *Page {
	p.keyHooks[key] = append(p.keyHooks[key], fn)
	return p
}

// SetNetworkIdle controls whether network-idle waits succeed
func (p *Page) SetNetworkIdle(idle bool) *Page {
	p.networkIdle = idle
	return p
}

// Load replaces the current document without recording a navigation
func (p *Page) Load(rawURL, html string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("parse %s: %w", rawURL, err)
	}
	p.doc = doc
	p.current = rawURL
	return nil
}

// Go navigates to rawURL; hooks use it to model form submissions
func (p *Page) Go(rawURL string) error {
	target := rawURL
	for i := 0; i < maxRedirects; i++ {
		next, ok := p.redirects[target]
		if !ok {
			break
		}
		target = next
	}
	html, ok := p.pages[target]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoPage, rawURL)
	}
	p.navigations = append(p.navigations, rawURL)
	return p.Load(target, html)
}

// Append parses fragment and appends it to every element matching selector
func (p *Page) Append(selector, fragment string) {
	p.doc.Find(selector).AppendHtml(fragment)
}

// Remove deletes every element matching selector
func (p *Page) Remove(selector string) {
	p.doc.Find(selector).Remove()
}

// Document exposes the current document
func (p *Page) Document() *goquery.Document {
	return p.doc
}

// Elapsed is the total virtual time spent waiting
func (p *Page) Elapsed() time.Duration {
	return p.elapsed
}

// Navigations lists every URL navigated to, in order
func (p *Page) Navigations() []string {
	return append([]string(nil), p.navigations...)
}

func (p *Page) Navigate(ctx context.Context, rawURL string, _ browser.WaitCondition, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.Go(rawURL)
}

func (p *Page) URL(_ context.Context) string {
	return p.current
}

func (p *Page) QueryAll(ctx context.Context, selector string) ([]browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	return p.wrap(p.doc.FindMatcher(m)), nil
}

func (p *Page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) (browser.Element, error) {
	els, err := p.QueryAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	for _, el := range els {
		if browser.Visible(ctx, el) {
			return el, nil
		}
	}
	p.elapsed += timeout
	return nil, fmt.Errorf("wait for %q: %w", selector, browser.ErrTimeout)
}

func (p *Page) WaitForLoadState(ctx context.Context, state browser.WaitCondition, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if state == browser.WaitNetworkIdle && !p.networkIdle {
		p.elapsed += timeout
		return browser.ErrTimeout
	}
	return nil
}

func (p *Page) Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.elapsed += d
	return nil
}

func (p *Page) KeyboardPress(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, fn := range p.keyHooks[key] {
		if err := fn(p, p.doc.Selection); err != nil {
			return err
		}
	}
	return nil
}

func (p *Page) wrap(sel *goquery.Selection) []browser.Element {
	out := make([]browser.Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &Element{page: p, sel: s})
	})
	return out
}

// runHooks fires matching hooks and reports whether any ran
func (p *Page) runHooks(hooks []hook, sel *goquery.Selection) (bool, error) {
	node := sel.Get(0)
	ran := false
	for _, h := range hooks {
		if !h.match.Match(node) {
			continue
		}
		ran = true
		if err := h.fn(p, sel); err != nil {
			return ran, err
		}
	}
	return ran, nil
}

// resolve makes href absolute against the current document URL
func (p *Page) resolve(href string) (string, error) {
	base, err := url.Parse(p.current)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
