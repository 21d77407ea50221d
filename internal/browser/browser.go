package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// WaitCondition names a page lifecycle milestone to wait for
type WaitCondition string

const (
	WaitDOMContentLoaded WaitCondition = "domcontentloaded"
	WaitLoad             WaitCondition = "load"
	WaitNetworkIdle      WaitCondition = "networkidle"
)

// Key names accepted by Page.KeyboardPress
const (
	KeyEscape    = "Escape"
	KeyEnter     = "Enter"
	KeyTab       = "Tab"
	KeyBackspace = "Backspace"
)

var (
	// ErrNotFound is returned when a queried element does not exist
	ErrNotFound = errors.New("element not found")
	// ErrTimeout is returned when a bounded wait expires
	ErrTimeout = errors.New("wait timed out")
)

// Page is the page-level browser capability the crawler drives.
// All calls are made sequentially from a single goroutine.
type Page interface {
	Navigate(ctx context.Context, url string, wait WaitCondition, timeout time.Duration) error
	URL(ctx context.Context) string
	QueryAll(ctx context.Context, selector string) ([]Element, error)
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) (Element, error)
	WaitForLoadState(ctx context.Context, state WaitCondition, timeout time.Duration) error
	Wait(ctx context.Context, d time.Duration) error
	KeyboardPress(ctx context.Context, key string) error
}

// Element is a handle to one node in the current document
type Element interface {
	IsVisible(ctx context.Context) (bool, error)
	IsDisabled(ctx context.Context) (bool, error)
	// Attribute reports the attribute value and whether it is present
	Attribute(ctx context.Context, name string) (string, bool, error)
	InnerText(ctx context.Context) (string, error)
	InnerHTML(ctx context.Context) (string, error)
	OuterHTML(ctx context.Context) (string, error)
	TagName(ctx context.Context) (string, error)

	Click(ctx context.Context) error
	Fill(ctx context.Context, value string) error
	Clear(ctx context.Context) error
	TypeKeys(ctx context.Context, text string, perKey time.Duration) error
	ScrollIntoView(ctx context.Context) error

	QueryAll(ctx context.Context, selector string) ([]Element, error)
	// Parent, PreviousSibling and NextSibling return ErrNotFound at the edge of the tree
	Parent(ctx context.Context) (Element, error)
	PreviousSibling(ctx context.Context) (Element, error)
	NextSibling(ctx context.Context) (Element, error)
}

// Sleep blocks for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Visible reports whether el is visible, treating probe errors as invisible
func Visible(ctx context.Context, el Element) bool {
	ok, err := el.IsVisible(ctx)
	return err == nil && ok
}

// Attr returns the attribute value, or "" when absent or unreadable
func Attr(ctx context.Context, el Element, name string) string {
	v, ok, err := el.Attribute(ctx, name)
	if err != nil || !ok {
		return ""
	}
	return v
}

// FirstVisible returns the first visible element matched by selector on the page
func FirstVisible(ctx context.Context, page Page, selector string) (Element, bool) {
	els, err := page.QueryAll(ctx, selector)
	if err != nil {
		return nil, false
	}
	for _, el := range els {
		if Visible(ctx, el) {
			return el, true
		}
	}
	return nil, false
}

// waitVisible polls query until it returns a visible element or ctx is done.
// Query errors are retried; the last one is reported when ctx ends first.
func waitVisible(ctx context.Context, query func(context.Context) ([]Element, error), interval time.Duration) (Element, error) {
	var lastErr error
	for {
		els, err := query(ctx)
		if err == nil {
			for _, el := range els {
				if Visible(ctx, el) {
					return el, nil
				}
			}
		} else {
			lastErr = err
		}
		if err := Sleep(ctx, interval); err != nil {
			if lastErr != nil {
				return nil, fmt.Errorf("%w: %v", err, lastErr)
			}
			return nil, err
		}
	}
}

// AttrEquals builds a `tag[attr="value"]` selector with value escaped for CSS
func AttrEquals(tag, attr, value string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return tag + "[" + attr + `="` + r.Replace(value) + `"]`
}

// IDSelector builds an attribute selector matching the element id exactly,
// which tolerates ids that are not valid CSS identifiers
func IDSelector(id string) string {
	return AttrEquals("", "id", id)
}
