package auth

import (
	"context"
	"strings"

	"github.com/v0xg/formmap/internal/browser"
)

// Target names a control by CSS selector and, optionally, by a
// case-insensitive fragment of its rendered text
type Target struct {
	Selector string
	Text     string
}

// T is shorthand for a selector-only Target
func T(selector string) Target {
	return Target{Selector: selector}
}

// all returns the controls matching t in document order
func (t Target) all(ctx context.Context, page browser.Page) []browser.Element {
	els, err := page.QueryAll(ctx, t.Selector)
	if err != nil || t.Text == "" {
		return els
	}
	want := strings.ToLower(t.Text)
	var out []browser.Element
	for _, el := range els {
		text, err := el.InnerText(ctx)
		if err == nil && strings.Contains(strings.ToLower(text), want) {
			out = append(out, el)
		}
	}
	return out
}

// first returns the first control matched by any target, trying targets in order
func first(ctx context.Context, page browser.Page, targets []Target) (browser.Element, bool) {
	for _, t := range targets {
		if els := t.all(ctx, page); len(els) > 0 {
			return els[0], true
		}
	}
	return nil, false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
