package resolve

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/v0xg/formmap/internal/browser"
	"github.com/v0xg/formmap/internal/form"
	"github.com/v0xg/formmap/internal/probe"
)

const (
	// ancestorDepth bounds the ancestor scan for label-like descendants
	ancestorDepth = 4
	// siblingDepth bounds the walk to the nearest matching sibling
	siblingDepth = 10
)

// labelLikeSelector matches elements that commonly carry field labels
const labelLikeSelector = `label, .wd-label, [data-automation-id*="label"], .fieldLabel, .wd-input-label`

var (
	separators  = regexp.MustCompile(`[_-]`)
	camelBreak  = regexp.MustCompile(`([a-z])([A-Z])`)
	whitespace  = regexp.MustCompile(`\s+`)
	promptVerbs = []string{"enter", "select", "choose", "provide"}
)

// Labels resolves the human-readable label of a control
type Labels struct {
	page   browser.Page
	logger *zap.Logger
}

// NewLabels creates a label resolver for controls on page
func NewLabels(page browser.Page, logger *zap.Logger) *Labels {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Labels{page: page, logger: logger}
}

// Resolve walks the label fallback chain and never returns an empty string
func (l *Labels) Resolve(ctx context.Context, el browser.Element, category form.Category) string {
	label, ok := probe.First(ctx, el,
		l.ariaLabel,
		l.ariaLabelledBy,
		l.labelFor,
		l.structural,
		l.ancestorScan,
		l.placeholder,
		l.nearbyPrompt,
		l.fromIdentifier,
	)
	if ok {
		return label
	}
	return fmt.Sprintf("Unnamed %s field", category)
}

func (l *Labels) ariaLabel(ctx context.Context, el browser.Element) (string, bool) {
	return nonEmpty(browser.Attr(ctx, el, "aria-label"))
}

func (l *Labels) ariaLabelledBy(ctx context.Context, el browser.Element) (string, bool) {
	id := strings.TrimSpace(browser.Attr(ctx, el, "aria-labelledby"))
	if id == "" {
		return "", false
	}
	// aria-labelledby may list several ids; the first one names the field
	id = strings.Fields(id)[0]
	return l.textOf(ctx, browser.IDSelector(id))
}

func (l *Labels) labelFor(ctx context.Context, el browser.Element) (string, bool) {
	id := browser.Attr(ctx, el, "id")
	if id == "" {
		return "", false
	}
	return l.textOf(ctx, browser.AttrEquals("label", "for", id))
}

func (l *Labels) textOf(ctx context.Context, selector string) (string, bool) {
	els, err := l.page.QueryAll(ctx, selector)
	if err != nil || len(els) == 0 {
		if err != nil {
			l.logger.Debug("Label lookup failed", zap.String("selector", selector), zap.Error(err))
		}
		return "", false
	}
	text, err := els[0].InnerText(ctx)
	if err != nil {
		return "", false
	}
	return nonEmpty(text)
}

// structural checks labels positioned next to or around the control
func (l *Labels) structural(ctx context.Context, el browser.Element) (string, bool) {
	candidates := []func() browser.Element{
		func() browser.Element { return nearestSibling(ctx, el, backward, isTag("label")) },
		func() browser.Element { return nearestSibling(ctx, el, forward, isTag("label")) },
		func() browser.Element { return firstWithin(ctx, ancestor(ctx, el, 1), "label") },
		func() browser.Element { return firstWithin(ctx, ancestor(ctx, el, 2), "label") },
		func() browser.Element { return nearestSibling(ctx, el, backward, attrContains("class", "wd-label")) },
		func() browser.Element {
			return firstWithin(ctx, ancestor(ctx, el, 1), `[data-automation-id*="label"]`)
		},
		func() browser.Element {
			return nearestSibling(ctx, el, backward, attrContains("data-automation-id", "fieldLabel"))
		},
	}
	for _, candidate := range candidates {
		c := candidate()
		if c == nil || !browser.Visible(ctx, c) {
			continue
		}
		if text, ok := boundedText(ctx, c, 5, 200); ok {
			return text, true
		}
	}
	return "", false
}

// ancestorScan looks for visible label-like descendants of each ancestor
func (l *Labels) ancestorScan(ctx context.Context, el browser.Element) (string, bool) {
	cur := el
	for level := 0; level < ancestorDepth; level++ {
		parent, err := cur.Parent(ctx)
		if err != nil {
			return "", false
		}
		labels, err := parent.QueryAll(ctx, labelLikeSelector)
		if err == nil {
			for _, lbl := range labels {
				if !browser.Visible(ctx, lbl) {
					continue
				}
				if text, ok := boundedText(ctx, lbl, 5, 200); ok {
					return text, true
				}
			}
		}
		cur = parent
	}
	return "", false
}

func (l *Labels) placeholder(ctx context.Context, el browser.Element) (string, bool) {
	text, ok := nonEmpty(browser.Attr(ctx, el, "placeholder"))
	if !ok {
		return "", false
	}
	return "Field: " + text, true
}

// nearbyPrompt picks a question-like line from the parent's text
func (l *Labels) nearbyPrompt(ctx context.Context, el browser.Element) (string, bool) {
	parent, err := el.Parent(ctx)
	if err != nil {
		return "", false
	}
	text, err := parent.InnerText(ctx)
	if err != nil {
		return "", false
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(whitespace.ReplaceAllString(line, " "))
		if n := utf8.RuneCountInString(line); n <= 5 || n >= 150 {
			continue
		}
		if strings.HasSuffix(line, "?") || strings.HasSuffix(line, ":") || containsAny(strings.ToLower(line), promptVerbs) {
			return line, true
		}
	}
	return "", false
}

func (l *Labels) fromIdentifier(ctx context.Context, el browser.Element) (string, bool) {
	if id := browser.Attr(ctx, el, "data-automation-id"); len(id) > 5 {
		return Humanize(id), true
	}
	if name := browser.Attr(ctx, el, "name"); name != "" {
		return Humanize(name), true
	}
	return "", false
}

// Humanize turns a camelCase, snake_case or kebab-case identifier into title-cased words
func Humanize(id string) string {
	s := separators.ReplaceAllString(id, " ")
	s = camelBreak.ReplaceAllString(s, "$1 $2")
	return cases.Title(language.English).String(s)
}

type direction int

const (
	backward direction = iota
	forward
)

func nearestSibling(ctx context.Context, el browser.Element, dir direction, match func(context.Context, browser.Element) bool) browser.Element {
	cur := el
	for i := 0; i < siblingDepth; i++ {
		var (
			next browser.Element
			err  error
		)
		if dir == backward {
			next, err = cur.PreviousSibling(ctx)
		} else {
			next, err = cur.NextSibling(ctx)
		}
		if err != nil {
			return nil
		}
		if match(ctx, next) {
			return next
		}
		cur = next
	}
	return nil
}

func ancestor(ctx context.Context, el browser.Element, levels int) browser.Element {
	cur := el
	for i := 0; i < levels; i++ {
		parent, err := cur.Parent(ctx)
		if err != nil {
			return nil
		}
		cur = parent
	}
	return cur
}

func firstWithin(ctx context.Context, root browser.Element, selector string) browser.Element {
	if root == nil {
		return nil
	}
	els, err := root.QueryAll(ctx, selector)
	if err != nil || len(els) == 0 {
		return nil
	}
	return els[0]
}

func isTag(tag string) func(context.Context, browser.Element) bool {
	return func(ctx context.Context, el browser.Element) bool {
		name, err := el.TagName(ctx)
		return err == nil && name == tag
	}
}

func attrContains(attr, substr string) func(context.Context, browser.Element) bool {
	return func(ctx context.Context, el browser.Element) bool {
		return strings.Contains(browser.Attr(ctx, el, attr), substr)
	}
}

// boundedText returns the trimmed inner text when its length is strictly between lo and hi
func boundedText(ctx context.Context, el browser.Element, lo, hi int) (string, bool) {
	text, err := el.InnerText(ctx)
	if err != nil {
		return "", false
	}
	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n <= lo || n >= hi {
		return "", false
	}
	return text, true
}

func nonEmpty(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
