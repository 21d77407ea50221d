package resolve

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/v0xg/formmap/internal/browser"
	"github.com/v0xg/formmap/internal/probe"
)

const (
	// maxOptions caps the final option list
	maxOptions = 15
	// maxPopupOptions caps options read from one popup selector
	maxPopupOptions = 20
	// maxSuggestions caps options read from one typeahead selector
	maxSuggestions = 10
	// maxOptionLen excludes popup entries that are clearly not option labels
	maxOptionLen = 100
	// typeaheadProbe is typed into combobox controls to trigger suggestions
	typeaheadProbe = "a"
)

// popupSelectors locate options rendered by script-driven dropdowns, in priority order
var popupSelectors = []string{
	`[data-automation-id*="dropdown"] li`,
	`[role="option"]`,
	`.wd-popup-content li`,
	`[data-automation-id*="listbox"] div`,
	`.wd-dropdown-list li`,
	`[data-automation-id*="menuItem"]`,
	`.wd-popup [role="menuitem"]`,
	`[data-automation-id*="option"]`,
	`.wd-list-item`,
}

// suggestionSelectors locate typeahead suggestions, in priority order
var suggestionSelectors = []string{
	`[role="option"]`,
	`.wd-suggestion`,
	`[data-automation-id*="typeahead"] li`,
}

var (
	nativePlaceholders = []string{"", "select...", "choose...", "please select", "-- select --", "select an option"}
	popupPlaceholders  = []string{"select...", "choose...", "loading..."}
)

// Timing holds the settle periods used while probing custom dropdowns
type Timing struct {
	Scroll    time.Duration
	Open      time.Duration
	Poll      time.Duration
	Typeahead time.Duration
	KeyDelay  time.Duration
	Close     time.Duration
}

// DefaultTiming returns the settle periods used against live pages
func DefaultTiming() Timing {
	return Timing{
		Scroll:    500 * time.Millisecond,
		Open:      1500 * time.Millisecond,
		Poll:      500 * time.Millisecond,
		Typeahead: time.Second,
		KeyDelay:  100 * time.Millisecond,
		Close:     500 * time.Millisecond,
	}
}

// Options enumerates the choices offered by select-like controls
type Options struct {
	page   browser.Page
	logger *zap.Logger
	timing Timing
}

// NewOptions creates an options resolver for controls on page
func NewOptions(page browser.Page, timing Timing, logger *zap.Logger) *Options {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Options{page: page, logger: logger, timing: timing}
}

// Resolve returns the control's options in discovery order, deduplicated and
// capped. An empty result means no options could be discovered.
func (o *Options) Resolve(ctx context.Context, el browser.Element) []string {
	var options []string
	if native, err := el.QueryAll(ctx, "option"); err == nil && len(native) > 0 {
		options = o.nativeOptions(ctx, native)
	} else {
		options = o.customOptions(ctx, el)
	}
	options = unique(options)
	if len(options) > maxOptions {
		options = options[:maxOptions]
	}
	return options
}

func (o *Options) nativeOptions(ctx context.Context, entries []browser.Element) []string {
	var out []string
	for _, entry := range entries {
		text, err := entry.InnerText(ctx)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			text = strings.TrimSpace(browser.Attr(ctx, entry, "value"))
		}
		if isOneOf(strings.ToLower(text), nativePlaceholders) {
			continue
		}
		out = append(out, text)
	}
	return out
}

// customOptions opens a script-driven dropdown and reads its popup, falling
// back to typeahead suggestions. The popup is closed on every path.
func (o *Options) customOptions(ctx context.Context, el browser.Element) []string {
	defer o.closePopup(ctx)

	if err := el.ScrollIntoView(ctx); err != nil {
		o.logger.Debug("Scroll into view failed", zap.Error(err))
	}
	_ = o.page.Wait(ctx, o.timing.Scroll)
	if err := el.Click(ctx); err != nil {
		o.logger.Debug("Dropdown did not open", zap.Error(err))
		return nil
	}
	_ = o.page.Wait(ctx, o.timing.Open)

	options, _ := probe.First(ctx, el, o.popupOptions, o.typeaheadOptions)
	return options
}

func (o *Options) popupOptions(ctx context.Context, _ browser.Element) ([]string, bool) {
	for _, selector := range popupSelectors {
		if err := o.page.Wait(ctx, o.timing.Poll); err != nil {
			return nil, false
		}
		found := o.scan(ctx, selector, maxPopupOptions, func(text string) bool {
			return !isOneOf(strings.ToLower(text), popupPlaceholders)
		})
		if len(found) > 0 {
			return found, true
		}
	}
	return nil, false
}

func (o *Options) typeaheadOptions(ctx context.Context, el browser.Element) ([]string, bool) {
	if err := el.Clear(ctx); err != nil {
		o.logger.Debug("Typeahead probe skipped", zap.Error(err))
		return nil, false
	}
	defer func() {
		if err := el.Clear(ctx); err != nil {
			o.logger.Debug("Clearing typeahead probe failed", zap.Error(err))
		}
	}()
	if err := el.TypeKeys(ctx, typeaheadProbe, o.timing.KeyDelay); err != nil {
		o.logger.Debug("Typeahead probe failed", zap.Error(err))
		return nil, false
	}
	_ = o.page.Wait(ctx, o.timing.Typeahead)

	for _, selector := range suggestionSelectors {
		if found := o.scan(ctx, selector, maxSuggestions, nil); len(found) > 0 {
			return found, true
		}
	}
	return nil, false
}

// scan reads up to limit visible, short, distinct option texts matched by selector
func (o *Options) scan(ctx context.Context, selector string, limit int, keep func(string) bool) []string {
	els, err := o.page.QueryAll(ctx, selector)
	if err != nil {
		o.logger.Debug("Option selector failed", zap.String("selector", selector), zap.Error(err))
		return nil
	}
	var out []string
	for _, el := range visibleOnly(ctx, els, limit) {
		text, err := el.InnerText(ctx)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" || len(text) >= maxOptionLen || isOneOf(text, out) {
			continue
		}
		if keep != nil && !keep(text) {
			continue
		}
		out = append(out, text)
	}
	return out
}

func (o *Options) closePopup(ctx context.Context) {
	if err := o.page.KeyboardPress(ctx, browser.KeyEscape); err == nil {
		_ = o.page.Wait(ctx, o.timing.Close)
		return
	}
	if body, ok := browser.FirstVisible(ctx, o.page, "body"); ok {
		if err := body.Click(ctx); err != nil {
			o.logger.Debug("Closing dropdown failed", zap.Error(err))
		}
		_ = o.page.Wait(ctx, o.timing.Close)
	}
}

func visibleOnly(ctx context.Context, els []browser.Element, limit int) []browser.Element {
	var out []browser.Element
	for _, el := range els {
		if len(out) == limit {
			break
		}
		if browser.Visible(ctx, el) {
			out = append(out, el)
		}
	}
	return out
}

func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0:0]
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func isOneOf(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}
