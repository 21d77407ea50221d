// Package extract builds the form-control catalog of the current page.
package extract

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/v0xg/formmap/internal/browser"
	"github.com/v0xg/formmap/internal/form"
	"github.com/v0xg/formmap/internal/resolve"
	"github.com/v0xg/formmap/internal/sample"
)

var (
	consentWords     = []string{"yes", "no", "agree", "consent", "accept"}
	consentOptions   = []string{"Yes", "No"}
	checkedOptions   = []string{"Checked", "Unchecked"}
	radioDefaults    = []string{"Option 1", "Option 2"}
	defaultFileTypes = []string{".pdf", ".doc", ".docx"}
)

// Options configures how long extraction waits for a page to render
type Options struct {
	// Settle is the fixed delay after DOM content is loaded
	Settle time.Duration
	// FormWait bounds the wait for any form control to appear
	FormWait time.Duration
	// LoadTimeout bounds the DOM content wait
	LoadTimeout time.Duration
	// Dropdown holds the custom dropdown probing delays
	Dropdown resolve.Timing
}

// DefaultOptions returns the delays used against live pages
func DefaultOptions() Options {
	return Options{
		Settle:      3 * time.Second,
		FormWait:    5 * time.Second,
		LoadTimeout: 30 * time.Second,
		Dropdown:    resolve.DefaultTiming(),
	}
}

// Extractor extracts form controls from the page it was created for
type Extractor struct {
	page    browser.Page
	opts    Options
	labels  *resolve.Labels
	options *resolve.Options
	logger  *zap.Logger
}

// New creates an extractor bound to page
func New(page browser.Page, opts Options, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		page:    page,
		opts:    opts,
		labels:  resolve.NewLabels(page, logger.Named("resolve")),
		options: resolve.NewOptions(page, opts.Dropdown, logger.Named("resolve")),
		logger:  logger,
	}
}

// Extract waits for the page to settle and returns its form controls,
// deduplicated by ID with the first occurrence kept
func (x *Extractor) Extract(ctx context.Context) []form.Element {
	url := x.page.URL(ctx)
	x.logger.Info("Extracting form elements", zap.String("url", url))

	if err := x.page.WaitForLoadState(ctx, browser.WaitDOMContentLoaded, x.opts.LoadTimeout); err != nil {
		x.logger.Debug("DOM content wait failed", zap.Error(err))
	}
	if err := x.page.Wait(ctx, x.opts.Settle); err != nil {
		return nil
	}
	if _, err := x.page.WaitForSelector(ctx, formReadySelector, x.opts.FormWait); err != nil {
		x.logger.Debug("No form controls rendered", zap.String("url", url))
	}

	elements := x.Scan(ctx)
	x.logger.Info("Extracted form elements", zap.String("url", url), zap.Int("count", len(elements)))
	return elements
}

// Scan runs every category pass against the current document without waiting
func (x *Extractor) Scan(ctx context.Context) []form.Element {
	var all []form.Element
	for _, pass := range passes {
		if ctx.Err() != nil {
			break
		}
		run := pageRun{x: x, processed: make(map[string]bool)}
		for _, selector := range pass.selectors {
			controls, err := x.page.QueryAll(ctx, selector)
			if err != nil {
				x.logger.Debug("Selector failed", zap.String("selector", selector), zap.Error(err))
				continue
			}
			for _, control := range controls {
				if !usable(ctx, control) {
					continue
				}
				if el, ok := run.handle(ctx, pass.kind, pass.category, control); ok {
					all = append(all, el)
				}
			}
		}
	}
	return form.Dedup(all)
}

// pageRun holds the group keys already emitted by one category pass
type pageRun struct {
	x         *Extractor
	processed map[string]bool
}

func (r *pageRun) handle(ctx context.Context, k kind, category form.Category, control browser.Element) (form.Element, bool) {
	switch k {
	case kindText:
		el, ok := r.x.describe(ctx, control, category)
		if ok {
			el.SampleValues = []string{sample.Text(el.Label, inputType(ctx, control))}
		}
		return el, ok
	case kindTextArea:
		el, ok := r.x.describe(ctx, control, category)
		if ok {
			el.SampleValues = []string{sample.TextAreaText}
		}
		return el, ok
	case kindSelect:
		return r.x.selectElement(ctx, control)
	case kindCheckbox:
		return r.checkbox(ctx, control)
	case kindRadio:
		return r.radio(ctx, control)
	case kindDate:
		el, ok := r.x.describe(ctx, control, category)
		if ok {
			el.SampleValues = []string{sample.Date(el.Label)}
		}
		return el, ok
	case kindFile:
		el, ok := r.x.describe(ctx, control, category)
		if ok {
			el.Options = acceptedTypes(browser.Attr(ctx, control, "accept"))
			el.SampleValues = []string{sample.FileName}
		}
		return el, ok
	}
	return form.Element{}, false
}

func (x *Extractor) selectElement(ctx context.Context, control browser.Element) (form.Element, bool) {
	_, multiple, err := control.Attribute(ctx, "multiple")
	multiple = err == nil && multiple
	if strings.Contains(strings.ToLower(browser.Attr(ctx, control, "data-automation-id")), "multi") {
		multiple = true
	}
	category := form.Select
	if multiple {
		category = form.MultiSelect
	}

	el, ok := x.describe(ctx, control, category)
	if !ok {
		return el, false
	}
	el.Options = x.options.Resolve(ctx, control)
	if n := len(el.Options); n > 0 {
		count := 1
		if multiple {
			count = 2
		}
		if count > n {
			count = n
		}
		el.SampleValues = append([]string(nil), el.Options[:count]...)
	}
	return el, true
}

func (r *pageRun) checkbox(ctx context.Context, control browser.Element) (form.Element, bool) {
	name := browser.Attr(ctx, control, "name")
	key := name
	if key == "" {
		key = browser.Attr(ctx, control, "data-automation-id")
	}
	if key != "" && r.processed[key] {
		return form.Element{}, false
	}

	el, ok := r.x.describe(ctx, control, form.Checkbox)
	if !ok {
		return el, false
	}

	if name != "" {
		if options, grouped := r.x.groupLabels(ctx, name, form.Checkbox); grouped {
			r.processed[key] = true
			if len(options) > 0 {
				el.Options = options
				el.SampleValues = []string{options[0]}
				return el, true
			}
		}
	}

	if containsAny(strings.ToLower(el.Label), consentWords) {
		el.Options = append([]string(nil), consentOptions...)
	} else {
		el.Options = append([]string(nil), checkedOptions...)
	}
	el.SampleValues = []string{el.Options[0]}
	return el, true
}

// groupLabels resolves the distinct labels of the visible controls sharing
// name. grouped is false when fewer than two controls carry name.
func (x *Extractor) groupLabels(ctx context.Context, name string, category form.Category) (options []string, grouped bool) {
	members, err := x.page.QueryAll(ctx, browser.AttrEquals("input", "name", name))
	if err != nil || len(members) < 2 {
		return nil, false
	}
	for _, m := range members {
		if !browser.Visible(ctx, m) {
			continue
		}
		options = appendUnique(options, x.labels.Resolve(ctx, m, category))
	}
	return options, true
}

func (r *pageRun) radio(ctx context.Context, control browser.Element) (form.Element, bool) {
	name := browser.Attr(ctx, control, "name")
	if name == "" || r.processed[name] {
		return form.Element{}, false
	}
	r.processed[name] = true

	var options []string
	if members, err := r.x.page.QueryAll(ctx, browser.AttrEquals("input", "name", name)); err == nil {
		for _, m := range members {
			if !browser.Visible(ctx, m) {
				continue
			}
			value := browser.Attr(ctx, m, "value")
			if value != "" && !contains(options, value) {
				options = append(options, value)
				continue
			}
			options = appendUnique(options, r.x.labels.Resolve(ctx, m, form.Radio))
		}
	}

	el, ok := r.x.describe(ctx, control, form.Radio)
	if !ok {
		return el, false
	}
	if len(options) == 0 {
		options = append([]string(nil), radioDefaults...)
	}
	el.Options = options
	el.SampleValues = []string{options[0]}
	return el, true
}

// describe builds the fields shared by every category
func (x *Extractor) describe(ctx context.Context, control browser.Element, category form.Category) (form.Element, bool) {
	id, ok := x.identify(ctx, control, category)
	if !ok {
		return form.Element{}, false
	}
	return form.Element{
		Label:    x.labels.Resolve(ctx, control, category),
		ID:       id,
		Required: resolve.IsRequired(ctx, control),
		Category: category,
	}, true
}

// identify prefers the automation id, then the DOM id, then the name, and
// finally a hash of the control's markup
func (x *Extractor) identify(ctx context.Context, control browser.Element, category form.Category) (string, bool) {
	for _, attr := range []string{"data-automation-id", "id", "name"} {
		if v := browser.Attr(ctx, control, attr); v != "" {
			return v, true
		}
	}
	markup, err := control.OuterHTML(ctx)
	if err != nil {
		x.logger.Debug("Control markup unavailable", zap.Error(err))
		return "", false
	}
	sum := md5.Sum([]byte(string(category) + markup))
	return "element_" + hex.EncodeToString(sum[:]), true
}

func usable(ctx context.Context, control browser.Element) bool {
	if !browser.Visible(ctx, control) {
		return false
	}
	disabled, err := control.IsDisabled(ctx)
	return err == nil && !disabled
}

func inputType(ctx context.Context, control browser.Element) string {
	if t := browser.Attr(ctx, control, "type"); t != "" {
		return t
	}
	return "text"
}

func acceptedTypes(accept string) []string {
	if strings.TrimSpace(accept) == "" {
		return append([]string(nil), defaultFileTypes...)
	}
	var types []string
	for _, t := range strings.Split(accept, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	return types
}

func appendUnique(list []string, v string) []string {
	if v == "" || contains(list, v) {
		return list
	}
	return append(list, v)
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
