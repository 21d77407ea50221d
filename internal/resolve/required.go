package resolve

import (
	"context"
	"strings"

	"github.com/v0xg/formmap/internal/browser"
	"github.com/v0xg/formmap/internal/probe"
)

// requiredIndicatorSelector matches explicit required markers next to a control
const requiredIndicatorSelector = `.wd-required, [data-automation-id*="required"], .required, .mandatory, .wd-validation-required`

// IsRequired reports whether any required-ness probe matches el
func IsRequired(ctx context.Context, el browser.Element) bool {
	return probe.Any(ctx, el,
		hasRequiredAttr,
		ariaRequired,
		classMentionsRequired,
		parentHasIndicator,
		parentContentMentionsRequired,
		parentClassMentionsRequired,
	)
}

func hasRequiredAttr(ctx context.Context, el browser.Element) bool {
	_, ok, err := el.Attribute(ctx, "required")
	return err == nil && ok
}

func ariaRequired(ctx context.Context, el browser.Element) bool {
	return browser.Attr(ctx, el, "aria-required") == "true"
}

func classMentionsRequired(ctx context.Context, el browser.Element) bool {
	return strings.Contains(strings.ToLower(browser.Attr(ctx, el, "class")), "required")
}

func parentHasIndicator(ctx context.Context, el browser.Element) bool {
	parent, err := el.Parent(ctx)
	if err != nil {
		return false
	}
	indicators, err := parent.QueryAll(ctx, requiredIndicatorSelector)
	return err == nil && len(indicators) > 0
}

func parentContentMentionsRequired(ctx context.Context, el browser.Element) bool {
	parent, err := el.Parent(ctx)
	if err != nil {
		return false
	}
	html, err := parent.InnerHTML(ctx)
	if err != nil {
		return false
	}
	return strings.Contains(html, "*") || strings.Contains(strings.ToLower(html), "required")
}

func parentClassMentionsRequired(ctx context.Context, el browser.Element) bool {
	parent, err := el.Parent(ctx)
	if err != nil {
		return false
	}
	return classMentionsRequired(ctx, parent)
}
