// Package probe composes ordered, best-effort lookups. A probe reports
// absence instead of failing; the first probe to produce a value wins.
package probe

import (
	"context"

	"github.com/v0xg/formmap/internal/browser"
)

// Func inspects el and reports a value when it found one
type Func[T any] func(ctx context.Context, el browser.Element) (T, bool)

// First runs probes in order and returns the first value found.
// It stops early when ctx is done.
func First[T any](ctx context.Context, el browser.Element, probes ...Func[T]) (T, bool) {
	var zero T
	for _, p := range probes {
		if ctx.Err() != nil {
			return zero, false
		}
		if v, ok := p(ctx, el); ok {
			return v, true
		}
	}
	return zero, false
}

// Check is a yes/no probe; probe failures count as no
type Check func(ctx context.Context, el browser.Element) bool

// Any reports whether any check matches, stopping at the first match
func Any(ctx context.Context, el browser.Element, checks ...Check) bool {
	for _, c := range checks {
		if ctx.Err() != nil {
			return false
		}
		if c(ctx, el) {
			return true
		}
	}
	return false
}
