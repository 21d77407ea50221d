package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

const (
	// requestIdleWindow is how long the network must stay quiet to count as idle
	requestIdleWindow = 500 * time.Millisecond
	// selectorPollInterval spaces the visibility checks of WaitForSelector
	selectorPollInterval = 100 * time.Millisecond
)

var lifecycleEvents = map[WaitCondition]proto.PageLifecycleEventName{
	WaitDOMContentLoaded: proto.PageLifecycleEventNameDOMContentLoaded,
	WaitLoad:             proto.PageLifecycleEventNameLoad,
	WaitNetworkIdle:      proto.PageLifecycleEventNameNetworkIdle,
}

var keys = map[string]input.Key{
	KeyEscape:    input.Escape,
	KeyEnter:     input.Enter,
	KeyTab:       input.Tab,
	KeyBackspace: input.Backspace,
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) Navigate(ctx context.Context, url string, wait WaitCondition, timeout time.Duration) error {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	page := p.page.Context(tctx)

	event, ok := lifecycleEvents[wait]
	if !ok {
		event = proto.PageLifecycleEventNameDOMContentLoaded
	}
	waitNav := page.WaitNavigation(event)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, timeoutErr(tctx, err))
	}
	waitNav()
	if err := tctx.Err(); err != nil {
		return fmt.Errorf("navigate %s: %w", url, timeoutErr(tctx, err))
	}
	return nil
}

func (p *rodPage) URL(ctx context.Context) string {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *rodPage) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	els, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	return wrapElements(els), nil
}

func (p *rodPage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) (Element, error) {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	el, err := waitVisible(tctx, func(ctx context.Context) ([]Element, error) {
		return p.QueryAll(ctx, selector)
	}, selectorPollInterval)
	if err != nil {
		return nil, fmt.Errorf("wait for %q: %w", selector, timeoutErr(tctx, err))
	}
	// detach the element from the timeout context before it is cancelled
	return &rodElement{el: el.(*rodElement).el.Context(ctx)}, nil
}

func (p *rodPage) WaitForLoadState(ctx context.Context, state WaitCondition, timeout time.Duration) error {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	page := p.page.Context(tctx)

	switch state {
	case WaitNetworkIdle:
		// Don't hang on persistent connections (WebSockets, polling, etc.)
		page.WaitRequestIdle(requestIdleWindow, nil, nil, nil)()
		if err := tctx.Err(); err != nil {
			return timeoutErr(tctx, err)
		}
		return nil
	default:
		if err := page.WaitLoad(); err != nil {
			return timeoutErr(tctx, err)
		}
		return nil
	}
}

func (p *rodPage) Wait(ctx context.Context, d time.Duration) error {
	return Sleep(ctx, d)
}

func (p *rodPage) KeyboardPress(ctx context.Context, key string) error {
	k, ok := keys[key]
	if !ok {
		return fmt.Errorf("unsupported key %q", key)
	}
	// Page.Keyboard stays bound to the context the page was created with
	page := p.page.Context(ctx)
	if err := k.Encode(proto.InputDispatchKeyEventTypeKeyDown, 0).Call(page); err != nil {
		return fmt.Errorf("press %s: %w", key, err)
	}
	if err := k.Encode(proto.InputDispatchKeyEventTypeKeyUp, 0).Call(page); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}

// timeoutErr maps an expired deadline onto ErrTimeout
func timeoutErr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

func wrapElements(els rod.Elements) []Element {
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out
}
