package browser

import (
	"context"
	"errors"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

const clearValueJS = `() => {
	if (this.isContentEditable) {
		this.textContent = '';
	} else if ('value' in this) {
		this.value = '';
	} else {
		throw new Error('element is not an input, textarea or contenteditable');
	}
	this.dispatchEvent(new Event('input', { bubbles: true }));
	this.dispatchEvent(new Event('change', { bubbles: true }));
}`

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) with(ctx context.Context) *rod.Element {
	return e.el.Context(ctx)
}

func (e *rodElement) IsVisible(ctx context.Context) (bool, error) {
	return e.with(ctx).Visible()
}

func (e *rodElement) IsDisabled(ctx context.Context) (bool, error) {
	el := e.with(ctx)
	disabled, err := el.Property("disabled")
	if err != nil {
		return false, err
	}
	if disabled.Bool() {
		return true, nil
	}
	aria, err := el.Attribute("aria-disabled")
	if err != nil {
		return false, err
	}
	return aria != nil && *aria == "true", nil
}

func (e *rodElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, err := e.with(ctx).Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *rodElement) InnerText(ctx context.Context) (string, error) {
	return e.with(ctx).Text()
}

func (e *rodElement) InnerHTML(ctx context.Context) (string, error) {
	v, err := e.with(ctx).Property("innerHTML")
	if err != nil {
		return "", err
	}
	return v.Str(), nil
}

func (e *rodElement) OuterHTML(ctx context.Context) (string, error) {
	return e.with(ctx).HTML()
}

func (e *rodElement) TagName(ctx context.Context) (string, error) {
	obj, err := e.with(ctx).Eval(`() => this.tagName.toLowerCase()`)
	if err != nil {
		return "", err
	}
	return obj.Value.Str(), nil
}

func (e *rodElement) Click(ctx context.Context) error {
	return e.with(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (e *rodElement) Fill(ctx context.Context, value string) error {
	el := e.with(ctx)
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input(value)
}

func (e *rodElement) Clear(ctx context.Context) error {
	_, err := e.with(ctx).Eval(clearValueJS)
	return err
}

func (e *rodElement) TypeKeys(ctx context.Context, text string, perKey time.Duration) error {
	el := e.with(ctx)
	for _, char := range text {
		if err := el.Type(input.Key(char)); err != nil {
			return err
		}
		if err := Sleep(ctx, perKey); err != nil {
			return err
		}
	}
	return nil
}

func (e *rodElement) ScrollIntoView(ctx context.Context) error {
	return e.with(ctx).ScrollIntoView()
}

func (e *rodElement) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	els, err := e.with(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapElements(els), nil
}

func (e *rodElement) Parent(ctx context.Context) (Element, error) {
	return relative(e.notFound(ctx).Parent())
}

func (e *rodElement) PreviousSibling(ctx context.Context) (Element, error) {
	return relative(e.notFound(ctx).Previous())
}

func (e *rodElement) NextSibling(ctx context.Context) (Element, error) {
	return relative(e.notFound(ctx).Next())
}

// notFound makes relative lookups fail fast instead of polling for a node
func (e *rodElement) notFound(ctx context.Context) *rod.Element {
	return e.with(ctx).Sleeper(rod.NotFoundSleeper)
}

func relative(el *rod.Element, err error) (Element, error) {
	if err != nil {
		var nf *rod.ElementNotFoundError
		if errors.As(err, &nf) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rodElement{el: el}, nil
}
