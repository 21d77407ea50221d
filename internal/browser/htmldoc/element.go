package htmldoc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/v0xg/formmap/internal/browser"
)

// Element is a single node of a Page document
type Element struct {
	page *Page
	sel  *goquery.Selection
}

var _ browser.Element = (*Element)(nil)

// Selection exposes the underlying goquery selection
func (e *Element) Selection() *goquery.Selection {
	return e.sel
}

func (e *Element) IsVisible(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return visible(e.sel.Get(0)), nil
}

func (e *Element) IsDisabled(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, ok := e.sel.Attr("disabled"); ok {
		return true, nil
	}
	return e.sel.AttrOr("aria-disabled", "") == "true", nil
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

func (e *Element) InnerText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return innerText(e.sel.Get(0)), nil
}

func (e *Element) InnerHTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.sel.Html()
}

func (e *Element) OuterHTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return goquery.OuterHtml(e.sel)
}

func (e *Element) TagName(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return goquery.NodeName(e.sel), nil
}

// Click fires click hooks; without a hook, clicking a link follows its href
func (e *Element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ran, err := e.page.runHooks(e.page.clickHooks, e.sel)
	if err != nil || ran {
		return err
	}
	href, ok := e.sel.Attr("href")
	if !ok || goquery.NodeName(e.sel) != "a" || href == "" || strings.HasPrefix(href, "#") {
		return nil
	}
	target, err := e.page.resolve(href)
	if err != nil {
		return fmt.Errorf("click %q: %w", href, err)
	}
	return e.page.Go(target)
}

func (e *Element) Fill(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return setValue(e.sel, value)
}

func (e *Element) Clear(ctx context.Context) error {
	return e.Fill(ctx, "")
}

// TypeKeys appends text to the element value and fires type hooks
func (e *Element) TypeKeys(ctx context.Context, text string, perKey time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := setValue(e.sel, currentValue(e.sel)+text); err != nil {
		return err
	}
	e.page.elapsed += perKey * time.Duration(len([]rune(text)))
	_, err := e.page.runHooks(e.page.typeHooks, e.sel)
	return err
}

func (e *Element) ScrollIntoView(ctx context.Context) error {
	return ctx.Err()
}

func (e *Element) QueryAll(ctx context.Context, selector string) ([]browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	return e.page.wrap(e.sel.FindMatcher(m)), nil
}

func (e *Element) Parent(ctx context.Context) (browser.Element, error) {
	return e.relative(ctx, e.sel.Parent())
}

func (e *Element) PreviousSibling(ctx context.Context) (browser.Element, error) {
	return e.relative(ctx, e.sel.Prev())
}

func (e *Element) NextSibling(ctx context.Context) (browser.Element, error) {
	return e.relative(ctx, e.sel.Next())
}

func (e *Element) relative(ctx context.Context, sel *goquery.Selection) (browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sel.Length() == 0 {
		return nil, browser.ErrNotFound
	}
	return &Element{page: e.page, sel: sel.First()}, nil
}

// errNotEditable mirrors a browser refusing to fill a non-editable node
var errNotEditable = errors.New("element is not an input, textarea or contenteditable")

func editable(sel *goquery.Selection) (textual bool, ok bool) {
	switch goquery.NodeName(sel) {
	case "input":
		return false, true
	case "textarea":
		return true, true
	}
	if v, has := sel.Attr("contenteditable"); has && v != "false" {
		return true, true
	}
	return false, false
}

func currentValue(sel *goquery.Selection) string {
	if textual, _ := editable(sel); textual {
		return sel.Text()
	}
	return sel.AttrOr("value", "")
}

func setValue(sel *goquery.Selection, value string) error {
	textual, ok := editable(sel)
	if !ok {
		return errNotEditable
	}
	if textual {
		sel.SetText(value)
		return nil
	}
	sel.SetAttr("value", value)
	return nil
}

var hiddenTags = map[string]bool{
	"head": true, "script": true, "style": true, "template": true, "noscript": true,
}

// visible approximates layout visibility from markup alone
func visible(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if n.Data == "input" && strings.EqualFold(attr(n, "type"), "hidden") {
		return false
	}
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		if hiddenTags[cur.Data] {
			return false
		}
		if _, ok := hasAttr(cur, "hidden"); ok {
			return false
		}
		style := strings.ReplaceAll(strings.ToLower(attr(cur, "style")), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}

func attr(n *html.Node, name string) string {
	v, _ := hasAttr(n, name)
	return v
}

func hasAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}
