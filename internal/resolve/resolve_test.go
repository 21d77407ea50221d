package resolve

import (
	"context"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/formmap/internal/browser"
	"github.com/v0xg/formmap/internal/browser/htmldoc"
	"github.com/v0xg/formmap/internal/form"
)

const pageURL = "https://example.myworkdayjobs.com/apply"

func load(t *testing.T, body string) *htmldoc.Page {
	t.Helper()
	p := htmldoc.New()
	require.NoError(t, p.Load(pageURL, "<html><body>"+body+"</body></html>"))
	return p
}

func find(t *testing.T, p *htmldoc.Page, selector string) browser.Element {
	t.Helper()
	els, err := p.QueryAll(context.Background(), selector)
	require.NoError(t, err)
	require.NotEmpty(t, els, "no element matches %s", selector)
	return els[0]
}

func TestLabelsResolve(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		category form.Category
		want     string
	}{
		{
			name: "aria-label",
			body: `<label for="target">Ignored label</label><input id="target" aria-label="Email address">`,
			want: "Email address",
		},
		{
			name: "aria-labelledby uses first id",
			body: `<span id="lbl">Phone number</span><span id="other">Other</span><input id="target" aria-labelledby="lbl other">`,
			want: "Phone number",
		},
		{
			name: "label for id",
			body: `<label for="target">First name</label><div><input id="target"></div>`,
			want: "First name",
		},
		{
			name: "preceding sibling label",
			body: `<div><label>Last name</label><span></span><input id="target"></div>`,
			want: "Last name",
		},
		{
			name: "following sibling label",
			body: `<div><input id="target"><label>I agree to the terms</label></div>`,
			want: "I agree to the terms",
		},
		{
			name: "label-like ancestor descendant",
			body: `<div><div class="wd-label">Country of residence</div><div><div><input id="target"></div></div></div>`,
			want: "Country of residence",
		},
		{
			name: "short labels fall through to placeholder",
			body: `<div><label>Zip</label><input id="target" placeholder="Search"></div>`,
			want: "Field: Search",
		},
		{
			name: "length bounds count characters, not bytes",
			body: `<div><label>電話番号</label><input id="target" placeholder="Search"></div>`,
			want: "Field: Search",
		},
		{
			name: "multi-byte label within bounds",
			body: `<div><label>現在の勤務地</label><input id="target"></div>`,
			want: "現在の勤務地",
		},
		{
			name: "question-like nearby text",
			body: `<div><p>What is your current title?</p><input id="target"></div>`,
			want: "What is your current title?",
		},
		{
			name: "humanized automation id",
			body: `<div><input id="target" data-automation-id="legalNameSection_firstName"></div>`,
			want: "Legal Name Section First Name",
		},
		{
			name: "humanized name",
			body: `<div><input id="target" name="dob"></div>`,
			want: "Dob",
		},
		{
			name:     "fallback names the category",
			body:     `<div><textarea id="target"></textarea></div>`,
			category: form.TextArea,
			want:     "Unnamed textarea field",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := load(t, tt.body)
			category := tt.category
			if category == "" {
				category = form.Text
			}
			got := NewLabels(p, nil).Resolve(context.Background(), find(t, p, "#target"), category)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got)
		})
	}
}

func TestLabelsHiddenLabelIgnored(t *testing.T) {
	p := load(t, `<div><label hidden>Secret label</label><input id="target" name="user_email"></div>`)
	got := NewLabels(p, nil).Resolve(context.Background(), find(t, p, "#target"), form.Text)
	assert.Equal(t, "User Email", got)
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "First Name", Humanize("first_name"))
	assert.Equal(t, "Date Of Birth", Humanize("dateOfBirth"))
	assert.Equal(t, "Kebab Case Id", Humanize("kebab-case-id"))
}

func TestIsRequired(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"native required attribute", `<div><input id="target" required aria-required="false"></div>`, true},
		{"aria-required", `<div><input id="target" aria-required="true"></div>`, true},
		{"own class", `<div><input id="target" class="field IsRequired"></div>`, true},
		{"indicator in parent", `<div><span class="mandatory"></span><input id="target"></div>`, true},
		{"asterisk in parent", `<div><span>Name *</span><input id="target"></div>`, true},
		{"parent class", `<div class="field-required"><input id="target"></div>`, true},
		{"optional", `<div><span>Nickname</span><input id="target"></div>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := load(t, tt.body)
			assert.Equal(t, tt.want, IsRequired(context.Background(), find(t, p, "#target")))
		})
	}
}

func TestOptionsNative(t *testing.T) {
	ctx := context.Background()

	t.Run("three options in document order", func(t *testing.T) {
		p := load(t, `<select id="target"><option>Red</option><option>Green</option><option>Blue</option></select>`)
		got := NewOptions(p, DefaultTiming(), nil).Resolve(ctx, find(t, p, "#target"))
		assert.Equal(t, []string{"Red", "Green", "Blue"}, got)
		assert.Zero(t, p.Elapsed(), "native options need no interaction")
	})

	t.Run("placeholders dropped and value used for empty text", func(t *testing.T) {
		p := load(t, `<select id="target">
			<option value="">Select...</option>
			<option>-- Select --</option>
			<option value="us">United States</option>
			<option value="ca"></option>
			<option>United States</option>
		</select>`)
		got := NewOptions(p, DefaultTiming(), nil).Resolve(ctx, find(t, p, "#target"))
		assert.Equal(t, []string{"United States", "ca"}, got)
	})

	t.Run("capped", func(t *testing.T) {
		body := `<select id="target">`
		for i := 0; i < 20; i++ {
			body += "<option>Option " + string(rune('A'+i)) + "</option>"
		}
		p := load(t, body+`</select>`)
		got := NewOptions(p, DefaultTiming(), nil).Resolve(ctx, find(t, p, "#target"))
		assert.Len(t, got, maxOptions)
		assert.Equal(t, "Option A", got[0])
	})
}

func TestOptionsPopup(t *testing.T) {
	ctx := context.Background()
	p := load(t, `<div id="target" data-automation-id="selectWidget" role="button">Choose one</div>`)
	p.OnClick("#target", func(p *htmldoc.Page, _ *goquery.Selection) error {
		p.Append("body", `<ul data-automation-id="dropdownPopup">
			<li>Loading...</li><li>Full time</li><li hidden>Hidden</li><li>Part time</li><li>Full time</li>
		</ul>`)
		return nil
	})
	p.OnKey(browser.KeyEscape, func(p *htmldoc.Page, _ *goquery.Selection) error {
		p.Remove(`[data-automation-id="dropdownPopup"]`)
		return nil
	})

	got := NewOptions(p, DefaultTiming(), nil).Resolve(ctx, find(t, p, "#target"))
	assert.Equal(t, []string{"Full time", "Part time"}, got)
	assert.Zero(t, p.Document().Find(`[data-automation-id="dropdownPopup"]`).Length(), "popup is closed afterwards")
}

func TestOptionsTypeahead(t *testing.T) {
	ctx := context.Background()
	p := load(t, `<div id="target" data-automation-id="countryPrompt" role="combobox" contenteditable="true"></div>`)
	p.OnType("#target", func(p *htmldoc.Page, el *goquery.Selection) error {
		if el.Text() == "a" {
			p.Append("body", `<ul class="suggestions"><li role="option">Austria</li><li role="option">Australia</li></ul>`)
		}
		return nil
	})

	el := find(t, p, "#target")
	got := NewOptions(p, DefaultTiming(), nil).Resolve(ctx, el)
	assert.Equal(t, []string{"Austria", "Australia"}, got)

	text, err := el.InnerText(ctx)
	require.NoError(t, err)
	assert.Empty(t, text, "probe character is cleared")
}

func TestOptionsNothingFound(t *testing.T) {
	ctx := context.Background()
	var escapes int
	p := load(t, `<div id="target" role="button">Pick</div>`)
	p.OnKey(browser.KeyEscape, func(*htmldoc.Page, *goquery.Selection) error {
		escapes++
		return nil
	})

	got := NewOptions(p, DefaultTiming(), nil).Resolve(ctx, find(t, p, "#target"))
	assert.Empty(t, got)
	assert.Equal(t, 1, escapes, "popup close is attempted even without options")
}
