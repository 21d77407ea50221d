package extract

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/formmap/internal/browser/htmldoc"
	"github.com/v0xg/formmap/internal/form"
	"github.com/v0xg/formmap/internal/sample"
)

const applicationForm = `<html><body><form>
	<div><label for="email">Email Address</label><input type="email" id="email" required></div>
	<div><label for="phone">Phone Number</label><input type="tel" data-automation-id="phone-number" id="phone"></div>
	<input type="text" name="hiddenField" style="display: none">
	<input type="text" id="disabledField" disabled>
	<div><label for="cover">Cover letter</label><textarea id="cover"></textarea></div>
	<div><label for="country">Country</label><select id="country"><option value="">Select...</option><option>Canada</option><option>Mexico</option></select></div>
	<div><label for="langs">Languages</label><select id="langs" multiple><option>English</option><option>French</option><option>German</option></select></div>
	<fieldset>
		<input type="checkbox" name="skills" id="skill-go"><label for="skill-go">Go programming</label>
		<input type="checkbox" name="skills" id="skill-sql"><label for="skill-sql">SQL databases</label>
		<input type="checkbox" name="skills" id="skill-k8s"><label for="skill-k8s">Kubernetes ops</label>
	</fieldset>
	<div><input type="checkbox" id="terms"><label for="terms">I agree to the terms</label></div>
	<div><input type="checkbox" id="newsletter"><label for="newsletter">Send newsletter</label></div>
	<div><label>Willing to relocate?</label><input type="radio" name="relocate" id="r-yes" value="Yes"><input type="radio" name="relocate" id="r-no" value="No"></div>
	<div><label for="start">Start date</label><input type="date" id="start"></div>
	<div><label for="resume">Resume upload</label><input type="file" id="resume" accept=".pdf, .docx"></div>
</form></body></html>`

func newPage(t *testing.T, html string) *htmldoc.Page {
	t.Helper()
	p := htmldoc.New()
	require.NoError(t, p.Load("https://example.myworkdayjobs.com/apply/step1", html))
	return p
}

func TestScanApplicationForm(t *testing.T) {
	p := newPage(t, applicationForm)
	got := New(p, DefaultOptions(), nil).Scan(context.Background())

	want := []form.Element{
		{Label: "Email Address", ID: "email", Required: true, Category: form.Text, SampleValues: []string{"test@example.com"}},
		{Label: "Phone Number", ID: "phone-number", Category: form.Text, SampleValues: []string{"+1-555-123-4567"}},
		{Label: "Cover letter", ID: "cover", Category: form.TextArea, SampleValues: []string{sample.TextAreaText}},
		{Label: "Country", ID: "country", Category: form.Select, Options: []string{"Canada", "Mexico"}, SampleValues: []string{"Canada"}},
		{Label: "Languages", ID: "langs", Category: form.MultiSelect, Options: []string{"English", "French", "German"}, SampleValues: []string{"English", "French"}},
		{Label: "Go programming", ID: "skill-go", Category: form.Checkbox, Options: []string{"Go programming", "SQL databases", "Kubernetes ops"}, SampleValues: []string{"Go programming"}},
		{Label: "I agree to the terms", ID: "terms", Category: form.Checkbox, Options: []string{"Yes", "No"}, SampleValues: []string{"Yes"}},
		{Label: "Send newsletter", ID: "newsletter", Category: form.Checkbox, Options: []string{"Checked", "Unchecked"}, SampleValues: []string{"Checked"}},
		{Label: "Willing to relocate?", ID: "r-yes", Category: form.Radio, Options: []string{"Yes", "No"}, SampleValues: []string{"Yes"}},
		{Label: "Start date", ID: "start", Category: form.Date, SampleValues: []string{"2020-01-01"}},
		{Label: "Resume upload", ID: "resume", Category: form.File, Options: []string{".pdf", ".docx"}, SampleValues: []string{sample.FileName}},
	}
	assert.Equal(t, want, got)
}

func TestScanCheckboxGroupCollapses(t *testing.T) {
	p := newPage(t, `<html><body><div>
		<input type="checkbox" name="days" value="mon" aria-label="Monday">
		<input type="checkbox" name="days" value="tue" aria-label="Tuesday">
		<input type="checkbox" name="days" value="wed" aria-label="Wednesday">
	</div></body></html>`)

	got := New(p, DefaultOptions(), nil).Scan(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, "days", got[0].ID)
	assert.Len(t, got[0].Options, 3)
	assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday"}, got[0].Options)
}

func TestScanPolicies(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []form.Element
	}{
		{
			name: "same-named checkboxes sharing one label collapse",
			body: `<div><p id="q">Which days can you work?</p>
				<input type="checkbox" name="days" id="d1" aria-labelledby="q">
				<input type="checkbox" name="days" id="d2" aria-labelledby="q">
				<input type="checkbox" name="days" id="d3" aria-labelledby="q">
			</div>`,
			want: []form.Element{{
				Label: "Which days can you work?", ID: "d1", Category: form.Checkbox,
				Options: []string{"Which days can you work?"}, SampleValues: []string{"Which days can you work?"},
			}},
		},
		{
			name: "hidden checkbox siblings are not options",
			body: `<div>
				<input type="checkbox" name="langs" id="l-en" aria-label="English">
				<input type="checkbox" name="langs" id="l-fr" aria-label="French" style="display:none">
				<input type="checkbox" name="langs" id="l-de" aria-label="German">
			</div>`,
			want: []form.Element{{
				Label: "English", ID: "l-en", Category: form.Checkbox,
				Options: []string{"English", "German"}, SampleValues: []string{"English"},
			}},
		},
		{
			name: "automation id marks a multiselect",
			body: `<div><label for="skills">Skills</label>
				<select id="skills" data-automation-id="multiSelectSkills"><option>Go</option><option>Rust</option><option>SQL</option></select>
			</div>`,
			want: []form.Element{{
				Label: "Skills", ID: "multiSelectSkills", Category: form.MultiSelect,
				Options: []string{"Go", "Rust", "SQL"}, SampleValues: []string{"Go", "Rust"},
			}},
		},
		{
			name: "radios without a value use their labels",
			body: `<div>
				<span><input type="radio" name="shift" id="s-day"><label for="s-day">Day shift</label></span>
				<span><input type="radio" name="shift" id="s-night"><label for="s-night">Night shift</label></span>
			</div>`,
			want: []form.Element{{
				Label: "Day shift", ID: "s-day", Category: form.Radio,
				Options: []string{"Day shift", "Night shift"}, SampleValues: []string{"Day shift"},
			}},
		},
		{
			name: "hidden radio siblings are not options",
			body: `<div><label>Shirt size?</label><input type="radio" name="size" id="r-s" value="S"><input type="radio" name="size" id="r-m" value="M" hidden><input type="radio" name="size" id="r-l" value="L"></div>`,
			want: []form.Element{{
				Label: "Shirt size?", ID: "r-s", Category: form.Radio,
				Options: []string{"S", "L"}, SampleValues: []string{"S"},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPage(t, "<html><body>"+tt.body+"</body></html>")
			got := New(p, DefaultOptions(), nil).Scan(context.Background())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScanIsIdempotent(t *testing.T) {
	p := newPage(t, applicationForm)
	x := New(p, DefaultOptions(), nil)
	first := x.Scan(context.Background())
	second := x.Scan(context.Background())
	assert.Equal(t, first, second)
}

func TestScanIDsUniqueAndNonEmpty(t *testing.T) {
	p := newPage(t, `<html><body>
		<div><input type="text" class="first" placeholder="Nickname"></div>
		<div><input type="text" class="second" placeholder="Middle name"></div>
		<input type="text" data-automation-id="textInputBox-city" aria-label="City">
	</body></html>`)

	got := New(p, DefaultOptions(), nil).Scan(context.Background())
	require.Len(t, got, 3, "a control matched by several selectors is emitted once")

	seen := make(map[string]bool)
	for _, el := range got {
		assert.NotEmpty(t, el.ID)
		assert.False(t, seen[el.ID], "duplicate id %s", el.ID)
		seen[el.ID] = true
	}
	assert.True(t, strings.HasPrefix(got[0].ID, "element_"))
	assert.Equal(t, "textInputBox-city", got[2].ID)

	again := New(p, DefaultOptions(), nil).Scan(context.Background())
	assert.Equal(t, got[0].ID, again[0].ID, "synthesized ids are stable")
}

func TestExtractWaitsForPageToSettle(t *testing.T) {
	p := newPage(t, applicationForm)
	got := New(p, DefaultOptions(), nil).Extract(context.Background())
	assert.Len(t, got, 11)
	assert.Equal(t, 3*time.Second, p.Elapsed())

	empty := newPage(t, `<html><body><p>Nothing to fill in</p></body></html>`)
	assert.Empty(t, New(empty, DefaultOptions(), nil).Extract(context.Background()))
	assert.Equal(t, 8*time.Second, empty.Elapsed(), "settle plus the bounded form wait")
}

func TestScanStopsOnCancelledContext(t *testing.T) {
	p := newPage(t, applicationForm)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, New(p, DefaultOptions(), nil).Scan(ctx))
}

func TestAcceptedTypes(t *testing.T) {
	assert.Equal(t, []string{".pdf", ".doc", ".docx"}, acceptedTypes(""))
	assert.Equal(t, []string{"image/*", ".png"}, acceptedTypes("image/*, .png,"))
}
