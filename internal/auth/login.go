package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/v0xg/formmap/internal/browser"
)

// ErrLoginFailed is returned when every sign-in strategy was exhausted
var ErrLoginFailed = errors.New("all login strategies failed")

// Credentials identify the account to sign in with
type Credentials struct {
	URL      string
	Username string
	Password string
}

// Strategy names the controls of one sign-in form layout
type Strategy struct {
	Email    string
	Password string
	Submit   []Target
}

// DefaultStrategies are tried in order until one signs in
var DefaultStrategies = []Strategy{
	{
		Email:    `input[data-automation-id="email"]`,
		Password: `input[data-automation-id="password"]`,
		Submit:   []Target{T(`button[data-automation-id="signInSubmitButton"]`)},
	},
	{
		Email:    `input[data-automation-id="emailAddress"]`,
		Password: `input[data-automation-id="password"]`,
		Submit:   []Target{T(`button[data-automation-id="submitButton"]`)},
	},
	{
		Email:    `input[type="email"]`,
		Password: `input[type="password"]`,
		Submit:   []Target{T(`button[type="submit"]`)},
	},
	{
		Email:    `input[name="username"], input[name="email"]`,
		Password: `input[name="password"]`,
		Submit: []Target{
			T(`input[type="submit"]`),
			{Selector: "button", Text: "Sign In"},
			{Selector: "button", Text: "Log In"},
		},
	},
}

var (
	// loginKeywords mark a URL that is still a sign-in page
	loginKeywords = []string{"login", "signin", "sign-in"}
	// signedInSelector matches landmarks only rendered for a signed-in user
	signedInSelector = `[data-automation-id*="dashboard"], [data-automation-id*="profile"], .wd-navigation`
	errorSelectors   = []string{`[data-automation-id*="error"]`, `.wd-error`, `[role="alert"]`, `.error-message`}
)

// maxDiagnosticInputs bounds the input inventory captured after a failed sign-in
const maxDiagnosticInputs = 10

// InputInfo describes one input control found on a page where sign-in failed
type InputInfo struct {
	Type         string `json:"type"`
	AutomationID string `json:"automation_id,omitempty"`
	Name         string `json:"name,omitempty"`
	Placeholder  string `json:"placeholder,omitempty"`
	Visible      bool   `json:"visible"`
}

// Result reports the outcome of a sign-in attempt
type Result struct {
	// Strategy is the 1-based index of the strategy that signed in, 0 on failure
	Strategy int
	// URL is the page reached after signing in
	URL string
	// ErrorMessages holds error texts the site displayed after rejected submissions
	ErrorMessages []string
	// Diagnostics inventories the inputs on the page when every strategy failed
	Diagnostics []InputInfo
}

// Resolver signs in by trying form layouts in order
type Resolver struct {
	page       browser.Page
	strategies []Strategy
	timing     Timing
	logger     *zap.Logger
}

// NewResolver creates a resolver; nil strategies means DefaultStrategies
func NewResolver(page browser.Page, strategies []Strategy, timing Timing, logger *zap.Logger) *Resolver {
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{page: page, strategies: strategies, timing: timing, logger: logger}
}

// Login opens loginURL and submits creds with each strategy until a
// signed-in indicator is observed. It returns ErrLoginFailed, with
// diagnostics in the result, when no strategy succeeds.
func (r *Resolver) Login(ctx context.Context, loginURL string, creds Credentials) (*Result, error) {
	res := &Result{}
	r.logger.Info("Attempting login", zap.String("url", loginURL))
	if err := r.page.Navigate(ctx, loginURL, browser.WaitDOMContentLoaded, r.timing.NavigationTimeout); err != nil {
		return res, fmt.Errorf("open login page: %w", err)
	}
	if err := r.page.Wait(ctx, r.timing.Settle); err != nil {
		return res, err
	}

	for i, s := range r.strategies {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		n := i + 1
		r.logger.Info("Trying login strategy", zap.Int("strategy", n))
		if !r.attempt(ctx, s, creds) {
			continue
		}
		if r.signedIn(ctx) {
			res.Strategy = n
			res.URL = r.page.URL(ctx)
			r.logger.Info("Login successful", zap.Int("strategy", n), zap.String("url", res.URL))
			return res, nil
		}
		if msg, ok := r.errorMessage(ctx); ok {
			r.logger.Error("Login error", zap.String("message", msg))
			res.ErrorMessages = append(res.ErrorMessages, msg)
		}
		r.logger.Warn("Login attempt failed, trying next strategy", zap.Int("strategy", n))
	}

	r.logger.Error("All login strategies failed")
	res.Diagnostics = r.inventory(ctx)
	for _, in := range res.Diagnostics {
		r.logger.Info("Input on page",
			zap.String("type", in.Type),
			zap.String("automation_id", in.AutomationID),
			zap.String("name", in.Name),
			zap.String("placeholder", in.Placeholder),
			zap.Bool("visible", in.Visible))
	}
	return res, ErrLoginFailed
}

// attempt fills and submits the strategy's form; false means its controls were not found
func (r *Resolver) attempt(ctx context.Context, s Strategy, creds Credentials) bool {
	email, err := r.page.WaitForSelector(ctx, s.Email, r.timing.FieldTimeout)
	if err != nil || !browser.Visible(ctx, email) {
		r.logger.Debug("Email field not found", zap.String("selector", s.Email))
		return false
	}
	password, ok := firstMatch(ctx, r.page, s.Password)
	if !ok || !browser.Visible(ctx, password) {
		r.logger.Debug("Password field not found", zap.String("selector", s.Password))
		return false
	}
	submit, ok := first(ctx, r.page, s.Submit)
	if !ok {
		r.logger.Debug("Submit control not found")
		return false
	}

	r.logger.Info("Filling login credentials")
	if err := fill(ctx, email, creds.Username); err != nil {
		r.logger.Debug("Filling email failed", zap.Error(err))
		return false
	}
	if err := fill(ctx, password, creds.Password); err != nil {
		r.logger.Debug("Filling password failed", zap.Error(err))
		return false
	}

	r.logger.Info("Submitting login form")
	if err := submit.Click(ctx); err != nil {
		r.logger.Debug("Submit failed", zap.Error(err))
		return false
	}
	if err := r.page.WaitForLoadState(ctx, browser.WaitNetworkIdle, r.timing.IdleTimeout); err != nil {
		_ = r.page.Wait(ctx, r.timing.IdleFallback)
	}
	return true
}

// signedIn reports whether any signed-in indicator holds on the current page
func (r *Resolver) signedIn(ctx context.Context) bool {
	if !containsAny(strings.ToLower(r.page.URL(ctx)), loginKeywords) {
		return true
	}
	if markers, err := r.page.QueryAll(ctx, signedInSelector); err == nil && len(markers) > 0 {
		return true
	}
	_, passwordShown := browser.FirstVisible(ctx, r.page, `input[type="password"]`)
	return !passwordShown
}

func (r *Resolver) errorMessage(ctx context.Context) (string, bool) {
	for _, selector := range errorSelectors {
		el, ok := firstMatch(ctx, r.page, selector)
		if !ok || !browser.Visible(ctx, el) {
			continue
		}
		text, err := el.InnerText(ctx)
		if err != nil {
			continue
		}
		return strings.TrimSpace(text), true
	}
	return "", false
}

func (r *Resolver) inventory(ctx context.Context) []InputInfo {
	inputs, err := r.page.QueryAll(ctx, "input")
	if err != nil {
		return nil
	}
	if len(inputs) > maxDiagnosticInputs {
		inputs = inputs[:maxDiagnosticInputs]
	}
	out := make([]InputInfo, 0, len(inputs))
	for _, in := range inputs {
		typ := browser.Attr(ctx, in, "type")
		if typ == "" {
			typ = "text"
		}
		out = append(out, InputInfo{
			Type:         typ,
			AutomationID: browser.Attr(ctx, in, "data-automation-id"),
			Name:         browser.Attr(ctx, in, "name"),
			Placeholder:  browser.Attr(ctx, in, "placeholder"),
			Visible:      browser.Visible(ctx, in),
		})
	}
	return out
}

// fill replaces any existing content of el with value
func fill(ctx context.Context, el browser.Element, value string) error {
	if err := el.Clear(ctx); err != nil {
		return err
	}
	return el.Fill(ctx, value)
}

func firstMatch(ctx context.Context, page browser.Page, selector string) (browser.Element, bool) {
	els, err := page.QueryAll(ctx, selector)
	if err != nil || len(els) == 0 {
		return nil, false
	}
	return els[0], true
}
