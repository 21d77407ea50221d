package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultUserAgent is a desktop Chrome user agent
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Options configures the launched browser
type Options struct {
	Width      int
	Height     int
	Headless   bool
	SlowMotion time.Duration
	Bin        string // Chrome/Chromium binary, looked up when empty
	ProfileDir string // Chrome/Chromium profile directory for authenticated sessions
	UserAgent  string
}

// Session wraps the Rod browser and page for one crawl
type Session struct {
	launcher *launcher.Launcher
	tempDir  bool
	browser  *rod.Browser
	page     *rod.Page
}

// Launch starts a browser and opens a blank page.
// The caller must Close the session on every exit path.
func Launch(ctx context.Context, opts Options) (*Session, error) {
	if opts.Width == 0 {
		opts.Width = 1920
	}
	if opts.Height == 0 {
		opts.Height = 1080
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	path := opts.Bin
	if path == "" {
		path, _ = launcher.LookPath()
	}
	l := launcher.New().
		Context(ctx).
		Bin(path).
		Headless(opts.Headless).
		NoSandbox(true).
		Set(flags.Flag("disable-dev-shm-usage")).
		Set(flags.Flag("disable-blink-features"), "AutomationControlled")

	if opts.ProfileDir != "" {
		l = l.UserDataDir(opts.ProfileDir)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	s := &Session{launcher: l, tempDir: opts.ProfileDir == ""}
	b := rod.New().ControlURL(u).Context(ctx)
	if opts.SlowMotion > 0 {
		b = b.SlowMotion(opts.SlowMotion)
	}
	if err := b.Connect(); err != nil {
		s.Close()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	s.browser = b

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}
	s.page = page

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Width,
		Height:            opts.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		s.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      opts.UserAgent,
		AcceptLanguage: "en-US,en;q=0.9",
	}); err != nil {
		s.Close()
		return nil, fmt.Errorf("set user agent: %w", err)
	}

	return s, nil
}

// Page returns the session page as a browser capability
func (s *Session) Page() Page {
	return &rodPage{page: s.page}
}

// Close cleans up browser resources. It is safe to call more than once.
func (s *Session) Close() {
	if s.page != nil {
		_ = s.page.Close()
		s.page = nil
	}
	if s.browser != nil {
		_ = s.browser.Close()
		s.browser = nil
	}
	if s.launcher != nil {
		s.launcher.Kill()
		// Cleanup removes the user data dir; never do that to a real profile
		if s.tempDir {
			s.launcher.Cleanup()
		}
		s.launcher = nil
	}
}
