// Package browser owns the Playwright-driven Chromium session the harness
// audits pages with. It is deliberately small: launch, navigate with a
// shallow retry loop, evaluate. Extraction semantics live in
// internal/extract; this package only moves the browser.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/pagewatch/pagewatch/internal/logging"
)

// Config controls how the browser is launched.
type Config struct {
	Headless       bool   `yaml:"headless"`
	ExecutablePath string `yaml:"executablePath,omitempty"`
	NoSandbox      bool   `yaml:"noSandbox,omitempty"`
}

// DefaultConfig returns the launch defaults: headless, auto-detected binary.
func DefaultConfig() Config {
	return Config{Headless: true}
}

var (
	// Playwright driver is a process-wide singleton; launching it twice
	// spawns duplicate node sidecars.
	pwOnce     sync.Once
	pwInstance *playwright.Playwright
	pwErr      error
)

func getPlaywright() (*playwright.Playwright, error) {
	pwOnce.Do(func() {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			pwErr = fmt.Errorf("install playwright browsers: %w", err)
			return
		}
		pw, err := playwright.Run()
		if err != nil {
			pwErr = fmt.Errorf("start playwright: %w", err)
			return
		}
		pwInstance = pw
	})
	return pwInstance, pwErr
}

// Session wraps one launched Chromium instance and its pages.
type Session struct {
	mu sync.Mutex

	browser playwright.Browser
	ctx     playwright.BrowserContext
	logger  *slog.Logger
	closed  bool
}

// Launch starts Chromium with the given config and returns a session.
func Launch(ctx context.Context, cfg Config) (*Session, error) {
	pw, err := getPlaywright()
	if err != nil {
		return nil, err
	}

	var args []string
	if cfg.NoSandbox {
		args = append(args, "--no-sandbox")
	}

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Args:     args,
	}
	if cfg.ExecutablePath != "" {
		opts.ExecutablePath = playwright.String(cfg.ExecutablePath)
	}

	b, err := pw.Chromium.Launch(opts)
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	bctx, err := b.NewContext()
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("create browser context: %w", err)
	}

	return &Session{
		browser: b,
		ctx:     bctx,
		logger:  logging.Component("browser"),
	}, nil
}

// NewPage opens a fresh page in the session's context.
func (s *Session) NewPage(ctx context.Context) (*Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("session is closed")
	}

	pwPage, err := s.ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	return &Page{page: pwPage, logger: s.logger}, nil
}

// Close shuts the browser down. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.browser.Close()
}
