package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Page wraps a Playwright page.
type Page struct {
	page   playwright.Page
	logger *slog.Logger
	closed bool
}

// NavigateOptions configures navigation.
type NavigateOptions struct {
	URL       string
	WaitUntil string // "load", "domcontentloaded", "networkidle"
	Timeout   time.Duration
	Retries   int // extra attempts after the first failure
}

// NavigateResult reports where navigation ended up.
type NavigateResult struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Navigate loads a URL, retrying a flaky load up to opts.Retries times.
// Retries are shallow: same URL, same options, short pause between attempts.
func (p *Page) Navigate(ctx context.Context, opts NavigateOptions) (*NavigateResult, error) {
	if p.closed {
		return nil, fmt.Errorf("page is closed")
	}

	waitUntil := playwright.WaitUntilStateLoad
	switch opts.WaitUntil {
	case "domcontentloaded":
		waitUntil = playwright.WaitUntilStateDomcontentloaded
	case "networkidle":
		waitUntil = playwright.WaitUntilStateNetworkidle
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	var lastErr error
	attempts := opts.Retries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		_, err := p.page.Goto(opts.URL, playwright.PageGotoOptions{
			WaitUntil: waitUntil,
			Timeout:   playwright.Float(float64(timeout.Milliseconds())),
		})
		if err == nil {
			title, _ := p.page.Title()
			return &NavigateResult{URL: p.page.URL(), Title: title}, nil
		}

		lastErr = err
		p.logger.Warn("navigation_retry", "url", opts.URL, "attempt", attempt, "error", err)
		if attempt < attempts {
			time.Sleep(time.Second)
		}
	}

	return nil, fmt.Errorf("navigate to %s after %d attempts: %w", opts.URL, attempts, lastErr)
}

// Evaluate runs a script in the page and returns its JSON-compatible result.
func (p *Page) Evaluate(ctx context.Context, script string) (any, error) {
	if p.closed {
		return nil, fmt.Errorf("page is closed")
	}

	result, err := p.page.Evaluate(script)
	if err != nil {
		return nil, fmt.Errorf("evaluate failed: %w", err)
	}
	return result, nil
}

// Content returns the page's HTML source.
func (p *Page) Content(ctx context.Context) (string, error) {
	if p.closed {
		return "", fmt.Errorf("page is closed")
	}

	content, err := p.page.Content()
	if err != nil {
		return "", fmt.Errorf("get content failed: %w", err)
	}
	return content, nil
}

// Close closes the page.
func (p *Page) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.page.Close()
}
