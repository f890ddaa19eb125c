// Package audit captures load-performance metrics from a page and checks
// them against configured budgets.
package audit

import (
	"context"
	"fmt"

	"github.com/pagewatch/pagewatch/internal/browser"
)

// Metrics are the timings and sizes captured after a page load, in
// milliseconds and bytes. Zero means the browser did not report the value.
type Metrics struct {
	DOMContentLoadedMs     float64 `json:"domContentLoadedMs"`
	LoadMs                 float64 `json:"loadMs"`
	FirstContentfulPaintMs float64 `json:"firstContentfulPaintMs"`
	TransferSizeBytes      float64 `json:"transferSizeBytes"`
}

// metricsScript reads Navigation Timing level 2 and paint entries.
const metricsScript = `(() => {
	const out = { domContentLoadedMs: 0, loadMs: 0, firstContentfulPaintMs: 0, transferSizeBytes: 0 };
	const nav = performance.getEntriesByType('navigation')[0];
	if (nav) {
		out.domContentLoadedMs = nav.domContentLoadedEventEnd;
		out.loadMs = nav.loadEventEnd;
		out.transferSizeBytes = nav.transferSize;
	}
	for (const p of performance.getEntriesByType('paint')) {
		if (p.name === 'first-contentful-paint') out.firstContentfulPaintMs = p.startTime;
	}
	return out;
})()`

// Capture reads performance metrics from a loaded page.
func Capture(ctx context.Context, page *browser.Page) (*Metrics, error) {
	raw, err := page.Evaluate(ctx, metricsScript)
	if err != nil {
		return nil, fmt.Errorf("capture metrics: %w", err)
	}

	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("capture metrics: unexpected result shape %T", raw)
	}

	return &Metrics{
		DOMContentLoadedMs:     num(m["domContentLoadedMs"]),
		LoadMs:                 num(m["loadMs"]),
		FirstContentfulPaintMs: num(m["firstContentfulPaintMs"]),
		TransferSizeBytes:      num(m["transferSizeBytes"]),
	}, nil
}

func num(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}
