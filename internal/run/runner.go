package run

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pagewatch/pagewatch/internal/audit"
	"github.com/pagewatch/pagewatch/internal/baseline"
	"github.com/pagewatch/pagewatch/internal/browser"
	"github.com/pagewatch/pagewatch/internal/config"
	"github.com/pagewatch/pagewatch/internal/extract"
	"github.com/pagewatch/pagewatch/internal/logging"
)

// Runner drives audits for configured pages. One Runner may execute many
// runs; each live run launches and closes its own browser session.
type Runner struct {
	cfg      config.Config
	comparer *baseline.Comparer
	logger   *slog.Logger
}

// NewRunner returns a runner that compares through the given comparer.
func NewRunner(cfg *config.Config, comparer *baseline.Comparer) *Runner {
	return &Runner{
		cfg:      *cfg,
		comparer: comparer,
		logger:   logging.Component("runner"),
	}
}

// Run audits the given pages against a live browser and returns the
// aggregated result. Page-level failures (unreachable URL, evaluation
// errors) are recorded per page; only harness-level failures (browser won't
// launch, baseline store unusable) abort the run.
func (r *Runner) Run(ctx context.Context, pages []config.Page) (*Run, error) {
	session, err := browser.Launch(ctx, r.cfg.Browser)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer session.Close()

	result := &Run{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pr := r.auditPage(ctx, session, page)
		pr.finalize()
		result.Pages = append(result.Pages, *pr)
		r.logger.Info("page_audited", "page", page.Name, "passed", pr.Passed)
	}

	result.FinishedAt = time.Now().UTC()
	result.Passed = allPagesPassed(result.Pages)
	return result, nil
}

func (r *Runner) auditPage(ctx context.Context, session *browser.Session, page config.Page) *PageResult {
	pr := &PageResult{Page: page.Name, URL: page.URL}

	p, err := session.NewPage(ctx)
	if err != nil {
		pr.Error = err.Error()
		return pr
	}
	defer p.Close()

	if _, err := p.Navigate(ctx, browser.NavigateOptions{
		URL:       page.URL,
		WaitUntil: "networkidle",
		Retries:   2,
	}); err != nil {
		pr.Error = err.Error()
		return pr
	}

	meta, err := extract.MetaTags(ctx, p)
	if err != nil {
		pr.Error = err.Error()
		return pr
	}
	jsonld, err := extract.JSONLD(ctx, p)
	if err != nil {
		pr.Error = err.Error()
		return pr
	}

	if err := r.compare(pr, meta, jsonld); err != nil {
		// Store IO failure: fatal for this page's comparison, not retried.
		pr.Error = err.Error()
		return pr
	}

	metrics, err := audit.Capture(ctx, p)
	if err != nil {
		pr.Error = err.Error()
		return pr
	}
	pr.Metrics = metrics
	pr.Budgets = audit.Check(metrics, page.Budgets)

	return pr
}

// AuditHTML audits a page from static HTML instead of a live browser. No
// metrics or budgets apply; only the baseline comparison runs.
func (r *Runner) AuditHTML(page config.Page, html io.Reader) *PageResult {
	pr := &PageResult{Page: page.Name, URL: page.URL}

	meta, jsonld, err := extract.FromHTML(html)
	if err != nil {
		pr.Error = err.Error()
		pr.finalize()
		return pr
	}

	if err := r.compare(pr, meta, jsonld); err != nil {
		pr.Error = err.Error()
	}
	pr.finalize()
	return pr
}

func (r *Runner) compare(pr *PageResult, meta baseline.MetaTagMap, jsonld baseline.JSONLDList) error {
	metaRes, err := r.comparer.CompareMeta(pr.Page, meta)
	if err != nil {
		return err
	}
	pr.Meta = metaRes

	ldRes, err := r.comparer.CompareJSONLD(pr.Page, jsonld)
	if err != nil {
		return err
	}
	pr.JSONLD = ldRes
	return nil
}

// UpdateBaselines overwrites the stored baselines for the given pages with a
// fresh live extraction, bypassing comparison.
func (r *Runner) UpdateBaselines(ctx context.Context, pages []config.Page, kinds []baseline.Kind) error {
	session, err := browser.Launch(ctx, r.cfg.Browser)
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer session.Close()

	for _, page := range pages {
		p, err := session.NewPage(ctx)
		if err != nil {
			return err
		}

		if _, err := p.Navigate(ctx, browser.NavigateOptions{
			URL:       page.URL,
			WaitUntil: "networkidle",
			Retries:   2,
		}); err != nil {
			p.Close()
			return fmt.Errorf("page %s: %w", page.Name, err)
		}

		for _, kind := range kinds {
			var snap *baseline.Snapshot
			switch kind {
			case baseline.KindMetaTags:
				meta, err := extract.MetaTags(ctx, p)
				if err != nil {
					p.Close()
					return fmt.Errorf("page %s: %w", page.Name, err)
				}
				snap = &baseline.Snapshot{Kind: kind, Meta: meta}
			case baseline.KindJSONLD:
				jsonld, err := extract.JSONLD(ctx, p)
				if err != nil {
					p.Close()
					return fmt.Errorf("page %s: %w", page.Name, err)
				}
				snap = &baseline.Snapshot{Kind: kind, JSONLD: jsonld}
			default:
				p.Close()
				return fmt.Errorf("unknown baseline kind: %q", kind)
			}

			if err := r.comparer.UpdateBaseline(page.Name, kind, snap); err != nil {
				p.Close()
				return err
			}
		}
		p.Close()
	}
	return nil
}

func allPagesPassed(pages []PageResult) bool {
	for _, p := range pages {
		if !p.Passed {
			return false
		}
	}
	return true
}
