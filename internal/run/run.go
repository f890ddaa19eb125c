// Package run executes the audit pipeline: navigate, extract, compare
// against baselines, check budgets, aggregate a run result.
package run

import (
	"time"

	"github.com/pagewatch/pagewatch/internal/audit"
	"github.com/pagewatch/pagewatch/internal/baseline"
)

// Run is one harness execution over a set of pages.
type Run struct {
	ID         string       `json:"id"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
	Pages      []PageResult `json:"pages"`
	Passed     bool         `json:"passed"`
}

// PageResult is the outcome for a single page. Error is set when the page
// could not be audited at all (navigation or extraction failure); the
// comparison fields are then empty and the page counts as failed.
type PageResult struct {
	Page  string `json:"page"`
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`

	Meta   *baseline.MetaResult   `json:"metaTags,omitempty"`
	JSONLD *baseline.JSONLDResult `json:"jsonLd,omitempty"`

	Metrics *audit.Metrics       `json:"metrics,omitempty"`
	Budgets []audit.BudgetResult `json:"budgets,omitempty"`

	Passed bool `json:"passed"`
}

// finalize computes the page pass flag from its parts.
func (p *PageResult) finalize() {
	if p.Error != "" {
		p.Passed = false
		return
	}
	p.Passed = (p.Meta == nil || p.Meta.Matches) &&
		(p.JSONLD == nil || p.JSONLD.Matches) &&
		audit.AllPass(p.Budgets)
}
