// Package report renders run results as JSON or HTML. The HTML path builds
// a GFM markdown document and renders it through goldmark, so diff payloads
// come out as highlighted code blocks without hand-written HTML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pagewatch/pagewatch/internal/baseline"
	"github.com/pagewatch/pagewatch/internal/run"
)

// JSON writes the full run result, pretty-printed.
func JSON(w io.Writer, r *run.Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode run %s: %w", r.ID, err)
	}
	return nil
}

// Markdown builds the report body for a run.
func Markdown(r *run.Run) string {
	var b strings.Builder

	status := "✅ passed"
	if !r.Passed {
		status = "❌ failed"
	}
	fmt.Fprintf(&b, "# Pagewatch run %s\n\n", shortID(r.ID))
	fmt.Fprintf(&b, "%s — started %s, finished %s\n\n",
		status,
		r.StartedAt.Format("2006-01-02 15:04:05 MST"),
		r.FinishedAt.Format("15:04:05 MST"))

	b.WriteString("| Page | Meta tags | JSON-LD | Budgets | Result |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, p := range r.Pages {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			p.Page, metaCell(&p), jsonldCell(&p), budgetCell(&p), resultCell(&p))
	}
	b.WriteString("\n")

	for i := range r.Pages {
		writePageSection(&b, &r.Pages[i])
	}

	return b.String()
}

func writePageSection(b *strings.Builder, p *run.PageResult) {
	fmt.Fprintf(b, "## %s\n\n", p.Page)
	fmt.Fprintf(b, "URL: <%s>\n\n", p.URL)

	if p.Error != "" {
		fmt.Fprintf(b, "**Audit error:** %s\n\n", p.Error)
		return
	}

	if p.Meta != nil {
		writeMetaSection(b, p)
	}
	if p.JSONLD != nil {
		writeJSONLDSection(b, p)
	}
	if len(p.Budgets) > 0 {
		writeBudgetSection(b, p)
	}
}

func writeMetaSection(b *strings.Builder, p *run.PageResult) {
	m := p.Meta
	if m.CreatedBaseline {
		b.WriteString("### Meta tags\n\nBaseline created from this run.\n\n")
		return
	}
	if m.Matches {
		b.WriteString("### Meta tags\n\nNo changes.\n\n")
		return
	}

	b.WriteString("### Meta tags\n\n")
	if len(m.MissingTags) > 0 {
		fmt.Fprintf(b, "Missing tags: `%s`\n\n", strings.Join(m.MissingTags, "`, `"))
	}
	if len(m.NewTags) > 0 {
		fmt.Fprintf(b, "New tags: `%s`\n\n", strings.Join(m.NewTags, "`, `"))
	}
	if len(m.Differences) > 0 {
		b.WriteString("| Tag | Baseline | Current |\n|---|---|---|\n")
		for _, key := range sortedDiffKeys(m.Differences) {
			d := m.Differences[key]
			fmt.Fprintf(b, "| %s | %s | %s |\n", key, cell(d.Baseline), cell(d.Current))
		}
		b.WriteString("\n")
	}
}

func writeJSONLDSection(b *strings.Builder, p *run.PageResult) {
	l := p.JSONLD
	if l.CreatedBaseline {
		b.WriteString("### Structured data\n\nBaseline created from this run.\n\n")
		return
	}
	if l.Matches {
		b.WriteString("### Structured data\n\nNo changes.\n\n")
		return
	}

	b.WriteString("### Structured data\n\n")
	if len(l.MissingData) > 0 {
		fmt.Fprintf(b, "Missing blocks (baseline indexes): %s\n\n", indexList(l.MissingData))
	}
	if len(l.NewData) > 0 {
		fmt.Fprintf(b, "New blocks (current indexes): %s\n\n", indexList(l.NewData))
	}
	for _, d := range l.Differences {
		fmt.Fprintf(b, "Block %d changed:\n\n", d.Index)
		if d.BaselineError != "" || d.CurrentError != "" {
			fmt.Fprintf(b, "Parse error drift: baseline %q, current %q\n\n", d.BaselineError, d.CurrentError)
			continue
		}
		blob, err := json.MarshalIndent(d.Fields, "", "  ")
		if err != nil {
			fmt.Fprintf(b, "(failed to render field diff: %v)\n\n", err)
			continue
		}
		fmt.Fprintf(b, "```json\n%s\n```\n\n", blob)
	}
}

func writeBudgetSection(b *strings.Builder, p *run.PageResult) {
	b.WriteString("### Budgets\n\n| Metric | Budget | Actual | Result |\n|---|---|---|---|\n")
	for _, r := range p.Budgets {
		mark := "✅"
		if !r.Pass {
			mark = "❌"
		}
		fmt.Fprintf(b, "| %s | %.0f | %.0f | %s |\n", r.Metric, r.Budget, r.Actual, mark)
	}
	b.WriteString("\n")
}

func metaCell(p *run.PageResult) string {
	switch {
	case p.Meta == nil:
		return "—"
	case p.Meta.CreatedBaseline:
		return "baseline created"
	case p.Meta.Matches:
		return "ok"
	default:
		return fmt.Sprintf("%d missing, %d new, %d changed",
			len(p.Meta.MissingTags), len(p.Meta.NewTags), len(p.Meta.Differences))
	}
}

func jsonldCell(p *run.PageResult) string {
	switch {
	case p.JSONLD == nil:
		return "—"
	case p.JSONLD.CreatedBaseline:
		return "baseline created"
	case p.JSONLD.Matches:
		return "ok"
	default:
		return fmt.Sprintf("%d missing, %d new, %d changed",
			len(p.JSONLD.MissingData), len(p.JSONLD.NewData), len(p.JSONLD.Differences))
	}
}

func budgetCell(p *run.PageResult) string {
	if len(p.Budgets) == 0 {
		return "—"
	}
	failed := 0
	for _, r := range p.Budgets {
		if !r.Pass {
			failed++
		}
	}
	if failed == 0 {
		return "ok"
	}
	return fmt.Sprintf("%d over budget", failed)
}

func resultCell(p *run.PageResult) string {
	if p.Passed {
		return "✅"
	}
	return "❌"
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	if s == "" {
		return "(empty)"
	}
	return s
}

func indexList(blocks baseline.JSONLDList) string {
	parts := make([]string, 0, len(blocks))
	for _, blk := range blocks {
		parts = append(parts, fmt.Sprintf("%d", blk.Index))
	}
	return strings.Join(parts, ", ")
}

func sortedDiffKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
