// Package extract captures SEO-relevant metadata from a page: the flat meta
// tag map and the ordered JSON-LD block list that baselines are kept for.
package extract

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pagewatch/pagewatch/internal/baseline"
	"github.com/pagewatch/pagewatch/internal/browser"
)

// metaTagScript collects meta tags, the title, and the canonical link from
// the live DOM. Tags without a usable identifier are skipped.
const metaTagScript = `(() => {
	const tags = {};
	for (const el of document.querySelectorAll('meta')) {
		const key = el.getAttribute('name') || el.getAttribute('property') || el.getAttribute('http-equiv');
		if (!key) continue;
		const attrs = {};
		for (const a of el.attributes) attrs[a.name] = a.value;
		tags[key] = attrs;
	}
	const title = document.querySelector('title');
	if (title) tags['title'] = { content: title.textContent || '' };
	const canonical = document.querySelector('link[rel="canonical"]');
	if (canonical) tags['canonical'] = { rel: 'canonical', content: canonical.getAttribute('href') || '' };
	return tags;
})()`

// jsonLDScript returns the raw text of every ld+json script in document
// order. Parsing happens Go-side so parse failures are recorded uniformly.
const jsonLDScript = `(() =>
	Array.from(document.querySelectorAll('script[type="application/ld+json"]'))
		.map(s => s.textContent || '')
)()`

// MetaTags extracts the meta tag map from a live page.
func MetaTags(ctx context.Context, page *browser.Page) (baseline.MetaTagMap, error) {
	raw, err := page.Evaluate(ctx, metaTagScript)
	if err != nil {
		return nil, fmt.Errorf("extract meta tags: %w", err)
	}

	tags := baseline.MetaTagMap{}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("extract meta tags: unexpected result shape %T", raw)
	}
	for key, attrsAny := range m {
		attrsMap, ok := attrsAny.(map[string]any)
		if !ok {
			continue
		}
		attrs := make(map[string]string, len(attrsMap))
		for name, val := range attrsMap {
			if s, ok := val.(string); ok {
				attrs[name] = s
			}
		}
		tags[key] = attrs
	}
	return tags, nil
}

// JSONLD extracts the ordered structured-data list from a live page. Blocks
// that fail to parse become {index, error, rawContent} entries rather than
// errors, so the comparison can still run.
func JSONLD(ctx context.Context, page *browser.Page) (baseline.JSONLDList, error) {
	raw, err := page.Evaluate(ctx, jsonLDScript)
	if err != nil {
		return nil, fmt.Errorf("extract json-ld: %w", err)
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("extract json-ld: unexpected result shape %T", raw)
	}

	texts := make([]string, 0, len(items))
	for _, item := range items {
		s, _ := item.(string)
		texts = append(texts, s)
	}
	return parseBlocks(texts), nil
}

// parseBlocks turns raw ld+json script bodies into indexed blocks.
func parseBlocks(texts []string) baseline.JSONLDList {
	blocks := make(baseline.JSONLDList, 0, len(texts))
	for i, text := range texts {
		var data any
		if err := json.Unmarshal([]byte(text), &data); err != nil {
			blocks = append(blocks, baseline.JSONLDBlock{
				Index:      i,
				Error:      err.Error(),
				RawContent: text,
			})
			continue
		}
		blocks = append(blocks, baseline.JSONLDBlock{Index: i, Data: data})
	}
	return blocks
}
