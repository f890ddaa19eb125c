package baseline

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/pagewatch/pagewatch/internal/logging"
)

// Comparer coordinates load-or-create-baseline, the field-level diff, and
// result shaping. It holds no mutable state beyond its store, so comparisons
// for different pages may run concurrently; per-file atomicity comes from
// the store.
type Comparer struct {
	store  *Store
	logger *slog.Logger
}

// NewComparer returns a comparer over the given store.
func NewComparer(store *Store) *Comparer {
	return &Comparer{
		store:  store,
		logger: logging.Component("baseline"),
	}
}

// CompareMeta compares a freshly extracted meta-tag map against the stored
// baseline for page.
//
// If no baseline exists, the extraction is persisted as the new baseline and
// the result matches with all buckets empty. A wrong first-seen value
// therefore becomes the accepted reference without warning; that is the
// deliberate first-run policy, so a page's first audit never fails on
// comparison.
func (c *Comparer) CompareMeta(page string, current MetaTagMap) (*MetaResult, error) {
	res := &MetaResult{
		MissingTags: []string{},
		NewTags:     []string{},
		Differences: map[string]MetaDifference{},
	}

	base, err := c.store.Load(page, KindMetaTags)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if err := c.store.Save(page, KindMetaTags, &Snapshot{Kind: KindMetaTags, Meta: current}); err != nil {
				return nil, fmt.Errorf("create meta-tags baseline for %s: %w", page, err)
			}
			c.logger.Info("baseline_created", "page", page, "kind", KindMetaTags, "tags", len(current))
			res.Matches = true
			res.CreatedBaseline = true
			return res, nil
		}
		return nil, err
	}

	for _, key := range unionTagKeys(base.Meta, current) {
		bAttrs, inBase := base.Meta[key]
		cAttrs, inCur := current[key]
		switch {
		case inBase && !inCur:
			res.MissingTags = append(res.MissingTags, key)
		case !inBase && inCur:
			res.NewTags = append(res.NewTags, key)
		default:
			// Content-only comparison: other attributes (name vs property,
			// charset) don't constitute drift.
			if bAttrs["content"] != cAttrs["content"] {
				res.Differences[key] = MetaDifference{
					Baseline: bAttrs["content"],
					Current:  cAttrs["content"],
				}
			}
		}
	}

	res.Matches = len(res.MissingTags) == 0 && len(res.NewTags) == 0 && len(res.Differences) == 0
	return res, nil
}

// CompareJSONLD compares an ordered list of structured-data blocks against
// the stored baseline for page. First-run behavior matches CompareMeta.
func (c *Comparer) CompareJSONLD(page string, current JSONLDList) (*JSONLDResult, error) {
	res := &JSONLDResult{
		MissingData: JSONLDList{},
		NewData:     JSONLDList{},
		Differences: []JSONLDDifference{},
	}

	base, err := c.store.Load(page, KindJSONLD)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if err := c.store.Save(page, KindJSONLD, &Snapshot{Kind: KindJSONLD, JSONLD: current}); err != nil {
				return nil, fmt.Errorf("create json-ld baseline for %s: %w", page, err)
			}
			c.logger.Info("baseline_created", "page", page, "kind", KindJSONLD, "blocks", len(current))
			res.Matches = true
			res.CreatedBaseline = true
			return res, nil
		}
		return nil, err
	}

	baseBlocks := base.JSONLD
	overlap := min(len(baseBlocks), len(current))

	// Trailing entries only appear as missing/new; blocks are matched
	// positionally, never realigned.
	if len(baseBlocks) > overlap {
		res.MissingData = append(res.MissingData, baseBlocks[overlap:]...)
	}
	if len(current) > overlap {
		res.NewData = append(res.NewData, current[overlap:]...)
	}

	for i := 0; i < overlap; i++ {
		b, cur := baseBlocks[i], current[i]

		// A parse failure on either side short-circuits to error equality;
		// there is no structure to field-diff.
		if b.Error != "" || cur.Error != "" {
			if b.Error != cur.Error {
				res.Differences = append(res.Differences, JSONLDDifference{
					Index:         i,
					BaselineError: b.Error,
					CurrentError:  cur.Error,
				})
			}
			continue
		}

		same, err := jsonEqual(b.Data, cur.Data)
		if err != nil {
			return nil, fmt.Errorf("serialize json-ld block %d for %s: %w", i, page, err)
		}
		if !same {
			res.Differences = append(res.Differences, JSONLDDifference{
				Index:  i,
				Fields: Diff(normalizeJSON(b.Data), normalizeJSON(cur.Data), ""),
			})
		}
	}

	res.Matches = len(res.MissingData) == 0 && len(res.NewData) == 0 && len(res.Differences) == 0
	return res, nil
}

// UpdateBaseline unconditionally overwrites the stored baseline with snap,
// bypassing comparison. Used to intentionally accept drift.
func (c *Comparer) UpdateBaseline(page string, kind Kind, snap *Snapshot) error {
	if err := c.store.Save(page, kind, snap); err != nil {
		return fmt.Errorf("update baseline for %s/%s: %w", page, kind, err)
	}
	c.logger.Info("baseline_updated", "page", page, "kind", kind)
	return nil
}

// jsonEqual compares two values by their serialized JSON. Serialization
// normalizes key order and numeric types, so an in-memory extraction and its
// round-tripped baseline compare equal.
func jsonEqual(a, b any) (bool, error) {
	aj, err := json.Marshal(normalizeJSON(a))
	if err != nil {
		return false, err
	}
	bj, err := json.Marshal(normalizeJSON(b))
	if err != nil {
		return false, err
	}
	return string(aj) == string(bj), nil
}

// normalizeJSON round-trips v through encoding/json so both sides of a diff
// use the same concrete types (map[string]any, []any, float64) regardless of
// whether they came from disk or a fresh extraction.
func normalizeJSON(v any) any {
	switch v.(type) {
	case nil, string, bool, float64:
		return v
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

func unionTagKeys(base MetaTagMap, current MetaTagMap) []string {
	keys := make([]string, 0, len(base)+len(current))
	seen := make(map[string]bool, len(base)+len(current))
	for k := range base {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range current {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
