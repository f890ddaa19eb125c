// Package baseline compares extracted page metadata against stored snapshots.
//
// A baseline is the last-accepted-good extraction for a page, persisted one
// file per page per kind. Comparisons never mutate a baseline; only a first
// run or an explicit update writes one.
package baseline

import "time"

// Kind discriminates the two supported payload shapes.
type Kind string

const (
	// KindMetaTags is a flat tag-name -> attributes map.
	KindMetaTags Kind = "meta-tags"

	// KindJSONLD is an ordered list of structured-data blocks.
	KindJSONLD Kind = "json-ld"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindMetaTags || k == KindJSONLD
}

// MetaTagMap maps a tag identifier (name, property, or tag name for
// title/canonical) to its attributes. The "content" attribute carries the
// value that comparisons care about.
type MetaTagMap map[string]map[string]string

// JSONLDBlock is one script[type="application/ld+json"] block in document
// order. A block that failed to parse carries Error and RawContent instead of
// Data; the parse failure is data, not a comparison error.
type JSONLDBlock struct {
	Index      int    `json:"index"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
	RawContent string `json:"rawContent,omitempty"`
}

// JSONLDList is the ordered structured-data extraction for a page.
type JSONLDList []JSONLDBlock

// Snapshot is one captured extraction for a page. Exactly one of Meta or
// JSONLD is populated, according to Kind.
type Snapshot struct {
	Kind        Kind
	Meta        MetaTagMap
	JSONLD      JSONLDList
	LastUpdated time.Time
}

// DiffKind classifies a single field-level discrepancy.
type DiffKind string

const (
	DiffAdded              DiffKind = "added"
	DiffRemoved            DiffKind = "removed"
	DiffTypeChanged        DiffKind = "type_changed"
	DiffValueChanged       DiffKind = "value_changed"
	DiffArrayLengthChanged DiffKind = "array_length_changed"
)

// FieldDifference is one typed, path-addressed discrepancy between two
// tree-shaped values. Paths are dot/bracket addresses ("author.name",
// "itemListElement[2].url"); the root path is "".
type FieldDifference struct {
	Path     string   `json:"path"`
	Type     DiffKind `json:"type"`
	Baseline any      `json:"baseline,omitempty"`
	Current  any      `json:"current,omitempty"`
}

// MetaDifference records a content change for a tag present in both sides.
type MetaDifference struct {
	Baseline string `json:"baseline"`
	Current  string `json:"current"`
}

// MetaResult is the comparison outcome for a meta-tags payload.
type MetaResult struct {
	Matches     bool                      `json:"matches"`
	MissingTags []string                  `json:"missingTags"`
	NewTags     []string                  `json:"newTags"`
	Differences map[string]MetaDifference `json:"differences"`

	// CreatedBaseline is true when no baseline existed and the current
	// extraction was persisted as the new reference.
	CreatedBaseline bool `json:"createdBaseline,omitempty"`
}

// JSONLDDifference describes a mismatch between the baseline and current
// block at one index of the overlapping prefix. When both blocks parsed,
// Fields carries the full field-level diff of their data; when either side
// failed to parse, only the errors are compared.
type JSONLDDifference struct {
	Index         int               `json:"index"`
	Fields        []FieldDifference `json:"fields,omitempty"`
	BaselineError string            `json:"baselineError,omitempty"`
	CurrentError  string            `json:"currentError,omitempty"`
}

// JSONLDResult is the comparison outcome for a json-ld payload.
type JSONLDResult struct {
	Matches     bool               `json:"matches"`
	MissingData JSONLDList         `json:"missingData"`
	NewData     JSONLDList         `json:"newData"`
	Differences []JSONLDDifference `json:"differences"`

	CreatedBaseline bool `json:"createdBaseline,omitempty"`
}
