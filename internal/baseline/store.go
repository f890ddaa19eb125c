package baseline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNotFound is returned by Load when no baseline exists for the page and
// kind. Callers distinguish it from IO failures with errors.Is; the comparer
// turns it into the first-run create path, never into a comparison failure.
var ErrNotFound = errors.New("baseline not found")

// Store persists baselines under a root directory, one JSON file per page
// per kind at <root>/<kind>/<page>-baseline.json. Writes are whole-file
// replaces via temp file and rename, so a concurrent reader never observes a
// torn baseline.
type Store struct {
	root string
}

// NewStore returns a store rooted at dir. The directory is created lazily on
// first save.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns the baseline file path for a page and kind.
func (s *Store) Path(page string, kind Kind) string {
	return filepath.Join(s.root, string(kind), page+"-baseline.json")
}

// metaFile is the on-disk shape for meta-tags baselines.
type metaFile struct {
	MetaTags     MetaTagMap `json:"metaTags"`
	MetaTagCount int        `json:"metaTagCount"`
	LastUpdated  string     `json:"lastUpdated,omitempty"`
}

// jsonldFile is the on-disk shape for json-ld baselines.
type jsonldFile struct {
	JSONLDData  JSONLDList `json:"jsonLdData"`
	Count       int        `json:"count"`
	LastUpdated string     `json:"lastUpdated,omitempty"`
}

// Load reads the baseline for (page, kind). It returns ErrNotFound when the
// file does not exist; any other failure is an IO error for the caller to
// treat as fatal for that page.
func (s *Store) Load(page string, kind Kind) (*Snapshot, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown baseline kind: %q", kind)
	}

	data, err := os.ReadFile(s.Path(page, kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, page, kind)
		}
		return nil, fmt.Errorf("read baseline %s/%s: %w", page, kind, err)
	}

	snap := &Snapshot{Kind: kind}
	switch kind {
	case KindMetaTags:
		var f metaFile
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse baseline %s/%s: %w", page, kind, err)
		}
		snap.Meta = f.MetaTags
		snap.LastUpdated = parseTimestamp(f.LastUpdated)
	case KindJSONLD:
		var f jsonldFile
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse baseline %s/%s: %w", page, kind, err)
		}
		snap.JSONLD = f.JSONLDData
		snap.LastUpdated = parseTimestamp(f.LastUpdated)
	}

	return snap, nil
}

// Save persists snap as the baseline for (page, kind), replacing any
// existing file atomically and stamping lastUpdated with the current time.
func (s *Store) Save(page string, kind Kind, snap *Snapshot) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown baseline kind: %q", kind)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	var payload any
	switch kind {
	case KindMetaTags:
		meta := snap.Meta
		if meta == nil {
			meta = MetaTagMap{}
		}
		payload = metaFile{MetaTags: meta, MetaTagCount: len(meta), LastUpdated: now}
	case KindJSONLD:
		blocks := snap.JSONLD
		if blocks == nil {
			blocks = JSONLDList{}
		}
		payload = jsonldFile{JSONLDData: blocks, Count: len(blocks), LastUpdated: now}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal baseline %s/%s: %w", page, kind, err)
	}

	path := s.Path(page, kind)
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// EnsureDir creates dir (and parents) if missing. It is idempotent and fails
// only when the path exists as a non-directory or cannot be created.
func EnsureDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("baseline path %s exists and is not a directory", dir)
		}
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create baseline directory %s: %w", dir, err)
	}
	return nil
}

// writeFileAtomic writes data to a temp file in the target's directory and
// renames it over the destination, so partial writes are never observable.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp baseline file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write baseline %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close baseline %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace baseline %s: %w", path, err)
	}
	return nil
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
