package baseline

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStoreLoadMissingReturnsNotFound(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Load("home", KindMetaTags)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreSaveLoadMetaRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	meta := MetaTagMap{
		"title":          {"content": "Home"},
		"og:description": {"property": "og:description", "content": "Welcome"},
	}
	if err := store.Save("home", KindMetaTags, &Snapshot{Kind: KindMetaTags, Meta: meta}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	snap, err := store.Load("home", KindMetaTags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(snap.Meta) != 2 {
		t.Errorf("expected 2 tags, got %d", len(snap.Meta))
	}
	if snap.Meta["title"]["content"] != "Home" {
		t.Errorf("title content = %q, want Home", snap.Meta["title"]["content"])
	}
	if snap.LastUpdated.IsZero() {
		t.Error("expected lastUpdated to be stamped on save")
	}
}

func TestStoreSaveLoadJSONLDRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	blocks := JSONLDList{
		{Index: 0, Data: map[string]any{"@type": "Organization", "name": "Acme"}},
		{Index: 1, Error: "unexpected end of JSON input", RawContent: `{"broken`},
	}
	if err := store.Save("home", KindJSONLD, &Snapshot{Kind: KindJSONLD, JSONLD: blocks}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	snap, err := store.Load("home", KindJSONLD)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(snap.JSONLD) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(snap.JSONLD))
	}
	data, ok := snap.JSONLD[0].Data.(map[string]any)
	if !ok || data["name"] != "Acme" {
		t.Errorf("block 0 data = %#v, want Acme org", snap.JSONLD[0].Data)
	}
	if snap.JSONLD[1].Error == "" || snap.JSONLD[1].RawContent == "" {
		t.Errorf("parse-failure block should round-trip error and raw content, got %+v", snap.JSONLD[1])
	}
}

func TestStoreFileShapeAndCounts(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	meta := MetaTagMap{"title": {"content": "Home"}}
	if err := store.Save("home", KindMetaTags, &Snapshot{Kind: KindMetaTags, Meta: meta}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "meta-tags", "home-baseline.json"))
	if err != nil {
		t.Fatalf("baseline file not written where expected: %v", err)
	}

	var f map[string]any
	if err := json.Unmarshal(raw, &f); err != nil {
		t.Fatalf("baseline file is not valid JSON: %v", err)
	}
	if f["metaTagCount"] != float64(1) {
		t.Errorf("metaTagCount = %v, want 1", f["metaTagCount"])
	}
	if _, ok := f["metaTags"]; !ok {
		t.Error("expected metaTags key in baseline file")
	}
	if f["lastUpdated"] == "" {
		t.Error("expected lastUpdated in baseline file")
	}
}

func TestStoreSaveOverwritesWholeFile(t *testing.T) {
	store := NewStore(t.TempDir())

	first := MetaTagMap{"title": {"content": "A"}, "description": {"content": "old"}}
	if err := store.Save("home", KindMetaTags, &Snapshot{Kind: KindMetaTags, Meta: first}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second := MetaTagMap{"title": {"content": "B"}}
	if err := store.Save("home", KindMetaTags, &Snapshot{Kind: KindMetaTags, Meta: second}); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	snap, err := store.Load("home", KindMetaTags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(snap.Meta) != 1 || snap.Meta["title"]["content"] != "B" {
		t.Errorf("expected whole-file replace, got %+v", snap.Meta)
	}
}

func TestStoreSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if err := store.Save("home", KindMetaTags, &Snapshot{Kind: KindMetaTags, Meta: MetaTagMap{}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "meta-tags"))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestStoreRejectsUnknownKind(t *testing.T) {
	store := NewStore(t.TempDir())
	if _, err := store.Load("home", Kind("bogus")); err == nil {
		t.Error("Load with unknown kind should fail")
	}
	if err := store.Save("home", Kind("bogus"), &Snapshot{}); err == nil {
		t.Error("Save with unknown kind should fail")
	}
}

func TestEnsureDirIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("first EnsureDir failed: %v", err)
	}
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("second EnsureDir failed: %v", err)
	}
}

func TestEnsureDirRejectsFileCollision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDir(path); err == nil {
		t.Error("EnsureDir over a regular file should fail")
	}
}
