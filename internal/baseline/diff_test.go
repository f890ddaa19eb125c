package baseline

import (
	"encoding/json"
	"reflect"
	"testing"
)

func mustJSON(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("bad test JSON %q: %v", s, err)
	}
	return v
}

func TestDiffEqualValuesProduceNothing(t *testing.T) {
	cases := []string{
		`"hello"`,
		`42`,
		`true`,
		`null`,
		`{"a": 1, "b": [1, 2, {"c": "d"}]}`,
		`[]`,
		`{}`,
	}
	for _, raw := range cases {
		v := mustJSON(t, raw)
		if diffs := Diff(v, v, ""); len(diffs) != 0 {
			t.Errorf("Diff(%s, %s) = %v, want empty", raw, raw, diffs)
		}
	}
}

func TestDiffRootTypeChange(t *testing.T) {
	diffs := Diff(mustJSON(t, `{"a": 1}`), mustJSON(t, `[1]`), "")
	if len(diffs) != 1 {
		t.Fatalf("expected exactly one diff, got %v", diffs)
	}
	if diffs[0].Type != DiffTypeChanged || diffs[0].Path != "" {
		t.Errorf("expected type_changed at root, got %+v", diffs[0])
	}
}

func TestDiffNullVersusObjectIsTypeChanged(t *testing.T) {
	diffs := Diff(nil, mustJSON(t, `{"a": 1}`), "")
	if len(diffs) != 1 || diffs[0].Type != DiffTypeChanged {
		t.Fatalf("null vs object should be a single type_changed, got %v", diffs)
	}
}

func TestDiffSingleAddedKey(t *testing.T) {
	base := mustJSON(t, `{"title": "A"}`)
	cur := mustJSON(t, `{"title": "A", "author": "B"}`)
	diffs := Diff(base, cur, "")
	want := []FieldDifference{{Path: "author", Type: DiffAdded, Current: "B"}}
	if !reflect.DeepEqual(diffs, want) {
		t.Errorf("Diff = %+v, want %+v", diffs, want)
	}
}

func TestDiffRemovedKey(t *testing.T) {
	base := mustJSON(t, `{"title": "A", "author": "B"}`)
	cur := mustJSON(t, `{"title": "A"}`)
	diffs := Diff(base, cur, "")
	want := []FieldDifference{{Path: "author", Type: DiffRemoved, Baseline: "B"}}
	if !reflect.DeepEqual(diffs, want) {
		t.Errorf("Diff = %+v, want %+v", diffs, want)
	}
}

func TestDiffValueChangedScalar(t *testing.T) {
	diffs := Diff("A", "B", "title")
	if len(diffs) != 1 {
		t.Fatalf("expected one diff, got %v", diffs)
	}
	d := diffs[0]
	if d.Type != DiffValueChanged || d.Path != "title" || d.Baseline != "A" || d.Current != "B" {
		t.Errorf("unexpected diff %+v", d)
	}
}

func TestDiffNestedPath(t *testing.T) {
	base := mustJSON(t, `{"author": {"name": "Ada"}}`)
	cur := mustJSON(t, `{"author": {"name": "Bob"}}`)
	diffs := Diff(base, cur, "")
	if len(diffs) != 1 || diffs[0].Path != "author.name" {
		t.Fatalf("expected one diff at author.name, got %v", diffs)
	}
}

func TestDiffArrayIndexPath(t *testing.T) {
	base := mustJSON(t, `{"tags": ["a", "b"]}`)
	cur := mustJSON(t, `{"tags": ["a", "c"]}`)
	diffs := Diff(base, cur, "")
	if len(diffs) != 1 || diffs[0].Path != "tags[1]" {
		t.Fatalf("expected one diff at tags[1], got %v", diffs)
	}
}

func TestDiffArrayShrinkReportsSingleLengthChange(t *testing.T) {
	base := mustJSON(t, `[1, 2, 3]`)
	cur := mustJSON(t, `[1, 2]`)
	diffs := Diff(base, cur, "")
	if len(diffs) != 1 {
		t.Fatalf("expected exactly one diff, got %v", diffs)
	}
	d := diffs[0]
	if d.Type != DiffArrayLengthChanged || d.Baseline != 3 || d.Current != 2 {
		t.Errorf("expected array_length_changed 3->2, got %+v", d)
	}
}

func TestDiffArrayGrowthWithPositionalChange(t *testing.T) {
	base := mustJSON(t, `["a", "b"]`)
	cur := mustJSON(t, `["a", "x", "c"]`)
	diffs := Diff(base, cur, "")
	if len(diffs) != 2 {
		t.Fatalf("expected length change plus one positional diff, got %v", diffs)
	}
	if diffs[0].Type != DiffArrayLengthChanged {
		t.Errorf("expected array_length_changed first, got %+v", diffs[0])
	}
	if diffs[1].Path != "[1]" || diffs[1].Type != DiffValueChanged {
		t.Errorf("expected value_changed at [1], got %+v", diffs[1])
	}
}

// Arrays are diffed positionally. Inserting at the head shifts every element,
// so the result is a length change plus a value change per shifted position
// rather than a single insert. Known limitation; this test pins it down so a
// future alignment change shows up loudly.
func TestDiffInsertAtHeadCascades(t *testing.T) {
	base := mustJSON(t, `["a", "b", "c"]`)
	cur := mustJSON(t, `["z", "a", "b", "c"]`)
	diffs := Diff(base, cur, "")

	if len(diffs) != 4 {
		t.Fatalf("expected 1 length change + 3 cascading value changes, got %v", diffs)
	}
	if diffs[0].Type != DiffArrayLengthChanged {
		t.Errorf("expected array_length_changed first, got %+v", diffs[0])
	}
	for _, d := range diffs[1:] {
		if d.Type != DiffValueChanged {
			t.Errorf("expected cascading value_changed, got %+v", d)
		}
	}
}

func TestDiffTypeChangeStopsRecursion(t *testing.T) {
	base := mustJSON(t, `{"data": {"a": 1, "b": 2}}`)
	cur := mustJSON(t, `{"data": [1, 2]}`)
	diffs := Diff(base, cur, "")
	if len(diffs) != 1 || diffs[0].Type != DiffTypeChanged || diffs[0].Path != "data" {
		t.Fatalf("expected single type_changed at data, got %v", diffs)
	}
}

func TestDiffNumberNormalization(t *testing.T) {
	// Hand-built inputs use Go ints; unmarshalled baselines use float64.
	if diffs := Diff(1, float64(1), ""); len(diffs) != 0 {
		t.Errorf("int 1 vs float64 1 should be equal, got %v", diffs)
	}
	if diffs := Diff(1, float64(2), ""); len(diffs) != 1 || diffs[0].Type != DiffValueChanged {
		t.Errorf("expected value_changed, got %v", diffs)
	}
}

func TestDiffDeterministicOrder(t *testing.T) {
	base := mustJSON(t, `{"a": 1, "b": 2, "c": 3}`)
	cur := mustJSON(t, `{"a": 9, "c": 9, "d": 9}`)
	first := Diff(base, cur, "")
	for i := 0; i < 20; i++ {
		if again := Diff(base, cur, ""); !reflect.DeepEqual(first, again) {
			t.Fatalf("diff order unstable: %v vs %v", first, again)
		}
	}
}

func TestDiffPathPrefix(t *testing.T) {
	diffs := Diff(mustJSON(t, `{"a": 1}`), mustJSON(t, `{"a": 2}`), "root")
	if len(diffs) != 1 || diffs[0].Path != "root.a" {
		t.Fatalf("expected diff at root.a, got %v", diffs)
	}
}
