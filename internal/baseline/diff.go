package baseline

import (
	"fmt"
	"sort"
)

// Diff recursively compares two JSON-compatible values and returns every
// point at which they diverge, depth-first, in an order that is stable for a
// given pair of inputs: object keys are visited in baseline-then-current
// order, de-duplicated; array elements positionally.
//
// A type mismatch at a path is reported as a single type_changed difference
// and recursion stops there. Null is a distinct scalar, so null vs object is
// type_changed, not added/removed.
//
// Arrays are compared by index only. An insertion at the head of an array
// therefore cascades into value_changed entries for every shifted position;
// callers that need insert/delete awareness must align inputs themselves.
func Diff(baseline, current any, path string) []FieldDifference {
	var diffs []FieldDifference

	bt := jsonType(baseline)
	ct := jsonType(current)
	if bt != ct {
		return append(diffs, FieldDifference{
			Path:     path,
			Type:     DiffTypeChanged,
			Baseline: baseline,
			Current:  current,
		})
	}

	switch bt {
	case typeObject:
		bm := baseline.(map[string]any)
		cm := current.(map[string]any)
		for _, key := range unionKeys(bm, cm) {
			bv, inBase := bm[key]
			cv, inCur := cm[key]
			childPath := joinKey(path, key)
			switch {
			case inBase && !inCur:
				diffs = append(diffs, FieldDifference{
					Path:     childPath,
					Type:     DiffRemoved,
					Baseline: bv,
				})
			case !inBase && inCur:
				diffs = append(diffs, FieldDifference{
					Path:    childPath,
					Type:    DiffAdded,
					Current: cv,
				})
			default:
				diffs = append(diffs, Diff(bv, cv, childPath)...)
			}
		}

	case typeArray:
		ba := baseline.([]any)
		ca := current.([]any)
		if len(ba) != len(ca) {
			diffs = append(diffs, FieldDifference{
				Path:     path,
				Type:     DiffArrayLengthChanged,
				Baseline: len(ba),
				Current:  len(ca),
			})
		}
		overlap := min(len(ba), len(ca))
		for i := 0; i < overlap; i++ {
			diffs = append(diffs, Diff(ba[i], ca[i], fmt.Sprintf("%s[%d]", path, i))...)
		}

	case typeNull:
		// null == null

	case typeNumber:
		if toFloat(baseline) != toFloat(current) {
			diffs = append(diffs, valueChanged(path, baseline, current))
		}

	default:
		// string, boolean
		if baseline != current {
			diffs = append(diffs, valueChanged(path, baseline, current))
		}
	}

	return diffs
}

func valueChanged(path string, baseline, current any) FieldDifference {
	return FieldDifference{
		Path:     path,
		Type:     DiffValueChanged,
		Baseline: baseline,
		Current:  current,
	}
}

const (
	typeObject  = "object"
	typeArray   = "array"
	typeString  = "string"
	typeNumber  = "number"
	typeBoolean = "boolean"
	typeNull    = "null"
	typeUnknown = "unknown"
)

// jsonType classifies a value into its JSON type. Unlike JavaScript's typeof,
// arrays and null are distinct from objects — that distinction is what makes
// null-vs-object report as type_changed.
func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return typeNull
	case map[string]any:
		return typeObject
	case []any:
		return typeArray
	case string:
		return typeString
	case bool:
		return typeBoolean
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return typeNumber
	default:
		return typeUnknown
	}
}

// toFloat normalizes numeric values so that hand-built test inputs (ints)
// compare equal to their unmarshalled (float64) counterparts.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	}
	return 0
}

// unionKeys returns the union of the two key sets, baseline keys first and
// current-only keys after, each side sorted. Go maps carry no insertion
// order, so sorting is what keeps the diff sequence stable across runs.
func unionKeys(baseline, current map[string]any) []string {
	keys := make([]string, 0, len(baseline)+len(current))
	seen := make(map[string]bool, len(baseline)+len(current))
	for _, k := range sortedKeys(baseline) {
		keys = append(keys, k)
		seen[k] = true
	}
	for _, k := range sortedKeys(current) {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// joinKey appends an object key to a dot path. The root path is empty, so a
// top-level key addresses as just "key".
func joinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
