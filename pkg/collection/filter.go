package collection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/sanskrit-coders/docmodel/pkg/constants"
)

// MatchFilter reports whether the normalized document m satisfies filter.
//
// m is flattened to dotted paths and every filter key must equal the value
// found there. The one exception is a sequence value filtered with
// {"$elemMatch": sub}: at least one element of the sequence must then match
// sub.
func MatchFilter(m map[string]any, filter map[string]any) bool {
	flat, _ := Flatten(m).(map[string]any)
	for key, want := range filter {
		got := flat[key]
		if elems, ok := got.([]any); ok {
			if sub, ok := elemMatch(want); ok {
				if !anyElementMatches(elems, sub) {
					return false
				}
				continue
			}
		}
		if !Equal(got, want) {
			return false
		}
	}
	return true
}

func elemMatch(want any) (map[string]any, bool) {
	op, ok := want.(map[string]any)
	if !ok {
		return nil, false
	}
	sub, ok := op[constants.ElemMatchOperator].(map[string]any)
	return sub, ok && sub != nil
}

func anyElementMatches(elems []any, sub map[string]any) bool {
	for _, elem := range elems {
		m, ok := elem.(map[string]any)
		if !ok {
			continue
		}
		if MatchFilter(m, sub) {
			return true
		}
	}
	return false
}

// Equal compares two value trees by value: int(1), int64(1) and float64(1)
// are all equal.
func Equal(a, b any) bool {
	return cmp.Equal(CanonicalNumbers(TuplesToSequences(a)), CanonicalNumbers(TuplesToSequences(b)), NumericEqual)
}

// NumericEqual is a cmp option comparing an int64 and a float64 by value.
// JSON writes a whole float without a fraction, so a float may come back
// as an int64.
var NumericEqual = cmp.FilterValues(func(x, y any) bool {
	_, xok := asFloat(x)
	_, yok := asFloat(y)
	return xok && yok
}, cmp.Comparer(func(x, y any) bool {
	if xi, ok := x.(int64); ok {
		if yi, ok := y.(int64); ok {
			return xi == yi
		}
	}
	xf, _ := asFloat(x)
	yf, _ := asFloat(y)
	return xf == yf
}))

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// ApproxEqual compares x and y after rounding floats to digits places and
// returns an error naming the key trace of the first difference.
func ApproxEqual(x, y any, digits int) error {
	x = CanonicalNumbers(RoundFloats(CanonicalNumbers(TuplesToSequences(x)), digits))
	y = CanonicalNumbers(RoundFloats(CanonicalNumbers(TuplesToSequences(y)), digits))
	return approxEqual(x, y, nil)
}

func approxEqual(x, y any, trace []string) error {
	switch xv := x.(type) {
	case map[string]any:
		yv, ok := y.(map[string]any)
		if !ok {
			return mismatch(trace, x, y)
		}
		xKeys, yKeys := sortedKeys(xv), sortedKeys(yv)
		if !cmp.Equal(xKeys, yKeys) {
			return fmt.Errorf("at %s: keys differ: %v vs %v", tracePath(trace), xKeys, yKeys)
		}
		for _, k := range xKeys {
			if err := approxEqual(xv[k], yv[k], append(trace, k)); err != nil {
				return err
			}
		}
		return nil
	case []any:
		yv, ok := y.([]any)
		if !ok {
			return mismatch(trace, x, y)
		}
		if len(xv) != len(yv) {
			return fmt.Errorf("at %s: lengths differ: %d vs %d", tracePath(trace), len(xv), len(yv))
		}
		for i := range xv {
			if err := approxEqual(xv[i], yv[i], append(trace, fmt.Sprint(i))); err != nil {
				return err
			}
		}
		return nil
	default:
		if !cmp.Equal(x, y, NumericEqual) {
			return mismatch(trace, x, y)
		}
		return nil
	}
}

func mismatch(trace []string, x, y any) error {
	return fmt.Errorf("at %s: %v (%T) vs %v (%T)", tracePath(trace), x, x, y, y)
}

func tracePath(trace []string) string {
	return "/" + strings.Join(trace, "/")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
