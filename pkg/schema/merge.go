// Package schema composes JSON Schema fragments and validates normalized
// documents against them.
package schema

import (
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/sanskrit-coders/docmodel/pkg/collection"
	"github.com/sanskrit-coders/docmodel/pkg/constants"
)

// Fragment is a JSON Schema document, or a piece of one, in normalized form.
type Fragment = map[string]any

// Merge deep-merges b into a and returns the result; neither argument is
// modified.
//
// Keys present on both sides are merged recursively. Two sequences are
// unioned, keeping the order of a followed by the new elements of b, except
// for the type tag enum, which b replaces. Any other conflict is won by b.
func Merge(a, b Fragment) Fragment {
	return mergeValues(collection.TuplesToSequences(a), collection.TuplesToSequences(b), "").(Fragment)
}

// Compose merges fragments left to right.
func Compose(fragments ...Fragment) Fragment {
	out := Fragment{}
	for _, f := range fragments {
		out = Merge(out, f)
	}
	return out
}

func mergeValues(a, b any, path string) any {
	switch bv := b.(type) {
	case map[string]any:
		av, ok := a.(map[string]any)
		if !ok {
			return collection.DeepCopy(b)
		}
		merged := make(map[string]any, len(av)+len(bv))
		for k, v := range av {
			merged[k] = collection.DeepCopy(v)
		}
		for k, v := range bv {
			if existing, ok := av[k]; ok {
				merged[k] = mergeValues(existing, v, path+"/"+k)
				continue
			}
			merged[k] = collection.DeepCopy(v)
		}
		return merged
	case []any:
		av, ok := a.([]any)
		if !ok || strings.HasSuffix(path, constants.TypeField+"/enum") {
			return collection.DeepCopy(b)
		}
		return union(av, bv)
	default:
		return collection.DeepCopy(b)
	}
}

func union(a, b []any) []any {
	out := make([]any, 0, len(a)+len(b))
	add := func(v any) {
		for _, seen := range out {
			if cmp.Equal(seen, v) {
				return
			}
		}
		out = append(out, collection.DeepCopy(v))
	}
	for _, v := range a {
		add(v)
	}
	for _, v := range b {
		add(v)
	}
	return out
}
