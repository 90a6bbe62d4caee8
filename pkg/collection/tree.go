package collection

import "strings"

// BuildPathTree nests leaves into a mapping keyed by the "/"-separated
// segments of pathFn(leaf). Empty segments are ignored, a leaf with an empty
// path is dropped, and a later leaf overwrites whatever an earlier one left at
// the same path.
func BuildPathTree[T any](leaves []T, pathFn func(T) string) map[string]any {
	tree := map[string]any{}
	for _, leaf := range leaves {
		segments := splitPath(pathFn(leaf))
		if len(segments) == 0 {
			continue
		}
		node := tree
		for _, segment := range segments[:len(segments)-1] {
			child, ok := node[segment].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[segment] = child
			}
			node = child
		}
		node[segments[len(segments)-1]] = leaf
	}
	return tree
}

func splitPath(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
