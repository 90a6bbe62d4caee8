package collection_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanskrit-coders/docmodel/pkg/collection"
)

func TestRemoveNullKeys(t *testing.T) {
	in := map[string]any{
		"a": map[any]any{nil: 1, "b": 2},
		"c": []any{map[any]any{nil: "x", 1: "y"}},
	}

	got := collection.RemoveNullKeys(in)

	assert.Equal(t, map[string]any{
		"a": map[any]any{"b": 2},
		"c": []any{map[any]any{1: "y"}},
	}, got)
}

func TestRemoveNullValues(t *testing.T) {
	testcases := []struct {
		name        string
		in          any
		onlyIfTyped bool
		want        any
	}{
		{
			name: "nested mappings and sequences",
			in: map[string]any{
				"a": nil,
				"b": map[string]any{"c": nil, "d": 1},
				"e": []any{map[string]any{"f": nil}, nil},
			},
			want: map[string]any{
				"b": map[string]any{"d": 1},
				"e": []any{map[string]any{}, nil},
			},
		},
		{
			name:        "untyped mapping left alone",
			in:          map[string]any{"a": nil},
			onlyIfTyped: true,
			want:        map[string]any{"a": nil},
		},
		{
			name:        "typed mapping cleaned",
			in:          map[string]any{"jsonClass": "X", "a": nil},
			onlyIfTyped: true,
			want:        map[string]any{"jsonClass": "X"},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			got := collection.RemoveNullValues(tc.in, tc.onlyIfTyped)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, collection.RemoveNullValues(got, tc.onlyIfTyped), "not idempotent")
		})
	}
}

func TestStringifyKeys(t *testing.T) {
	in := map[any]any{1: "a", "b": []any{map[any]any{2.5: true}}}

	got := collection.StringifyKeys(in)

	want := map[string]any{"1": "a", "b": []any{map[string]any{"2.5": true}}}
	assert.Equal(t, want, got)
	assert.Equal(t, got, collection.StringifyKeys(got))
}

func TestFlatten(t *testing.T) {
	in := map[string]any{
		"a": map[string]any{"b": map[string]any{"c": 1}, "d": "x"},
		"e": []any{map[string]any{"f": map[string]any{"g": true}}},
		"h": 2,
	}

	got := collection.Flatten(in)

	want := map[string]any{
		"a.b.c": 1,
		"a.d":   "x",
		"e":     []any{map[string]any{"f.g": true}},
		"h":     2,
	}
	assert.Equal(t, want, got)
	assert.Equal(t, got, collection.Flatten(got), "flattening a flat mapping must be a no-op")
}

func TestRoundFloats(t *testing.T) {
	in := map[string]any{"a": 1.23456, "b": []any{float32(2.5), 3.14159}, "c": "s"}

	assert.Equal(t, map[string]any{"a": 1.23, "b": []any{2.5, 3.14}, "c": "s"}, collection.RoundFloats(in, 2))
	assert.Equal(t, in, collection.RoundFloats(in, collection.NoRounding))
}

func TestTuplesToSequences(t *testing.T) {
	in := map[string]any{
		"arr":   [2]int{1, 2},
		"slice": []string{"a"},
		"map":   map[string]int{"x": 1},
		"bytes": []byte("raw"),
	}

	got := collection.TuplesToSequences(in)

	assert.Equal(t, map[string]any{
		"arr":   []any{1, 2},
		"slice": []any{"a"},
		"map":   map[string]any{"x": 1},
		"bytes": []byte("raw"),
	}, got)
}

func TestCanonicalNumbers(t *testing.T) {
	in := []any{1, int32(2), uint8(3), float32(0.5), json.Number("7"), json.Number("7.5"), "s"}

	got := collection.CanonicalNumbers(in)

	assert.Equal(t, []any{int64(1), int64(2), int64(3), 0.5, int64(7), 7.5, "s"}, got)
}

func TestDeleteKeyRecursively(t *testing.T) {
	in := map[string]any{"_id": "1", "a": []any{map[string]any{"_id": "2", "b": 1}}}

	got := collection.DeleteKeyRecursively(in, "_id")

	require.Equal(t, map[string]any{"a": []any{map[string]any{"b": 1}}}, got)
	assert.Contains(t, in, "_id", "input must not be mutated")
}

func TestBuildPathTree(t *testing.T) {
	type leaf struct {
		path  string
		value int
	}
	leaves := []leaf{
		{"/a/b", 1},
		{"a/c/", 2},
		{"", 3},
		{"a/b", 4},
		{"d", 5},
	}

	got := collection.BuildPathTree(leaves, func(l leaf) string { return l.path })

	assert.Equal(t, map[string]any{
		"a": map[string]any{"b": leaf{"a/b", 4}, "c": leaf{"a/c/", 2}},
		"d": leaf{"d", 5},
	}, got)
}
