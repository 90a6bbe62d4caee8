package models

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/sanskrit-coders/docmodel/pkg/collection"
	"github.com/sanskrit-coders/docmodel/pkg/constants"
)

// ToMap returns the normalized form of doc: a map[string]any carrying the
// type tag, the identifier when set, and every field with nested documents
// converted the same way.
func ToMap(doc Document, opts ...Option) map[string]any {
	o := newOptions(opts)
	m := toMap(doc)
	v := collection.RemoveNullKeys(m)
	v = collection.StringifyKeys(v)
	v = collection.CanonicalNumbers(v)
	v = collection.RoundFloats(v, o.precision)
	return v.(map[string]any)
}

func toMap(doc Document) map[string]any {
	core := doc.Core()
	f := Fields{}
	for k, v := range core.Extra {
		f[k] = v
	}
	doc.MarshalFields(f)

	m := make(map[string]any, len(f)+2)
	for k, v := range f {
		if collection.IsNil(v) && !core.RetainNulls {
			continue
		}
		m[k] = toValue(v, core.RetainNulls)
	}
	m[constants.TypeField] = doc.TypeTag()
	if core.ID != "" {
		m[constants.IDField] = core.ID
	}
	return m
}

// toValue converts documents to maps and every other container kind to
// map[string]any, map[any]any or []any.
func toValue(v any, retainNulls bool) any {
	switch x := v.(type) {
	case nil, []byte, string, bool:
		return v
	case Document:
		if collection.IsNil(x) {
			return nil
		}
		return toMap(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			if collection.IsNil(val) && !retainNulls {
				continue
			}
			out[k] = toValue(val, retainNulls)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = toValue(val, retainNulls)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = toValue(rv.Index(i).Interface(), retainNulls)
		}
		return out
	case reflect.Map:
		generic := make(map[any]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			generic[iter.Key().Interface()] = iter.Value().Interface()
		}
		stringKeyed := collection.StringifyKeys(collection.RemoveNullKeys(generic)).(map[string]any)
		return toValue(stringKeyed, retainNulls)
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return toValue(rv.Elem().Interface(), retainNulls)
	default:
		return v
	}
}

// FromMap builds the document m is the normalized form of. Nested mappings
// carrying a type tag become documents too.
func FromMap(m map[string]any, opts ...Option) (Document, error) {
	return fromMap(m, newOptions(opts), true)
}

func fromMap(m map[string]any, o *options, top bool) (Document, error) {
	tag, ok := m[constants.TypeField].(string)
	if !ok || tag == "" {
		return nil, fmt.Errorf("%w: keys %v", constants.ErrMissingTypeTag, keysOf(m))
	}

	rawID := m[constants.IDField]
	fields := make(Fields, len(m))
	for k, v := range m {
		if k == constants.TypeField || k == constants.IDField {
			continue
		}
		fields[k] = v
	}
	if top {
		for k, v := range o.overrides {
			if k == constants.IDField {
				rawID = v
				continue
			}
			fields[k] = v
		}
	}
	for k, v := range fields {
		resolved, err := resolveValue(v, o)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", tag, k, err)
		}
		fields[k] = resolved
	}

	entry, err := o.registry.Resolve(tag)
	if err != nil {
		return nil, err
	}
	doc, ok := entry.New().(Document)
	if !ok {
		return nil, fmt.Errorf("%w: %s", constants.ErrNotADocument, tag)
	}
	if err := doc.UnmarshalFields(fields); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", tag, err)
	}

	core := doc.Core()
	if len(fields) > 0 {
		core.Extra = map[string]any(fields)
	}
	if rawID != nil && rawID != "" {
		core.ID = fmt.Sprint(rawID)
	}
	return doc, nil
}

func resolveValue(v any, o *options) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		if _, tagged := x[constants.TypeField]; tagged {
			return fromMap(x, o, false)
		}
		out := make(map[string]any, len(x))
		for k, val := range x {
			resolved, err := resolveValue(val, o)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			resolved, err := resolveValue(val, o)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return v, nil
	}
}

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromMaps decodes every element of list.
func FromMaps(list []map[string]any, opts ...Option) ([]Document, error) {
	o := newOptions(opts)
	docs := make([]Document, 0, len(list))
	for i, m := range list {
		doc, err := fromMap(m, o, true)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Clone deep-copies doc through its normalized form.
func Clone[T Document](doc T, opts ...Option) (T, error) {
	var zero T
	copied, err := FromMap(ToMap(doc), opts...)
	if err != nil {
		return zero, err
	}
	out, ok := copied.(T)
	if !ok {
		return zero, fmt.Errorf("clone of %s decoded as %T", doc.TypeTag(), copied)
	}
	return out, nil
}

// EqualsIgnoringID reports whether a and b are the same document or have
// the same normalized form once identifiers are removed.
func EqualsIgnoringID(a, b Document) bool {
	if collection.IsNil(a) || collection.IsNil(b) {
		return collection.IsNil(a) && collection.IsNil(b)
	}
	if a.Core() == b.Core() {
		return true
	}
	am, bm := ToMap(a), ToMap(b)
	delete(am, constants.IDField)
	delete(bm, constants.IDField)
	return collection.Equal(am, bm)
}

// MatchFilter reports whether the normalized form of doc satisfies filter.
// See collection.MatchFilter for the filter language.
func MatchFilter(doc Document, filter map[string]any) bool {
	return collection.MatchFilter(ToMap(doc), filter)
}
