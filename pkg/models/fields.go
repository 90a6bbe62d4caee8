package models

import (
	"fmt"

	"github.com/sanskrit-coders/docmodel/pkg/collection"
	"github.com/sanskrit-coders/docmodel/pkg/constants"
)

// Fields maps wire field names to values while a document is being
// marshaled or unmarshaled.
type Fields map[string]any

// Put sets key to v. Typed nil pointers are stored as nil.
func (f Fields) Put(key string, v any) {
	if collection.IsNil(v) {
		f[key] = nil
		return
	}
	f[key] = v
}

// PutString sets key unless s is empty.
func (f Fields) PutString(key, s string) {
	if s != "" {
		f[key] = s
	}
}

// PutOptional sets key to *p unless p is nil.
func PutOptional[T any](f Fields, key string, p *T) {
	if p != nil {
		f[key] = *p
	}
}

// PutDocuments sets key to the documents as a sequence. A nil slice leaves
// key unset; an empty one is written as an empty sequence.
func PutDocuments[T Document](f Fields, key string, docs []T) {
	if docs == nil {
		return
	}
	f[key] = DocumentList(docs)
}

// DocumentList converts a typed slice of documents to a sequence.
func DocumentList[T Document](docs []T) []any {
	if docs == nil {
		return nil
	}
	out := make([]any, len(docs))
	for i, d := range docs {
		out[i] = d
	}
	return out
}

func fieldError(key string, got, want any) error {
	return fmt.Errorf("%w: %q is %T, want %T", constants.ErrFieldType, key, got, want)
}

// Take removes key from f and returns its value. An absent or nil value
// yields the zero T. An int64 is accepted where a float64 is wanted.
func Take[T any](f Fields, key string) (T, error) {
	var zero T
	v, ok := f[key]
	delete(f, key)
	if !ok || v == nil {
		return zero, nil
	}
	if t, ok := v.(T); ok {
		return t, nil
	}
	if n, ok := v.(int64); ok {
		if p, ok := any(&zero).(*float64); ok {
			*p = float64(n)
			return zero, nil
		}
	}
	return zero, fieldError(key, v, zero)
}

// TakeOptional is Take for fields where absence differs from the zero value.
func TakeOptional[T any](f Fields, key string) (*T, error) {
	if v, ok := f[key]; !ok || v == nil {
		delete(f, key)
		return nil, nil
	}
	t, err := Take[T](f, key)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TakeStrings removes a sequence of strings.
func TakeStrings(f Fields, key string) ([]string, error) {
	list, err := Take[[]any](f, key)
	if err != nil || list == nil {
		return nil, err
	}
	out := make([]string, len(list))
	for i, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, fieldError(fmt.Sprintf("%s/%d", key, i), v, s)
		}
		out[i] = s
	}
	return out, nil
}

// TakeDocuments removes a sequence whose elements are all of document type T.
func TakeDocuments[T Document](f Fields, key string) ([]T, error) {
	list, err := Take[[]any](f, key)
	if err != nil || list == nil {
		return nil, err
	}
	out := make([]T, len(list))
	for i, v := range list {
		d, ok := v.(T)
		if !ok {
			return nil, fieldError(fmt.Sprintf("%s/%d", key, i), v, d)
		}
		out[i] = d
	}
	return out, nil
}
