package models

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sanskrit-coders/docmodel/pkg/codec"
)

const filePermission = 0o644

// Read decodes the documents in r. A mapping yields one document and a
// sequence yields one document per element. PostLoader documents are given
// their PostLoad call.
func Read(r io.Reader, f codec.Format, opts ...Option) ([]Document, error) {
	dec, err := codec.NewDecoder(r, f)
	if err != nil {
		return nil, err
	}
	v, err := dec.Decode()
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", f, err)
	}
	docs, err := decode(v, opts)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if p, ok := doc.(PostLoader); ok {
			p.PostLoad()
		}
	}
	return docs, nil
}

func decode(v any, opts []Option) ([]Document, error) {
	switch x := v.(type) {
	case map[string]any:
		doc, err := FromMap(x, opts...)
		if err != nil {
			return nil, err
		}
		return []Document{doc}, nil
	case []any:
		list := make([]map[string]any, len(x))
		for i, elem := range x {
			m, ok := elem.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("element %d is %T, not a mapping", i, elem)
			}
			list[i] = m
		}
		return FromMaps(list, opts...)
	default:
		return nil, fmt.Errorf("top-level value is %T, not a mapping or a sequence", v)
	}
}

// ReadFile reads the documents in the file at path; the format follows
// from the file name.
func ReadFile(path string, opts ...Option) ([]Document, error) {
	f, err := codec.FormatOf(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	docs, err := Read(file, f, opts...)
	if err != nil {
		log.Error("could not read documents", "path", path, "error", err.Error())
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return docs, nil
}

// Render encodes doc in format f.
func Render(doc Document, f codec.Format, opts ...Option) ([]byte, error) {
	o := newOptions(opts)
	return codec.Marshal(f, ToMap(doc, opts...), codec.WithSortKeys(o.sortKeys))
}

// RenderAll encodes docs as one sequence. TOML cannot hold a top-level
// sequence.
func RenderAll(docs []Document, f codec.Format, opts ...Option) ([]byte, error) {
	o := newOptions(opts)
	list := make([]any, len(docs))
	for i, doc := range docs {
		list[i] = ToMap(doc, opts...)
	}
	return codec.Marshal(f, list, codec.WithSortKeys(o.sortKeys))
}

// WriteFile renders doc into the file at path, creating its directory.
func WriteFile(doc Document, path string, opts ...Option) error {
	f, err := codec.FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Render(doc, f, opts...)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", doc.TypeTag(), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, filePermission)
}

// String renders doc as indented JSON with sorted keys.
func String(doc Document) string {
	data, err := Render(doc, codec.JSON)
	if err != nil {
		return fmt.Sprintf("%%!(%s: %v)", doc.TypeTag(), err)
	}
	return string(bytes.TrimRight(data, "\n"))
}
