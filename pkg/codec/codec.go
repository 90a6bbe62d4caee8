// Package codec reads and writes normalized value trees in the supported wire
// formats.
//
// Decoding always yields normalized values: map[string]any with string keys,
// []any, int64, float64, string, bool and nil, plus whatever leaf types a
// format has natively (time.Time for TOML and CBOR dates, []byte for CBOR
// byte strings).
package codec

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sanskrit-coders/docmodel/pkg/collection"
	"github.com/sanskrit-coders/docmodel/pkg/constants"
)

type Format string

const (
	JSON Format = "json"
	TOML Format = "toml"
	YAML Format = "yaml"
	CBOR Format = "cbor"
)

type Encoder interface {
	Encode(v any) error
}

type Decoder interface {
	Decode() (any, error)
}

type codec interface {
	NewEncoder(w io.Writer, opts *options) Encoder
	NewDecoder(r io.Reader) Decoder
}

var (
	codecs = map[Format]codec{
		JSON: jsonCodec{},
		TOML: tomlCodec{},
		YAML: yamlCodec{},
		CBOR: cborCodec{},
	}
	suffixes = map[string]Format{
		".json": JSON,
		".toml": TOML,
		".yaml": YAML,
		".yml":  YAML,
		".cbor": CBOR,
	}
)

// FormatOf picks the format from the file name. When several known suffixes
// match, the longest one wins.
func FormatOf(name string) (Format, error) {
	base := strings.ToLower(filepath.Base(name))
	best := ""
	for suffix := range suffixes {
		if strings.HasSuffix(base, suffix) && len(suffix) > len(best) {
			best = suffix
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: %s", constants.ErrUnknownFormat, name)
	}
	return suffixes[best], nil
}

// ParseFormat accepts a format name such as "json" or a suffix such as ".yml".
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(name)
	if f, ok := suffixes["."+strings.TrimPrefix(name, ".")]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %s", constants.ErrUnknownFormat, name)
}

// Formats lists the supported formats in sorted order.
func Formats() []Format {
	out := make([]Format, 0, len(codecs))
	for f := range codecs {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type options struct {
	indent   string
	sortKeys bool
}

type Option func(*options)

// WithIndent sets the indentation of text formats; "" writes compact JSON.
func WithIndent(indent string) Option {
	return func(o *options) {
		o.indent = indent
	}
}

// WithSortKeys controls whether JSON mapping keys are written in sorted order.
func WithSortKeys(sortKeys bool) Option {
	return func(o *options) {
		o.sortKeys = sortKeys
	}
}

func lookup(f Format) (codec, error) {
	c, ok := codecs[f]
	if !ok {
		return nil, fmt.Errorf("%w: %s", constants.ErrUnknownFormat, f)
	}
	return c, nil
}

// NewEncoder writes values in format f. Output defaults to two-space
// indentation with sorted keys.
func NewEncoder(w io.Writer, f Format, opts ...Option) (Encoder, error) {
	c, err := lookup(f)
	if err != nil {
		return nil, err
	}
	o := &options{indent: "  ", sortKeys: true}
	for _, opt := range opts {
		opt(o)
	}
	return c.NewEncoder(w, o), nil
}

func NewDecoder(r io.Reader, f Format) (Decoder, error) {
	c, err := lookup(f)
	if err != nil {
		return nil, err
	}
	return c.NewDecoder(r), nil
}

func Marshal(f Format, v any, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := NewEncoder(&buf, f, opts...)
	if err != nil {
		return nil, err
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Unmarshal(f Format, data []byte) (any, error) {
	dec, err := NewDecoder(bytes.NewReader(data), f)
	if err != nil {
		return nil, err
	}
	return dec.Decode()
}

// normalize turns whatever a format library produced into a normalized tree.
func normalize(v any) any {
	v = collection.TuplesToSequences(v)
	v = collection.RemoveNullKeys(v)
	v = collection.StringifyKeys(v)
	return collection.CanonicalNumbers(v)
}
