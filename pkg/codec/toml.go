package codec

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
)

var errTOMLTopLevel = errors.New("toml: top-level value must be a mapping")

type tomlCodec struct{}

type tomlEncoder struct {
	w    io.Writer
	opts *options
}

func (tomlCodec) NewEncoder(w io.Writer, opts *options) Encoder {
	return &tomlEncoder{w: w, opts: opts}
}

// Encode writes strings containing line breaks as multi-line basic strings.
func (e *tomlEncoder) Encode(v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("%w, got %T", errTOMLTopLevel, v)
	}
	enc := toml.NewEncoder(e.w)
	enc.Indent = e.opts.indent
	return enc.Encode(preferMultiline(m))
}

func preferMultiline(v any) any {
	switch x := v.(type) {
	case string:
		if strings.ContainsAny(x, "\n") {
			return multilineString(x)
		}
		return x
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = preferMultiline(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = preferMultiline(val)
		}
		return out
	default:
		return v
	}
}

type multilineString string

// MarshalTOML writes s as a multi-line basic string. The newline right
// after the opening delimiter is dropped by decoders.
func (s multilineString) MarshalTOML() ([]byte, error) {
	var b strings.Builder
	b.WriteString("\"\"\"\n")
	for _, r := range string(s) {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r == '\\':
			b.WriteString(`\\`)
		case r == '"':
			b.WriteString(`\"`)
		case r == '\r':
			b.WriteString(`\r`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\u%04X`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteString(`"""`)
	return []byte(b.String()), nil
}

type tomlDecoder struct {
	r io.Reader
}

func (tomlCodec) NewDecoder(r io.Reader) Decoder {
	return &tomlDecoder{r: r}
}

func (d *tomlDecoder) Decode() (any, error) {
	var m map[string]any
	if _, err := toml.NewDecoder(d.r).Decode(&m); err != nil {
		return nil, err
	}
	return normalize(m), nil
}
