package codec

import (
	"io"

	"gopkg.in/yaml.v3"
)

type yamlCodec struct{}

type yamlEncoder struct {
	w    io.Writer
	opts *options
}

func (yamlCodec) NewEncoder(w io.Writer, opts *options) Encoder {
	return &yamlEncoder{w: w, opts: opts}
}

// Encode writes mapping keys in sorted order regardless of WithSortKeys;
// yaml.v3 always sorts them.
func (e *yamlEncoder) Encode(v any) error {
	enc := yaml.NewEncoder(e.w)
	indent := len(e.opts.indent)
	if indent < 2 {
		indent = 2
	}
	enc.SetIndent(indent)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

type yamlDecoder struct {
	dec *yaml.Decoder
}

func (yamlCodec) NewDecoder(r io.Reader) Decoder {
	return &yamlDecoder{dec: yaml.NewDecoder(r)}
}

func (d *yamlDecoder) Decode() (any, error) {
	var v any
	if err := d.dec.Decode(&v); err != nil {
		return nil, err
	}
	return normalize(v), nil
}
