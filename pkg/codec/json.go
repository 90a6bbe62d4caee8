package codec

import (
	"io"

	"github.com/goccy/go-json"
)

type jsonCodec struct{}

type jsonEncoder struct {
	w    io.Writer
	opts *options
}

func (jsonCodec) NewEncoder(w io.Writer, opts *options) Encoder {
	return &jsonEncoder{w: w, opts: opts}
}

func (e *jsonEncoder) Encode(v any) error {
	enc := json.NewEncoder(e.w)
	enc.SetEscapeHTML(false)
	if e.opts.indent != "" {
		enc.SetIndent("", e.opts.indent)
	}
	encOpts := []json.EncodeOptionFunc{json.DisableHTMLEscape()}
	if !e.opts.sortKeys {
		encOpts = append(encOpts, json.UnorderedMap())
	}
	return enc.EncodeWithOption(v, encOpts...)
}

type jsonDecoder struct {
	dec *json.Decoder
}

func (jsonCodec) NewDecoder(r io.Reader) Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &jsonDecoder{dec: dec}
}

func (d *jsonDecoder) Decode() (any, error) {
	var v any
	if err := d.dec.Decode(&v); err != nil {
		return nil, err
	}
	return normalize(v), nil
}
