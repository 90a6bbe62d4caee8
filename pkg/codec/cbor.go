package codec

import (
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var (
	cborEncMode = mustEncMode()
	cborDecMode = mustDecMode()
)

func mustEncMode() cbor.EncMode {
	em, err := cbor.EncOptions{
		Sort:    cbor.SortCanonical,
		Time:    cbor.TimeRFC3339,
		TimeTag: cbor.EncTagRequired,
	}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

func mustDecMode() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		TimeTagToAny:   cbor.TimeTagToTime,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}

type cborCodec struct{}

type cborEncoder struct {
	enc *cbor.Encoder
}

func (cborCodec) NewEncoder(w io.Writer, _ *options) Encoder {
	return &cborEncoder{enc: cborEncMode.NewEncoder(w)}
}

func (e *cborEncoder) Encode(v any) error {
	return e.enc.Encode(v)
}

type cborDecoder struct {
	dec *cbor.Decoder
}

func (cborCodec) NewDecoder(r io.Reader) Decoder {
	return &cborDecoder{dec: cborDecMode.NewDecoder(r)}
}

func (d *cborDecoder) Decode() (any, error) {
	var v any
	if err := d.dec.Decode(&v); err != nil {
		return nil, err
	}
	return normalize(v), nil
}
