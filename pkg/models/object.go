package models

import "github.com/sanskrit-coders/docmodel/pkg/schema"

const TagObject = "JsonObject"

// Object declares no fields; everything it carries lives in Extra.
type Object struct {
	Base
}

var objectSchema = SchemaFor(TagObject)

// NewObject returns an object holding fields.
func NewObject(fields map[string]any) *Object {
	return &Object{Base: Base{Extra: fields}}
}

func (*Object) TypeTag() string { return TagObject }

func (*Object) Schema() schema.Fragment { return objectSchema }

func (*Object) MarshalFields(Fields) {}

func (*Object) UnmarshalFields(Fields) error { return nil }
