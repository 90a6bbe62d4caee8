package models

import (
	"github.com/sanskrit-coders/docmodel/pkg/schema"
)

const (
	TagScriptRendering = "ScriptRendering"
	TagText            = "Text"
	TagNamedEntity     = "NamedEntity"
)

// ScriptRendering is a text written in one script.
type ScriptRendering struct {
	Base
	Text           string
	EncodingScheme string
}

var scriptRenderingSchema = SchemaFor(TagScriptRendering, schema.Fragment{
	"type": "object",
	"properties": map[string]any{
		"text":            map[string]any{"type": "string"},
		"encoding_scheme": map[string]any{"type": "string"},
	},
	"required": []any{"text"},
})

func NewScriptRendering(text, encodingScheme string) *ScriptRendering {
	return &ScriptRendering{Text: text, EncodingScheme: encodingScheme}
}

func (*ScriptRendering) TypeTag() string { return TagScriptRendering }

func (*ScriptRendering) Schema() schema.Fragment { return scriptRenderingSchema }

func (r *ScriptRendering) MarshalFields(f Fields) {
	f["text"] = r.Text
	f.PutString("encoding_scheme", r.EncodingScheme)
}

func (r *ScriptRendering) UnmarshalFields(f Fields) (err error) {
	if r.Text, err = Take[string](f, "text"); err != nil {
		return err
	}
	r.EncodingScheme, err = Take[string](f, "encoding_scheme")
	return err
}

// Text is one piece of text in one or more scripts.
type Text struct {
	Base
	ScriptRenderings []*ScriptRendering
	LanguageCode     string
	// SearchStrings should match this text, for use with a text index.
	SearchStrings []string
}

var textSchema = SchemaFor(TagText, schema.Fragment{
	"type": "object",
	"properties": map[string]any{
		"script_renderings": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    scriptRenderingSchema,
		},
		"language_code": map[string]any{"type": "string"},
		"search_strings": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Strings which should match this text, copied or tokenized from the renderings.",
		},
	},
})

func NewText(languageCode string, renderings ...*ScriptRendering) *Text {
	return &Text{ScriptRenderings: renderings, LanguageCode: languageCode}
}

// TextFromString returns a text with a single rendering.
func TextFromString(text, languageCode, encodingScheme string) *Text {
	return NewText(languageCode, NewScriptRendering(text, encodingScheme))
}

func (*Text) TypeTag() string { return TagText }

func (*Text) Schema() schema.Fragment { return textSchema }

func (t *Text) MarshalFields(f Fields) {
	PutDocuments(f, "script_renderings", t.ScriptRenderings)
	f.PutString("language_code", t.LanguageCode)
	if t.SearchStrings != nil {
		f["search_strings"] = t.SearchStrings
	}
}

func (t *Text) UnmarshalFields(f Fields) (err error) {
	if t.ScriptRenderings, err = TakeDocuments[*ScriptRendering](f, "script_renderings"); err != nil {
		return err
	}
	if t.LanguageCode, err = Take[string](f, "language_code"); err != nil {
		return err
	}
	t.SearchStrings, err = TakeStrings(f, "search_strings")
	return err
}

// NamedEntity groups the spellings of one name, which differ across
// languages and conventions.
type NamedEntity struct {
	Base
	Names []*Text
}

var namedEntitySchema = SchemaFor(TagNamedEntity, schema.Fragment{
	"type": "object",
	"properties": map[string]any{
		"names": map[string]any{
			"type":     "array",
			"items":    textSchema,
			"minItems": 1,
		},
	},
})

func NewNamedEntity(names ...*Text) *NamedEntity {
	return &NamedEntity{Names: names}
}

// NamedEntityFromString returns an entity with a single spelling.
func NamedEntityFromString(name, languageCode, encodingScheme string) *NamedEntity {
	return NewNamedEntity(TextFromString(name, languageCode, encodingScheme))
}

func (*NamedEntity) TypeTag() string { return TagNamedEntity }

func (*NamedEntity) Schema() schema.Fragment { return namedEntitySchema }

func (n *NamedEntity) MarshalFields(f Fields) {
	PutDocuments(f, "names", n.Names)
}

func (n *NamedEntity) UnmarshalFields(f Fields) (err error) {
	n.Names, err = TakeDocuments[*Text](f, "names")
	return err
}
