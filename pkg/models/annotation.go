package models

import (
	"context"

	"github.com/sanskrit-coders/docmodel/pkg/schema"
	"github.com/sanskrit-coders/docmodel/pkg/store"
	"github.com/sanskrit-coders/docmodel/pkg/user"
)

const (
	TagAnnotation     = "Annotation"
	TagTextAnnotation = "TextAnnotation"
)

// Annotation is a labeled remark on any stored document.
type Annotation struct {
	Annotated
	Label string
}

var annotationSchema = AnnotatedSchemaFor(TagAnnotation, schema.Fragment{
	"properties": map[string]any{
		"label": map[string]any{"type": "string"},
	},
})

// NewAnnotation returns a system inferred annotation of targets.
func NewAnnotation(label string, targets ...*Target) *Annotation {
	return &Annotation{
		Annotated: Annotated{Source: NewDataSource(), Targets: targets},
		Label:     label,
	}
}

func (*Annotation) TypeTag() string { return TagAnnotation }

func (*Annotation) Schema() schema.Fragment { return annotationSchema }

func (*Annotation) AllowedTargetTypes() []string {
	return []string{TagObject, TagText, TagNamedEntity, TagAnnotation, TagTextAnnotation}
}

func (a *Annotation) MarshalFields(f Fields) {
	a.MarshalAnnotated(f)
	f.PutString("label", a.Label)
}

func (a *Annotation) UnmarshalFields(f Fields) (err error) {
	if err = a.UnmarshalAnnotated(f); err != nil {
		return err
	}
	a.Label, err = Take[string](f, "label")
	return err
}

func (a *Annotation) Rules() []Rule {
	return AnnotatedRules(a)
}

func (a *Annotation) ValidateDeletion(ctx context.Context, s store.Store, actor user.User) error {
	return ValidateAnnotatedDeletion(ctx, a, s, actor)
}

// TextAnnotation attaches a text to an annotation, such as a comment on a
// comment.
type TextAnnotation struct {
	Annotated
	Content *Text
}

var textAnnotationSchema = AnnotatedSchemaFor(TagTextAnnotation, schema.Fragment{
	"properties": map[string]any{
		"content": textSchema,
	},
	"required": []any{"content"},
})

func NewTextAnnotation(content *Text, targets ...*Target) *TextAnnotation {
	return &TextAnnotation{
		Annotated: Annotated{Source: NewDataSource(), Targets: targets},
		Content:   content,
	}
}

func (*TextAnnotation) TypeTag() string { return TagTextAnnotation }

func (*TextAnnotation) Schema() schema.Fragment { return textAnnotationSchema }

func (*TextAnnotation) AllowedTargetTypes() []string {
	return []string{TagAnnotation, TagTextAnnotation}
}

func (t *TextAnnotation) MarshalFields(f Fields) {
	t.MarshalAnnotated(f)
	if t.Content != nil {
		f["content"] = t.Content
	}
}

func (t *TextAnnotation) UnmarshalFields(f Fields) (err error) {
	if err = t.UnmarshalAnnotated(f); err != nil {
		return err
	}
	t.Content, err = Take[*Text](f, "content")
	return err
}

func (t *TextAnnotation) Rules() []Rule {
	return AnnotatedRules(t)
}

func (t *TextAnnotation) ValidateDeletion(ctx context.Context, s store.Store, actor user.User) error {
	return ValidateAnnotatedDeletion(ctx, t, s, actor)
}
