package models

import (
	"context"
	"fmt"

	"github.com/sanskrit-coders/docmodel/pkg/constants"
	"github.com/sanskrit-coders/docmodel/pkg/schema"
	"github.com/sanskrit-coders/docmodel/pkg/store"
	"github.com/sanskrit-coders/docmodel/pkg/user"
)

// Annotated is embedded by documents that are stored on their own, record
// their provenance and may target other stored documents.
type Annotated struct {
	Base
	Source *DataSource
	// EditableByOthers allows wiki-style take over; nil means true.
	EditableByOthers *bool
	Targets          []*Target
}

// Annotatable is implemented by every document embedding Annotated.
type Annotatable interface {
	Document
	Annotations() *Annotated
	// AllowedTargetTypes lists the tags of the documents this type may
	// target.
	AllowedTargetTypes() []string
}

var annotatedSchema = schema.Compose(BaseSchema(), schema.Fragment{
	"type":        "object",
	"description": "A document stored on its own in a store.",
	"properties": map[string]any{
		"source": dataSourceSchema,
		"editable_by_others": map[string]any{
			"type":        "boolean",
			"description": "Whether others may take this document over for editing or deleting.",
			"default":     true,
		},
		"targets": map[string]any{
			"type":        "array",
			"items":       targetSchema,
			"description": "Edges of the directed graph of stored documents.",
		},
	},
})

// AnnotatedSchemaFor is SchemaFor on top of the Annotated fields.
func AnnotatedSchemaFor(tag string, fragments ...schema.Fragment) schema.Fragment {
	return SchemaFor(tag, append([]schema.Fragment{annotatedSchema}, fragments...)...)
}

func (a *Annotated) Annotations() *Annotated {
	return a
}

func (a *Annotated) IsEditableByOthers() bool {
	return a.EditableByOthers == nil || *a.EditableByOthers
}

// MarshalAnnotated writes the Annotated fields; embedding types call it from
// MarshalFields.
func (a *Annotated) MarshalAnnotated(f Fields) {
	if a.Source != nil {
		f["source"] = a.Source
	}
	PutOptional(f, "editable_by_others", a.EditableByOthers)
	PutDocuments(f, "targets", a.Targets)
}

// UnmarshalAnnotated takes the Annotated fields; embedding types call it
// from UnmarshalFields.
func (a *Annotated) UnmarshalAnnotated(f Fields) (err error) {
	if a.Source, err = Take[*DataSource](f, "source"); err != nil {
		return err
	}
	if a.EditableByOthers, err = TakeOptional[bool](f, "editable_by_others"); err != nil {
		return err
	}
	a.Targets, err = TakeDocuments[*Target](f, "targets")
	return err
}

// Indexes adds the target container index.
func (a *Annotated) Indexes() []Index {
	return []Index{{Name: "targets_container_id", Keys: map[string]int{"targets.container_id": 1}}}
}

// Prepare completes the source from the acting user.
func (a *Annotated) Prepare(_ context.Context, _ store.Store, actor user.User) error {
	if a.Source == nil {
		a.Source = &DataSource{}
	}
	a.Source.Setup(actor)
	return nil
}

// AnnotatedRules returns the rules of an Annotatable document: its schema,
// the types of its targets, its source and then the take over check.
func AnnotatedRules(doc Annotatable) []Rule {
	a := doc.Annotations()
	return []Rule{
		SchemaRule(doc),
		func(ctx context.Context, s store.Store, _ user.User) error {
			return CheckTargetTypes(ctx, s, a.Targets, doc.AllowedTargetTypes(), doc)
		},
		func(ctx context.Context, s store.Store, actor user.User) error {
			if a.Source == nil {
				return nil
			}
			return Validate(ctx, a.Source, s, actor)
		},
		func(ctx context.Context, s store.Store, actor user.User) error {
			return detectIllegalTakeover(ctx, doc, s, actor)
		},
	}
}

func sourceID(a *Annotated) string {
	if a.Source == nil {
		return ""
	}
	return a.Source.SourceID
}

// detectIllegalTakeover rejects a non-admin overwriting or deleting a stored
// document that someone else owns and does not let others edit.
func detectIllegalTakeover(ctx context.Context, doc Annotatable, s store.Store, actor user.User) error {
	id := doc.Core().ID
	if id == "" || s == nil {
		return nil
	}
	stored, err := FromID(ctx, id, s)
	if err != nil || stored == nil {
		return err
	}
	old, ok := stored.(Annotatable)
	if !ok || old.Annotations().IsEditableByOthers() {
		return nil
	}
	newOwner, oldOwner := sourceID(doc.Annotations()), sourceID(old.Annotations())
	if newOwner == "" || oldOwner == "" || newOwner == oldOwner {
		return nil
	}
	if actor != nil && !isAdmin(actor, s) {
		return schema.NewValidationError("%s cannot take over %s's %s %s under the authority of non-admin %s",
			newOwner, oldOwner, doc.TypeTag(), id, user.FirstID(actor))
	}
	return nil
}

// ValidateDeletionIgnoringTargeters checks that doc is stored and that the
// acting user may delete it, without looking for documents targeting it.
// The source id is set to the acting user's first id.
func ValidateDeletionIgnoringTargeters(ctx context.Context, doc Annotatable, s store.Store, actor user.User) error {
	if doc.Core().ID == "" {
		return fmt.Errorf("deleting %s: %w", doc.TypeTag(), constants.ErrMissingIdentifier)
	}
	a := doc.Annotations()
	if actor != nil {
		if a.Source == nil {
			a.Source = &DataSource{}
		}
		a.Source.SourceID = user.FirstID(actor)
	}
	return detectIllegalTakeover(ctx, doc, s, actor)
}

// ValidateAnnotatedDeletion additionally refuses while any stored document
// targets doc.
func ValidateAnnotatedDeletion(ctx context.Context, doc Annotatable, s store.Store, actor user.User) error {
	if err := ValidateDeletionIgnoringTargeters(ctx, doc, s, actor); err != nil {
		return err
	}
	targeting, err := TargetingEntities(ctx, doc, s, "")
	if err != nil {
		return err
	}
	if len(targeting) > 0 {
		return schema.NewValidationError("unsafe deletion of %s: %d entities refer to it, delete them first",
			doc.Core().ID, len(targeting))
	}
	return nil
}

// TargetingEntities returns the stored documents with a target naming doc.
// A non-empty tag keeps only documents of that type.
func TargetingEntities(ctx context.Context, doc Document, s store.Store, tag string, opts ...Option) ([]Document, error) {
	filter := map[string]any{
		"targets": map[string]any{
			constants.ElemMatchOperator: map[string]any{"container_id": doc.Core().ID},
		},
	}
	opts = contextOptions(ctx, opts)
	var out []Document
	for row, err := range s.Find(ctx, filter) {
		if err != nil {
			return nil, err
		}
		d, err := FromMap(row, opts...)
		if err != nil {
			return nil, err
		}
		if tag != "" && d.TypeTag() != tag {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}
