package models

import (
	"context"
	"strings"

	"github.com/sanskrit-coders/docmodel/pkg/constants"
	"github.com/sanskrit-coders/docmodel/pkg/schema"
	"github.com/sanskrit-coders/docmodel/pkg/store"
	"github.com/sanskrit-coders/docmodel/pkg/user"
)

const TagDataSource = "DataSource"

// DataSource records where a document came from. Name the field holding it
// "source" so that queries stay uniform across types.
type DataSource struct {
	Base
	// SourceType is constants.SourceSystemInferred or
	// constants.SourceUserSupplied.
	SourceType string
	// SourceID identifies the particular source, typically a user id. It
	// is "id" on the wire.
	SourceID string
	// ByAdmin records whether the writer was an admin when the data was
	// created or updated.
	ByAdmin *bool
}

var dataSourceSchema = SchemaFor(TagDataSource, schema.Fragment{
	"type":        "object",
	"description": "Source of the data holding this object: the uploader of a book, the annotator of an annotation.",
	"properties": map[string]any{
		"source_type": map[string]any{
			"type":        "string",
			"enum":        []any{constants.SourceSystemInferred, constants.SourceUserSupplied},
			"description": "Whether the data comes from a machine or a human.",
			"default":     constants.SourceSystemInferred,
		},
		"id": map[string]any{
			"type":        "string",
			"description": "Identifies the particular data source.",
		},
		"by_admin": map[string]any{
			"type":        "boolean",
			"description": "Whether the creator was an admin when the data was created or updated.",
		},
	},
	"required": []any{"source_type"},
})

// NewDataSource returns a system inferred source.
func NewDataSource() *DataSource {
	return &DataSource{SourceType: constants.SourceSystemInferred}
}

func NewDataSourceFor(sourceType, id string) *DataSource {
	return &DataSource{SourceType: sourceType, SourceID: id}
}

func (*DataSource) TypeTag() string { return TagDataSource }

func (*DataSource) Schema() schema.Fragment { return dataSourceSchema }

func (d *DataSource) MarshalFields(f Fields) {
	f.PutString("source_type", d.SourceType)
	f.PutString("id", d.SourceID)
	PutOptional(f, "by_admin", d.ByAdmin)
}

func (d *DataSource) UnmarshalFields(f Fields) (err error) {
	if d.SourceType, err = Take[string](f, "source_type"); err != nil {
		return err
	}
	if d.SourceID, err = Take[string](f, "id"); err != nil {
		return err
	}
	d.ByAdmin, err = TakeOptional[bool](f, "by_admin")
	return err
}

// Setup fills in the source type and id from the acting user when they are
// unset.
func (d *DataSource) Setup(actor user.User) {
	if d.SourceType == "" {
		d.SourceType = constants.SourceSystemInferred
		if actor != nil && actor.IsHuman() {
			d.SourceType = constants.SourceUserSupplied
		}
	}
	if d.SourceID == "" {
		d.SourceID = user.FirstID(actor)
	}
}

// InferByAdmin sets ByAdmin for a user supplied source written by the user
// it names.
func (d *DataSource) InferByAdmin(s store.Store, actor user.User) {
	if d.ByAdmin != nil || d.SourceType != constants.SourceUserSupplied || actor == nil || s == nil {
		return
	}
	if d.SourceID == "" || user.Owns(actor, d.SourceID) {
		byAdmin := isAdmin(actor, s)
		d.ByAdmin = &byAdmin
	}
}

// impersonated reports a non-admin writing under an id that is not theirs.
func (d *DataSource) impersonated(s store.Store, actor user.User) bool {
	return d.SourceID != "" && actor != nil && s != nil &&
		!user.Owns(actor, d.SourceID) && !isAdmin(actor, s)
}

func (d *DataSource) Rules() []Rule {
	return []Rule{
		func(_ context.Context, s store.Store, actor user.User) error {
			if d.impersonated(s, actor) {
				return schema.NewValidationError("impersonation by %s as %s not allowed for this user", user.FirstID(actor), d.SourceID)
			}
			return nil
		},
		func(context.Context, store.Store, user.User) error {
			if strings.Contains(d.SourceType, "user") && d.SourceID == "" {
				return schema.NewValidationError("user id required for user sources")
			}
			return nil
		},
		func(_ context.Context, s store.Store, actor user.User) error {
			if d.SourceType == constants.SourceSystemInferred && actor != nil && actor.IsHuman() && !isAdmin(actor, s) {
				return schema.NewValidationError("impersonation by %s as a bot not allowed for this user", user.FirstID(actor))
			}
			return nil
		},
		SchemaRule(d),
		func(_ context.Context, s store.Store, actor user.User) error {
			if d.ByAdmin == nil || !*d.ByAdmin || actor == nil || s == nil {
				return nil
			}
			if !isAdmin(actor, s) {
				return schema.NewValidationError("impersonation by %s of %s not allowed for this user", user.FirstID(actor), d.SourceID)
			}
			if d.SourceType != constants.SourceUserSupplied {
				return schema.NewValidationError("a %s source cannot be by an admin", d.SourceType)
			}
			return nil
		},
	}
}
