package models_test

import (
	"context"

	"github.com/sanskrit-coders/docmodel/pkg/models"
	"github.com/sanskrit-coders/docmodel/pkg/registry"
	"github.com/sanskrit-coders/docmodel/pkg/schema"
	"github.com/sanskrit-coders/docmodel/pkg/store"
	"github.com/sanskrit-coders/docmodel/pkg/user"
)

type dummyClass struct {
	models.Base
	Field1 int64
	Field2 map[string]any
}

func (*dummyClass) TypeTag() string { return "DummyClass" }

func (*dummyClass) Schema() schema.Fragment {
	return models.SchemaFor("DummyClass", schema.Fragment{
		"properties": map[string]any{
			"field1": map[string]any{"type": "integer"},
			"field2": map[string]any{"type": "object"},
		},
		"required": []any{"field1"},
	})
}

func (d *dummyClass) MarshalFields(f models.Fields) {
	f["field1"] = d.Field1
	if d.Field2 != nil {
		f["field2"] = d.Field2
	}
}

func (d *dummyClass) UnmarshalFields(f models.Fields) (err error) {
	if d.Field1, err = models.Take[int64](f, "field1"); err != nil {
		return err
	}
	d.Field2, err = models.Take[map[string]any](f, "field2")
	return err
}

type dummyClass2 struct {
	models.Base
	Field1   int64
	loadedAt int
}

func (*dummyClass2) TypeTag() string { return "DummyClass2" }

func (*dummyClass2) Schema() schema.Fragment {
	return models.SchemaFor("DummyClass2", schema.Fragment{
		"properties": map[string]any{
			"field1": map[string]any{"type": "integer"},
		},
	})
}

func (d *dummyClass2) MarshalFields(f models.Fields) {
	f["field1"] = d.Field1
}

func (d *dummyClass2) UnmarshalFields(f models.Fields) (err error) {
	d.Field1, err = models.Take[int64](f, "field1")
	return err
}

func (d *dummyClass2) PostLoad() {
	d.loadedAt++
}

// reviewNote is an annotated type only testRegistry knows.
type reviewNote struct {
	models.Annotated
	Verdict string
}

func newReviewNote(verdict string, targets ...models.Document) *reviewNote {
	return &reviewNote{
		Annotated: models.Annotated{Source: models.NewDataSource(), Targets: models.TargetsFromContainers(targets...)},
		Verdict:   verdict,
	}
}

func (*reviewNote) TypeTag() string { return "ReviewNote" }

func (*reviewNote) Schema() schema.Fragment {
	return models.AnnotatedSchemaFor("ReviewNote", schema.Fragment{
		"properties": map[string]any{
			"verdict": map[string]any{"type": "string"},
		},
	})
}

func (*reviewNote) AllowedTargetTypes() []string {
	return []string{models.TagText, "ReviewNote"}
}

func (r *reviewNote) MarshalFields(f models.Fields) {
	r.MarshalAnnotated(f)
	f["verdict"] = r.Verdict
}

func (r *reviewNote) UnmarshalFields(f models.Fields) (err error) {
	if err = r.UnmarshalAnnotated(f); err != nil {
		return err
	}
	r.Verdict, err = models.Take[string](f, "verdict")
	return err
}

func (r *reviewNote) Rules() []models.Rule {
	return models.AnnotatedRules(r)
}

func (r *reviewNote) ValidateDeletion(ctx context.Context, s store.Store, actor user.User) error {
	return models.ValidateAnnotatedDeletion(ctx, r, s, actor)
}

// testRegistry knows the package types plus the dummy ones.
func testRegistry() *registry.Registry {
	r := registry.New()
	r.Merge(registry.Default)
	r.Register(
		registry.EntryFor[dummyClass]("DummyClass"),
		registry.EntryFor[dummyClass2]("DummyClass2"),
		registry.EntryFor[reviewNote]("ReviewNote"),
	)
	return r
}
