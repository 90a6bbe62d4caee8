package models

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/sanskrit-coders/docmodel/pkg/constants"
	"github.com/sanskrit-coders/docmodel/pkg/registry"
	"github.com/sanskrit-coders/docmodel/pkg/schema"
	"github.com/sanskrit-coders/docmodel/pkg/store"
	"github.com/sanskrit-coders/docmodel/pkg/user"
)

// BaseSchema is the fragment every document schema extends.
func BaseSchema() schema.Fragment {
	return schema.Fragment{
		"type": "object",
		"properties": map[string]any{
			constants.TypeField: map[string]any{
				"type":        "string",
				"description": "The registered type of this mapping; nested documents carry it too.",
			},
		},
		"required": []any{constants.TypeField},
	}
}

// SchemaFor merges BaseSchema, a type tag restriction and fragments, in
// that order.
func SchemaFor(tag string, fragments ...schema.Fragment) schema.Fragment {
	tagged := schema.Fragment{
		"properties": map[string]any{
			constants.TypeField: map[string]any{"enum": []any{tag}},
		},
	}
	return schema.Compose(append([]schema.Fragment{BaseSchema(), tagged}, fragments...)...)
}

// Schemas returns the schema of every type registered in r, keyed by tag.
func Schemas(r *registry.Registry) map[string]schema.Fragment {
	out := map[string]schema.Fragment{}
	for _, name := range r.Names() {
		entry, err := r.Resolve(name)
		if err != nil {
			continue
		}
		if doc, ok := entry.New().(Document); ok {
			out[name] = doc.Schema()
		}
	}
	return out
}

// ValidateSchema checks the normalized form of doc, without its identifier,
// against doc's schema, then checks every nested document against its own.
func ValidateSchema(doc Document) error {
	m := ToMap(doc)
	delete(m, constants.IDField)
	if err := schema.Default.Validate(m, doc.Schema()); err != nil {
		logValidationFailure(doc, err)
		return err
	}

	f := Fields{}
	for k, v := range doc.Core().Extra {
		f[k] = v
	}
	doc.MarshalFields(f)
	for _, v := range f {
		if err := validateNested(v); err != nil {
			return err
		}
	}
	return nil
}

func validateNested(v any) error {
	switch x := v.(type) {
	case nil:
		return nil
	case Document:
		if reflect.ValueOf(x).IsNil() {
			return nil
		}
		return ValidateSchema(x)
	case map[string]any:
		for _, val := range x {
			if err := validateNested(val); err != nil {
				return err
			}
		}
		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := range rv.Len() {
			if err := validateNested(rv.Index(i).Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}

func logValidationFailure(doc Document, err error) {
	var ve *schema.ValidationError
	var se *schema.SchemaError
	switch {
	case errors.As(err, &ve):
		log.Error("validation failed",
			"type", doc.TypeTag(), "id", doc.Core().ID,
			"path", ve.Path, "schema_path", ve.SchemaPath, "message", ve.Message)
	case errors.As(err, &se):
		log.Error("invalid schema", "type", doc.TypeTag(), "error", se.Err.Error())
	default:
		log.Error("validation failed", "type", doc.TypeTag(), "error", err.Error())
	}
}

// Validate runs the rules of a Validatable document in order, or only
// ValidateSchema for any other document.
func Validate(ctx context.Context, doc Document, s store.Store, actor user.User) error {
	v, ok := doc.(Validatable)
	if !ok {
		return ValidateSchema(doc)
	}
	for _, rule := range v.Rules() {
		if err := rule(ctx, s, actor); err != nil {
			var ve *schema.ValidationError
			if errors.As(err, &ve) && ve.SchemaPath == "" {
				log.Error("rule failed", "type", doc.TypeTag(), "id", doc.Core().ID, "message", ve.Message)
			}
			return fmt.Errorf("validating %s: %w", doc.TypeTag(), err)
		}
	}
	return nil
}

// SchemaRule adapts ValidateSchema to a Rule.
func SchemaRule(doc Document) Rule {
	return func(context.Context, store.Store, user.User) error {
		return ValidateSchema(doc)
	}
}
