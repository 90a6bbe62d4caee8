package schema

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"
	jsonschemav6 "github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator compiles fragments on first use and caches them by content.
type Validator struct {
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

// Default is shared by every document type.
var Default = NewValidator()

func NewValidator() *Validator {
	return &Validator{compiled: map[string]*jsonschema.Schema{}}
}

// Validate checks instance against fragment. It returns a *SchemaError when
// fragment is not a valid draft 2019-09 schema and a *ValidationError when
// instance does not conform.
func (v *Validator) Validate(instance any, fragment Fragment) error {
	compiled, err := v.compile(fragment)
	if err != nil {
		return err
	}

	doc, err := jsonValue(instance)
	if err != nil {
		return fmt.Errorf("converting instance for validation: %w", err)
	}

	err = compiled.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if errors.As(err, &ve) {
		return fromLibraryError(ve, doc)
	}
	return err
}

func (v *Validator) compile(fragment Fragment) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(fragment)
	if err != nil {
		return nil, &SchemaError{Err: err}
	}
	key := string(raw)

	v.mu.Lock()
	defer v.mu.Unlock()

	if compiled, ok := v.compiled[key]; ok {
		return compiled, nil
	}

	url := fmt.Sprintf("fragment%d.json", len(v.compiled))
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2019
	if err := c.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, &SchemaError{Schema: fragment, Err: err}
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, &SchemaError{Schema: fragment, Err: err}
	}
	v.compiled[key] = compiled
	return compiled, nil
}

// jsonValue turns a normalized value into the representation the validator
// understands (json.Number for numbers, []any and map[string]any).
func jsonValue(instance any) (any, error) {
	raw, err := json.Marshal(instance)
	if err != nil {
		return nil, err
	}
	return jsonschemav6.UnmarshalJSON(bytes.NewReader(raw))
}

func fromLibraryError(ve *jsonschema.ValidationError, doc any) *ValidationError {
	best := bestMatch(ve)
	return &ValidationError{
		Path:       best.InstanceLocation,
		SchemaPath: best.KeywordLocation,
		Message:    best.Message,
		Instance:   lookup(doc, best.InstanceLocation),
		Cause:      ve,
	}
}

// bestMatch picks the leaf error whose instance location is deepest. Leaves
// carry the concrete complaint; their ancestors only say that a subschema
// failed.
func bestMatch(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return ve
	}
	var best *jsonschema.ValidationError
	for _, cause := range ve.Causes {
		candidate := bestMatch(cause)
		if best == nil || depth(candidate.InstanceLocation) > depth(best.InstanceLocation) {
			best = candidate
		}
	}
	return best
}

func depth(pointer string) int {
	if pointer == "" {
		return 0
	}
	return strings.Count(pointer, "/")
}

// lookup resolves a JSON Pointer inside doc; nil when it does not resolve.
func lookup(doc any, pointer string) any {
	if pointer == "" || pointer == "/" {
		return doc
	}
	cur := doc
	for _, token := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		token = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
		switch c := cur.(type) {
		case map[string]any:
			cur = c[token]
		case []any:
			i, err := strconv.Atoi(token)
			if err != nil || i < 0 || i >= len(c) {
				return nil
			}
			cur = c[i]
		default:
			return nil
		}
	}
	return cur
}
