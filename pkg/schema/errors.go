package schema

import "fmt"

// SchemaError reports a fragment that does not compile. It is a programming
// error in the type that declared the fragment.
type SchemaError struct {
	Schema Fragment
	Err    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid schema: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ValidationError reports an instance that violates its schema or a business
// rule checked alongside the schema.
type ValidationError struct {
	// Path is a JSON Pointer to the offending value; empty for the root.
	Path string
	// SchemaPath is the keyword location that failed, when the failure came
	// from schema validation.
	SchemaPath string
	Message    string
	// Instance is the value found at Path.
	Instance any
	Cause    error
}

// NewValidationError reports a rule violation that is not expressed in a schema.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.SchemaPath == "" && e.Path == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed at %q (schema %s): %s", e.Path, e.SchemaPath, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}
