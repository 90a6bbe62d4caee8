package constants

import "errors"

// Errors
var (
	ErrMissingTypeTag    = errors.New("wire mapping has no " + TypeField + " field")
	ErrUnknownType       = errors.New("type tag is not registered")
	ErrMissingIdentifier = errors.New(IDField + " not present")
	ErrMissingContent    = errors.New("node has no content")
	ErrUnknownFormat     = errors.New("unknown storage format")
	ErrNotADocument      = errors.New("registered type does not implement Document")
	ErrFieldType         = errors.New("field has an unexpected type")
)
