package models

import (
	"context"

	"github.com/sanskrit-coders/docmodel/pkg/collection"
	"github.com/sanskrit-coders/docmodel/pkg/logger"
	"github.com/sanskrit-coders/docmodel/pkg/registry"
	"github.com/sanskrit-coders/docmodel/pkg/schema"
	"github.com/sanskrit-coders/docmodel/pkg/store"
	"github.com/sanskrit-coders/docmodel/pkg/user"
)

// Base carries the state every document has.
type Base struct {
	// ID is the store identifier; empty until persisted.
	ID string
	// Extra holds wire fields the concrete type does not declare.
	Extra map[string]any
	// RetainNulls keeps nil-valued fields in the normalized form.
	RetainNulls bool
}

// Core gives generic code access to the embedded Base.
func (b *Base) Core() *Base {
	return b
}

type Document interface {
	Core() *Base
	// TypeTag is the name the type is registered under.
	TypeTag() string
	// Schema is the fully merged schema of the type.
	Schema() schema.Fragment
	// MarshalFields writes the declared fields into f. Values may be
	// scalars, sequences, mappings or other Documents.
	MarshalFields(f Fields)
	// UnmarshalFields takes the declared fields out of f. Nested tagged
	// mappings have already been decoded into Documents. Whatever is left
	// in f afterwards becomes Extra.
	UnmarshalFields(f Fields) error
}

// Rule is one validation step. s and actor may be nil; a nil actor is a
// trusted backend process.
type Rule func(ctx context.Context, s store.Store, actor user.User) error

// Validatable documents replace the default schema-only validation with an
// ordered list of rules. Validation stops at the first failing rule.
type Validatable interface {
	Rules() []Rule
}

// Preparer documents fill in derived fields before being validated and
// written by Persist.
type Preparer interface {
	Prepare(ctx context.Context, s store.Store, actor user.User) error
}

// DeletionValidator documents decide whether DeleteIfSafe may remove them.
type DeletionValidator interface {
	ValidateDeletion(ctx context.Context, s store.Store, actor user.User) error
}

// PostLoader documents are given a chance to backfill fields after being
// read from a file.
type PostLoader interface {
	PostLoad()
}

// Index describes an advisory store index.
type Index struct {
	Name string
	Keys map[string]int
}

// Indexer documents ask for indexes beyond the type tag index.
type Indexer interface {
	Indexes() []Index
}

type options struct {
	registry  *registry.Registry
	precision int
	sortKeys  bool
	overrides map[string]any
}

type Option func(*options)

// WithRegistry resolves type tags in r instead of registry.Default.
func WithRegistry(r *registry.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithPrecision rounds floats in the normalized form to digits places.
func WithPrecision(digits int) Option {
	return func(o *options) {
		o.precision = digits
	}
}

// WithSortKeys controls key order when rendering JSON. Keys are sorted by
// default.
func WithSortKeys(sortKeys bool) Option {
	return func(o *options) {
		o.sortKeys = sortKeys
	}
}

// WithOverrides replaces wire fields of the decoded document. The values
// are applied before the type takes its fields, so they must have wire
// shape. An "_id" override sets the identifier.
func WithOverrides(overrides map[string]any) Option {
	return func(o *options) {
		o.overrides = overrides
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		registry:  registry.Default,
		precision: collection.NoRounding,
		sortKeys:  true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type registryKey struct{}

// ContextWithRegistry makes the documents loaded under ctx while
// validating or deleting resolve their type tags in r.
func ContextWithRegistry(ctx context.Context, r *registry.Registry) context.Context {
	return context.WithValue(ctx, registryKey{}, r)
}

// withOptions carries the registry named by opts, if any, in ctx.
func withOptions(ctx context.Context, opts []Option) context.Context {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		return ctx
	}
	return ContextWithRegistry(ctx, o.registry)
}

// contextOptions puts the registry of ctx ahead of opts.
func contextOptions(ctx context.Context, opts []Option) []Option {
	r, ok := ctx.Value(registryKey{}).(*registry.Registry)
	if !ok {
		return opts
	}
	return append([]Option{WithRegistry(r)}, opts...)
}

var log logger.Logger = logger.Nop()

// SetLogger sets the logger validation failures and best-effort cleanups
// are reported to.
func SetLogger(l logger.Logger) {
	log = l
}

func frontend(s store.Store) string {
	if s == nil {
		return ""
	}
	return s.FrontendName()
}

func isAdmin(actor user.User, s store.Store) bool {
	return actor != nil && actor.IsAdmin(frontend(s))
}
