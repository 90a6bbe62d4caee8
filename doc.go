// Package docmodel stores polymorphic JSON documents: typed Go values that
// travel as maps tagged with their type name, validated against composed
// JSON Schemas before they are written.
//
// # Documents
//
// The document types live in [github.com/sanskrit-coders/docmodel/pkg/models].
// Every type registers a tag in [github.com/sanskrit-coders/docmodel/pkg/registry]
// so that a map read from JSON, TOML, YAML or CBOR decodes back into the
// right type, nested documents included.
//
// # Stores
//
// [Open] opens the backend named by a [github.com/sanskrit-coders/docmodel/pkg/config.Config]:
// an in-memory store for tests and tools, or a PostgreSQL table holding one
// jsonb row per document. Both implement
// [github.com/sanskrit-coders/docmodel/pkg/store.Store].
//
// # Trees
//
// [github.com/sanskrit-coders/docmodel/pkg/models.Node] persists and deletes
// whole trees of annotations, checking that each child may target its
// parent and that non-admins do not delete other people's work.
//
// The cmd/docmodel program converts, validates and diffs document files and
// talks to the configured store.
package docmodel
