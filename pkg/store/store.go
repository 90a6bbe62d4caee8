// Package store defines the document store contract the model persists
// through.
//
// Documents cross this boundary in normalized form: map[string]any trees
// whose "_id" key holds the identifier. Implementations live in sub-packages:
//
//   - [github.com/sanskrit-coders/docmodel/pkg/store/memory.Store] keeps rows in a map
//   - [github.com/sanskrit-coders/docmodel/pkg/store/postgres.Store] keeps rows in a jsonb column through GORM
//
// No optimistic concurrency token is modeled. Two callers updating the same
// identifier concurrently race and the last write wins; serializing writes per
// identifier is the caller's job.
package store

import (
	"context"
	"iter"
)

type Store interface {
	// FindByID returns nil without error when no row has the identifier.
	FindByID(ctx context.Context, id string) (map[string]any, error)
	// Find lazily yields every row matching filter. Each call to the
	// returned sequence restarts the scan.
	Find(ctx context.Context, filter map[string]any) iter.Seq2[map[string]any, error]
	// Update inserts or replaces doc, assigning an identifier when doc has
	// none, and returns the stored row.
	Update(ctx context.Context, doc map[string]any) (map[string]any, error)
	Delete(ctx context.Context, id string) error
	// AddIndex is advisory. keys maps dotted paths to a sort direction.
	AddIndex(ctx context.Context, keys map[string]int, name string) error

	// FrontendName identifies the service users are authorized against.
	FrontendName() string
	// ExternalFileStore is the directory holding per-document auxiliary
	// files, one sub-directory per identifier. Empty when unsupported.
	ExternalFileStore() string
}

// FindOne returns the first row matching filter, or nil.
func FindOne(ctx context.Context, s Store, filter map[string]any) (map[string]any, error) {
	for row, err := range s.Find(ctx, filter) {
		if err != nil {
			return nil, err
		}
		return row, nil
	}
	return nil, nil
}

// Collect drains a Find sequence.
func Collect(seq iter.Seq2[map[string]any, error]) ([]map[string]any, error) {
	var rows []map[string]any
	for row, err := range seq {
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
