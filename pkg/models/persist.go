package models

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sanskrit-coders/docmodel/pkg/constants"
	"github.com/sanskrit-coders/docmodel/pkg/store"
	"github.com/sanskrit-coders/docmodel/pkg/user"
)

// Persist prepares and validates doc, writes it to s and returns the
// document decoded from the stored row, which carries the identifier the
// store assigned. doc itself is left without it.
func Persist(ctx context.Context, doc Document, s store.Store, actor user.User, opts ...Option) (Document, error) {
	ctx = withOptions(ctx, opts)
	if p, ok := doc.(Preparer); ok {
		if err := p.Prepare(ctx, s, actor); err != nil {
			return nil, fmt.Errorf("preparing %s: %w", doc.TypeTag(), err)
		}
	}
	if err := Validate(ctx, doc, s, actor); err != nil {
		return nil, err
	}
	row, err := s.Update(ctx, ToMap(doc))
	if err != nil {
		return nil, fmt.Errorf("storing %s: %w", doc.TypeTag(), err)
	}
	return FromMap(row, opts...)
}

// FromID loads the document stored under id; nil when there is none.
func FromID(ctx context.Context, id string, s store.Store, opts ...Option) (Document, error) {
	row, err := s.FindByID(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	return FromMap(row, contextOptions(ctx, opts)...)
}

// DeleteIfSafe removes doc from s once its DeletionValidator, if any,
// allows it. Files kept for doc under the store's external file store are
// removed too; failing to remove them is only logged.
//
// Documents targeting doc are not touched; see Node.DeleteRecursively.
func DeleteIfSafe(ctx context.Context, doc Document, s store.Store, actor user.User, opts ...Option) error {
	ctx = withOptions(ctx, opts)
	if v, ok := doc.(DeletionValidator); ok {
		if err := v.ValidateDeletion(ctx, s, actor); err != nil {
			return err
		}
	} else if doc.Core().ID == "" {
		return fmt.Errorf("deleting %s: %w", doc.TypeTag(), constants.ErrMissingIdentifier)
	}

	id := doc.Core().ID
	if err := s.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting %s %s: %w", doc.TypeTag(), id, err)
	}
	if dir := ExternalStoragePath(doc, s); dir != "" {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn("could not remove external files", "id", id, "dir", dir, "error", err.Error())
		}
	}
	return nil
}

// AddIndexes asks s for the indexes documents like doc are queried by.
func AddIndexes(ctx context.Context, s store.Store, doc Document) error {
	indexes := []Index{{Name: constants.TypeField, Keys: map[string]int{constants.TypeField: 1}}}
	if ix, ok := doc.(Indexer); ok {
		indexes = append(indexes, ix.Indexes()...)
	}
	for _, index := range indexes {
		if err := s.AddIndex(ctx, index.Keys, index.Name); err != nil {
			return err
		}
	}
	return nil
}

// ExternalStoragePath is the directory holding files that belong to doc.
// It is empty when s keeps no files or doc is not stored.
func ExternalStoragePath(doc Document, s store.Store) string {
	root := s.ExternalFileStore()
	id := doc.Core().ID
	if root == "" || id == "" {
		return ""
	}
	return filepath.Join(root, id)
}

// ListFiles returns the base names of doc's files matching pattern, "*"
// when empty.
func ListFiles(doc Document, s store.Store, pattern string) ([]string, error) {
	dir := ExternalStoragePath(doc, s)
	if dir == "" {
		return nil, nil
	}
	if pattern == "" {
		pattern = "*"
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = filepath.Base(m)
	}
	return names, nil
}
