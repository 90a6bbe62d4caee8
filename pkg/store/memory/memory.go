// Package memory implements store.Store over an in-process map. It is meant
// for tests, scripts and the CLI; nothing is persisted across processes.
package memory

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"sync"

	"github.com/sanskrit-coders/docmodel/internal/rand"
	"github.com/sanskrit-coders/docmodel/pkg/collection"
	"github.com/sanskrit-coders/docmodel/pkg/constants"
	"github.com/sanskrit-coders/docmodel/pkg/store"
)

type Store struct {
	mu      sync.RWMutex
	rows    map[string]map[string]any
	indexes map[string]map[string]int

	frontendName      string
	externalFileStore string
}

var _ store.Store = (*Store)(nil)

type Option func(*Store)

// WithFrontendName sets the service users are authorized against.
func WithFrontendName(name string) Option {
	return func(s *Store) {
		s.frontendName = name
	}
}

// WithExternalFileStore sets the directory holding per-document files.
func WithExternalFileStore(dir string) Option {
	return func(s *Store) {
		s.externalFileStore = dir
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		rows:    map[string]map[string]any{},
		indexes: map[string]map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) FindByID(ctx context.Context, id string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return collection.DeepCopy(row).(map[string]any), nil
}

// Find scans a snapshot of identifiers taken when iteration starts, in
// identifier order. Rows deleted during the scan are skipped.
func (s *Store) Find(ctx context.Context, filter map[string]any) iter.Seq2[map[string]any, error] {
	return func(yield func(map[string]any, error) bool) {
		for _, id := range s.ids() {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			row, err := s.FindByID(ctx, id)
			if err != nil {
				yield(nil, err)
				return
			}
			if row == nil || !collection.MatchFilter(row, filter) {
				continue
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

func (s *Store) ids() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Update stores a copy of doc. A missing or empty "_id" is replaced by a
// fresh random identifier.
func (s *Store) Update(ctx context.Context, doc map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := collection.DeepCopy(doc).(map[string]any)

	s.mu.Lock()
	defer s.mu.Unlock()

	id, _ := row[constants.IDField].(string)
	if id == "" {
		if raw, ok := row[constants.IDField]; ok && raw != nil {
			id = fmt.Sprint(raw)
		} else {
			id = s.newID()
		}
	}
	row[constants.IDField] = id
	s.rows[id] = row
	return collection.DeepCopy(row).(map[string]any), nil
}

func (s *Store) newID() string {
	for {
		id := rand.NewID(constants.IDLength)
		if _, taken := s.rows[id]; !taken {
			return id
		}
	}
}

// Delete removes the row. Deleting an absent identifier is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

// AddIndex only records the index; scans are always full.
func (s *Store) AddIndex(ctx context.Context, keys map[string]int, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes[name] = keys
	return nil
}

// Indexes returns the names of the indexes recorded by AddIndex.
func (s *Store) Indexes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.indexes))
	for name := range s.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored rows.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func (s *Store) FrontendName() string {
	return s.frontendName
}

func (s *Store) ExternalFileStore() string {
	return s.externalFileStore
}
