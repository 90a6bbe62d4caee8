// Package registry maps wire type tags to constructors.
//
// Packages that define document types register them from an init function,
// which makes Default fully populated before main runs and before any
// goroutine can resolve a tag. Tests that want an isolated view build their
// own Registry with New.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sanskrit-coders/docmodel/pkg/constants"
)

// Entry constructs a zero instance of a registered type.
type Entry struct {
	Name string
	New  func() any
}

// EntryFor creates a registry entry whose constructor returns a new(T).
func EntryFor[T any](name string) Entry {
	return Entry{
		Name: name,
		New: func() any {
			return new(T)
		},
	}
}

// CollisionHook is called when a registration replaces an existing tag.
type CollisionHook func(name string)

type Registry struct {
	mu          sync.RWMutex
	entries     map[string]Entry
	onCollision CollisionHook
}

// Default is the process-wide registry.
var Default = New()

func New() *Registry {
	return &Registry{entries: map[string]Entry{}}
}

// OnCollision installs a hook reporting tag collisions.
func (r *Registry) OnCollision(hook CollisionHook) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onCollision = hook
	return r
}

// Register adds entries. The last registration of a tag wins.
func (r *Registry) Register(entries ...Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		if _, exists := r.entries[e.Name]; exists && r.onCollision != nil {
			r.onCollision(e.Name)
		}
		r.entries[e.Name] = e
	}
}

// Merge registers every entry of other into r.
func (r *Registry) Merge(other *Registry) {
	other.mu.RLock()
	entries := make([]Entry, 0, len(other.entries))
	for _, e := range other.entries {
		entries = append(entries, e)
	}
	other.mu.RUnlock()

	r.Register(entries...)
}

// Resolve returns the entry registered under tag.
func (r *Registry) Resolve(tag string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[tag]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", constants.ErrUnknownType, tag)
	}
	return e, nil
}

// Names lists registered tags in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
