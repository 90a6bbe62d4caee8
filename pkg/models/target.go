package models

import (
	"context"
	"slices"

	"github.com/sanskrit-coders/docmodel/pkg/schema"
	"github.com/sanskrit-coders/docmodel/pkg/store"
)

const TagTarget = "Target"

// Target is an edge from the document holding it to the container it
// annotates.
type Target struct {
	Base
	ContainerID string
}

var targetSchema = SchemaFor(TagTarget, schema.Fragment{
	"type": "object",
	"properties": map[string]any{
		"container_id": map[string]any{"type": "string"},
	},
	"required": []any{"container_id"},
})

func NewTarget(containerID string) *Target {
	return &Target{ContainerID: containerID}
}

// TargetsFromIDs returns one target per container identifier.
func TargetsFromIDs(ids ...string) []*Target {
	targets := make([]*Target, len(ids))
	for i, id := range ids {
		targets[i] = NewTarget(id)
	}
	return targets
}

// TargetsFromContainers returns one target per container document.
func TargetsFromContainers(containers ...Document) []*Target {
	targets := make([]*Target, len(containers))
	for i, c := range containers {
		targets[i] = NewTarget(c.Core().ID)
	}
	return targets
}

func (*Target) TypeTag() string { return TagTarget }

func (*Target) Schema() schema.Fragment { return targetSchema }

func (t *Target) MarshalFields(f Fields) {
	f["container_id"] = t.ContainerID
}

func (t *Target) UnmarshalFields(f Fields) (err error) {
	t.ContainerID, err = Take[string](f, "container_id")
	return err
}

// Container loads the targeted document; nil when s has no such document.
func (t *Target) Container(ctx context.Context, s store.Store, opts ...Option) (Document, error) {
	return FromID(ctx, t.ContainerID, s, opts...)
}

// CheckTargetTypes verifies that every target names a stored document whose
// type is in allowed. Nothing is checked without a store.
func CheckTargetTypes(ctx context.Context, s store.Store, targets []*Target, allowed []string, targeting Document) error {
	if s == nil {
		return nil
	}
	for _, t := range targets {
		container, err := t.Container(ctx, s)
		if err != nil {
			return err
		}
		if container != nil && slices.Contains(allowed, container.TypeTag()) {
			continue
		}
		mismatch := &TargetTypeMismatchError{
			Targeting: targeting.TypeTag(),
			TargetID:  t.ContainerID,
			Allowed:   allowed,
		}
		if container != nil {
			mismatch.Target = container.TypeTag()
		}
		return mismatch
	}
	return nil
}
