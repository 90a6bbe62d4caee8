package models

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/sanskrit-coders/docmodel/pkg/constants"
	"github.com/sanskrit-coders/docmodel/pkg/schema"
	"github.com/sanskrit-coders/docmodel/pkg/store"
	"github.com/sanskrit-coders/docmodel/pkg/user"
)

const TagNode = "JsonObjectNode"

// Node is a tree of documents: the content of every child targets the
// content of its parent. A node itself is never stored; its contents are.
type Node struct {
	Base
	Content  Document
	Children []*Node
}

var nodeSchema = SchemaFor(TagNode, schema.Fragment{
	"properties": map[string]any{
		"content": BaseSchema(),
		"children": map[string]any{
			"type":  "array",
			"items": map[string]any{"$ref": "#"},
		},
	},
})

// NewNode builds a node and checks that every child may target its parent.
func NewNode(content Document, children ...*Node) (*Node, error) {
	n := &Node{Content: content, Children: children}
	if err := n.ValidateChildTypes(); err != nil {
		return nil, err
	}
	return n, nil
}

func (*Node) TypeTag() string { return TagNode }

func (*Node) Schema() schema.Fragment { return nodeSchema }

func (n *Node) MarshalFields(f Fields) {
	if n.Content != nil {
		f["content"] = n.Content
	}
	PutDocuments(f, "children", n.Children)
}

func (n *Node) UnmarshalFields(f Fields) (err error) {
	if n.Content, err = Take[Document](f, "content"); err != nil {
		return err
	}
	n.Children, err = TakeDocuments[*Node](f, "children")
	return err
}

func allowedTargetTypes(doc Document) []string {
	if a, ok := doc.(Annotatable); ok {
		return a.AllowedTargetTypes()
	}
	return nil
}

// ValidateChildTypes checks, recursively, that the type of every parent
// content is allowed as a target by the content of each of its children.
func (n *Node) ValidateChildTypes() error {
	if n.Content == nil {
		return constants.ErrMissingContent
	}
	for _, child := range n.Children {
		if child.Content == nil {
			return constants.ErrMissingContent
		}
		allowed := allowedTargetTypes(child.Content)
		if !slices.Contains(allowed, n.Content.TypeTag()) {
			return &TargetTypeMismatchError{
				Targeting: child.Content.TypeTag(),
				Target:    n.Content.TypeTag(),
				TargetID:  n.Content.Core().ID,
				Allowed:   allowed,
			}
		}
	}
	for _, child := range n.Children {
		if err := child.ValidateChildTypes(); err != nil {
			return err
		}
	}
	return nil
}

// Rules check the node schema and then the child types.
func (n *Node) Rules() []Rule {
	return []Rule{
		SchemaRule(n),
		func(context.Context, store.Store, user.User) error {
			return n.ValidateChildTypes()
		},
	}
}

// Persist stores the content and then every child, pointing the single
// target of each child at the stored parent. The node is updated in place
// with the stored contents.
func (n *Node) Persist(ctx context.Context, s store.Store, actor user.User, opts ...Option) error {
	if err := n.ValidateChildTypes(); err != nil {
		return err
	}
	stored, err := Persist(ctx, n.Content, s, actor, opts...)
	if err != nil {
		return err
	}
	n.Content = stored

	for _, child := range n.Children {
		a, ok := child.Content.(Annotatable)
		if !ok {
			return fmt.Errorf("%s cannot target other documents", child.Content.TypeTag())
		}
		annotated := a.Annotations()
		if len(annotated.Targets) == 0 {
			annotated.Targets = []*Target{{}}
		}
		if len(annotated.Targets) != 1 {
			return schema.NewValidationError("a child %s must have exactly one target, it has %d",
				child.Content.TypeTag(), len(annotated.Targets))
		}
		annotated.Targets[0].ContainerID = stored.Core().ID
		if err := child.Persist(ctx, s, actor, opts...); err != nil {
			return err
		}
	}
	return nil
}

// AffectedUserIDs returns the distinct source ids of the contents of the
// tree, sorted.
func (n *Node) AffectedUserIDs() ([]string, error) {
	seen := map[string]bool{}
	err := n.Walk(func(node *Node, _ int) error {
		if node.Content == nil {
			return constants.ErrMissingContent
		}
		if a, ok := node.Content.(Annotatable); ok {
			if id := sourceID(a.Annotations()); id != "" {
				seen[id] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ValidateDeletion checks that the acting user may delete every content of
// the tree. The content of n is reloaded from s on the way. Deleting a
// tree touching more than constants.MaxAffectedUsers users needs an admin.
func (n *Node) ValidateDeletion(ctx context.Context, s store.Store, actor user.User, opts ...Option) error {
	ctx = withOptions(ctx, opts)
	if n.Content == nil {
		return constants.ErrMissingContent
	}
	if a, ok := n.Content.(Annotatable); ok {
		if err := ValidateDeletionIgnoringTargeters(ctx, a, s, actor); err != nil {
			return err
		}
	} else if n.Content.Core().ID == "" {
		return fmt.Errorf("deleting %s: %w", n.Content.TypeTag(), constants.ErrMissingIdentifier)
	}
	for _, child := range n.Children {
		if err := child.ValidateDeletion(ctx, s, actor, opts...); err != nil {
			return err
		}
	}

	reloaded, err := FromID(ctx, n.Content.Core().ID, s, opts...)
	if err != nil {
		return err
	}
	if reloaded == nil {
		return fmt.Errorf("reloading %s: %w", n.Content.Core().ID, constants.ErrMissingContent)
	}
	n.Content = reloaded

	affected, err := n.AffectedUserIDs()
	if err != nil {
		return err
	}
	if len(affected) > constants.MaxAffectedUsers && actor != nil && !isAdmin(actor, s) {
		return schema.NewValidationError("this deletion affects %d users, only admins may affect more than %d",
			len(affected), constants.MaxAffectedUsers)
	}
	return nil
}

// DeleteRecursively deletes the content of n along with every stored
// document targeting it, directly or not, children first. The whole stored
// tree is validated before anything is deleted.
func (n *Node) DeleteRecursively(ctx context.Context, s store.Store, actor user.User, opts ...Option) error {
	ctx = withOptions(ctx, opts)
	if err := n.ValidateDeletion(ctx, s, actor, opts...); err != nil {
		return err
	}
	if err := n.FillDescendants(ctx, s, constants.DeletionReloadDepth, "", opts...); err != nil {
		return err
	}
	if err := n.ValidateDeletion(ctx, s, actor, opts...); err != nil {
		return err
	}
	if err := n.checkNoStrayTargeters(ctx, s, opts...); err != nil {
		return err
	}
	return n.deleteChildrenFirst(ctx, s, actor)
}

// checkNoStrayTargeters rejects a filled tree holding a document that
// refuses deletion while targeted and is targeted by something outside the
// tree, as happens below the reload depth.
func (n *Node) checkNoStrayTargeters(ctx context.Context, s store.Store, opts ...Option) error {
	return n.Walk(func(node *Node, _ int) error {
		if _, ok := node.Content.(DeletionValidator); !ok {
			return nil
		}
		targeting, err := TargetingEntities(ctx, node.Content, s, "", opts...)
		if err != nil {
			return err
		}
		inTree := make(map[string]bool, len(node.Children))
		for _, child := range node.Children {
			inTree[child.Content.Core().ID] = true
		}
		for _, doc := range targeting {
			if !inTree[doc.Core().ID] {
				return schema.NewValidationError("unsafe deletion of %s: %s %s refers to it and is not part of the deletion",
					node.Content.Core().ID, doc.TypeTag(), doc.Core().ID)
			}
		}
		return nil
	})
}

func (n *Node) deleteChildrenFirst(ctx context.Context, s store.Store, actor user.User) error {
	for _, child := range n.Children {
		if err := child.deleteChildrenFirst(ctx, s, actor); err != nil {
			return err
		}
	}
	return DeleteIfSafe(ctx, n.Content, s, actor)
}

// FillDescendants replaces the children of n with the stored documents
// targeting its content, down to depth levels. A non-empty tag keeps only
// documents of that type.
func (n *Node) FillDescendants(ctx context.Context, s store.Store, depth int, tag string, opts ...Option) error {
	if n.Content == nil {
		return constants.ErrMissingContent
	}
	targeting, err := TargetingEntities(ctx, n.Content, s, tag, opts...)
	if err != nil {
		return err
	}
	n.Children = nil
	if depth <= 0 {
		return nil
	}
	for _, doc := range targeting {
		child := &Node{Content: doc}
		if err := child.FillDescendants(ctx, s, depth-1, tag, opts...); err != nil {
			return err
		}
		n.Children = append(n.Children, child)
	}
	return nil
}

// SetupSource gives every content in the tree its own copy of source.
func (n *Node) SetupSource(source *DataSource) error {
	return n.Walk(func(node *Node, _ int) error {
		if node.Content == nil {
			return constants.ErrMissingContent
		}
		a, ok := node.Content.(Annotatable)
		if !ok {
			return fmt.Errorf("%s has no source", node.Content.TypeTag())
		}
		copied := *source
		if source.ByAdmin != nil {
			byAdmin := *source.ByAdmin
			copied.ByAdmin = &byAdmin
		}
		a.Annotations().Source = &copied
		return nil
	})
}

// DeleteFieldRecursively drops a field from every content in the tree,
// for when a type stops declaring it.
func (n *Node) DeleteFieldRecursively(name string, opts ...Option) error {
	return n.Walk(func(node *Node, _ int) error {
		if node.Content == nil {
			return constants.ErrMissingContent
		}
		m := ToMap(node.Content)
		if _, ok := m[name]; !ok {
			return nil
		}
		delete(m, name)
		content, err := FromMap(m, opts...)
		if err != nil {
			return err
		}
		node.Content = content
		return nil
	})
}

// Walk calls fn on n and its descendants, parents before children.
// depth is 0 for n.
func (n *Node) Walk(fn func(node *Node, depth int) error) error {
	return n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) error, depth int) error {
	if err := fn(n, depth); err != nil {
		return err
	}
	for _, child := range n.Children {
		if err := child.walk(fn, depth+1); err != nil {
			return err
		}
	}
	return nil
}
