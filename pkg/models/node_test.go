package models_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanskrit-coders/docmodel/internal/testenv"
	"github.com/sanskrit-coders/docmodel/pkg/constants"
	"github.com/sanskrit-coders/docmodel/pkg/models"
	"github.com/sanskrit-coders/docmodel/pkg/schema"
	"github.com/sanskrit-coders/docmodel/pkg/store/memory"
)

func annotationBy(label, owner string) *models.Annotation {
	a := models.NewAnnotation(label)
	a.Source = models.NewDataSourceFor(constants.SourceUserSupplied, owner)
	return a
}

func commentBy(text, owner string) *models.TextAnnotation {
	ta := models.NewTextAnnotation(models.TextFromString(text, "en", ""))
	ta.Source = models.NewDataSourceFor(constants.SourceUserSupplied, owner)
	return ta
}

func leaf(content models.Document) *models.Node {
	return &models.Node{Content: content}
}

func TestNewNode(t *testing.T) {
	_, err := models.NewNode(models.TextFromString("rAma", "sa", ""), leaf(annotationBy("a", "u1")))
	require.NoError(t, err)

	_, err = models.NewNode(models.TextFromString("rAma", "sa", ""), leaf(commentBy("c", "u1")))
	var mismatch *models.TargetTypeMismatchError
	require.True(t, errors.As(err, &mismatch), "got %v", err)
	assert.Equal(t, models.TagText, mismatch.Target)
	assert.Equal(t, []string{models.TagAnnotation, models.TagTextAnnotation}, mismatch.Allowed)

	_, err = models.NewNode(annotationBy("a", "u1"), leaf(annotationBy("b", "u1")), &models.Node{
		Content:  annotationBy("c", "u1"),
		Children: []*models.Node{leaf(models.NewTarget("x"))},
	})
	require.True(t, errors.As(err, &mismatch), "grandchildren are checked too, got %v", err)

	_, err = models.NewNode(nil)
	assert.ErrorIs(t, err, constants.ErrMissingContent)
}

// threeUserTree is an annotation by u1, annotated by u2, commented on by u3.
func threeUserTree(t *testing.T) *models.Node {
	t.Helper()
	grandchild := leaf(commentBy("c", "u3"))
	child, err := models.NewNode(annotationBy("b", "u2"), grandchild)
	require.NoError(t, err)
	root, err := models.NewNode(annotationBy("a", "u1"), child)
	require.NoError(t, err)
	return root
}

func persistedTree(t *testing.T, s *memory.Store) *models.Node {
	t.Helper()
	root := threeUserTree(t)
	require.NoError(t, root.Persist(context.Background(), s, nil))
	return root
}

func TestNodePersist(t *testing.T) {
	s := testenv.NewStore(t)
	root := persistedTree(t, s)

	assert.Equal(t, 3, s.Len())
	err := root.Walk(func(n *models.Node, _ int) error {
		parentID := n.Content.Core().ID
		assert.NotEmpty(t, parentID)
		for _, child := range n.Children {
			targets := child.Content.(models.Annotatable).Annotations().Targets
			require.Len(t, targets, 1)
			assert.Equal(t, parentID, targets[0].ContainerID)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestNodePersist_multipleTargets(t *testing.T) {
	s := testenv.NewStore(t)
	child := annotationBy("b", "u1")
	child.Targets = models.TargetsFromIDs("x", "y")
	root, err := models.NewNode(annotationBy("a", "u1"), leaf(child))
	require.NoError(t, err)

	err = root.Persist(context.Background(), s, nil)
	var ve *schema.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
}

func TestAffectedUserIDs(t *testing.T) {
	ids, err := threeUserTree(t).AffectedUserIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2", "u3"}, ids)

	_, err = (&models.Node{}).AffectedUserIDs()
	assert.ErrorIs(t, err, constants.ErrMissingContent)
}

func TestNodeValidateDeletion(t *testing.T) {
	ctx := context.Background()
	s := testenv.NewStore(t)
	root := persistedTree(t, s)

	err := root.ValidateDeletion(ctx, s, testenv.Human("u1"))
	var ve *schema.ValidationError
	require.True(t, errors.As(err, &ve), "three users affected, got %v", err)

	require.NoError(t, root.ValidateDeletion(ctx, s, testenv.Admin("a1")))
	require.NoError(t, root.ValidateDeletion(ctx, s, nil))

	child := root.Children[0]
	require.NoError(t, child.ValidateDeletion(ctx, s, testenv.Human("u2")), "two users affected")

	unsaved := leaf(annotationBy("x", "u1"))
	assert.ErrorIs(t, unsaved.ValidateDeletion(ctx, s, nil), constants.ErrMissingIdentifier)
}

func TestNodeDeleteRecursively(t *testing.T) {
	ctx := context.Background()
	s := testenv.NewStore(t)
	root := persistedTree(t, s)
	other, err := models.Persist(ctx, models.NewAnnotation("unrelated"), s, nil)
	require.NoError(t, err)

	// A stale in-memory tree still finds every stored descendant.
	stale := leaf(root.Content)
	require.NoError(t, stale.DeleteRecursively(ctx, s, testenv.Admin("a1")))

	assert.Equal(t, 1, s.Len())
	found, err := models.FromID(ctx, other.Core().ID, s)
	require.NoError(t, err)
	assert.NotNil(t, found)
}

func TestNodeDeleteRecursively_allOrNothing(t *testing.T) {
	ctx := context.Background()
	s := testenv.NewStore(t)
	locked := false

	theirs := annotationBy("b", "u2")
	theirs.EditableByOthers = &locked
	root, err := models.NewNode(annotationBy("r", "u1"), leaf(annotationBy("a", "u1")), leaf(theirs))
	require.NoError(t, err)
	require.NoError(t, root.Persist(ctx, s, nil))
	require.Equal(t, 3, s.Len())

	stale := leaf(root.Content)
	err = stale.DeleteRecursively(ctx, s, testenv.Human("u1"))
	var ve *schema.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, 3, s.Len())

	require.NoError(t, leaf(root.Content).DeleteRecursively(ctx, s, testenv.Admin("a1")))
	assert.Equal(t, 0, s.Len())
}

func TestNodeDeleteRecursively_customRegistry(t *testing.T) {
	ctx := context.Background()
	s := testenv.NewStore(t)
	reg := models.WithRegistry(testRegistry())

	root, err := models.NewNode(models.TextFromString("rAma", "sa", ""),
		&models.Node{Content: newReviewNote("ok"), Children: []*models.Node{leaf(newReviewNote("agreed"))}})
	require.NoError(t, err)
	require.NoError(t, root.Persist(ctx, s, nil, reg))
	require.Equal(t, 3, s.Len())

	require.NoError(t, leaf(root.Content).DeleteRecursively(ctx, s, nil, reg))
	assert.Equal(t, 0, s.Len())
}

func TestFillDescendants(t *testing.T) {
	ctx := context.Background()
	s := testenv.NewStore(t)
	root := persistedTree(t, s)

	fresh := leaf(root.Content)
	require.NoError(t, fresh.FillDescendants(ctx, s, 10, ""))
	require.Len(t, fresh.Children, 1)
	require.Len(t, fresh.Children[0].Children, 1)
	assert.Equal(t, models.TagTextAnnotation, fresh.Children[0].Children[0].Content.TypeTag())

	shallow := leaf(root.Content)
	require.NoError(t, shallow.FillDescendants(ctx, s, 1, ""))
	require.Len(t, shallow.Children, 1)
	assert.Empty(t, shallow.Children[0].Children)

	filtered := leaf(root.Content)
	require.NoError(t, filtered.FillDescendants(ctx, s, 10, models.TagTextAnnotation))
	assert.Empty(t, filtered.Children)
}

func TestSetupSource(t *testing.T) {
	root := threeUserTree(t)
	require.NoError(t, root.SetupSource(models.NewDataSourceFor(constants.SourceUserSupplied, "editor")))

	ids, err := root.AffectedUserIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"editor"}, ids)

	first := root.Content.(models.Annotatable).Annotations().Source
	second := root.Children[0].Content.(models.Annotatable).Annotations().Source
	assert.NotSame(t, first, second)

	bad := leaf(models.NewTarget("x"))
	assert.Error(t, bad.SetupSource(models.NewDataSource()))
}

func TestDeleteFieldRecursively(t *testing.T) {
	root := threeUserTree(t)
	require.NoError(t, root.DeleteFieldRecursively("label"))

	assert.Empty(t, root.Content.(*models.Annotation).Label)
	assert.Empty(t, root.Children[0].Content.(*models.Annotation).Label)
	assert.NotNil(t, root.Children[0].Children[0].Content.(*models.TextAnnotation).Content)
}

func TestWalk(t *testing.T) {
	var depths []int
	err := threeUserTree(t).Walk(func(_ *models.Node, depth int) error {
		depths = append(depths, depth)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, depths)
}

func TestNodeRoundTrip(t *testing.T) {
	root := threeUserTree(t)
	m := models.ToMap(root)
	assert.Equal(t, models.TagNode, m["jsonClass"])

	back, err := models.FromMap(m)
	require.NoError(t, err)
	node, ok := back.(*models.Node)
	require.True(t, ok)
	assert.Equal(t, m, models.ToMap(node))
	require.NoError(t, models.ValidateSchema(node))
	require.NoError(t, models.Validate(context.Background(), node, nil, nil))
}
