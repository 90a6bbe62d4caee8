package models_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanskrit-coders/docmodel/internal/testenv"
	"github.com/sanskrit-coders/docmodel/pkg/constants"
	"github.com/sanskrit-coders/docmodel/pkg/models"
	"github.com/sanskrit-coders/docmodel/pkg/schema"
	"github.com/sanskrit-coders/docmodel/pkg/store"
)

func TestPersist(t *testing.T) {
	ctx := context.Background()
	s := testenv.NewStore(t)

	text := models.TextFromString("rAma", "sa", "hk")
	stored, err := models.Persist(ctx, text, s, nil)
	require.NoError(t, err)
	id := stored.Core().ID
	assert.Len(t, id, constants.IDLength)
	assert.Empty(t, text.ID)
	assert.True(t, models.EqualsIgnoringID(text, stored))

	found, err := models.FromID(ctx, id, s)
	require.NoError(t, err)
	assert.Equal(t, models.ToMap(stored), models.ToMap(found))

	missing, err := models.FromID(ctx, "nope", s)
	require.NoError(t, err)
	assert.Nil(t, missing)

	rows, err := store.Collect(s.Find(ctx, map[string]any{"jsonClass": "Text"}))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestPersist_annotation(t *testing.T) {
	ctx := context.Background()
	s := testenv.NewStore(t)
	text, err := models.Persist(ctx, models.TextFromString("rAma", "sa", ""), s, nil)
	require.NoError(t, err)

	t.Run("source set up from the writer", func(t *testing.T) {
		a := models.NewAnnotation("note", models.NewTarget(text.Core().ID))
		a.Source = &models.DataSource{}
		stored, err := models.Persist(ctx, a, s, testenv.Human("u1"))
		require.NoError(t, err)

		got := stored.(*models.Annotation)
		assert.Equal(t, constants.SourceUserSupplied, got.Source.SourceType)
		assert.Equal(t, "u1", got.Source.SourceID)
	})

	t.Run("constructor default needs a non-human writer", func(t *testing.T) {
		_, err := models.Persist(ctx, models.NewAnnotation("note"), s, testenv.Human("u1"))
		var ve *schema.ValidationError
		require.True(t, errors.As(err, &ve), "got %v", err)

		_, err = models.Persist(ctx, models.NewAnnotation("note"), s, testenv.Bot("b1"))
		require.NoError(t, err)
	})

	t.Run("target type", func(t *testing.T) {
		ta := models.NewTextAnnotation(models.TextFromString("comment", "en", ""), models.NewTarget(text.Core().ID))
		_, err := models.Persist(ctx, ta, s, nil)
		var mismatch *models.TargetTypeMismatchError
		require.True(t, errors.As(err, &mismatch), "got %v", err)
		assert.Equal(t, models.TagText, mismatch.Target)
		assert.Equal(t, models.TagTextAnnotation, mismatch.Targeting)
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := models.Persist(ctx, models.NewAnnotation("note", models.NewTarget("gone")), s, nil)
		var mismatch *models.TargetTypeMismatchError
		require.True(t, errors.As(err, &mismatch), "got %v", err)
		assert.Empty(t, mismatch.Target)
	})
}

func TestDeleteIfSafe(t *testing.T) {
	ctx := context.Background()
	s := testenv.NewStore(t)

	err := models.DeleteIfSafe(ctx, models.NewTarget("x"), s, nil)
	assert.ErrorIs(t, err, constants.ErrMissingIdentifier)

	parent, err := models.Persist(ctx, models.NewAnnotation("parent"), s, nil)
	require.NoError(t, err)
	child, err := models.Persist(ctx, models.NewTextAnnotation(models.TextFromString("c", "en", ""),
		models.TargetsFromContainers(parent)...), s, nil)
	require.NoError(t, err)

	dir := models.ExternalStoragePath(parent, s)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.png"), []byte("png"), 0o644))
	files, err := models.ListFiles(parent, s, "*.png")
	require.NoError(t, err)
	assert.Equal(t, []string{"scan.png"}, files)

	err = models.DeleteIfSafe(ctx, parent, s, nil)
	var ve *schema.ValidationError
	require.True(t, errors.As(err, &ve), "still targeted, got %v", err)

	require.NoError(t, models.DeleteIfSafe(ctx, child, s, nil))
	require.NoError(t, models.DeleteIfSafe(ctx, parent, s, nil))
	assert.Equal(t, 0, s.Len())
	assert.NoDirExists(t, dir)
}

func TestIllegalTakeover(t *testing.T) {
	ctx := context.Background()
	s := testenv.NewStore(t)
	locked := false

	a := models.NewAnnotation("mine")
	a.Source = models.NewDataSourceFor(constants.SourceUserSupplied, "u1")
	a.EditableByOthers = &locked
	stored, err := models.Persist(ctx, a, s, testenv.Human("u1"))
	require.NoError(t, err)

	taken := stored.(*models.Annotation)
	taken.Source.SourceID = "u2"
	taken.Label = "theirs"
	_, err = models.Persist(ctx, taken, s, testenv.Human("u2"))
	var ve *schema.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)

	err = models.DeleteIfSafe(ctx, stored, s, testenv.Human("u2"))
	require.True(t, errors.As(err, &ve), "got %v", err)

	require.NoError(t, models.DeleteIfSafe(ctx, stored, s, testenv.Admin("a1")))
}

func TestAddIndexes(t *testing.T) {
	ctx := context.Background()
	s := testenv.NewStore(t)

	require.NoError(t, models.AddIndexes(ctx, s, models.NewTarget("")))
	assert.Equal(t, []string{"jsonClass"}, s.Indexes())

	require.NoError(t, models.AddIndexes(ctx, s, models.NewAnnotation("")))
	assert.Equal(t, []string{"jsonClass", "targets_container_id"}, s.Indexes())
}

func TestSchemas(t *testing.T) {
	schemas := models.Schemas(testRegistry())

	assert.Contains(t, schemas, models.TagNode)
	assert.Contains(t, schemas, "DummyClass")
	for tag, fragment := range schemas {
		enum := fragment["properties"].(map[string]any)["jsonClass"].(map[string]any)["enum"]
		assert.Equal(t, []any{tag}, enum)
	}
}

func TestPersist_customRegistry(t *testing.T) {
	ctx := context.Background()
	s := testenv.NewStore(t)
	reg := models.WithRegistry(testRegistry())

	text, err := models.Persist(ctx, models.TextFromString("rAma", "sa", ""), s, nil)
	require.NoError(t, err)
	note, err := models.Persist(ctx, newReviewNote("ok", text), s, nil, reg)
	require.NoError(t, err)
	reply, err := models.Persist(ctx, newReviewNote("agreed", note), s, nil, reg)
	require.NoError(t, err)

	note.(*reviewNote).Verdict = "revised"
	_, err = models.Persist(ctx, note, s, nil, reg)
	require.NoError(t, err)

	err = models.Validate(ctx, reply, s, nil)
	assert.ErrorIs(t, err, constants.ErrUnknownType)
	require.NoError(t, models.Validate(models.ContextWithRegistry(ctx, testRegistry()), reply, s, nil))

	err = models.DeleteIfSafe(ctx, note, s, nil, reg)
	var ve *schema.ValidationError
	require.True(t, errors.As(err, &ve), "still targeted, got %v", err)
	require.NoError(t, models.DeleteIfSafe(ctx, reply, s, nil, reg))
	require.NoError(t, models.DeleteIfSafe(ctx, note, s, nil, reg))
	assert.Equal(t, 1, s.Len())
}
