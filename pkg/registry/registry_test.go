package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanskrit-coders/docmodel/pkg/constants"
	"github.com/sanskrit-coders/docmodel/pkg/registry"
)

type first struct{ A int }
type second struct{ B string }

func TestResolve(t *testing.T) {
	r := registry.New()
	r.Register(registry.EntryFor[first]("First"))

	e, err := r.Resolve("First")
	require.NoError(t, err)
	assert.IsType(t, &first{}, e.New())
	assert.NotSame(t, e.New(), e.New(), "each call must build a fresh instance")

	_, err = r.Resolve("Missing")
	require.ErrorIs(t, err, constants.ErrUnknownType)
}

func TestRegister_lastWriterWins(t *testing.T) {
	var collisions []string
	r := registry.New().OnCollision(func(name string) { collisions = append(collisions, name) })

	r.Register(registry.EntryFor[first]("Thing"))
	r.Register(registry.EntryFor[second]("Thing"))

	e, err := r.Resolve("Thing")
	require.NoError(t, err)
	assert.IsType(t, &second{}, e.New())
	assert.Equal(t, []string{"Thing"}, collisions)
}

func TestMerge(t *testing.T) {
	a := registry.New()
	a.Register(registry.EntryFor[first]("First"))
	b := registry.New()
	b.Register(registry.EntryFor[second]("Second"))

	a.Merge(b)

	assert.Equal(t, []string{"First", "Second"}, a.Names())
	assert.Equal(t, []string{"Second"}, b.Names())
}
