package user_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sanskrit-coders/docmodel/pkg/user"
)

func TestStatic(t *testing.T) {
	u := &user.Static{IDs: []string{"a", "b"}, AdminOf: []string{"ullekhanam"}, Human: true}

	assert.True(t, u.IsAdmin("ullekhanam"))
	assert.False(t, u.IsAdmin("users"))
	assert.True(t, (&user.Static{AdminOf: []string{"*"}}).IsAdmin("anything"))
	assert.Equal(t, "a", user.FirstID(u))
	assert.True(t, user.Owns(u, "b"))
	assert.False(t, user.Owns(u, "c"))
}

func TestNilUser(t *testing.T) {
	assert.Equal(t, "", user.FirstID(nil))
	assert.False(t, user.Owns(nil, "a"))
}
