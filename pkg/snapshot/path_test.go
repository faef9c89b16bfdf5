package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDepth(t *testing.T) {
	assert.Equal(t, 0, Depth(""))
	assert.Equal(t, 0, Depth("a"))
	assert.Equal(t, 1, Depth("a/b"))
	assert.Equal(t, 3, Depth("a/b/c/d.txt"))
	assert.Equal(t, 1, Depth(`a\/b`), "backslashes are ordinary characters")
}

func TestParentAndJoin(t *testing.T) {
	assert.Equal(t, "", Parent("a.txt"))
	assert.Equal(t, "a/b", Parent("a/b/c.txt"))
	assert.Equal(t, "a", Join("", "a"))
	assert.Equal(t, "a/b", Join("a", "b"))
}

func TestIsDescendant(t *testing.T) {
	assert.True(t, IsDescendant("a/b", "a"))
	assert.True(t, IsDescendant("a/b/c", "a"))
	assert.True(t, IsDescendant("a", ""))
	assert.False(t, IsDescendant("a", "a"))
	assert.False(t, IsDescendant("ab/c", "a"))
	assert.False(t, IsDescendant("", ""))
}

func TestRebase(t *testing.T) {
	assert.Equal(t, "x/y", Rebase("a", "a", "x/y"))
	assert.Equal(t, "x/y/b/c", Rebase("a/b/c", "a", "x/y"))
	assert.Equal(t, "b/c", Rebase("a/b/c", "a", ""))
}
