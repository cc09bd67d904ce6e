package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_KeySet_UnionIntersectionDifference(t *testing.T) {
	a := KeySetOf([]string{"x", "y"})
	b := KeySetOf([]string{"y", "z"})

	assert.ElementsMatch(t, []string{"x", "y", "z"}, a.Union(b).Elements())
	assert.ElementsMatch(t, []string{"y"}, a.Intersection(b).Elements())
	assert.ElementsMatch(t, []string{"x"}, a.Difference(b).Elements())
}

func Test_KeySet_CopyIsIndependent(t *testing.T) {
	a := KeySetOf([]string{"x"})
	b := a.Copy()
	b.Add("y")

	assert.False(t, a.Has("y"))
	assert.True(t, b.Has("y"))
}

func Test_KeySet_DisjointAndEmpty(t *testing.T) {
	a := KeySetOf([]string{"x"})
	b := KeySetOf([]string{"y"})

	assert.True(t, a.DisjointWith(b))
	assert.False(t, a.Empty())
	assert.True(t, NewKeySet[string]().Empty())
}
