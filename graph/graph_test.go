package graph

import (
	"testing"

	"github.com/juju/errgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdered(t *testing.T) {
	g := New[string]()
	g.Add("app")
	g.Add("tests")
	g.Depend("app", "lib")
	g.Depend("tests", "app")
	g.Depend("lib", "base")
	g.Depend("app", "base")
	g.Depend("app", "app")

	order, err := g.Ordered()
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "lib", "app", "tests"}, order)

	assert.Equal(t, []string{"lib", "base"}, g.Dependencies("app"))
	assert.Equal(t, []string{"tests"}, g.Dependents("app"))
	assert.Nil(t, g.Dependencies("missing"))
	assert.Equal(t, 4, g.Len())
}

func TestStable(t *testing.T) {
	g := New[int]()
	for _, n := range []int{5, 3, 9, 1} {
		g.Add(n)
	}
	order, err := g.Ordered()
	require.NoError(t, err)
	assert.Equal(t, []int{5, 3, 9, 1}, order)
	assert.Equal(t, []int{5, 3, 9, 1}, g.Nodes())
}

func TestCycle(t *testing.T) {
	g := New[string]()
	g.Name = func(s string) string { return "<" + s + ">" }
	g.Depend("a", "b")
	g.Depend("b", "c")
	g.Depend("c", "a")
	g.Depend("d", "a")

	order, err := g.Ordered()
	require.Error(t, err)
	assert.Nil(t, order)
	assert.Equal(t, ErrCycle, errgo.Cause(err))
	assert.Contains(t, err.Error(), "[<a>, <b>, <c>]")
}
