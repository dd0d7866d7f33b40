package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vron/xcbuild/tool"
)

func ct(priority, index int) entry {
	return entry{
		inv:   &tool.Invocation{Priority: priority},
		index: index,
	}
}

func TestPriority(t *testing.T) {
	q := newQueue(0)
	for i, p := range []int{2, 9, 3, 8, 5, 6, 4, 1, 7} {
		q.Insert(ct(p, i))
	}
	assert.Equal(t, 9, q.Len())

	for i := 1; i <= 9; i++ {
		e, ok := q.Pop()
		assert.True(t, ok)
		assert.Equal(t, i, e.inv.Priority)
	}
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestPriorityTies(t *testing.T) {
	q := newQueue(4)
	q.Insert(ct(1, 3))
	q.Insert(ct(1, 0))
	structure := ct(5, 2)
	structure.inv.CreatesProductStructure = true
	q.Insert(structure)
	q.Insert(ct(1, 1))

	var got []int
	for q.Len() > 0 {
		e, _ := q.Pop()
		got = append(got, e.index)
	}
	assert.Equal(t, []int{2, 0, 1, 3}, got)
}
