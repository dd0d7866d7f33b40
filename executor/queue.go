package executor

import "github.com/vron/xcbuild/tool"

// An entry is an invocation ready to run and its position in the target's
// list of invocations.
type entry struct {
	inv   *tool.Invocation
	index int
}

// before orders ready invocations: product structure first, then by
// priority, then in the order they were resolved.
func (e entry) before(o entry) bool {
	if e.inv.CreatesProductStructure != o.inv.CreatesProductStructure {
		return e.inv.CreatesProductStructure
	}
	if e.inv.Priority != o.inv.Priority {
		return e.inv.Priority < o.inv.Priority
	}
	return e.index < o.index
}

type queue struct {
	data []entry
}

func parent(i int) int { return (i - 1) / 2 }
func left(i int) int   { return 2*i + 1 }
func right(i int) int  { return 2*i + 2 }

func newQueue(size int) *queue {
	return &queue{
		data: make([]entry, 0, size),
	}
}

func (q *queue) Len() int {
	return len(q.data)
}

func (q *queue) Insert(e entry) {
	q.data = append(q.data, e)
	for i := len(q.data) - 1; i > 0 && q.data[i].before(q.data[parent(i)]); i = parent(i) {
		q.swap(i, parent(i))
	}
}

// Pop removes the first entry. It returns false if the queue is empty.
func (q *queue) Pop() (entry, bool) {
	if len(q.data) == 0 {
		return entry{}, false
	}

	e := q.data[0]
	last := len(q.data) - 1
	q.data[0] = q.data[last]
	q.data[last] = entry{}
	q.data = q.data[:last]
	if len(q.data) > 0 {
		q.heapify(0)
	}
	return e, true
}

func (q *queue) swap(i, j int) {
	q.data[i], q.data[j] = q.data[j], q.data[i]
}

func (q *queue) heapify(i int) {
	l, r := left(i), right(i)
	first := i
	if l < len(q.data) && q.data[l].before(q.data[first]) {
		first = l
	}
	if r < len(q.data) && q.data[r].before(q.data[first]) {
		first = r
	}
	if first != i {
		q.swap(i, first)
		q.heapify(first)
	}
}
