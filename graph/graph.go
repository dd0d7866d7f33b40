// Package graph orders values by their dependencies.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/juju/errgo"
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ErrCycle is the cause of errors ordering a graph with a dependency cycle.
var ErrCycle = errgo.New("dependency cycle")

// A Graph is a set of nodes and the dependencies between them. Edges point
// from a dependency to its dependent.
type Graph[T comparable] struct {
	// Name formats a node in errors. It defaults to fmt.Sprint.
	Name func(T) string

	g     *simple.DirectedGraph
	ids   map[T]int64
	nodes []T
}

func New[T comparable]() *Graph[T] {
	return &Graph[T]{
		g:   simple.NewDirectedGraph(),
		ids: map[T]int64{},
	}
}

// Add inserts n if it is not already in the graph.
func (g *Graph[T]) Add(n T) {
	if _, ok := g.ids[n]; ok {
		return
	}
	id := int64(len(g.nodes))
	g.ids[n] = id
	g.nodes = append(g.nodes, n)
	g.g.AddNode(simple.Node(id))
}

// Depend records that n depends on dep, inserting both. A node depending on
// itself adds no edge.
func (g *Graph[T]) Depend(n, dep T) {
	g.Add(n)
	g.Add(dep)
	if n == dep {
		return
	}
	g.g.SetEdge(g.g.NewEdge(simple.Node(g.ids[dep]), simple.Node(g.ids[n])))
}

// Nodes returns the nodes in insertion order.
func (g *Graph[T]) Nodes() []T {
	return append([]T(nil), g.nodes...)
}

func (g *Graph[T]) Len() int {
	return len(g.nodes)
}

// Dependencies returns the direct dependencies of n in insertion order.
func (g *Graph[T]) Dependencies(n T) []T {
	id, ok := g.ids[n]
	if !ok {
		return nil
	}
	return g.collect(g.g.To(id))
}

// Dependents returns the nodes directly depending on n in insertion order.
func (g *Graph[T]) Dependents(n T) []T {
	id, ok := g.ids[n]
	if !ok {
		return nil
	}
	return g.collect(g.g.From(id))
}

func (g *Graph[T]) collect(it gonum.Nodes) []T {
	var ids []int64
	for it.Next() {
		ids = append(ids, it.Node().ID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, len(ids))
	for i, id := range ids {
		out[i] = g.nodes[id]
	}
	return out
}

func (g *Graph[T]) name(n T) string {
	if g.Name != nil {
		return g.Name(n)
	}
	return fmt.Sprint(n)
}

// Ordered returns the nodes with every dependency before its dependents.
// Where the order is free, insertion order is kept. A cycle gives an error
// caused by ErrCycle naming its members.
func (g *Graph[T]) Ordered() ([]T, error) {
	sorted, err := topo.SortStabilized(g.g, nil)
	if err != nil {
		unorderable, ok := err.(topo.Unorderable)
		if !ok {
			return nil, errgo.Mask(err)
		}
		var cycles []string
		for _, component := range unorderable {
			members := make([]string, 0, len(component))
			for _, n := range component {
				members = append(members, g.name(g.nodes[n.ID()]))
			}
			sort.Strings(members)
			cycles = append(cycles, "["+strings.Join(members, ", ")+"]")
		}
		return nil, errgo.WithCausef(nil, ErrCycle, "dependency cycle between %s", strings.Join(cycles, ", "))
	}
	out := make([]T, 0, len(sorted))
	for _, n := range sorted {
		out = append(out, g.nodes[n.ID()])
	}
	return out, nil
}
