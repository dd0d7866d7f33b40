package executor

import (
	"path"

	"github.com/vron/xcbuild/graph"
	"github.com/vron/xcbuild/tool"
)

// normalize makes p absolute against wd and cleans it, so that paths
// written differently by different resolvers still match.
func normalize(p, wd string) string {
	if p == "" {
		return ""
	}
	if !path.IsAbs(p) && wd != "" {
		p = path.Join(wd, p)
	}
	return path.Clean(p)
}

// producers maps every path written by one of invs to the invocation
// writing it. When two invocations write the same path the last one wins.
func producers(invs []*tool.Invocation) map[string]*tool.Invocation {
	index := map[string]*tool.Invocation{}
	for _, inv := range invs {
		for _, list := range [][]string{inv.Outputs, inv.PhonyOutputs, inv.OutputDependencies} {
			for _, p := range list {
				if n := normalize(p, inv.WorkingDirectory); n != "" {
					index[n] = inv
				}
			}
		}
	}
	return index
}

// Describe names inv in logs and errors.
func Describe(inv *tool.Invocation) string {
	if inv.LogMessage != "" {
		return inv.LogMessage
	}
	return inv.Executable.String()
}

// Graph returns the graph of invs in which an invocation depends on the
// invocations producing its inputs, phony inputs and input dependencies.
// Priorities add no edges: a phase may produce what an earlier phase
// reads, as a script generating sources does.
func Graph(invs []*tool.Invocation) *graph.Graph[*tool.Invocation] {
	g := graph.New[*tool.Invocation]()
	g.Name = Describe
	index := producers(invs)
	for _, inv := range invs {
		g.Add(inv)
	}
	for _, inv := range invs {
		for _, list := range [][]string{inv.Inputs, inv.PhonyInputs, inv.InputDependencies} {
			for _, p := range list {
				if dep, ok := index[normalize(p, inv.WorkingDirectory)]; ok && dep != inv {
					g.Depend(inv, dep)
				}
			}
		}
	}
	return g
}

// Order returns invs with every invocation after those it depends on. Of
// the invocations free to run, those creating the product structure come
// first, then those of lower priority, then the earlier resolved. A cycle
// is an error caused by graph.ErrCycle.
func Order(invs []*tool.Invocation) ([]*tool.Invocation, error) {
	g := Graph(invs)
	if _, err := g.Ordered(); err != nil {
		return nil, err
	}

	position := make(map[*tool.Invocation]int, len(invs))
	for i, inv := range invs {
		if _, ok := position[inv]; !ok {
			position[inv] = i
		}
	}

	pending := make(map[*tool.Invocation]int, g.Len())
	q := newQueue(g.Len())
	for _, inv := range g.Nodes() {
		pending[inv] = len(g.Dependencies(inv))
		if pending[inv] == 0 {
			q.Insert(entry{inv: inv, index: position[inv]})
		}
	}

	out := make([]*tool.Invocation, 0, g.Len())
	for {
		e, ok := q.Pop()
		if !ok {
			break
		}
		out = append(out, e.inv)
		for _, d := range g.Dependents(e.inv) {
			pending[d]--
			if pending[d] == 0 {
				q.Insert(entry{inv: d, index: position[d]})
			}
		}
	}
	return out, nil
}
