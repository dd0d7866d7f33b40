package build

import (
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"

	"github.com/vron/xcbuild/graph"
	"github.com/vron/xcbuild/project"
)

type dependencies struct {
	g       *graph.Graph[*project.Target]
	visited map[*project.Target]bool
	// products maps product names to the native target building them.
	products map[string]*project.Target
}

// visit adds t and, recursively, everything it depends on. Explicit
// dependencies are named by the target; implicit ones are frameworks and
// copied files that are the product of another target.
func (d *dependencies) visit(t *project.Target) {
	if d.visited[t] {
		return
	}
	d.visited[t] = true
	d.g.Add(t)

	for _, ph := range t.Phases {
		if ph.Kind != project.PhaseFrameworks && ph.Kind != project.PhaseCopyFiles {
			continue
		}
		for _, bf := range ph.Files {
			if bf.FileRef == nil {
				continue
			}
			dep, ok := d.products[bf.FileRef.DisplayName()]
			if !ok || dep == t {
				continue
			}
			grip.Debug(message.Fields{
				"message":    "implicit dependency",
				"target":     t.Name,
				"dependency": dep.Name,
			})
			d.g.Depend(t, dep)
			d.visit(dep)
		}
	}

	for _, name := range t.Dependencies {
		dep := t.Project.Target(name)
		if dep == nil {
			grip.Warningf("target '%s' depends on missing target '%s'", t.Name, name)
			continue
		}
		d.g.Depend(t, dep)
		d.visit(dep)
	}
}

// TargetGraph returns the graph of the targets needed to build targets.
// All targets of the project are built when none are given.
func (c *Context) TargetGraph(targets []*project.Target) *graph.Graph[*project.Target] {
	d := &dependencies{
		g:        graph.New[*project.Target](),
		visited:  map[*project.Target]bool{},
		products: map[string]*project.Target{},
	}
	d.g.Name = func(t *project.Target) string { return t.Name }
	for _, t := range c.Project.Targets {
		if t.Kind == project.TargetNative && t.ProductReference != "" {
			d.products[t.ProductReference] = t
		}
	}
	if len(targets) == 0 {
		targets = c.Project.Targets
	}
	for _, t := range targets {
		d.visit(t)
	}
	return d.g
}

// OrderedTargets returns the targets needed to build targets with every
// dependency first. A dependency cycle is an error.
func (c *Context) OrderedTargets(targets []*project.Target) ([]*project.Target, error) {
	return c.TargetGraph(targets).Ordered()
}
