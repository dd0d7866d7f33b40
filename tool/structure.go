package tool

import (
	"github.com/juju/errgo"

	"github.com/vron/xcbuild/spec"
)

// StructureResolver creates the layout of products: directories, symbolic
// links, and the final touch of a wrapper.
type StructureResolver struct {
	Mkdir, Touch, Symlink *spec.Tool
}

// NewStructureResolver finds the structure tools. The tools are optional
// but their absence fails the resolution needing them.
func NewStructureResolver(r *spec.Registry, domains []string) *StructureResolver {
	return &StructureResolver{
		Mkdir:   r.Tool(MkdirIdentifier, domains),
		Touch:   r.Tool(TouchIdentifier, domains),
		Symlink: r.Tool(SymlinkIdentifier, domains),
	}
}

func missing(name string) error {
	return errgo.WithCausef(nil, ErrToolNotFound, "%s tool not found", name)
}

// MakeDirectory creates dir and its parents.
func (r *StructureResolver) MakeDirectory(ctx *Context, dir string, productStructure bool) (*Invocation, error) {
	if r.Mkdir == nil {
		return nil, missing("mkdir")
	}
	inv := &Invocation{
		Executable:              External("/bin/mkdir"),
		Arguments:               []string{"-p", dir},
		WorkingDirectory:        ctx.WorkingDirectory,
		Outputs:                 []string{dir},
		LogMessage:              "MkDir " + dir,
		CreatesProductStructure: productStructure,
	}
	ctx.Add(inv)
	return inv, nil
}

// Link makes symlink point to target, relative to wd.
func (r *StructureResolver) Link(ctx *Context, wd, symlink, target string, productStructure bool) (*Invocation, error) {
	if r.Symlink == nil {
		return nil, missing("symlink")
	}
	inv := &Invocation{
		Executable:              External("/bin/ln"),
		Arguments:               []string{"-sfh", target, symlink},
		WorkingDirectory:        wd,
		PhonyOutputs:            []string{symlink},
		LogMessage:              "SymLink " + symlink + " " + target,
		CreatesProductStructure: productStructure,
	}
	ctx.Add(inv)
	return inv, nil
}

// TouchProduct updates the time of p after all of deps are built.
func (r *StructureResolver) TouchProduct(ctx *Context, p string, deps []string) (*Invocation, error) {
	if r.Touch == nil {
		return nil, missing("touch")
	}
	inv := &Invocation{
		Executable:        External("/usr/bin/touch"),
		Arguments:         []string{"-c", p},
		WorkingDirectory:  ctx.WorkingDirectory,
		PhonyOutputs:      []string{p},
		InputDependencies: deps,
		LogMessage:        "Touch " + p,
	}
	ctx.Add(inv)
	return inv, nil
}
