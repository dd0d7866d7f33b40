package tool

import (
	"path"

	"github.com/juju/errgo"

	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/spec"
)

// Log titles of copies.
const (
	CopyTitle         = "PBXCp"
	CopyHeaderTitle   = "CpHeader"
	CopyResourceTitle = "CpResource"
)

// CopyResolver copies files into a directory.
type CopyResolver struct {
	Tool *spec.Tool
}

func NewCopyResolver(r *spec.Registry, domains []string) (*CopyResolver, error) {
	t := r.Tool(CopyIdentifier, domains)
	if t == nil {
		return nil, errgo.WithCausef(nil, ErrToolNotFound, "copy tool not found")
	}
	return &CopyResolver{Tool: t}, nil
}

// Resolve copies inputs into outputDir, keeping their names.
func (r *CopyResolver) Resolve(ctx *Context, env setting.Environment, inputs []Input, outputDir, title string) *Invocation {
	env = env.InsertFront(setting.NewLevel(setting.Create("pbxcp_rule_name", title)), false)

	outputs := make([]string, 0, len(inputs))
	args := make([]string, 0, len(inputs)+1)
	for _, in := range inputs {
		outputs = append(outputs, outputDir+"/"+path.Base(in.Path))
		args = append(args, in.Path)
	}
	args = append(args, outputDir)

	te := NewEnvironment(r.Tool, env, ctx.WorkingDirectory, inputs, outputs)
	opts := NewOptions(r.Tool, te.Settings, ctx.SearchPaths, nil)
	tokens := NewTokens(te, ctx.WorkingDirectory, opts, "", args)

	inv := newInvocation(ctx, te, tokens, opts)
	if r.Tool.DeeplyStatInputDirectories {
		inv.DependencyInfo = directoryDependencies(inputPaths(inputs))
	}
	ctx.Add(inv)
	return inv
}
