package tool

import (
	"github.com/juju/errgo"

	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/spec"
)

// Identifiers of the tools the build knows how to drive.
const (
	ClangIdentifier        = "com.apple.compilers.llvm.clang.1_0"
	CopyIdentifier         = "com.apple.compilers.pbxcp"
	ScriptIdentifier       = "com.apple.commands.shell-script"
	HeadermapIdentifier    = "com.apple.commands.built-in.headermap-generator"
	LinkerIdentifier       = "com.apple.pbx.linkers.ld"
	LibtoolIdentifier      = "com.apple.pbx.linkers.libtool"
	LipoIdentifier         = "com.apple.xcode.linkers.lipo"
	DsymutilIdentifier     = "com.apple.tools.dsymutil"
	MkdirIdentifier        = "com.apple.tools.mkdir"
	TouchIdentifier        = "com.apple.tools.touch"
	SymlinkIdentifier      = "com.apple.tools.symlink"
	InfoPlistIdentifier    = "com.apple.tools.info-plist-utility"
	AssetCatalogIdentifier = "com.apple.compilers.assetcatalog"
	PreprocessIdentifier   = "com.apple.compilers.cpp"
	CopyStringsIdentifier  = "com.apple.build-tasks.copy-strings-file"
)

// ErrToolNotFound is the cause of errors finding a tool specification.
var ErrToolNotFound = errgo.New("tool not found")

// Resolver resolves any tool generically, from its specification alone.
type Resolver struct {
	Tool *spec.Tool
}

// NewResolver finds the tool id, of any tool type, in domains.
func NewResolver(r *spec.Registry, domains []string, id string) (*Resolver, error) {
	t := r.AnyTool(id, domains)
	if t == nil {
		return nil, errgo.WithCausef(nil, ErrToolNotFound, "tool %q not found", id)
	}
	return &Resolver{Tool: t}, nil
}

// Resolve adds an invocation of the tool on inputs. A non-empty
// logMessage replaces the tool's own.
func (r *Resolver) Resolve(ctx *Context, env setting.Environment, inputs []Input, outputs []string, logMessage string) *Invocation {
	te := NewEnvironment(r.Tool, env, ctx.WorkingDirectory, inputs, outputs)
	var ft *spec.FileType
	if len(inputs) > 0 {
		ft = inputs[0].FileType
	}
	opts := NewOptions(r.Tool, te.Settings, ctx.SearchPaths, ft)
	tokens := NewTokens(te, ctx.WorkingDirectory, opts, "", nil)

	inv := newInvocation(ctx, te, tokens, opts)
	if logMessage != "" {
		inv.LogMessage = logMessage
	}
	if r.Tool.DeeplyStatInputDirectories {
		inv.DependencyInfo = directoryDependencies(inv.Inputs)
	}
	ctx.Add(inv)
	return inv
}

func newInvocation(ctx *Context, te *Environment, tokens *Tokens, opts *Options) *Invocation {
	inv := &Invocation{
		Executable:       DetermineExecutable(tokens.Executable),
		Arguments:        tokens.Arguments,
		WorkingDirectory: ctx.WorkingDirectory,
		Inputs:           te.InputPaths(ctx.WorkingDirectory),
		Outputs:          te.OutputPaths(ctx.WorkingDirectory),
		LogMessage:       tokens.LogMessage,
	}
	if opts != nil {
		inv.Environment = opts.Environment
	}
	return inv
}

func directoryDependencies(inputs []string) []DependencyInfo {
	out := make([]DependencyInfo, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, DependencyInfo{Format: DependencyDirectory, Path: in})
	}
	return out
}
