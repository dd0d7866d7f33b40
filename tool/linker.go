package tool

import (
	"path"
	"strings"

	"github.com/juju/errgo"

	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/spec"
)

// LinkerResolver links objects and libraries into a binary. It serves ld,
// libtool and lipo alike.
type LinkerResolver struct {
	Linker *spec.Linker
}

func NewLinkerResolver(r *spec.Registry, domains []string, id string) (*LinkerResolver, error) {
	l := r.Linker(id, domains)
	if l == nil {
		return nil, errgo.WithCausef(nil, ErrToolNotFound, "linker %q not found", id)
	}
	return &LinkerResolver{Linker: l}, nil
}

// Resolve links files and libraries into output. A non-empty executable
// replaces the linker's own, as when linking through a compiler driver.
func (r *LinkerResolver) Resolve(ctx *Context, env setting.Environment, files, libraries []Input, output string, args []string, executable string) *Invocation {
	id := r.Linker.Identifier
	special := append([]string(nil), args...)

	var aux []AuxiliaryFile
	if r.Linker.SupportsInputFileList || id == LibtoolIdentifier {
		var b strings.Builder
		for _, f := range files {
			b.WriteString(f.Path)
			b.WriteByte('\n')
		}
		aux = append(aux, AuxiliaryFile{
			Path:     env.Expand(setting.ParseValue("$(LINK_FILE_LIST_$(variant)_$(arch))")),
			Contents: []byte(b.String()),
		})
	}

	var dirs []string
	for _, lib := range libraries {
		if lib.FileType != nil && lib.FileType.IsFrameworkWrapper {
			continue
		}
		dir := path.Dir(lib.Path)
		if len(dirs) == 0 || dirs[len(dirs)-1] != dir {
			dirs = append(dirs, dir)
		}
	}
	special = append(special, compound("-L", true, dirs)...)

	if id != LibtoolIdentifier || env.Resolve("MACH_O_TYPE") != "staticlib" {
		special = append(special, "-F"+env.Resolve("BUILT_PRODUCTS_DIR"))
	}

	var deps []string
	for _, lib := range libraries {
		base := strings.TrimSuffix(path.Base(lib.Path), path.Ext(lib.Path))
		if lib.FileType != nil && lib.FileType.IsFrameworkWrapper {
			special = append(special, "-framework", base)
		} else {
			special = append(special, "-l"+strings.TrimPrefix(base, "lib"))
		}
		deps = append(deps, lib.Path)
	}

	var info []DependencyInfo
	if id == LinkerIdentifier && r.Linker.DependencyInfoFile != "" {
		if p := env.Expand(setting.ParseValue(r.Linker.DependencyInfoFile)); p != "" {
			info = append(info, DependencyInfo{Format: DependencyBinary, Path: p})
			special = append(special, "-Xlinker", "-dependency_info", "-Xlinker", p)
		}
	}

	te := NewEnvironment(&r.Linker.Tool, env, ctx.WorkingDirectory, files, []string{output})
	opts := NewOptions(&r.Linker.Tool, te.Settings, ctx.SearchPaths, nil)
	tokens := NewTokens(te, ctx.WorkingDirectory, opts, executable, special)

	arguments := tokens.Arguments
	if id == LipoIdentifier {
		kept := arguments[:0:0]
		for _, a := range arguments {
			if a != "-arch_only" {
				kept = append(kept, a)
			}
		}
		arguments = kept
	}

	inv := newInvocation(ctx, te, tokens, opts)
	inv.Arguments = arguments
	inv.InputDependencies = resolvePaths(deps, ctx.WorkingDirectory)
	inv.DependencyInfo = info
	ctx.Add(inv)
	ctx.AddAuxiliary(aux...)
	return inv
}
