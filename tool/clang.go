package tool

import (
	"path"
	"strings"

	"github.com/juju/errgo"

	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/spec"
)

// ClangResolver compiles C family sources into objects.
type ClangResolver struct {
	Compiler *spec.Compiler
}

// NewClangResolver finds the compiler id, falling back to the default
// clang.
func NewClangResolver(r *spec.Registry, domains []string, id string) (*ClangResolver, error) {
	c := r.Compiler(id, domains)
	if c == nil {
		c = r.Compiler(ClangIdentifier, domains)
	}
	if c == nil {
		return nil, errgo.WithCausef(nil, ErrToolNotFound, "compiler %q not found", id)
	}
	return &ClangResolver{Compiler: c}, nil
}

func dialectOf(ft *spec.FileType) string {
	if ft == nil {
		return ""
	}
	return ft.GCCDialectName
}

func isCPlusPlus(dialect string) bool {
	return len(dialect) > 2 && strings.HasSuffix(dialect, "++")
}

func dialectArgs(dialect, suffix string) []string {
	if dialect == "" {
		return nil
	}
	return []string{"-x", dialect + suffix}
}

// compound adds prefix before each value, joined to it when concatenate
// is set and as a separate argument otherwise.
func compound(prefix string, concatenate bool, values []string) []string {
	var out []string
	for _, v := range values {
		if concatenate {
			out = append(out, prefix+v)
		} else {
			out = append(out, prefix, v)
		}
	}
	return out
}

func (r *ClangResolver) includeArgs(env setting.Environment, sp *SearchPaths, hm HeadermapInfo) []string {
	var args []string
	if r.Compiler.SupportsHeadermaps || len(hm.UserHeadermapFiles)+len(hm.SystemHeadermapFiles) > 0 {
		args = append(args, compound("-iquote", false, hm.UserHeadermapFiles)...)
		args = append(args, compound("-I", true, hm.SystemHeadermapFiles)...)
	}
	args = append(args, compound("-I", true, []string{env.Resolve("BUILT_PRODUCTS_DIR") + "/include"})...)
	if sp != nil {
		if setting.ParseBoolean(env.Resolve("ALWAYS_SEARCH_USER_PATHS")) {
			args = append(args, compound("-I", true, sp.UserHeader)...)
		} else {
			args = append(args, compound("-iquote", false, sp.UserHeader)...)
		}
		args = append(args, compound("-I", true, sp.Header)...)
	}
	derived := env.Resolve("DERIVED_FILE_DIR")
	args = append(args, compound("-I", true, []string{
		derived + "-" + env.Resolve("CURRENT_VARIANT") + "/" + env.Resolve("arch"),
		derived + "/" + env.Resolve("arch"),
		derived,
	})...)
	args = append(args, compound("-F", true, []string{env.Resolve("BUILT_PRODUCTS_DIR")})...)
	if sp != nil {
		args = append(args, compound("-F", true, sp.Framework)...)
	}
	return args
}

func customArgs(env setting.Environment, dialect string) []string {
	names := []string{"WARNING_CFLAGS", "OPTIMIZATION_CFLAGS"}
	if isCPlusPlus(dialect) {
		names = append(names, "OTHER_CPLUSPLUSFLAGS")
	} else {
		names = append(names, "OTHER_CFLAGS")
	}
	names = append(names,
		"OTHER_CFLAGS_"+env.Resolve("CURRENT_VARIANT"),
		"PER_ARCH_CFLAGS_"+env.Resolve("CURRENT_ARCH"))
	var args []string
	for _, n := range names {
		args = append(args, env.ResolveList(n)...)
	}
	return args
}

func notUsedInPrecompsArgs(env setting.Environment) []string {
	args := compound("-D", true, env.ResolveList("GCC_PREPROCESSOR_DEFINITIONS_NOT_USED_IN_PRECOMPS"))
	return append(args, env.ResolveList("GCC_OTHER_CFLAGS_NOT_USED_IN_PRECOMPS")...)
}

func (r *ClangResolver) dependencyArgs(env setting.Environment) []string {
	var args []string
	for _, a := range r.Compiler.DependencyInfoArgs {
		args = append(args, env.Expand(setting.ParseValue(a)))
	}
	return args
}

func (r *ClangResolver) inputOutputArgs(input, output string) []string {
	opt := r.Compiler.SourceFileOption
	if opt == "" {
		opt = "-c"
	}
	return []string{opt, input, "-o", output}
}

func (r *ClangResolver) dependencyInfo(env setting.Environment) []DependencyInfo {
	if r.Compiler.DependencyInfoFile == "" {
		return nil
	}
	return []DependencyInfo{{
		Format: DependencyMakefile,
		Path:   env.Expand(setting.ParseValue(r.Compiler.DependencyInfoFile)),
	}}
}

func (r *ClangResolver) logMessage(title, input, dialect, output string, env setting.Environment, wd string) string {
	words := []string{title, output, relativePath(resolvePath(input, wd), wd), env.Resolve("variant"), env.Resolve("arch")}
	if dialect != "" {
		words = append(words, dialect)
	}
	words = append(words, r.Compiler.Identifier)
	return strings.Join(words, " ")
}

// Output is the object path of input in outputDir.
func (r *ClangResolver) Output(env setting.Environment, input Input, outputDir string) string {
	dir := outputDir
	if r.Compiler.OutputDir != "" {
		dir = env.Expand(setting.ParseValue(r.Compiler.OutputDir))
	}
	ext := r.Compiler.OutputFileExtension
	if ext == "" {
		ext = "o"
	}
	base := strings.TrimSuffix(path.Base(input.Path), path.Ext(input.Path))
	if input.Disambiguator != "" {
		base = input.Disambiguator
	}
	return dir + "/" + base + "." + ext
}

// Resolve compiles input into outputDir. A prefix header is compiled
// first if the settings ask for it, once per distinct set of arguments.
func (r *ClangResolver) Resolve(ctx *Context, env setting.Environment, input Input, outputDir string) *Invocation {
	output := r.Output(env, input, outputDir)
	dialect := dialectOf(input.FileType)
	wd := ctx.WorkingDirectory

	te := NewEnvironment(&r.Compiler.Tool, env, wd, []Input{input}, []string{output})
	tenv := te.Settings
	opts := NewOptions(&r.Compiler.Tool, tenv, ctx.SearchPaths, input.FileType)
	tokens := NewTokens(te, wd, opts, "", nil)

	var deps []string
	deps = append(deps, ctx.Headermaps.SystemHeadermapFiles...)
	deps = append(deps, ctx.Headermaps.UserHeadermapFiles...)

	var b ArgumentBuilder
	b.Add(ReasonDialect, dialectArgs(dialect, "")...)
	b.Add(ReasonOptions, tokens.Arguments...)
	b.Add(ReasonPaths, r.includeArgs(tenv, ctx.SearchPaths, ctx.Headermaps)...)
	b.Add(ReasonCustom, customArgs(tenv, dialect)...)

	var pch *PrecompiledHeader
	if prefix := tenv.Resolve("GCC_PREFIX_HEADER"); prefix != "" {
		prefix = resolvePath(prefix, wd)
		if setting.ParseBoolean(tenv.Resolve("GCC_PRECOMPILE_PREFIX_HEADER")) {
			pchArgs := dialectArgs(dialect, "-header")
			pchArgs = append(pchArgs, b.Without(ReasonDialect)...)
			pchArgs = append(pchArgs, input.CompilerFlags...)
			pch = NewPrecompiledHeader(r.Compiler, prefix, input.FileType, pchArgs)
			b.Add(ReasonPrefixHeader, "-include", tenv.Expand(pch.LogicalPath()))
			deps = append(deps, tenv.Expand(pch.CompilePath()))
		} else {
			b.Add(ReasonPrefixHeader, "-include", prefix)
			deps = append(deps, prefix)
		}
	}

	b.Add(ReasonNotPrecomps, notUsedInPrecompsArgs(tenv)...)
	b.Add(ReasonFile, input.CompilerFlags...)
	b.Add(ReasonDependencies, r.dependencyArgs(tenv)...)
	b.Add(ReasonInputOutput, r.inputOutputArgs(input.Path, output)...)
	args := b.Arguments()

	inv := newInvocation(ctx, te, tokens, opts)
	inv.Arguments = args
	inv.InputDependencies = deps
	inv.DependencyInfo = r.dependencyInfo(tenv)
	inv.LogMessage = r.logMessage("CompileC", input.Path, dialect, output, tenv, wd)
	ctx.Add(inv)

	key := VariantArch{Variant: env.Resolve("variant"), Arch: env.Resolve("arch")}
	ctx.VariantArchitectureInvocations[key] = append(ctx.VariantArchitectureInvocations[key], inv)

	if pch != nil {
		hash := pch.Hash()
		if _, ok := ctx.Compilation.PrecompiledHeaders[hash]; !ok {
			ctx.Compilation.PrecompiledHeaders[hash] = pch
			r.resolvePrecompiledHeader(ctx, env, pch)
		}
	}

	if isCPlusPlus(dialect) && r.Compiler.ExecCPlusPlusLinkerPath != "" {
		ctx.Compilation.LinkerDriver = r.Compiler.ExecCPlusPlusLinkerPath
	} else if ctx.Compilation.LinkerDriver == "" && r.Compiler.ExecPath != "" {
		ctx.Compilation.LinkerDriver = r.Compiler.ExecPath
	}
	ctx.Compilation.addLinkerArgs(opts.LinkerArgs)
	return inv
}

func (r *ClangResolver) resolvePrecompiledHeader(ctx *Context, env setting.Environment, pch *PrecompiledHeader) {
	wd := ctx.WorkingDirectory
	input := Input{Path: pch.PrefixHeader, FileType: pch.FileType}
	output := env.Expand(pch.CompilePath())

	te := NewEnvironment(&r.Compiler.Tool, env, wd, []Input{input}, []string{output})
	tenv := te.Settings
	opts := NewOptions(&r.Compiler.Tool, tenv, ctx.SearchPaths, pch.FileType)
	tokens := NewTokens(te, wd, opts, "", nil)

	args := append([]string(nil), pch.Arguments...)
	args = append(args, r.dependencyArgs(tenv)...)
	args = append(args, r.inputOutputArgs(input.Path, output)...)

	dialect := dialectOf(pch.FileType)
	title := "ProcessPCH"
	if isCPlusPlus(dialect) {
		title = "ProcessPCH++"
	}

	inv := newInvocation(ctx, te, tokens, opts)
	inv.Arguments = args
	inv.DependencyInfo = r.dependencyInfo(tenv)
	inv.LogMessage = r.logMessage(title, input.Path, dialect, output, tenv, wd)
	ctx.Add(inv)

	ctx.AddAuxiliary(AuxiliaryFile{
		Path:     tenv.Expand(pch.CriteriaPath()),
		Contents: pch.Serialize(),
	})
}
