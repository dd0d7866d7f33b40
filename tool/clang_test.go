package tool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vron/xcbuild/spec"
)

func TestNewEnvironmentOutputs(t *testing.T) {
	e := testEnv(
		"TARGET_BUILD_DIR", "/b",
		"UNLOCALIZED_RESOURCES_FOLDER_PATH", "App.app/Resources",
		"DERIVED", "/d",
	)

	tl := newTool()
	tl.OutputPath = "$(ProductResourcesDir)/$(InputFileBase).out"
	te := NewEnvironment(tl, e, "/w", []Input{{Path: "fr.lproj/x.strings", Localization: "fr"}}, []string{"ignored"})
	assert.Equal(t, []string{"/b/App.app/Resources/fr.lproj/x.out"}, te.Outputs)
	assert.Equal(t, []string{"/w/fr.lproj/x.strings"}, te.InputPaths("/w"))
	assert.Equal(t, "x.strings", te.Settings.Resolve("InputFileName"))
	assert.Equal(t, "fr.lproj/x.strings", te.Settings.Resolve("InputFileRelativePath"))

	tl = newTool()
	tl.Outputs = []string{"$(DERIVED)/a.h", "$(DERIVED)/b.h"}
	te = NewEnvironment(tl, e, "/w", nil, []string{"ignored"})
	assert.Equal(t, []string{"/d/a.h", "/d/b.h"}, te.Outputs)
	assert.Equal(t, "/d/a.h", te.Settings.Resolve("OutputPath"))

	te = NewEnvironment(newTool(), e, "/w", nil, []string{"rel/out"})
	assert.Equal(t, []string{"/w/rel/out"}, te.OutputPaths("/w"))
}

func TestNewTokens(t *testing.T) {
	tl := newTool(spec.PropertyOption{Name: "LEVEL", Type: spec.OptionString, CommandLinePrefixFlag: "-O", DefaultValue: "2"})
	tl.ExecPath = "$(TOOLS)/cc"
	tl.CommandLine = "[exec-path] -in [input] [options] -o [output] $(EXTRA) [special-args]"
	tl.RuleName = "Do $(LEVEL) [output] [input]"

	te := NewEnvironment(tl, testEnv("TOOLS", "/t", "EXTRA", "x"), "/w", []Input{PathInput("a.c")}, []string{"out/a.o"})
	opts := NewOptions(tl, te.Settings, nil, nil)
	tokens := NewTokens(te, "/w", opts, "", []string{"-special"})
	assert.Equal(t, "/t/cc", tokens.Executable)
	assert.Equal(t, []string{"-in", "/w/a.c", "-O2", "-o", "/w/out/a.o", "x", "-special"}, tokens.Arguments)
	assert.Equal(t, "Do 2 /w/out/a.o /w/a.c", tokens.LogMessage)

	tl.CommandLine = ""
	tokens = NewTokens(te, "/w", opts, "other", []string{"-special"})
	assert.Equal(t, "other", tokens.Executable)
	assert.Equal(t, []string{"-O2", "-special"}, tokens.Arguments)
}

func TestDetermineExecutable(t *testing.T) {
	assert.Equal(t, Executable{Builtin: "builtin-copy"}, DetermineExecutable("builtin-copy"))
	assert.Equal(t, "/bin/cp", DetermineExecutable("/bin/cp").String())
	assert.True(t, Executable{}.IsEmpty())
}

func TestPrecompiledHeader(t *testing.T) {
	c := &spec.Compiler{PatternsOfFlagsNotAffectingPrecomps: []string{"-W*", "-DMAIN=*"}}
	c.Identifier = ClangIdentifier

	a := NewPrecompiledHeader(c, "/s/prefix.h", nil, []string{"-x", "c-header", "-Wall", "-O0", "-DMAIN=1"})
	b := NewPrecompiledHeader(c, "/s/prefix.h", nil, []string{"-x", "c-header", "-Wextra", "-O0"})
	assert.Equal(t, []string{"-x", "c-header", "-O0"}, a.RelevantArguments)
	assert.Equal(t, "-x\nc-header\n-O0\n"+ClangIdentifier+"\n", string(a.Serialize()))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.Len(t, a.Hash(), 32)

	other := &spec.Compiler{}
	other.Identifier = "gcc"
	assert.NotEqual(t, a.Hash(), NewPrecompiledHeader(other, "/s/prefix.h", nil, a.Arguments).Hash())
}

func clangCompiler() *spec.Compiler {
	c := &spec.Compiler{
		ExecCPlusPlusLinkerPath:             "clang++",
		PatternsOfFlagsNotAffectingPrecomps: []string{"-DMAIN=*"},
		SourceFileOption:                    "-c",
		OutputFileExtension:                 "o",
	}
	c.Identifier = ClangIdentifier
	c.ExecPath = "clang"
	return c
}

func cFile(p string, flags ...string) Input {
	return Input{
		Path:          p,
		FileType:      &spec.FileType{Base: spec.Base{Identifier: "sourcecode.c.c"}, GCCDialectName: "c"},
		CompilerFlags: flags,
	}
}

func TestClangResolvePrecompiledHeaders(t *testing.T) {
	e := testEnv(
		"GCC_PREFIX_HEADER", "prefix.h",
		"GCC_PRECOMPILE_PREFIX_HEADER", "YES",
		"PRECOMP_DESTINATION_DIR", "/pch",
		"PRODUCT_NAME", "App",
		"BUILT_PRODUCTS_DIR", "/p",
		"DERIVED_FILE_DIR", "/d",
		"variant", "normal",
		"CURRENT_VARIANT", "normal",
		"arch", "x86_64",
		"CURRENT_ARCH", "x86_64",
	)
	ctx := NewContext(nil, nil, "/s", nil)
	r := &ClangResolver{Compiler: clangCompiler()}

	a := r.Resolve(ctx, e, cFile("/s/a.c", "-DMAIN=1"), "/o")
	b := r.Resolve(ctx, e, cFile("/s/b.c", "-DMAIN=2"), "/o")
	c := r.Resolve(ctx, e, cFile("/s/c.c", "-DOTHER"), "/o")

	var pchs []*Invocation
	for _, inv := range ctx.Invocations {
		if strings.HasPrefix(inv.LogMessage, "ProcessPCH ") {
			pchs = append(pchs, inv)
		}
	}
	require.Len(t, pchs, 2)
	assert.Len(t, ctx.Compilation.PrecompiledHeaders, 2)
	assert.Len(t, ctx.AuxiliaryFiles, 2)

	pch := pchs[0].Outputs[0]
	assert.True(t, strings.HasPrefix(pch, "/pch/App-"), pch)
	assert.True(t, strings.HasSuffix(pch, "/prefix.h.pch"), pch)
	assert.Equal(t, []string{"-x", "c-header"}, pchs[0].Arguments[:2])
	assert.Equal(t, []string{"-c", "/s/prefix.h", "-o", pch}, pchs[0].Arguments[len(pchs[0].Arguments)-4:])

	for _, inv := range []*Invocation{a, b} {
		assert.Contains(t, inv.InputDependencies, pch)
		assert.Contains(t, inv.Arguments, strings.TrimSuffix(pch, ".pch"))
	}
	assert.NotContains(t, c.InputDependencies, pch)

	assert.Equal(t, []string{"/o/a.o"}, a.Outputs)
	assert.Equal(t, "CompileC /o/a.o a.c normal x86_64 c "+ClangIdentifier, a.LogMessage)
	assert.Equal(t, []string{"-c", "/s/a.c", "-o", "/o/a.o"}, a.Arguments[len(a.Arguments)-4:])
	assert.Len(t, ctx.VariantArchitectureInvocations[VariantArch{Variant: "normal", Arch: "x86_64"}], 3)
	assert.Equal(t, "clang", ctx.Compilation.LinkerDriver)
}

func TestClangResolveLinkerDriver(t *testing.T) {
	ctx := NewContext(nil, nil, "/s", nil)
	r := &ClangResolver{Compiler: clangCompiler()}
	cpp := cFile("/s/x.cpp")
	cpp.FileType.GCCDialectName = "c++"
	cpp.Disambiguator = "x-1"

	inv := r.Resolve(ctx, testEnv("variant", "normal", "arch", "x86_64"), cpp, "/o")
	assert.Equal(t, []string{"/o/x-1.o"}, inv.Outputs)
	assert.Equal(t, []string{"-x", "c++"}, inv.Arguments[:2])
	assert.Equal(t, "clang++", ctx.Compilation.LinkerDriver)

	r.Resolve(ctx, testEnv("variant", "normal", "arch", "x86_64"), cFile("/s/y.c"), "/o")
	assert.Equal(t, "clang++", ctx.Compilation.LinkerDriver)
}

func TestContextPriorities(t *testing.T) {
	ctx := NewContext(nil, nil, "/", nil)
	first := &Invocation{}
	ctx.Add(first)
	ctx.NextPhase()
	second := &Invocation{Outputs: []string{"/x"}}
	ctx.Add(second)
	assert.Equal(t, 0x100, first.Priority)
	assert.Equal(t, 0x200, second.Priority)
	assert.Equal(t, []string{"/x"}, ctx.Outputs())

	var ci CompilationInfo
	ci.addLinkerArgs([]string{"-a", "-b"})
	ci.addLinkerArgs([]string{"-b", "-c"})
	assert.Equal(t, []string{"-a", "-b", "-c"}, ci.LinkerArgs)
}
