package executor

import (
	"testing"

	"github.com/mongodb/grip/logging"
	"github.com/mongodb/grip/send"
	"github.com/stretchr/testify/assert"

	"github.com/vron/xcbuild/build"
	"github.com/vron/xcbuild/project"
	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/tool"
)

func TestFormatterBegin(t *testing.T) {
	f := &DefaultFormatter{}
	p := &project.Project{Name: "App", DefaultConfiguration: "Release"}

	assert.Equal(t, "", f.Begin(build.NewContext(p, "", "Debug")))
	assert.Equal(t, "Build settings from the command line:\n    A=1\n    B=2\n\n",
		f.Begin(build.NewContext(p, "", "Debug", setting.NewLevel(setting.Create("B", "2"), setting.Create("A", "1")))))
}

func TestFormatterTarget(t *testing.T) {
	f := &DefaultFormatter{}
	p := &project.Project{Name: "App", DefaultConfiguration: "Release"}
	native := &project.Target{Name: "App", Kind: project.TargetNative, Project: p}
	legacy := &project.Target{Name: "Docs", Kind: project.TargetLegacy, Project: p}

	assert.Equal(t, "=== BUILD TARGET App OF PROJECT App WITH CONFIGURATION Debug ===\n\n",
		f.BeginTarget(build.NewContext(p, build.ActionBuild, "Debug"), native))
	assert.Equal(t, "=== CLEAN LEGACY TARGET Docs OF PROJECT App WITH THE DEFAULT CONFIGURATION (Release) ===\n\n",
		f.BeginTarget(build.NewContext(p, build.ActionClean, ""), legacy))

	assert.Equal(t, "Check dependencies\n", f.BeginCheckDependencies(native))
	assert.Equal(t, "", f.BeginCheckDependencies(legacy))
	assert.Equal(t, "\n", f.FinishWriteAuxiliaryFiles(native))
	assert.Equal(t, "", f.BeginCreateProductStructure(legacy))
}

func TestFormatterResult(t *testing.T) {
	f := &DefaultFormatter{}
	bc := &build.Context{Action: build.ActionInstall}
	failed := []*tool.Invocation{
		{LogMessage: "CompileC a.o a.c"},
		{Executable: tool.External("/bin/sh")},
	}

	assert.Equal(t, "** INSTALL SUCCEEDED **\n", f.Success(bc))
	assert.Equal(t, "** INSTALL FAILED **\n", f.Failure(bc, nil))
	assert.Equal(t, "** INSTALL FAILED **\n\nThe following build commands failed:\n    CompileC a.o a.c\n    /bin/sh\n(2 failures)\n",
		f.Failure(bc, failed))
	assert.Contains(t, f.Failure(bc, failed[:1]), "(1 failure)\n")

	color := &DefaultFormatter{Color: true}
	assert.Equal(t, "\033[1m\x1b[32m** INSTALL SUCCEEDED **\033[22m\x1b[0m\n", color.Success(bc))
}

func TestFormatterInvocation(t *testing.T) {
	f := &DefaultFormatter{}
	inv := &tool.Invocation{
		Executable:           tool.External("clang"),
		Arguments:            []string{"-c", "a.c"},
		Environment:          map[string]string{"LANG": "C", "ARCH": "x86_64"},
		WorkingDirectory:     "/src",
		LogMessage:           "CompileC a.o a.c",
		ShowEnvironmentInLog: true,
	}
	assert.Equal(t, "CompileC a.o a.c\n"+
		"    cd /src\n"+
		"    export ARCH=x86_64\n"+
		"    export LANG=C\n"+
		"    /usr/bin/clang -c a.c\n", f.BeginInvocation(inv, "/usr/bin/clang", false))
	assert.Equal(t, "\n", f.FinishInvocation(inv, "/usr/bin/clang", false))

	assert.Equal(t, "/usr/bin/clang -c a.c\n", f.BeginInvocation(inv, "/usr/bin/clang", true))
	assert.Equal(t, "", f.FinishInvocation(inv, "/usr/bin/clang", true))

	color := &DefaultFormatter{Color: true}
	inv.ShowEnvironmentInLog = false
	assert.Equal(t, "\033[1mCompileC\033[22m a.o a.c\n    cd /src\n    clang -c a.c\n", color.BeginInvocation(inv, "clang", false))
}

func TestShow(t *testing.T) {
	sender := send.NewMockSender("test")
	log := logging.MakeGrip(sender)

	show(log, "")
	show(log, "\n\n")
	show(log, "one\ntwo\n\n")
	if assert.Len(t, sender.Messages, 1) {
		assert.Equal(t, "one\ntwo", sender.Messages[0].String())
	}
}
