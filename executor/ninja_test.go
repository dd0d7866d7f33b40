package executor

import (
	"context"
	"path"
	"strings"
	"testing"

	"github.com/juju/errgo"
	"github.com/mongodb/grip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vron/xcbuild/build/buildtest"
	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/phase"
	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/tool"
)

const (
	intermediates = "/build/Intermediates"
	buildNinja    = intermediates + "/build.ninja"
)

func newNinja(t *testing.T, fs *filesystem.Memory, overrides ...setting.Level) (*Ninja, *launcher, *buildtest.Fixture) {
	f := buildtest.New(t, fs, overrides...)
	_, o := newLogger()
	l := &launcher{}
	pc := buildtest.Process()
	pc.ExecutablePath = "/opt/xcbuild/bin/xcbuild"
	pc.CurrentDirectory = buildtest.SourceRoot
	n := NewNinja(f.FS, pc, l, o)
	n.BuiltinCommand = []string{"/opt/xcbuild/bin/xcbuild", "builtin"}
	return n, l, f
}

func read(t *testing.T, fs filesystem.Filesystem, p string) string {
	t.Helper()
	data, err := fs.Read(p)
	require.NoError(t, err, p)
	return string(data)
}

func TestNinjaGenerate(t *testing.T) {
	n, l, f := newNinja(t, newFilesystem())
	n.Generate = true
	require.NoError(t, n.Build(context.Background(), f.Build, f.Context, targets(f, "App")))
	assert.Empty(t, l.calls)

	top := read(t, f.FS, buildNinja)
	assert.True(t, strings.HasPrefix(top, "# xcbuild ninja\n# Action: build\n# Project: /src/App.yaml\n# Configuration: Debug\n"))
	assert.Contains(t, top, "builddir = /build/Intermediates\n")
	assert.Contains(t, top, "rule invoke\n    command = cd $dir && env $env $exec\n")
	assert.Contains(t, top, "build begin-target-Core: phony\n")
	assert.Contains(t, top, "build begin-target-App: phony finish-target-Core\n")
	assert.Contains(t, top, "subninja "+core+"/build.ninja\n")
	assert.Contains(t, top, "subninja "+app+"/build.ninja\n")
	assert.NotContains(t, top, "Docs")
	assert.NotContains(t, top, "rule regenerate")
	assert.Equal(t, n.ConfigurationHash(f.Context), read(t, f.FS, intermediates+"/.ninja-configuration"))

	assert.Contains(t, top, "build finish-target-App: phony write-auxiliary-files-App ")
	assert.NotContains(t, top, "phase-priority")

	file := read(t, f.FS, app+"/build.ninja")
	assert.Contains(t, file, "|| write-auxiliary-files-App")
	assert.Contains(t, file, "/Assets.car")
	assert.NotContains(t, top, "/Assets.car: phony")
	assert.Contains(t, file, "build "+products+"/App.app/Contents/MacOS/App: invoke")
	assert.Contains(t, file, "    description = CompileC "+app+"/Objects-normal/x86_64/main.o Sources/main.c normal x86_64 c")
	assert.Contains(t, file, "    dir = /src\n")
	assert.Contains(t, file, "    exec = /usr/bin/clang -x c ")
	assert.Contains(t, file, `'-DNAME="my app"'`)
	assert.Contains(t, file, "    depfile = "+app+"/Objects-normal/x86_64/main.d\n    deps = gcc\n")
	assert.Contains(t, file, "    exec = /opt/xcbuild/bin/xcbuild builtin builtin-copy -exclude .DS_Store /src/Resources/icon.png "+products+"/App.app/Contents/Resources\n")
	assert.Contains(t, file, "    env = ")

	script := app + "/Script-App-3.sh"
	contents := "#!/bin/sh\ntouch \"$SCRIPT_OUTPUT_FILE_0\""
	chunk := app + "/.ninja-auxiliary-file-" + hash([]byte(contents)) + ".chunk"
	assert.Equal(t, contents, read(t, f.FS, chunk))
	assert.Contains(t, file, "    exec = cat "+chunk+" > "+script+" && chmod 0755 "+script+"\n")
	assert.Contains(t, file, "    description = write-file "+script+"\n")
	assert.False(t, f.FS.Exists(script))
}

func TestNinjaRun(t *testing.T) {
	fs := newFilesystem()
	fs.AddFile("/usr/bin/ninja", []byte("#!"), true)
	n, l, f := newNinja(t, fs)
	require.NoError(t, n.Build(context.Background(), f.Build, f.Context, targets(f, "Core")))

	require.Len(t, l.calls, 1)
	assert.Equal(t, "/usr/bin/ninja", l.calls[0].ExecutablePath)
	assert.Equal(t, []string{"-f", buildNinja}, l.calls[0].Arguments)
	assert.Equal(t, intermediates, l.calls[0].CurrentDirectory)
	assert.Equal(t, "builder", l.calls[0].UserName)

	info, err := f.FS.Info(buildNinja)
	require.NoError(t, err)
	require.NoError(t, n.Build(context.Background(), f.Build, f.Context, targets(f, "Core")))
	again, err := f.FS.Info(buildNinja)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime, again.ModTime)
	assert.Len(t, l.calls, 2)

	n.DryRun = true
	n.Regenerate = []string{"/opt/xcbuild/bin/xcbuild", "build", "--executor", "ninja"}
	require.NoError(t, n.Build(context.Background(), f.Build, f.Context, targets(f, "Core")))
	again, err = f.FS.Info(buildNinja)
	require.NoError(t, err)
	assert.NotEqual(t, info.ModTime, again.ModTime)
	assert.Equal(t, []string{"-f", buildNinja, "-n"}, l.calls[2].Arguments)
}

func TestNinjaRegenerate(t *testing.T) {
	n, _, f := newNinja(t, newFilesystem())
	n.Generate = true
	n.Regenerate = []string{"/opt/xcbuild/bin/xcbuild", "build", "--generate", "-project", "my app.yaml"}
	n.Inputs = []string{buildtest.ProjectPath}
	require.NoError(t, n.Build(context.Background(), f.Build, f.Context, targets(f, "Core")))

	top := read(t, f.FS, buildNinja)
	assert.Contains(t, top, "rule regenerate\n    command = cd $dir && $exec\n")
	assert.Contains(t, top, "build "+buildNinja+": regenerate")
	assert.Contains(t, top, "    dir = /src\n")
	assert.Contains(t, top, "    exec = /opt/xcbuild/bin/xcbuild build --generate -project 'my app.yaml'\n")
	assert.Contains(t, top, "    generator = 1\n    pool = console\n")
}

func TestNinjaConfigurationHash(t *testing.T) {
	n, _, f := newNinja(t, newFilesystem())
	h := n.ConfigurationHash(f.Context)
	assert.Len(t, h, 32)
	assert.Equal(t, h, n.ConfigurationHash(f.Context))

	_, _, other := newNinja(t, newFilesystem(), setting.NewLevel(setting.Create("A", "1")))
	assert.NotEqual(t, h, n.ConfigurationHash(other.Context))

	n.Regenerate = []string{"xcbuild"}
	assert.NotEqual(t, h, n.ConfigurationHash(f.Context))
}

func TestNinjaFailure(t *testing.T) {
	fs := newFilesystem()
	fs.AddFile("/usr/local/bin/llbuild", []byte("#!"), true)
	n, l, f := newNinja(t, fs)
	n.Process.Environment["PATH"] = "/usr/local/bin:/usr/bin"
	l.codes = map[string]int{"llbuild": 1}

	err := n.Build(context.Background(), f.Build, f.Context, targets(f, "Core"))
	require.Error(t, err)
	assert.Equal(t, ErrInvocationFailed, errgo.Cause(err))
	require.Len(t, l.calls, 1)
	assert.Equal(t, []string{"ninja", "build", "-f", buildNinja}, l.calls[0].Arguments)

	n.Process.Environment["PATH"] = "/usr/bin"
	err = n.Build(context.Background(), f.Build, f.Context, targets(f, "Core"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot find ninja or llbuild")
}

func TestNinjaMissingExecutable(t *testing.T) {
	fs := newFilesystem("/usr/bin/libtool")
	fs.AddFile("/usr/bin/ninja", []byte("#!"), true)
	n, l, f := newNinja(t, fs)

	err := n.Build(context.Background(), f.Build, f.Context, targets(f, "Core"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot find executable libtool")
	assert.Empty(t, l.calls)
	assert.True(t, f.FS.Exists(buildNinja))
	assert.False(t, f.FS.Exists(intermediates+"/.ninja-configuration"))
}

func TestNinjaUnresolvedTarget(t *testing.T) {
	fs := newFilesystem()
	fs.AddFile(buildtest.SpecificationDir+"/Tools.yaml", []byte(strings.Replace(buildtest.Tools,
		"Identifier: com.apple.commands.shell-script", "Identifier: com.apple.commands.other-script", 1)), false)
	n, _, f := newNinja(t, fs)
	n.Generate = true

	err := n.Build(context.Background(), f.Build, f.Context, targets(f, "App"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shell script tool not found")
	top := read(t, f.FS, buildNinja)
	assert.Contains(t, top, "build finish-target-App: phony begin-target-App\n")
	assert.Contains(t, top, "subninja "+core+"/build.ninja\n")
	assert.NotContains(t, top, "subninja "+app+"/build.ninja")
}

func TestNinjaBuiltinExecutables(t *testing.T) {
	fs := newFilesystem()
	fs.AddFile("/opt/xcbuild/bin/builtin-copy", []byte("#!"), true)
	n, _, f := newNinja(t, fs)
	sender, o := newLogger()
	n.Options = o
	n.Options.setDefaults()
	n.BuiltinCommand = nil
	n.Generate = true
	require.NoError(t, n.Build(context.Background(), f.Build, f.Context, targets(f, "App")))

	file := read(t, f.FS, app+"/build.ninja")
	assert.Contains(t, file, "    exec = /opt/xcbuild/bin/builtin-copy -exclude .DS_Store ")
	assert.NotContains(t, file, "build "+products+"/App.app/Contents/Info.plist")
	assert.Contains(t, logged(sender), "builtin-infoPlistUtility")
}

func TestNinjaPhonyPaths(t *testing.T) {
	n, _, f := newNinja(t, newFilesystem())
	target := f.Project.Target("App")
	te, _, err := Resolve(f.FS, f.Build, f.Context, target)
	require.NoError(t, err)

	script := &tool.Invocation{
		Executable:       tool.External("/bin/sh"),
		WorkingDirectory: "/w",
		PhonyInputs:      []string{"in.txt"},
		Outputs:          []string{"/w/gen.c"},
	}
	compile := &tool.Invocation{
		Executable:         tool.External("/usr/bin/clang"),
		WorkingDirectory:   "/w",
		Inputs:             []string{"/w/gen.c"},
		Outputs:            []string{"/w/gen.o"},
		OutputDependencies: []string{"gen.d"},
	}
	touch := &tool.Invocation{
		Executable:       tool.External("/usr/bin/touch"),
		WorkingDirectory: "/w",
		PhonyOutputs:     []string{"/w/gen.c", "/w/App.app"},
	}

	catcher := grip.NewBasicCatcher()
	tf, err := n.writeTarget(target, te, &phase.Invocations{
		Invocations:    []*tool.Invocation{script, compile, touch},
		AuxiliaryFiles: []tool.AuxiliaryFile{{
			Path:   "/w/prefix.h",
			Chunks: []tool.AuxiliaryChunk{{From: "/src/prefix.h"}, {Data: []byte("#define B 2\n")}},
		}},
	}, catcher)
	require.NoError(t, err)
	require.NoError(t, catcher.Resolve())
	assert.Equal(t, []string{"/w/in.txt"}, tf.phonyInputs)
	assert.True(t, tf.outputs["/w/gen.d"])
	assert.True(t, tf.outputs["/w/App.app"])

	file := read(t, f.FS, tf.path)
	assert.Contains(t, file, "build /w/gen.c: invoke || write-auxiliary-files-App /w/in.txt\n")
	assert.Contains(t, file, "build /w/gen.o | /w/gen.d: invoke /w/gen.c || write-auxiliary-files-App\n")
	assert.Contains(t, file, " | /w/App.app:")
	assert.NotContains(t, file, "| /w/gen.c")

	chunk := path.Dir(tf.path) + "/.ninja-auxiliary-file-" + hash([]byte("#define B 2\n")) + ".chunk"
	assert.Equal(t, "#define B 2\n", read(t, f.FS, chunk))
	assert.Contains(t, file, "exec = cat /src/prefix.h "+chunk+" > /w/prefix.h\n")
	assert.True(t, tf.outputs["/w/prefix.h"])
}
