package executor

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/juju/errgo"
	"github.com/mongodb/grip/level"
	"github.com/mongodb/grip/logging"
	"github.com/mongodb/grip/send"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vron/xcbuild/build/buildtest"
	"github.com/vron/xcbuild/builtin"
	"github.com/vron/xcbuild/cache"
)

func TestSimpleBuild(t *testing.T) {
	f := buildtest.New(t, newFilesystem())
	sender, o := newLogger()
	l, builtins := &launcher{}, &launcher{}
	pc := buildtest.Process()
	pc.Environment["TERM"] = "dumb"
	s := NewSimple(f.FS, pc, l, builtins, o)

	require.NoError(t, s.Build(context.Background(), f.Build, f.Context, targets(f, "App")))

	exes := l.executables()
	require.NotEmpty(t, exes)
	assert.NotContains(t, exes, "/usr/bin/make")
	assert.Equal(t, "/usr/bin/clang", exes[0])
	assert.Equal(t, "/usr/bin/libtool", exes[1])
	assert.Equal(t, "/bin/mkdir", exes[2])
	assert.Equal(t, "/usr/bin/touch", exes[len(exes)-1])

	clang := l.find("clang")
	require.NotNil(t, clang)
	assert.Equal(t, "dumb", clang.Environment["TERM"])
	assert.Equal(t, "builder", clang.UserName)
	assert.Equal(t, "/home/builder", clang.HomeDirectory)

	plist := builtins.find("builtin-infoPlistUtility")
	require.NotNil(t, plist)
	assert.Equal(t, "App", plist.Environment["PRODUCT_NAME"])
	assert.NotContains(t, plist.Environment, "TERM")
	assert.True(t, f.FS.Exists(products+"/App.app/Contents/Info.plist"))

	script := app + "/Script-App-3.sh"
	assert.True(t, f.FS.IsExecutable(script))
	assert.True(t, f.FS.Exists(core+"/Objects-normal/x86_64/Core.LinkFileList"))

	log := logged(sender)
	assert.Contains(t, log, "=== BUILD TARGET Core OF PROJECT App WITH CONFIGURATION Debug ===")
	assert.Contains(t, log, "=== BUILD TARGET App OF PROJECT App WITH CONFIGURATION Debug ===")
	assert.Less(t, strings.Index(log, "TARGET Core"), strings.Index(log, "TARGET App"))
	assert.Contains(t, log, "write-file "+script)
	assert.Contains(t, log, "chmod 0755 "+script)
	assert.Contains(t, log, "Create product structure")
	assert.Contains(t, log, "/bin/mkdir -p "+products+"/App.app/Contents")
	assert.Contains(t, log, "    cd /src")
	assert.Contains(t, log, "** BUILD SUCCEEDED **")
}

func TestSimpleBuildAllTargets(t *testing.T) {
	f := buildtest.New(t, newFilesystem())
	sender, o := newLogger()
	l := &launcher{}
	s := NewSimple(f.FS, buildtest.Process(), l, &launcher{}, o)

	require.NoError(t, s.Build(context.Background(), f.Build, f.Context, nil))
	docs := l.find("make")
	require.NotNil(t, docs)
	assert.Equal(t, []string{"-C", "docs", "build"}, docs.Arguments)
	assert.Equal(t, buildtest.SourceRoot, docs.CurrentDirectory)
	assert.Contains(t, logged(sender), "=== BUILD LEGACY TARGET Docs OF PROJECT App WITH CONFIGURATION Debug ===")
}

func TestSimpleBuildFailure(t *testing.T) {
	f := buildtest.New(t, newFilesystem())
	sender, o := newLogger()
	l := &launcher{codes: map[string]int{"clang": 1}}
	s := NewSimple(f.FS, buildtest.Process(), l, &launcher{}, o)

	err := s.Build(context.Background(), f.Build, f.Context, targets(f, "App"))
	require.Error(t, err)
	assert.Equal(t, ErrInvocationFailed, errgo.Cause(err))
	assert.Contains(t, err.Error(), "exited with status 1")
	assert.Nil(t, l.find("libtool"))

	log := logged(sender)
	assert.Contains(t, log, "** BUILD FAILED **")
	assert.Contains(t, log, "The following build commands failed:")
	assert.Contains(t, log, "    CompileC "+core+"/Objects-normal/x86_64/core.o")
	assert.Contains(t, log, "(1 failure)")
	assert.NotContains(t, log, "TARGET App")
}

func TestSimpleMissingExecutable(t *testing.T) {
	f := buildtest.New(t, newFilesystem("/usr/bin/libtool"))
	_, o := newLogger()
	l := &launcher{}
	s := NewSimple(f.FS, buildtest.Process(), l, &launcher{}, o)

	err := s.Build(context.Background(), f.Build, f.Context, targets(f, "Core"))
	require.Error(t, err)
	assert.Equal(t, ErrInvocationFailed, errgo.Cause(err))
	assert.Contains(t, err.Error(), "cannot find executable libtool")
	assert.NotNil(t, l.find("clang"))
}

func TestSimpleLaunchError(t *testing.T) {
	f := buildtest.New(t, newFilesystem())
	_, o := newLogger()
	l := &launcher{err: errgo.New("no such process")}
	s := NewSimple(f.FS, buildtest.Process(), l, &launcher{}, o)

	err := s.Build(context.Background(), f.Build, f.Context, targets(f, "Core"))
	require.Error(t, err)
	assert.Equal(t, ErrInvocationFailed, errgo.Cause(err))
	assert.Contains(t, err.Error(), "no such process")
}

func TestSimpleResolveFailure(t *testing.T) {
	fs := newFilesystem()
	fs.AddFile(buildtest.SpecificationDir+"/Tools.yaml", []byte(strings.Replace(buildtest.Tools,
		"Identifier: com.apple.commands.shell-script", "Identifier: com.apple.commands.other-script", 1)), false)
	f := buildtest.New(t, fs)
	sender, o := newLogger()
	l := &launcher{}
	s := NewSimple(f.FS, buildtest.Process(), l, &launcher{}, o)

	err := s.Build(context.Background(), f.Build, f.Context, targets(f, "App"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shell script tool not found")
	assert.NotNil(t, l.find("libtool"))
	assert.Nil(t, l.find("touch"))
	assert.Contains(t, logged(sender), "** BUILD FAILED **")
}

func TestSimpleDryRun(t *testing.T) {
	f := buildtest.New(t, newFilesystem("/usr/bin/clang"))
	sender, o := newLogger()
	o.DryRun = true
	l, builtins := &launcher{}, &launcher{}
	s := NewSimple(f.FS, buildtest.Process(), l, builtins, o)

	require.NoError(t, s.Build(context.Background(), f.Build, f.Context, targets(f, "App")))
	assert.Empty(t, l.calls)
	assert.Empty(t, builtins.calls)
	assert.False(t, f.FS.Exists(app+"/Script-App-3.sh"))
	assert.False(t, f.FS.Exists(products))

	log := logged(sender)
	assert.Contains(t, log, "write-file "+app+"/Script-App-3.sh")
	assert.Contains(t, log, "/usr/bin/libtool -static -filelist")
	assert.Contains(t, log, "** BUILD SUCCEEDED **")
}

func TestSimpleCache(t *testing.T) {
	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer c.Close()

	f := buildtest.New(t, newFilesystem())
	builtins := builtin.Default()
	builtins.Logger = logging.MakeGrip(send.NewMockSender("builtin"))
	build := func() *launcher {
		_, o := newLogger()
		l := &launcher{}
		s := NewSimple(f.FS, buildtest.Process(), l, builtins, o)
		s.Cache = c
		require.NoError(t, s.Build(context.Background(), f.Build, f.Context, targets(f, "Core")))
		return l
	}

	l := build()
	assert.Equal(t, []string{"/usr/bin/clang", "/usr/bin/libtool"}, l.executables())
	header, err := f.FS.Read(products + "/usr/local/include/core.h")
	require.NoError(t, err)
	assert.Equal(t, "Core/core.h\n", string(header))

	l = build()
	assert.Empty(t, l.calls)

	require.NoError(t, f.FS.Write(buildtest.SourceRoot+"/Core/core.c", []byte("int core;\n")))
	l = build()
	assert.Equal(t, []string{"/usr/bin/clang", "/usr/bin/libtool"}, l.executables())

	require.NoError(t, f.FS.Remove(products+"/libCore.a"))
	l = build()
	assert.Equal(t, []string{"/usr/bin/libtool"}, l.executables())
	assert.NoError(t, c.Err())
}

func TestSimpleCacheFailure(t *testing.T) {
	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	require.NoError(t, c.Close())

	f := buildtest.New(t, newFilesystem())
	builtins := builtin.Default()
	builtins.Logger = logging.MakeGrip(send.NewMockSender("builtin"))
	sender, o := newLogger()
	l := &launcher{}
	s := NewSimple(f.FS, buildtest.Process(), l, builtins, o)
	s.Cache = c

	require.NoError(t, s.Build(context.Background(), f.Build, f.Context, targets(f, "Core")))
	assert.Equal(t, []string{"/usr/bin/clang", "/usr/bin/libtool"}, l.executables())
	require.Error(t, c.Err())

	var warnings []string
	for _, m := range sender.Messages {
		if m.Priority() == level.Warning {
			warnings = append(warnings, m.String())
		}
	}
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "cannot use cache")
}
