package executor

import (
	"testing"

	"github.com/juju/errgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vron/xcbuild/graph"
	"github.com/vron/xcbuild/tool"
)

func inv(message string, priority int, inputs, outputs []string) *tool.Invocation {
	return &tool.Invocation{
		Executable:       tool.External("/bin/" + message),
		WorkingDirectory: "/w",
		Inputs:           inputs,
		Outputs:          outputs,
		LogMessage:       message,
		Priority:         priority,
	}
}

func messages(invs []*tool.Invocation) []string {
	var out []string
	for _, inv := range invs {
		out = append(out, Describe(inv))
	}
	return out
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "/w/a/b", normalize("a/./b", "/w"))
	assert.Equal(t, "/a/b", normalize("/a/c/../b", "/w"))
	assert.Equal(t, "a", normalize("a", ""))
	assert.Equal(t, "", normalize("", "/w"))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Link", Describe(&tool.Invocation{LogMessage: "Link", Executable: tool.External("ld")}))
	assert.Equal(t, "ld", Describe(&tool.Invocation{Executable: tool.External("ld")}))
	assert.Equal(t, "builtin-copy", Describe(&tool.Invocation{Executable: tool.DetermineExecutable("builtin-copy")}))
}

func TestOrderInputs(t *testing.T) {
	link := inv("link", 0, []string{"a.o", "/w/b.o"}, []string{"/w/app"})
	a := inv("a", 0, []string{"a.c"}, []string{"/w/a.o"})
	b := inv("b", 0, []string{"b.c"}, []string{"b.o"})

	ordered, err := Order([]*tool.Invocation{link, b, a})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "link"}, messages(ordered))
}

func TestOrderPriorities(t *testing.T) {
	cp := inv("copy", 0x200, nil, []string{"/w/icon.png"})
	compile := inv("compile", 0x100, nil, []string{"/w/a.o"})
	script := inv("script", 0x300, nil, []string{"/w/stamp"})
	mkdir := inv("mkdir", 0x300, nil, []string{"/w/App.app"})
	mkdir.CreatesProductStructure = true

	invs := []*tool.Invocation{script, cp, mkdir, compile}
	g := Graph(invs)
	for _, inv := range invs {
		assert.Empty(t, g.Dependencies(inv), Describe(inv))
	}

	ordered, err := Order(invs)
	require.NoError(t, err)
	assert.Equal(t, []string{"mkdir", "compile", "copy", "script"}, messages(ordered))
}

func TestOrderGeneratedSources(t *testing.T) {
	compile := inv("compile", 0x100, []string{"/w/gen.c"}, []string{"/w/gen.o"})
	link := inv("link", 0x200, []string{"/w/gen.o"}, []string{"/w/app"})
	script := inv("script", 0x300, nil, []string{"/w/gen.c"})

	ordered, err := Order([]*tool.Invocation{compile, link, script})
	require.NoError(t, err)
	assert.Equal(t, []string{"script", "compile", "link"}, messages(ordered))
}

func TestOrderPhonyInputs(t *testing.T) {
	touch := inv("touch", 0, nil, nil)
	touch.PhonyInputs = []string{"/w/App.app/Info.plist"}
	touch.InputDependencies = []string{"/w/App.app/App"}
	plist := inv("plist", 0, nil, nil)
	plist.PhonyOutputs = []string{"/w/App.app/Info.plist"}
	link := inv("link", 0, nil, nil)
	link.OutputDependencies = []string{"App.app/App"}

	ordered, err := Order([]*tool.Invocation{touch, plist, link})
	require.NoError(t, err)
	assert.Equal(t, []string{"plist", "link", "touch"}, messages(ordered))
}

func TestOrderCycle(t *testing.T) {
	a := inv("a", 0, []string{"b"}, []string{"a"})
	b := inv("b", 0, []string{"a"}, []string{"b"})
	c := inv("c", 0, nil, []string{"c"})

	_, err := Order([]*tool.Invocation{a, b, c})
	require.Error(t, err)
	assert.Equal(t, graph.ErrCycle, errgo.Cause(err))
	assert.Contains(t, err.Error(), "[a, b]")
}
