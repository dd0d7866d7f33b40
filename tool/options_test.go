package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/spec"
)

func testEnv(kv ...string) setting.Environment {
	var settings []setting.Setting
	for i := 0; i+1 < len(kv); i += 2 {
		settings = append(settings, setting.Define(kv[i], kv[i+1]))
	}
	return setting.NewEnvironment(setting.NewLevel(settings...))
}

func TestEvaluateCondition(t *testing.T) {
	e := testEnv("A", "YES", "B", "NO", "C", "foo")
	for expr, want := range map[string]bool{
		"$(A)":                true,
		"$(B)":                false,
		"$(UNSET)":            true,
		"$(C) == foo":         true,
		"$(C) == \"foo\"":     true,
		"$(C) != 'foo'":       false,
		"$(C) == bar":         false,
		"$(A) != $(B)":        true,
		"$(C)$(B) == fooNO":   true,
		"$(UNSET) == \"\"":    true,
		"$(UNSET) != \"\"":    false,
		"$(C) == \"foo bar\"": false,
	} {
		assert.Equal(t, want, EvaluateCondition(e, expr), expr)
	}
}

func newTool(options ...spec.PropertyOption) *spec.Tool {
	return &spec.Tool{Base: spec.Base{Identifier: "test"}, Options: options}
}

func TestNewOptionsBoolean(t *testing.T) {
	tl := newTool(spec.PropertyOption{
		Name:                   "FLAG",
		Type:                   spec.OptionBoolean,
		CommandLineFlag:        "-yes",
		CommandLineFlagIfFalse: "-no",
	}, spec.PropertyOption{
		Name:            "ONLY_TRUE",
		Type:            spec.OptionBoolean,
		CommandLineFlag: "-only",
	})
	assert.Equal(t, []string{"-yes", "-only"}, NewOptions(tl, testEnv("FLAG", "YES", "ONLY_TRUE", "YES"), nil, nil).Arguments)
	assert.Equal(t, []string{"-no"}, NewOptions(tl, testEnv("FLAG", "NO"), nil, nil).Arguments)
}

func TestNewOptionsValues(t *testing.T) {
	tl := newTool(
		spec.PropertyOption{Name: "OUT", Type: spec.OptionString, CommandLineFlag: "-o"},
		spec.PropertyOption{Name: "DEFS", Type: spec.OptionStringList, CommandLinePrefixFlag: "-D"},
		spec.PropertyOption{Name: "MODE", Type: spec.OptionEnumeration, CommandLineArgs: spec.ArgsTable{ByValue: map[string][]string{
			"fast":            {"--fast"},
			spec.OtherwiseKey: {"--mode=$(value)"},
		}}},
		spec.PropertyOption{Name: "LEVEL", Type: spec.OptionEnumeration, Values: []spec.OptionValue{
			{Value: "high", CommandLineFlag: "-level"},
			{Value: "low", CommandLineArgs: []string{"-quiet"}},
		}},
		spec.PropertyOption{Name: "ALWAYS", Type: spec.OptionString, CommandLineArgs: spec.ArgsTable{List: []string{"--always"}}},
	)

	o := NewOptions(tl, testEnv("OUT", "file", "DEFS", "A B=1", "MODE", "slow", "LEVEL", "high"), nil, nil)
	assert.Equal(t, []string{"-o", "file", "-DA", "-DB=1", "--mode=slow", "-level", "high", "--always"}, o.Arguments)

	o = NewOptions(tl, testEnv("MODE", "fast", "LEVEL", "low"), nil, nil)
	assert.Equal(t, []string{"--fast", "-quiet", "--always"}, o.Arguments)
}

func TestNewOptionsFilters(t *testing.T) {
	tl := newTool(
		spec.PropertyOption{Name: "COND", Type: spec.OptionString, CommandLineFlag: "-cond", Condition: "$(ENABLE) == YES"},
		spec.PropertyOption{Name: "ARCH", Type: spec.OptionString, CommandLineFlag: "-arch", Architectures: []string{"arm64"}},
		spec.PropertyOption{Name: "TYPED", Type: spec.OptionString, CommandLineFlag: "-typed", FileTypes: []string{"sourcecode.c.c"}},
		spec.PropertyOption{Name: "GONE", Type: spec.OptionString, CommandLineFlag: "-gone"},
	)
	tl.DeletedProperties = []string{"GONE"}
	e := testEnv("COND", "1", "ARCH", "2", "TYPED", "3", "GONE", "4", "arch", "x86_64")

	assert.Empty(t, NewOptions(tl, e, nil, &spec.FileType{Base: spec.Base{Identifier: "sourcecode.cpp.cpp"}}).Arguments)
	assert.Equal(t, []string{"-typed", "3"}, NewOptions(tl, e, nil, nil).Arguments)

	e = e.InsertFront(setting.NewLevel(
		setting.Create("ENABLE", "YES"),
		setting.Create("arch", "arm64"),
	), false)
	assert.Equal(t, []string{"-cond", "1", "-arch", "2", "-typed", "3"},
		NewOptions(tl, e, nil, &spec.FileType{Base: spec.Base{Identifier: "sourcecode.c.c"}}).Arguments)
}

func TestNewOptionsLinkerArgsAndEnvironment(t *testing.T) {
	tl := newTool(spec.PropertyOption{
		Name: "ARC",
		Type: spec.OptionBoolean,
		AdditionalLinkerArgs: spec.ArgsTable{ByValue: map[string][]string{
			"YES": {"-fobjc-arc"},
			"NO":  {},
		}},
	}, spec.PropertyOption{
		Name:                          "SDK",
		Type:                          spec.OptionString,
		SetValueInEnvironmentVariable: "SDK_ROOT",
	})
	tl.EnvironmentVariables = map[string]string{"LANG": "$(LOCALE)"}

	o := NewOptions(tl, testEnv("ARC", "YES", "SDK", "/sdk", "LOCALE", "en_US", "PATH", "/bin", "DEVELOPER_DIR", "/dev"), nil, nil)
	assert.Empty(t, o.Arguments)
	assert.Equal(t, []string{"-fobjc-arc"}, o.LinkerArgs)
	assert.Equal(t, map[string]string{
		"SDK_ROOT":      "/sdk",
		"LANG":          "en_US",
		"PATH":          "/bin",
		"DEVELOPER_DIR": "/dev",
	}, o.Environment)

	assert.Empty(t, NewOptions(tl, testEnv("ARC", "NO"), nil, nil).LinkerArgs)
}

func TestArgumentBuilder(t *testing.T) {
	var b ArgumentBuilder
	b.Add(ReasonDialect, "-x", "c").
		Add(ReasonOptions).
		Add(ReasonOptions, "-O0").
		Add(ReasonFile, "-DA")
	assert.Len(t, b.Groups(), 3)
	assert.Equal(t, []string{"-x", "c", "-O0", "-DA"}, b.Arguments())
	assert.Equal(t, []string{"-O0"}, b.Without(ReasonDialect, ReasonFile))
}
