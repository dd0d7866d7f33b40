package setting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLine(t *testing.T) {
	tcs := []struct {
		in   string
		ok   bool
		name string
		cond Condition
		raw  string
	}{
		{"A = b", true, "A", nil, "b"},
		{"  A=b  ", true, "A", nil, "b"},
		{"A =", true, "A", nil, ""},
		{"A = b = c", true, "A", nil, "b = c"},
		{"A[sdk=iphoneos*] = b", true, "A", Condition{"sdk": "iphoneos*"}, "b"},
		{"A[sdk=iphoneos*][arch=arm64] = $(B)", true, "A", Condition{"sdk": "iphoneos*", "arch": "arm64"}, "$(B)"},
		{"A[sdk=macosx*,arch=x86_64] = c", true, "A", Condition{"sdk": "macosx*", "arch": "x86_64"}, "c"},
		{"A = [not a condition]", true, "A", nil, "[not a condition]"},
		{"no assignment", false, "", nil, ""},
		{"A[broken = b", false, "", nil, ""},
	}
	for _, tc := range tcs {
		s, ok := ParseLine(tc.in)
		if !assert.Equal(t, tc.ok, ok, tc.in) || !ok {
			continue
		}
		assert.Equal(t, tc.name, s.Name, tc.in)
		assert.Equal(t, tc.cond, s.Condition, tc.in)
		assert.Equal(t, tc.raw, s.Value.Raw(), tc.in)
	}
}

func TestConditionMatch(t *testing.T) {
	arch := Condition{"arch": "i386"}
	archSDK := Condition{"arch": "i386", "sdk": "macosx10.11"}
	assert.True(t, arch.Match(archSDK))
	assert.False(t, archSDK.Match(arch))
	assert.True(t, Condition{"sdk": "macosx*"}.Match(archSDK))
	assert.False(t, Condition{"sdk": "iphoneos*"}.Match(archSDK))
	assert.True(t, Condition(nil).Match(nil))
	assert.Equal(t, "[arch=i386][sdk=macosx10.11]", archSDK.String())
}

func TestLevelGet(t *testing.T) {
	l := NewLevel(Define("A", "1"), Define("A", "2"))
	v, ok := l.Get("A", nil)
	assert.True(t, ok)
	assert.Equal(t, "2", v.Raw())

	_, ok = l.Get("B", nil)
	assert.False(t, ok)
}

func TestLevelFromInterface(t *testing.T) {
	l := LevelFromInterface(map[string]interface{}{
		"ARCHS":                    []interface{}{"armv7", "arm64"},
		"ENABLE_BITCODE":           true,
		"OTHER_CFLAGS[arch=arm64]": "-DARM=1",
		"PRODUCT_NAME":             "$(TARGET_NAME)",
	})
	assert.Equal(t, 4, l.Len())

	env := NewEnvironment(l, NewLevel(Create("TARGET_NAME", "App")))
	assert.Equal(t, "armv7 arm64", env.Resolve("ARCHS"))
	assert.Equal(t, "YES", env.Resolve("ENABLE_BITCODE"))
	assert.Equal(t, "App", env.Resolve("PRODUCT_NAME"))
	assert.Equal(t, "", env.Resolve("OTHER_CFLAGS"))
	assert.Equal(t, "-DARM=1", env.ResolveCondition("OTHER_CFLAGS", Condition{"arch": "arm64"}))
}
