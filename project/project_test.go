package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/setting"
)

const appProject = `
Name: App
DefaultConfiguration: Release
Settings:
  SDKROOT: iphoneos
Configurations:
  - Name: Debug
    BaseConfiguration: Config/Debug.xcconfig
    Settings:
      GCC_OPTIMIZATION_LEVEL: 0
  - Name: Release
Files:
  - Path: Sources
    Children:
      - Path: main.c
      - Path: util.c
        LastKnownFileType: sourcecode.c.c
      - Name: Localizable.strings
        Kind: variantGroup
        Children:
          - Name: en
            Path: en.lproj/Localizable.strings
  - ID: SDK_FOUNDATION
    Path: System/Library/Frameworks/Foundation.framework
    SourceTree: SDKROOT
  - Path: /opt/include/ext.h
    SourceTree: <absolute>
Targets:
  - Name: Lib
    Kind: native
    ProductType: com.apple.product-type.library.static
    ProductReference: libLib.a
  - Name: App
    ProductType: com.apple.product-type.application
    ProductReference: App.app
    Dependencies: [Lib]
    Settings:
      INFOPLIST_FILE: Info.plist
    Phases:
      - Kind: sources
        Files:
          - File: Sources/main.c
            Settings:
              COMPILER_FLAGS: -DMAIN=1 -Wall
          - File: Sources/util.c
      - Kind: resources
        Files:
          - File: Sources/Localizable.strings
      - Kind: shellScript
        ShellPath: /bin/sh
        ShellScript: echo hi
        ShowEnvVarsInLog: NO
        InputPaths: [$(SRCROOT)/in.txt]
  - Name: Docs
    Kind: legacy
    BuildToolPath: /usr/bin/make
    BuildArgumentsString: $(ACTION)
    PassBuildSettingsInEnvironment: YES
`

func load(t *testing.T, doc string) *Project {
	fs := filesystem.NewMemory()
	fs.AddFile("/work/App.yaml", []byte(doc), false)
	p, err := Load(fs, "/work/App.yaml")
	require.NoError(t, err)
	return p
}

func TestLoad(t *testing.T) {
	p := load(t, appProject)
	assert.Equal(t, "App", p.Name)
	assert.Equal(t, "/work", p.SourceRootPath())

	require.Len(t, p.Targets, 3)
	app := p.Target("App")
	require.NotNil(t, app)
	assert.Equal(t, TargetNative, app.Kind)
	assert.Equal(t, "App", app.ProductName)
	assert.Same(t, p, app.Project)
	assert.Equal(t, []string{"Lib"}, app.Dependencies)

	sources := app.Phase(PhaseSources)
	require.NotNil(t, sources)
	require.Len(t, sources.Files, 2)
	assert.Equal(t, "-DMAIN=1 -Wall", sources.Files[0].Settings.CompilerFlags)
	assert.Equal(t, "App-0-0", sources.Files[0].ID)
	assert.Equal(t, "main.c", sources.Files[0].FileRef.DisplayName())
	assert.Equal(t, "sourcecode.c.c", sources.Files[1].FileRef.LastKnownFileType)

	strings := app.Phase(PhaseResources).Files[0].FileRef
	assert.Equal(t, KindVariantGroup, strings.Kind)
	require.Len(t, strings.Children, 1)
	assert.Equal(t, "en", strings.Children[0].Name)

	script := app.Phase(PhaseShellScript)
	assert.Equal(t, "/bin/sh", script.ShellPath)
	assert.False(t, script.ShowEnvVarsInLog)

	docs := p.Target("Docs")
	assert.Equal(t, TargetLegacy, docs.Kind)
	assert.True(t, docs.PassBuildSettingsInEnvironment)
	assert.Nil(t, p.Target("Missing"))
}

func TestResolve(t *testing.T) {
	p := load(t, appProject)
	env := setting.NewEnvironment(p.BuildSettings(), setting.NewLevel(
		setting.Create("SDKROOT", "/sdk"),
	))

	for id, want := range map[string]string{
		"Sources/main.c": "/work/Sources/main.c",
		"Sources/Localizable.strings/en.lproj/Localizable.strings": "/work/Sources/en.lproj/Localizable.strings",
		"SDK_FOUNDATION":     "/sdk/System/Library/Frameworks/Foundation.framework",
		"/opt/include/ext.h": "/opt/include/ext.h",
	} {
		item := p.Item(id)
		require.NotNil(t, item, id)
		assert.Equal(t, want, env.Expand(item.Resolve()), id)
	}
}

func TestWalkOrder(t *testing.T) {
	p := load(t, appProject)
	var ids []string
	for item := range p.MainGroup.Walk() {
		if item != p.MainGroup {
			ids = append(ids, item.ID)
		}
	}
	assert.Equal(t, []string{
		"Sources",
		"Sources/main.c",
		"Sources/util.c",
		"Sources/Localizable.strings",
		"Sources/Localizable.strings/en.lproj/Localizable.strings",
		"SDK_FOUNDATION",
		"/opt/include/ext.h",
	}, ids)
}

func TestConfigurations(t *testing.T) {
	p := load(t, appProject)
	debug := p.Configuration("Debug")
	require.NotNil(t, debug)
	require.NotNil(t, debug.BaseConfigurationRef)
	assert.Equal(t, "$(SRCROOT)/Config/Debug.xcconfig", debug.BaseConfigurationRef.Resolve().Raw())
	v, ok := debug.Level().Get("GCC_OPTIMIZATION_LEVEL", nil)
	require.True(t, ok)
	assert.Equal(t, "0", v.Raw())

	assert.Equal(t, "Release", p.Configuration("Profile").Name)

	env := setting.NewEnvironment(p.Target("App").BuildSettings(), p.BuildSettings())
	assert.Equal(t, "App.app", env.Resolve("FULL_PRODUCT_NAME"))
	assert.Equal(t, "App", env.Resolve("PROJECT_NAME"))
	assert.Equal(t, "English", env.Resolve("DEVELOPMENT_LANGUAGE"))
}

func TestLinkErrors(t *testing.T) {
	fs := filesystem.NewMemory()
	fs.AddFile("/work/Bad.yaml", []byte(`
Targets:
  - Name: A
    Dependencies: [B]
    Phases:
      - Kind: sources
        Files:
          - File: missing.c
  - Name: A
`), false)
	_, err := Load(fs, "/work/Bad.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "references unknown file 'missing.c'")
	assert.Contains(t, err.Error(), "duplicate target 'A'")
	assert.Contains(t, err.Error(), "depends on unknown target 'B'")

	_, err = Load(fs, "/work/None.yaml")
	assert.Error(t, err)
}
