package builtin

import (
	"context"
	"testing"

	"github.com/juju/errgo"
	"github.com/mongodb/grip/logging"
	"github.com/mongodb/grip/send"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/process"
)

func newRegistry() *Registry {
	r := Default()
	r.Logger = logging.MakeGrip(send.NewMockSender("builtin"))
	return r
}

func launch(t *testing.T, fs filesystem.Filesystem, name string, env map[string]string, args ...string) int {
	t.Helper()
	code, err := newRegistry().Launch(context.Background(), fs, &process.Context{
		ExecutablePath:   name,
		Arguments:        args,
		Environment:      env,
		CurrentDirectory: "/src",
	})
	require.NoError(t, err)
	return code
}

func read(t *testing.T, fs filesystem.Filesystem, p string) string {
	t.Helper()
	data, err := fs.Read(p)
	require.NoError(t, err, p)
	return string(data)
}

func TestRegistry(t *testing.T) {
	r := newRegistry()
	assert.Equal(t, []string{"builtin-actool", "builtin-copy", "builtin-copyStrings", "builtin-infoPlistUtility"}, r.Names())

	d, ok := r.Driver("builtin-copy")
	require.True(t, ok)
	assert.Equal(t, "builtin-copy", d.Name())

	_, err := r.Launch(context.Background(), filesystem.NewMemory(), &process.Context{ExecutablePath: "builtin-missing"})
	require.Error(t, err)
	assert.Equal(t, ErrUnknownDriver, errgo.Cause(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Launch(ctx, filesystem.NewMemory(), &process.Context{ExecutablePath: "/usr/bin/builtin-copy"})
	assert.Error(t, err)
}

func TestCopy(t *testing.T) {
	fs := filesystem.NewMemory()
	fs.AddFile("/src/tool", []byte("#!/bin/sh"), true)
	fs.AddFile("/src/dir/b.txt", []byte("b"), false)
	fs.AddFile("/src/dir/.DS_Store", []byte("x"), false)
	fs.AddFile("/src/dir/sub/c.txt", []byte("c"), false)
	fs.AddFile("/src/dir/sub/c.orig", []byte("c"), false)

	code := launch(t, fs, "builtin-copy", nil,
		"-exclude", ".DS_Store", "-exclude", "*.orig", "-strip-debug-symbols", "-resolve-src-symlinks",
		"tool", "/src/dir", "/out")
	require.Equal(t, 0, code)

	assert.Equal(t, "#!/bin/sh", read(t, fs, "/out/tool"))
	assert.True(t, fs.IsExecutable("/out/tool"))
	assert.Equal(t, "b", read(t, fs, "/out/dir/b.txt"))
	assert.False(t, fs.IsExecutable("/out/dir/b.txt"))
	assert.Equal(t, "c", read(t, fs, "/out/dir/sub/c.txt"))
	assert.False(t, fs.Exists("/out/dir/.DS_Store"))
	assert.False(t, fs.Exists("/out/dir/sub/c.orig"))
}

func TestCopyMissingInput(t *testing.T) {
	fs := filesystem.NewMemory()
	fs.AddFile("/src/a", []byte("a"), false)

	assert.Equal(t, 1, launch(t, fs, "builtin-copy", nil, "missing", "a", "/out"))
	assert.Equal(t, 0, launch(t, fs, "builtin-copy", nil, "-ignore-missing-inputs", "missing", "a", "/out"))
	assert.Equal(t, "a", read(t, fs, "/out/a"))
}

func TestParseCopyOptions(t *testing.T) {
	o, err := parseCopyOptions([]string{"-V", "-exclude", "CVS", "-bitcode-strip", "all", "a", "b", "out"})
	require.NoError(t, err)
	assert.True(t, o.verbose)
	assert.Equal(t, []string{"CVS"}, o.excludes)
	assert.Equal(t, "all", o.bitcodeStrip)
	assert.Equal(t, []string{"a", "b"}, o.inputs)
	assert.Equal(t, "out", o.output)

	for _, args := range [][]string{
		{"-exclude"},
		{"-bitcode-strip", "some", "out"},
		{"-unknown", "out"},
	} {
		_, err := parseCopyOptions(args)
		assert.Error(t, err, args)
	}

	o, err = parseCopyOptions(nil)
	require.NoError(t, err)
	assert.Empty(t, o.output)
}

func utf16le(s string) []byte {
	out := []byte{0xff, 0xfe}
	for _, c := range []byte(s) {
		out = append(out, c, 0)
	}
	return out
}

func utf32le(s string) []byte {
	out := []byte{0xff, 0xfe, 0, 0}
	for _, c := range []byte(s) {
		out = append(out, c, 0, 0, 0)
	}
	return out
}

func TestCopyStrings(t *testing.T) {
	fs := filesystem.NewMemory()
	fs.AddFile("/src/in1.strings", []byte("string1 = value1;\n"), false)
	fs.AddFile("/src/en.lproj/in2.strings", []byte("string2 = value2;\n"), false)

	code := launch(t, fs, "builtin-copyStrings", nil,
		"in1.strings", "en.lproj/in2.strings", "--outdir", "output", "--outputencoding", "utf-8")
	require.Equal(t, 0, code)
	assert.Equal(t, "string1 = value1;\n", read(t, fs, "/src/output/in1.strings"))
	assert.Equal(t, "string2 = value2;\n", read(t, fs, "/src/output/in2.strings"))

	require.Equal(t, 0, launch(t, fs, "builtin-copyStrings", nil, "in1.strings", "--outdir", "/out"))
	assert.Equal(t, string(utf16le("string1 = value1;\n")), read(t, fs, "/out/in1.strings"))
}

func TestCopyStringsEncodings(t *testing.T) {
	const text = "string = value;\n"
	encodings := map[string][]byte{
		"utf-8":  []byte(text),
		"utf-16": utf16le(text),
		"utf-32": utf32le(text),
	}
	for in, input := range encodings {
		for out, want := range encodings {
			fs := filesystem.NewMemory()
			fs.AddFile("/src/in.strings", input, false)
			code := launch(t, fs, "builtin-copyStrings", nil,
				"in.strings", "--outdir", "output", "--inputencoding", in, "--outputencoding", out)
			require.Equal(t, 0, code, in+" to "+out)
			assert.Equal(t, want, []byte(read(t, fs, "/src/output/in.strings")), in+" to "+out)
		}
	}
}

func TestCopyStringsDetectsBOM(t *testing.T) {
	fs := filesystem.NewMemory()
	fs.AddFile("/src/in.strings", utf16le("a = b;"), false)
	require.Equal(t, 0, launch(t, fs, "builtin-copyStrings", nil, "in.strings", "--outdir", "/out", "--outputencoding", "UTF-8"))
	assert.Equal(t, "a = b;", read(t, fs, "/out/in.strings"))
}

func TestCopyStringsErrors(t *testing.T) {
	fs := filesystem.NewMemory()
	fs.AddFile("/src/in.strings", []byte("a = b;"), false)
	for _, args := range [][]string{
		{"in.strings"},
		{"--outdir", "/out"},
		{"in.strings", "--outdir", "/out", "--outputencoding", "binary"},
		{"in.strings", "--outdir", "/out", "--inputencoding", "latin1"},
		{"missing.strings", "--outdir", "/out"},
		{"in.strings", "--outdir"},
	} {
		assert.Equal(t, 1, launch(t, fs, "builtin-copyStrings", nil, args...), args)
	}
}

const infoPlist = `CFBundleName: $(PRODUCT_NAME)
CFBundleExecutable: $(EXECUTABLE_NAME)
CFBundlePackageType: APPL
CFBundleSignature: toolong
LSMinimumSystemVersion: $(MACOSX_DEPLOYMENT_TARGET)
CFBundleDocumentTypes:
  - CFBundleTypeName: $(PRODUCT_NAME) Document
Count: 3
`

var plistEnv = map[string]string{
	"PRODUCT_NAME":                   "App",
	"EXECUTABLE_NAME":                "App",
	"PLATFORM_NAME":                  "macosx",
	"SDK_NAME":                       "macosx10.12",
	"DEPLOYMENT_TARGET_SETTING_NAME": "MACOSX_DEPLOYMENT_TARGET",
	"MACOSX_DEPLOYMENT_TARGET":       "10.12",
	"TARGETED_DEVICE_FAMILY":         "1,2",
}

func readYAML(t *testing.T, fs filesystem.Filesystem, p string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(read(t, fs, p)), &m))
	return m
}

func TestInfoPlistUtility(t *testing.T) {
	fs := filesystem.NewMemory()
	fs.AddFile("/src/Info.plist", []byte(infoPlist), false)
	fs.AddFile("/tmp/partial.plist", []byte(`{"UILaunchImageName": "LaunchImage", "CFBundleName": "Other"}`), false)

	code := launch(t, fs, "builtin-infoPlistUtility", plistEnv,
		"Info.plist", "-expandbuildsettings", "-format", "same-as-input",
		"-additionalcontentfile", "/tmp/partial.plist",
		"-genpkginfo", "/out/App.app/PkgInfo",
		"-o", "/out/App.app/Info.plist")
	require.Equal(t, 0, code)

	m := readYAML(t, fs, "/out/App.app/Info.plist")
	assert.Equal(t, "Other", m["CFBundleName"])
	assert.Equal(t, "App", m["CFBundleExecutable"])
	assert.Equal(t, "10.12", m["LSMinimumSystemVersion"])
	assert.Equal(t, []interface{}{map[string]interface{}{"CFBundleTypeName": "App Document"}}, m["CFBundleDocumentTypes"])
	assert.Equal(t, 3, m["Count"])
	assert.Equal(t, "LaunchImage", m["UILaunchImageName"])
	assert.Equal(t, "macosx", m["DTPlatformName"])
	assert.Equal(t, "macosx10.12", m["DTSDKName"])
	assert.Equal(t, "", m["DTXcode"])
	assert.Equal(t, "10.12", m["MinimumOSVersion"])
	assert.Equal(t, []interface{}{1, 2}, m["UIDeviceFamily"])

	assert.Equal(t, "APPL????", read(t, fs, "/out/App.app/PkgInfo"))
}

func TestInfoPlistUtilityWithoutExpansion(t *testing.T) {
	fs := filesystem.NewMemory()
	fs.AddFile("/src/Info.plist", []byte(`{"CFBundleName": "$(PRODUCT_NAME)"}`), false)

	require.Equal(t, 0, launch(t, fs, "builtin-infoPlistUtility", plistEnv, "Info.plist", "-o", "/out/Info.plist"))
	m := readYAML(t, fs, "/out/Info.plist")
	assert.Equal(t, "$(PRODUCT_NAME)", m["CFBundleName"])
	assert.False(t, fs.Exists("/out/PkgInfo"))
}

func TestInfoPlistUtilityErrors(t *testing.T) {
	fs := filesystem.NewMemory()
	fs.AddFile("/src/Info.plist", []byte("A: b\n"), false)
	fs.AddFile("/src/List.plist", []byte("- a\n- b\n"), false)
	for _, args := range [][]string{
		{"Info.plist"},
		{"-o", "/out/Info.plist"},
		{"Info.plist", "-format", "binary", "-o", "/out/Info.plist"},
		{"List.plist", "-o", "/out/Info.plist"},
		{"Info.plist", "-additionalcontentfile", "missing.plist", "-o", "/out/Info.plist"},
		{"Info.plist", "Other.plist", "-o", "/out/Info.plist"},
	} {
		assert.Equal(t, 1, launch(t, fs, "builtin-infoPlistUtility", nil, args...), args)
	}
}

const launchImageSet = `{
  "images": [
    {"filename": "legacy.png", "idiom": "iphone", "orientation": "portrait", "extent": "full-screen", "scale": "1x"},
    {"filename": "modern.png", "idiom": "iphone", "orientation": "portrait", "extent": "full-screen", "minimum-system-version": "7.0", "scale": "1x"}
  ]
}`

func TestAssetCatalog(t *testing.T) {
	fs := filesystem.NewMemory()
	fs.AddFile("/src/Assets.xcassets/Contents.json", []byte(`{"info": {"version": 1, "author": "xcode"}}`), false)
	fs.AddFile("/src/Assets.xcassets/LaunchImage.launchimage/Contents.json", []byte(launchImageSet), false)
	fs.AddFile("/src/Assets.xcassets/LaunchImage.launchimage/legacy.png", []byte("legacy"), false)
	fs.AddFile("/src/Assets.xcassets/LaunchImage.launchimage/modern.png", []byte("modern"), false)
	fs.AddFile("/src/Info.plist", []byte("CFBundleName: App\n"), false)

	code := launch(t, fs, "builtin-actool", nil,
		"--compile", "/out/App.app",
		"--platform", "iphoneos",
		"--output-partial-info-plist", "/tmp/assetcatalog_generated_info.plist",
		"--minimum-deployment-target", "9.0",
		"--warnings",
		"Assets.xcassets")
	require.Equal(t, 0, code)

	assert.Equal(t, "legacy", read(t, fs, "/out/App.app/LaunchImage.png"))
	assert.Equal(t, "modern", read(t, fs, "/out/App.app/LaunchImage-700.png"))

	partial := readYAML(t, fs, "/tmp/assetcatalog_generated_info.plist")
	assert.Equal(t, "LaunchImage", partial["UILaunchImageName"])
	assert.Equal(t, []interface{}{map[string]interface{}{
		"UILaunchImageMinimumOSVersion": "7.0",
		"UILaunchImageName":             "LaunchImage-700",
		"UILaunchImageOrientation":      "Portrait",
		"UILaunchImageSize":             "{320, 480}",
	}}, partial["UILaunchImages"])

	code = launch(t, fs, "builtin-infoPlistUtility", nil,
		"Info.plist", "-additionalcontentfile", "/tmp/assetcatalog_generated_info.plist", "-o", "/out/App.app/Info.plist")
	require.Equal(t, 0, code)
	info := readYAML(t, fs, "/out/App.app/Info.plist")
	assert.Equal(t, "App", info["CFBundleName"])
	assert.Equal(t, "LaunchImage", info["UILaunchImageName"])
	assert.Len(t, info["UILaunchImages"], 1)
}

func TestAssetCatalogErrors(t *testing.T) {
	fs := filesystem.NewMemory()
	fs.AddFile("/src/Assets.xcassets/Contents.json", []byte(`{}`), false)
	fs.AddFile("/src/Bad.xcassets/Broken.launchimage/Contents.json", []byte(`{"images": [{"filename": "a.png", "idiom": "mac"}]}`), false)
	for _, args := range [][]string{
		{"Assets.xcassets"},
		{"--compile", "/out"},
		{"--compile", "/out", "Missing.xcassets"},
		{"--compile", "/out", "--bogus", "Assets.xcassets"},
		{"--compile", "/out", "Bad.xcassets"},
	} {
		assert.Equal(t, 1, launch(t, fs, "builtin-actool", nil, args...), args)
	}
	assert.Equal(t, 0, launch(t, fs, "builtin-actool", nil, "--compile", "/out", "Assets.xcassets"))
}
