// Package build holds what is shared by every target of a build: the loaded
// specifications and SDKs, the base settings, the requested action and
// configuration, and the order targets are built in.
package build

import (
	"path"
	"runtime"
	"strings"

	"github.com/juju/errgo"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"

	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/process"
	"github.com/vron/xcbuild/sdk"
	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/spec"
)

// CoreBuildSystem is the build system whose defaults underlie every build.
const CoreBuildSystem = "com.apple.build-system.core"

// An Environment is the read-only state every target build starts from.
type Environment struct {
	Registry        *spec.Registry
	SDKs            *sdk.Manager
	Base            setting.Environment
	ExecutablePaths []string
}

// Options locate the inputs of Default.
type Options struct {
	DeveloperDir string
	// SpecificationDir holds the specification domains. Platforms may add
	// their own under Developer/Library/Xcode/Specifications.
	SpecificationDir string
}

// Default loads the developer directory and specifications and computes
// the base environment for pc.
func Default(fs filesystem.Filesystem, pc *process.Context, o Options) (*Environment, error) {
	if o.DeveloperDir == "" {
		o.DeveloperDir = pc.Environment["DEVELOPER_DIR"]
	}
	if o.DeveloperDir == "" {
		return nil, errgo.New("cannot find developer directory")
	}
	sdks, err := sdk.Load(fs, o.DeveloperDir)
	if err != nil {
		return nil, errgo.Notef(err, "cannot load developer directory")
	}

	var domains []spec.Domain
	if o.SpecificationDir != "" {
		if domains, err = spec.Domains(fs, o.SpecificationDir); err != nil {
			return nil, err
		}
	}
	for _, p := range sdks.Platforms {
		dir := path.Join(p.Path, "Developer/Library/Xcode/Specifications")
		if fs.IsDirectory(dir) {
			domains = append(domains, spec.Domain{Name: p.Name, Path: dir})
		}
	}
	registry, err := spec.Load(fs, domains)
	if err != nil {
		return nil, errgo.Notef(err, "cannot load specifications")
	}

	buildSystem := registry.BuildSystem(CoreBuildSystem, []string{spec.DefaultDomain})
	if buildSystem == nil {
		return nil, errgo.Newf("cannot find build system %s", CoreBuildSystem)
	}

	base := setting.NewEnvironment()
	base = base.InsertBack(buildSystem.DefaultSettings(), true)
	base = base.InsertBack(sdks.Settings(), false)
	for _, l := range DefaultLevels(pc) {
		base = base.InsertBack(l, false)
	}

	grip.Debug(message.Fields{
		"message":       "build environment",
		"developer_dir": o.DeveloperDir,
		"domains":       registry.Domains(),
	})
	return &Environment{
		Registry:        registry,
		SDKs:            sdks,
		Base:            base,
		ExecutablePaths: strings.Split(pc.Environment["PATH"], ":"),
	}, nil
}

// DefaultLevels returns the settings describing the user, the machine and
// the process environment, highest precedence first.
func DefaultLevels(pc *process.Context) []setting.Level {
	var env []setting.Setting
	for _, kv := range pc.Env() {
		k, v, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(k, "_") {
			continue
		}
		env = append(env, setting.Create(k, v))
	}
	env = append(env,
		setting.Create("USER", pc.UserName),
		setting.Create("GROUP", pc.GroupName),
	)
	if pc.HomeDirectory != "" {
		env = append(env, setting.Create("HOME", pc.HomeDirectory))
	}
	env = append(env,
		setting.Define("USER_APPS_DIR", "$(HOME)/Applications"),
		setting.Define("USER_LIBRARY_DIR", "$(HOME)/Library"),
		setting.Create("CACHE_ROOT", "/tmp/com.apple.DeveloperTools/Xcode"),
		setting.Define("TEMP_FILES_DIR", "$(TEMP_DIR)"),
	)

	native32, native64 := "UNKNOWN", "UNKNOWN"
	switch runtime.GOARCH {
	case "amd64", "386":
		native32, native64 = "i386", "x86_64"
	case "arm64", "arm":
		native32, native64 = "armv7", "arm64"
	}
	actual := native64
	if runtime.GOARCH == "386" || runtime.GOARCH == "arm" {
		actual = native32
	}

	return []setting.Level{
		setting.NewLevel(env...),
		setting.NewLevel(
			setting.Create("LOCAL_ADMIN_APPS_DIR", "/Applications/Utilities"),
			setting.Create("LOCAL_APPS_DIR", "/Applications"),
			setting.Create("LOCAL_DEVELOPER_DIR", "/Library/Developer"),
			setting.Create("LOCAL_LIBRARY_DIR", "/Library"),
		),
		setting.NewLevel(
			setting.Create("SYSTEM_APPS_DIR", "/Applications"),
			setting.Create("SYSTEM_CORE_SERVICES_DIR", "/System/Library/CoreServices"),
			setting.Define("SYSTEM_DEVELOPER_DIR", "$(DEVELOPER_DIR)"),
			setting.Define("SYSTEM_DEVELOPER_BIN_DIR", "$(DEVELOPER_BIN_DIR)"),
			setting.Define("SYSTEM_DEVELOPER_TOOLS", "$(DEVELOPER_TOOLS_DIR)"),
			setting.Define("SYSTEM_DEVELOPER_USR_DIR", "$(DEVELOPER_USR_DIR)"),
			setting.Create("SYSTEM_LIBRARY_DIR", "/System/Library"),
			setting.Create("OS", "MACOS"),
		),
		setting.NewLevel(
			setting.Create("NATIVE_ARCH_32_BIT", native32),
			setting.Create("NATIVE_ARCH_64_BIT", native64),
			setting.Create("NATIVE_ARCH_ACTUAL", actual),
		),
		setting.NewLevel(
			setting.Create("XCODE_PRODUCT_BUILD_VERSION", "7C68"),
			setting.Create("XCODE_VERSION_ACTUAL", "0720"),
			setting.Create("XCODE_VERSION_MAJOR", "0700"),
			setting.Create("XCODE_VERSION_MINOR", "0720"),
			setting.Define("XCODE_APP_SUPPORT_DIR", "$(DEVELOPER_LIBRARY_DIR)/Xcode"),
		),
	}
}
