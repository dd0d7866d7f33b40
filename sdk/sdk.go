// Package sdk models a developer directory: its platforms, the SDKs each
// platform ships and the toolchains.
package sdk

import (
	"path"
	"strconv"
	"strings"

	"github.com/vron/xcbuild/setting"
)

// DefaultToolchain is the identifier of the toolchain used when a target
// names none.
const DefaultToolchain = "com.apple.dt.toolchain.XcodeDefault"

// A Toolchain is a directory of compilers and tools.
type Toolchain struct {
	Identifier string
	Name       string
	Aliases    []string
	Path       string `mapstructure:"-"`
}

func (t *Toolchain) ExecutablePaths() []string {
	return []string{
		path.Join(t.Path, "usr/bin"),
		path.Join(t.Path, "usr/libexec"),
	}
}

// A Target is one SDK of a platform.
type Target struct {
	CanonicalName     string
	DisplayName       string
	Version           string
	IsBaseSDK         bool
	Toolchains        []string
	DefaultProperties map[string]interface{}
	CustomProperties  map[string]interface{}

	Path     string    `mapstructure:"-"`
	Platform *Platform `mapstructure:"-"`
}

// Settings returns the settings the SDK itself defines.
func (t *Target) Settings() setting.Level {
	return setting.NewLevel(
		setting.Create("SDK_NAME", t.CanonicalName),
		setting.Create("SDK_DIR", t.Path),
		setting.Create("SDK_VERSION", t.Version),
		setting.Create("TOOLCHAINS", setting.FormatList(t.Toolchains)),
	)
}

func (t *Target) DefaultSettings() setting.Level {
	return setting.LevelFromInterface(t.DefaultProperties)
}

func (t *Target) CustomSettings() setting.Level {
	return setting.LevelFromInterface(t.CustomProperties)
}

// A Platform groups the SDKs for one kind of device.
type Platform struct {
	Identifier         string
	Name               string
	Description        string
	FamilyIdentifier   string
	Version            string
	DefaultProperties  map[string]interface{}
	OverrideProperties map[string]interface{}

	Path    string    `mapstructure:"-"`
	Targets []*Target `mapstructure:"-"`

	manager *Manager
}

func (p *Platform) DefaultSettings() setting.Level {
	return setting.LevelFromInterface(p.DefaultProperties)
}

func (p *Platform) OverrideSettings() setting.Level {
	return setting.LevelFromInterface(p.OverrideProperties)
}

func (p *Platform) ExecutablePaths() []string {
	return []string{
		path.Join(p.Path, "Developer/usr/bin"),
		path.Join(p.Path, "usr/local/bin"),
		path.Join(p.Path, "usr/bin"),
	}
}

// deploymentNames gives the setting, clang flag and environment spellings
// of the platform's deployment target.
func (p *Platform) deploymentNames() (settingName, flagName, envName string) {
	switch {
	case strings.HasPrefix(p.Name, "macosx"):
		settingName, flagName = "MACOSX", "macosx"
	case strings.HasPrefix(p.Name, "iphone"):
		settingName, flagName = "IPHONEOS", "ios"
	case strings.HasPrefix(p.Name, "appletv"):
		settingName, flagName = "TVOS", "tvos"
	case strings.HasPrefix(p.Name, "watch"):
		settingName, flagName = "WATCHOS", "watchos"
	default:
		settingName, flagName = strings.ToUpper(p.Name), p.Name
	}
	envName = settingName
	if strings.HasSuffix(p.Name, "simulator") {
		flagName += "-simulator"
	}
	return settingName, flagName, envName
}

// Settings returns the settings the platform itself defines.
func (p *Platform) Settings() setting.Level {
	settingName, flagName, envName := p.deploymentNames()
	effective := "-$(PLATFORM_NAME)"
	if p.Name == "macosx" {
		effective = ""
	}
	supported := []string{p.Name}
	if p.manager != nil && p.FamilyIdentifier != "" {
		supported = nil
		for _, o := range p.manager.Platforms {
			if o.FamilyIdentifier == p.FamilyIdentifier {
				supported = append(supported, o.Name)
			}
		}
	}
	return setting.NewLevel(
		setting.Create("PLATFORM_NAME", p.Name),
		setting.Create("PLATFORM_DISPLAY_NAME", p.Description),
		setting.Create("PLATFORM_DIR", p.Path),
		setting.Define("PLATFORM_DEVELOPER_USR_DIR", "$(PLATFORM_DIR)/Developer/usr"),
		setting.Define("PLATFORM_DEVELOPER_BIN_DIR", "$(PLATFORM_DIR)/Developer/usr/bin"),
		setting.Define("PLATFORM_DEVELOPER_APPLICATIONS_DIR", "$(PLATFORM_DIR)/Developer/Applications"),
		setting.Define("PLATFORM_DEVELOPER_SDK_DIR", "$(PLATFORM_DIR)/Developer/SDKs"),
		setting.Define("PLATFORM_DEVELOPER_TOOLS_DIR", "$(PLATFORM_DIR)/Developer/Tools"),
		setting.Create("DEPLOYMENT_TARGET_SETTING_NAME", settingName+"_DEPLOYMENT_TARGET"),
		setting.Create("DEPLOYMENT_TARGET_CLANG_FLAG_NAME", "m"+flagName+"-version-min"),
		setting.Create("DEPLOYMENT_TARGET_CLANG_FLAG_PREFIX", "-m"+flagName+"-version-min="),
		setting.Create("DEPLOYMENT_TARGET_CLANG_ENV_NAME", envName+"_DEPLOYMENT_TARGET"),
		setting.Define("EFFECTIVE_PLATFORM_NAME", effective),
		setting.Create("SUPPORTED_PLATFORMS", setting.FormatList(supported)),
	)
}

// SpecificationDomains returns the specification domains searched for the
// platform, most specific first.
func (p *Platform) SpecificationDomains() []string {
	domains := []string{p.Name}
	simulator := strings.Index(p.Name, "simulator")
	if simulator >= 0 {
		domains = append(domains, p.Name[:simulator]+"os-shared")
	} else {
		domains = append(domains, p.Name+"-shared")
	}
	if p.Name != "macosx" {
		if simulator >= 0 {
			domains = append(domains, "embedded-simulator")
		} else {
			domains = append(domains, "embedded")
		}
		domains = append(domains, "embedded-shared")
	}
	return append(domains, "default")
}

// compareVersions compares dotted numeric versions.
func compareVersions(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var x, y int
		if i < len(as) {
			x, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			y, _ = strconv.Atoi(bs[i])
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}
