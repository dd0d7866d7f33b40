package sdk

import (
	"path"
	"sort"
	"strings"

	"github.com/juju/errgo"
	"github.com/mitchellh/mapstructure"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/setting"
)

// Description files read from a developer directory.
const (
	PlatformInfo  = "Info.yaml"
	SDKSettings   = "SDKSettings.yaml"
	ToolchainInfo = "ToolchainInfo.yaml"
)

// A Manager is a loaded developer directory.
type Manager struct {
	Path       string
	Platforms  []*Platform
	Toolchains []*Toolchain
}

// FindTarget finds an SDK by canonical name or path. A platform name or
// path selects the newest SDK of that platform.
func (m *Manager) FindTarget(name string) *Target {
	for _, p := range m.Platforms {
		for _, t := range p.Targets {
			if t.CanonicalName == name || t.Path == name {
				return t
			}
		}
		if (p.Name == name || p.Path == name) && len(p.Targets) > 0 {
			return p.Targets[len(p.Targets)-1]
		}
	}
	return nil
}

// FindToolchain finds a toolchain by identifier, name, alias or path.
func (m *Manager) FindToolchain(name string) *Toolchain {
	for _, t := range m.Toolchains {
		if t.Identifier == name || t.Name == name || t.Path == name {
			return t
		}
		for _, a := range t.Aliases {
			if a == name {
				return t
			}
		}
	}
	return nil
}

// Settings returns the settings derived from the developer directory.
func (m *Manager) Settings() setting.Level {
	toolchainDir := ""
	if t := m.FindToolchain(DefaultToolchain); t != nil {
		toolchainDir = t.Path
	}
	var names []string
	for _, p := range m.Platforms {
		names = append(names, p.Name)
	}
	return setting.NewLevel(
		setting.Create("DEVELOPER_DIR", m.Path),
		setting.Define("DEVELOPER_USR_DIR", "$(DEVELOPER_DIR)/usr"),
		setting.Define("DEVELOPER_BIN_DIR", "$(DEVELOPER_DIR)/usr/bin"),
		setting.Define("DEVELOPER_APPLICATIONS_DIR", "$(DEVELOPER_DIR)/Applications"),
		setting.Define("DEVELOPER_FRAMEWORKS_DIR", "$(DEVELOPER_DIR)/Library/Frameworks"),
		setting.Define("DEVELOPER_LIBRARY_DIR", "$(DEVELOPER_DIR)/Library"),
		setting.Define("DEVELOPER_TOOLS_DIR", "$(DEVELOPER_DIR)/Tools"),
		setting.Define("DERIVED_DATA_DIR", "$(USER_LIBRARY_DIR)/Developer/Xcode/DerivedData"),
		setting.Create("DT_TOOLCHAIN_DIR", toolchainDir),
		setting.Create("AVAILABLE_PLATFORMS", setting.FormatList(names)),
	)
}

// ExecutablePaths returns the tool search path for building against the
// SDK target with toolchains.
func (m *Manager) ExecutablePaths(target *Target, toolchains []*Toolchain) []string {
	var paths []string
	for _, t := range toolchains {
		paths = append(paths, t.ExecutablePaths()...)
	}
	if target != nil && target.Platform != nil {
		paths = append(paths, target.Platform.ExecutablePaths()...)
	}
	return append(paths, path.Join(m.Path, "usr/bin"), path.Join(m.Path, "Tools"))
}

func decode(data []byte, out interface{}) error {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errgo.Mask(err)
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return errgo.Mask(err)
	}
	if err := decoder.Decode(doc); err != nil {
		return errgo.Mask(err)
	}
	return nil
}

func readInfo(fs filesystem.Filesystem, p string, out interface{}) error {
	data, err := fs.Read(p)
	if err != nil {
		return errgo.Notef(err, "cannot read %s", p)
	}
	if err := decode(data, out); err != nil {
		return errgo.Notef(err, "cannot decode %s", p)
	}
	return nil
}

// entries lists the children of dir with the given extension. A missing
// directory has none.
func entries(fs filesystem.Filesystem, dir, ext string) []string {
	names, err := fs.EnumerateDirectory(dir)
	if err != nil {
		return nil
	}
	var paths []string
	for _, name := range names {
		if strings.HasSuffix(name, ext) {
			paths = append(paths, path.Join(dir, name))
		}
	}
	return paths
}

func loadPlatform(fs filesystem.Filesystem, m *Manager, p string) (*Platform, error) {
	platform := &Platform{Path: p, manager: m}
	if err := readInfo(fs, path.Join(p, PlatformInfo), platform); err != nil {
		return nil, err
	}
	for _, sdkPath := range entries(fs, path.Join(p, "Developer/SDKs"), ".sdk") {
		target := &Target{Path: sdkPath, Platform: platform}
		if err := readInfo(fs, path.Join(sdkPath, SDKSettings), target); err != nil {
			grip.Warning(message.WrapError(err, message.Fields{
				"message":  "skipping sdk",
				"platform": platform.Name,
			}))
			continue
		}
		platform.Targets = append(platform.Targets, target)
	}
	sort.SliceStable(platform.Targets, func(i, j int) bool {
		return compareVersions(platform.Targets[i].Version, platform.Targets[j].Version) < 0
	})
	return platform, nil
}

// Load reads the developer directory at developerDir. Platforms are read
// concurrently; unreadable SDKs are skipped with a warning.
func Load(fs filesystem.Filesystem, developerDir string) (*Manager, error) {
	if developerDir == "" {
		return nil, errgo.New("empty developer directory")
	}
	m := &Manager{Path: developerDir}

	for _, p := range entries(fs, path.Join(developerDir, "Toolchains"), ".xctoolchain") {
		t := &Toolchain{Path: p}
		if err := readInfo(fs, path.Join(p, ToolchainInfo), t); err != nil {
			return nil, err
		}
		m.Toolchains = append(m.Toolchains, t)
	}

	paths := entries(fs, path.Join(developerDir, "Platforms"), ".platform")
	platforms := make([]*Platform, len(paths))
	var g errgroup.Group
	for i, p := range paths {
		g.Go(func() error {
			platform, err := loadPlatform(fs, m, p)
			platforms[i] = platform
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.SliceStable(platforms, func(i, j int) bool {
		return platforms[i].Description < platforms[j].Description
	})
	m.Platforms = platforms

	grip.Debug(message.Fields{
		"message":    "loaded developer directory",
		"path":       developerDir,
		"platforms":  len(m.Platforms),
		"toolchains": len(m.Toolchains),
	})
	return m, nil
}
