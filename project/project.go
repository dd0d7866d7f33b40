// Package project models a project: its tree of file references, its build
// configurations and the targets built from them.
package project

import (
	"iter"
	"path"
	"strings"

	"github.com/vron/xcbuild/setting"
)

// Source trees a file reference can be relative to.
const (
	SourceTreeGroup     = "<group>"
	SourceTreeAbsolute  = "<absolute>"
	SourceTreeRoot      = "SOURCE_ROOT"
	SourceTreeProducts  = "BUILT_PRODUCTS_DIR"
	SourceTreeSDK       = "SDKROOT"
	SourceTreeDeveloper = "DEVELOPER_DIR"
)

// Kinds of items in the file tree.
const (
	KindFile         = "file"
	KindGroup        = "group"
	KindVariantGroup = "variantGroup"
)

// An Item is a node of the project's file tree: a file reference, a group
// or a variant group holding the localizations of one file.
type Item struct {
	ID                string
	Kind              string
	Name              string
	Path              string
	SourceTree        string
	ExplicitFileType  string
	LastKnownFileType string
	Children          []*Item

	Parent *Item `mapstructure:"-"`
}

// DisplayName is the item's name, or the last element of its path.
func (i *Item) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return path.Base(i.Path)
}

// Resolve returns the location of the item as a value to be expanded in a
// target environment.
func (i *Item) Resolve() setting.Value {
	var base setting.Value
	switch i.SourceTree {
	case SourceTreeAbsolute:
		return setting.String(i.Path)
	case SourceTreeGroup, "":
		if i.Parent != nil {
			base = i.Parent.Resolve()
		} else {
			base = setting.Variable("SRCROOT")
		}
	case SourceTreeRoot:
		base = setting.Variable("SRCROOT")
	default:
		base = setting.Variable(i.SourceTree)
	}
	if i.Path == "" {
		return base
	}
	if strings.HasPrefix(i.Path, "/") {
		return setting.String(i.Path)
	}
	return base.Concat(setting.String("/" + i.Path))
}

// Walk visits the item and everything below it, parents before children
// in the order stored.
func (i *Item) Walk() iter.Seq[*Item] {
	return func(yield func(*Item) bool) {
		i.walk(yield)
	}
}

func (i *Item) walk(yield func(*Item) bool) bool {
	if !yield(i) {
		return false
	}
	for _, c := range i.Children {
		if !c.walk(yield) {
			return false
		}
	}
	return true
}

// A Configuration is a named set of settings, optionally based on an
// xcconfig file.
type Configuration struct {
	Name              string
	BaseConfiguration string
	Settings          map[string]interface{}

	BaseConfigurationRef *Item `mapstructure:"-"`
}

func (c *Configuration) Level() setting.Level {
	return setting.LevelFromInterface(c.Settings)
}

func findConfiguration(configs []*Configuration, name, fallback string) *Configuration {
	for _, c := range configs {
		if c.Name == name {
			return c
		}
	}
	for _, c := range configs {
		if c.Name == fallback {
			return c
		}
	}
	return nil
}

// A Project is a loaded project file.
type Project struct {
	Name                 string
	SourceRoot           string
	DevelopmentRegion    string
	DefaultConfiguration string
	Settings             map[string]interface{}
	Configurations       []*Configuration
	Files                []*Item
	Targets              []*Target

	// Path is the project file and Dir the directory holding it.
	Path      string `mapstructure:"-"`
	Dir       string `mapstructure:"-"`
	MainGroup *Item  `mapstructure:"-"`

	items map[string]*Item
}

// SourceRootPath is the absolute source root of the project.
func (p *Project) SourceRootPath() string {
	if path.IsAbs(p.SourceRoot) {
		return path.Clean(p.SourceRoot)
	}
	return path.Join(p.Dir, p.SourceRoot)
}

// BuildSettings returns the settings the project itself defines.
func (p *Project) BuildSettings() setting.Level {
	region := p.DevelopmentRegion
	if region == "" {
		region = "English"
	}
	return setting.NewLevel(
		setting.Create("PROJECT", p.Name),
		setting.Create("PROJECT_NAME", p.Name),
		setting.Create("PROJECT_DIR", p.SourceRootPath()),
		setting.Create("PROJECT_FILE_PATH", p.Path),
		setting.Create("SRCROOT", p.SourceRootPath()),
		setting.Create("DEVELOPMENT_LANGUAGE", region),
	)
}

// Level returns the settings written in the project.
func (p *Project) Level() setting.Level {
	return setting.LevelFromInterface(p.Settings)
}

// Configuration finds the configuration called name, falling back to the
// project's default configuration.
func (p *Project) Configuration(name string) *Configuration {
	return findConfiguration(p.Configurations, name, p.DefaultConfiguration)
}

func (p *Project) Target(name string) *Target {
	for _, t := range p.Targets {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Item finds an item of the file tree by ID.
func (p *Project) Item(id string) *Item {
	return p.items[id]
}
