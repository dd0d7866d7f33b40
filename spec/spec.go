// Package spec holds the typed specification records that describe tools,
// file types, product types and the rest of the build vocabulary, and the
// registry they are looked up in.
package spec

import (
	"github.com/vron/xcbuild/setting"
)

// Specification types.
const (
	TypeArchitecture = "Architecture"
	TypeBuildRule    = "BuildRule"
	TypeBuildSystem  = "BuildSystem"
	TypeCompiler     = "Compiler"
	TypeFileType     = "FileType"
	TypeLinker       = "Linker"
	TypePackageType  = "PackageType"
	TypeProductType  = "ProductType"
	TypeTool         = "Tool"
)

var types = []string{
	TypeArchitecture,
	TypeBuildRule,
	TypeBuildSystem,
	TypeCompiler,
	TypeFileType,
	TypeLinker,
	TypePackageType,
	TypeProductType,
	TypeTool,
}

// DefaultDomain is searched after every platform domain.
const DefaultDomain = "default"

// A Specification is one record of the registry.
type Specification interface {
	Meta() *Base
	Type() string
	// Inherit fills the record from base, a record of the same type that
	// has itself already inherited from its own base.
	Inherit(base Specification)
}

// Base holds the fields shared by every specification.
type Base struct {
	Identifier  string
	Domain      string `mapstructure:"-"`
	BasedOn     string
	Name        string
	Description string
	Vendor      string
	Class       string
	IsAbstract  bool

	base      Specification
	inherited bool
}

func (b *Base) Meta() *Base { return b }

// Super returns the record this one is based on, or nil.
func (b *Base) Super() Specification { return b.base }

func (b *Base) inherit(o *Base) {
	inheritString(&b.Name, o.Name)
	inheritString(&b.Description, o.Description)
	inheritString(&b.Vendor, o.Vendor)
	inheritString(&b.Class, o.Class)
}

func inheritString(d *string, b string) {
	if *d == "" {
		*d = b
	}
}

func inheritBool(d *bool, b bool) {
	*d = *d || b
}

// inheritList unions b into d, keeping d's entries first.
func inheritList(d *[]string, b []string) {
	if len(b) == 0 {
		return
	}
	seen := make(map[string]bool, len(*d))
	for _, s := range *d {
		seen[s] = true
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			*d = append(*d, s)
		}
	}
}

func inheritStringMap(d *map[string]string, b map[string]string) {
	if len(b) == 0 {
		return
	}
	if *d == nil {
		*d = map[string]string{}
	}
	for k, v := range b {
		if _, ok := (*d)[k]; !ok {
			(*d)[k] = v
		}
	}
}

func inheritMap(d *map[string]interface{}, b map[string]interface{}) {
	if len(b) == 0 {
		return
	}
	if *d == nil {
		*d = map[string]interface{}{}
	}
	for k, v := range b {
		if _, ok := (*d)[k]; !ok {
			(*d)[k] = v
		}
	}
}

// settingsLevel converts a decoded settings map to a level.
func settingsLevel(m map[string]interface{}) setting.Level {
	return setting.LevelFromInterface(m)
}
