package spec

import (
	"github.com/vron/xcbuild/setting"
)

// A FileType classifies files by name, for build rules and resolvers.
type FileType struct {
	Base `mapstructure:",squash"`

	Extensions       []string
	FilenamePatterns []string
	Prefix           []string
	UTI              string
	Language         string
	ComputerLanguage string
	GCCDialectName   string
	Permissions      string

	IsTextFile           bool
	IsSourceCode         bool
	IsPreprocessed       bool
	IsTransparent        bool
	IsDocumentation      bool
	IsExecutable         bool
	IsApplication        bool
	IsBundle             bool
	IsLibrary            bool
	IsDynamicLibrary     bool
	IsStaticLibrary      bool
	IsFolder             bool
	IsWrappedFolder      bool
	IsFrameworkWrapper   bool
	IsScannedForIncludes bool
	AppliesToBuildRules  bool
	ContainsNativeCode   bool
}

func (f *FileType) Type() string { return TypeFileType }

func (f *FileType) Inherit(base Specification) {
	b, ok := base.(*FileType)
	if !ok {
		return
	}
	f.Base.inherit(&b.Base)
	inheritList(&f.Extensions, b.Extensions)
	inheritList(&f.FilenamePatterns, b.FilenamePatterns)
	inheritList(&f.Prefix, b.Prefix)
	inheritString(&f.UTI, b.UTI)
	inheritString(&f.Language, b.Language)
	inheritString(&f.ComputerLanguage, b.ComputerLanguage)
	inheritString(&f.GCCDialectName, b.GCCDialectName)
	inheritString(&f.Permissions, b.Permissions)
	inheritBool(&f.IsTextFile, b.IsTextFile)
	inheritBool(&f.IsSourceCode, b.IsSourceCode)
	inheritBool(&f.IsPreprocessed, b.IsPreprocessed)
	inheritBool(&f.IsTransparent, b.IsTransparent)
	inheritBool(&f.IsDocumentation, b.IsDocumentation)
	inheritBool(&f.IsExecutable, b.IsExecutable)
	inheritBool(&f.IsApplication, b.IsApplication)
	inheritBool(&f.IsBundle, b.IsBundle)
	inheritBool(&f.IsLibrary, b.IsLibrary)
	inheritBool(&f.IsDynamicLibrary, b.IsDynamicLibrary)
	inheritBool(&f.IsStaticLibrary, b.IsStaticLibrary)
	inheritBool(&f.IsFolder, b.IsFolder)
	inheritBool(&f.IsWrappedFolder, b.IsWrappedFolder)
	inheritBool(&f.IsFrameworkWrapper, b.IsFrameworkWrapper)
	inheritBool(&f.IsScannedForIncludes, b.IsScannedForIncludes)
	inheritBool(&f.AppliesToBuildRules, b.AppliesToBuildRules)
	inheritBool(&f.ContainsNativeCode, b.ContainsNativeCode)
}

// IsA reports whether the file type is id or based on it.
func (f *FileType) IsA(id string) bool {
	for s := Specification(f); s != nil; s = s.Meta().Super() {
		if s.Meta().Identifier == id {
			return true
		}
	}
	return false
}

// A ProductType describes a kind of target product, such as an application.
type ProductType struct {
	Base `mapstructure:",squash"`

	DefaultTargetName      string
	DefaultBuildProperties map[string]interface{}
	PackageTypes           []string
	IsWrapper              bool
	HasInfoPlist           bool
	HasInfoPlistStrings    bool
	IsJava                 bool
}

func (p *ProductType) Type() string { return TypeProductType }

func (p *ProductType) Inherit(base Specification) {
	b, ok := base.(*ProductType)
	if !ok {
		return
	}
	p.Base.inherit(&b.Base)
	inheritString(&p.DefaultTargetName, b.DefaultTargetName)
	inheritMap(&p.DefaultBuildProperties, b.DefaultBuildProperties)
	inheritList(&p.PackageTypes, b.PackageTypes)
	inheritBool(&p.IsWrapper, b.IsWrapper)
	inheritBool(&p.HasInfoPlist, b.HasInfoPlist)
	inheritBool(&p.HasInfoPlistStrings, b.HasInfoPlistStrings)
	inheritBool(&p.IsJava, b.IsJava)
}

// DefaultSettings returns the product type's default build settings.
func (p *ProductType) DefaultSettings() setting.Level {
	return settingsLevel(p.DefaultBuildProperties)
}

// A ProductReference names the file a package type produces.
type ProductReference struct {
	FileType     string
	Name         string
	IsLaunchable bool
}

// A PackageType describes the on-disk layout of a product.
type PackageType struct {
	Base `mapstructure:",squash"`

	DefaultBuildSettings map[string]interface{}
	ProductReference     ProductReference
}

func (p *PackageType) Type() string { return TypePackageType }

func (p *PackageType) Inherit(base Specification) {
	b, ok := base.(*PackageType)
	if !ok {
		return
	}
	p.Base.inherit(&b.Base)
	inheritMap(&p.DefaultBuildSettings, b.DefaultBuildSettings)
	inheritString(&p.ProductReference.FileType, b.ProductReference.FileType)
	inheritString(&p.ProductReference.Name, b.ProductReference.Name)
	inheritBool(&p.ProductReference.IsLaunchable, b.ProductReference.IsLaunchable)
}

// DefaultSettings returns the package type's default build settings.
func (p *PackageType) DefaultSettings() setting.Level {
	return settingsLevel(p.DefaultBuildSettings)
}

// A BuildSystem holds the defaults of every target built by it.
type BuildSystem struct {
	Base `mapstructure:",squash"`

	Options    []PropertyOption
	Properties []PropertyOption
}

func (s *BuildSystem) Type() string { return TypeBuildSystem }

func (s *BuildSystem) Inherit(base Specification) {
	b, ok := base.(*BuildSystem)
	if !ok {
		return
	}
	s.Base.inherit(&b.Base)
	inheritOptions(&s.Options, b.Options)
	inheritOptions(&s.Properties, b.Properties)
}

// DefaultSettings returns the defaults of the options and properties.
func (s *BuildSystem) DefaultSettings() setting.Level {
	all := append(append([]PropertyOption(nil), s.Properties...), s.Options...)
	return optionsLevel(all)
}

// An Architecture is a real architecture or, when it lists real
// architectures, a named set of them.
type Architecture struct {
	Base `mapstructure:",squash"`

	RealArchitectures       []string
	ArchitectureSetting     string
	PerArchBuildSettingName string
	ByteOrder               string
	ListInEnum              bool
	SortNumber              int
}

func (a *Architecture) Type() string { return TypeArchitecture }

func (a *Architecture) Inherit(base Specification) {
	b, ok := base.(*Architecture)
	if !ok {
		return
	}
	a.Base.inherit(&b.Base)
	inheritList(&a.RealArchitectures, b.RealArchitectures)
	inheritString(&a.ArchitectureSetting, b.ArchitectureSetting)
	inheritString(&a.PerArchBuildSettingName, b.PerArchBuildSettingName)
	inheritString(&a.ByteOrder, b.ByteOrder)
	inheritBool(&a.ListInEnum, b.ListInEnum)
	if a.SortNumber == 0 {
		a.SortNumber = b.SortNumber
	}
}

// IsVirtual reports whether the architecture names a set of real ones.
func (a *Architecture) IsVirtual() bool {
	return a.RealArchitectures != nil
}

// DefaultSetting returns the setting listing the real architectures of a
// virtual architecture, as in ARCHS_STANDARD = "armv7 arm64".
func (a *Architecture) DefaultSetting() (setting.Setting, bool) {
	if a.ArchitectureSetting == "" {
		return setting.Setting{}, false
	}
	return setting.Create(a.ArchitectureSetting, setting.FormatList(a.RealArchitectures)), true
}

// A BuildRule assigns files of some types or names to a tool.
type BuildRule struct {
	Base `mapstructure:",squash"`

	FileTypes    []string `mapstructure:"FileType"`
	CompilerSpec string
}

func (r *BuildRule) Type() string { return TypeBuildRule }

func (r *BuildRule) Inherit(base Specification) {
	b, ok := base.(*BuildRule)
	if !ok {
		return
	}
	r.Base.inherit(&b.Base)
	inheritList(&r.FileTypes, b.FileTypes)
	inheritString(&r.CompilerSpec, b.CompilerSpec)
}
