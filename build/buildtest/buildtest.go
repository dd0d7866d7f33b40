// Package buildtest provides an in-memory developer directory, a set of
// specifications and a small project for tests of the packages resolving
// targets into invocations.
package buildtest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vron/xcbuild/build"
	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/process"
	"github.com/vron/xcbuild/project"
	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/target"
)

// Locations of the fixture.
const (
	DeveloperDir     = "/Developer"
	SpecificationDir = "/specs"
	ProjectPath      = "/src/App.yaml"
	SourceRoot       = "/src"

	// Products and Intermediates are where the Debug configuration of the
	// project builds.
	Products      = "/build/Products/Debug"
	Intermediates = "/build/Intermediates/App.build/Debug"
)

const platformInfo = `
Identifier: com.apple.platform.macosx
Name: macosx
Description: macOS
DefaultProperties:
  MACOSX_DEPLOYMENT_TARGET: "10.12"
`

const sdkSettings = `
CanonicalName: macosx10.12
Version: "10.12"
Toolchains: [default]
`

const toolchainInfo = `
Identifier: com.apple.dt.toolchain.XcodeDefault
Aliases: [default]
`

// Core holds the build systems and architectures.
const Core = `
- Type: BuildSystem
  Identifier: com.apple.build-system.core
  Properties:
    - {Name: BUILD_DIR, DefaultValue: $(SYMROOT)}
    - {Name: PROJECT_TEMP_DIR, DefaultValue: $(OBJROOT)/$(PROJECT_NAME).build}
    - {Name: TARGET_BUILD_DIR, DefaultValue: $(CONFIGURATION_BUILD_DIR)}
    - {Name: BUILT_PRODUCTS_DIR, DefaultValue: $(CONFIGURATION_BUILD_DIR)}
    - {Name: TARGET_TEMP_DIR, DefaultValue: $(CONFIGURATION_TEMP_DIR)/$(TARGET_NAME).build}
    - {Name: TEMP_DIR, DefaultValue: $(TARGET_TEMP_DIR)}
    - {Name: OBJECT_FILE_DIR, DefaultValue: $(TEMP_DIR)/Objects}
    - {Name: DERIVED_FILE_DIR, DefaultValue: $(TEMP_DIR)/DerivedSources}
    - {Name: BUILD_VARIANTS, DefaultValue: normal}
    - {Name: ARCHS, DefaultValue: $(ARCHS_STANDARD)}
    - {Name: DEBUG_INFORMATION_FORMAT, DefaultValue: dwarf}
    - {Name: USE_HEADERMAP, DefaultValue: "YES"}
    - {Name: HEADERMAP_INCLUDES_PROJECT_HEADERS, DefaultValue: "YES"}
    - {Name: CPP_HEADERMAP_FILE, DefaultValue: $(TEMP_DIR)/$(PRODUCT_NAME).hmap}
    - {Name: CPP_HEADERMAP_FILE_FOR_OWN_TARGET_HEADERS, DefaultValue: $(TEMP_DIR)/$(PRODUCT_NAME)-own-target-headers.hmap}
    - {Name: CPP_HEADERMAP_FILE_FOR_ALL_TARGET_HEADERS, DefaultValue: $(TEMP_DIR)/$(PRODUCT_NAME)-all-target-headers.hmap}
    - {Name: CPP_HEADERMAP_FILE_FOR_ALL_NON_FRAMEWORK_TARGET_HEADERS, DefaultValue: $(TEMP_DIR)/$(PRODUCT_NAME)-all-non-framework-target-headers.hmap}
    - {Name: CPP_HEADERMAP_FILE_FOR_GENERATED_FILES, DefaultValue: $(TEMP_DIR)/$(PRODUCT_NAME)-generated-files.hmap}
    - {Name: CPP_HEADERMAP_FILE_FOR_PROJECT_FILES, DefaultValue: $(TEMP_DIR)/$(PRODUCT_NAME)-project-headers.hmap}
- Type: BuildSystem
  Identifier: com.apple.build-system.native
- Type: BuildSystem
  Identifier: com.apple.build-system.external
- Type: Architecture
  Identifier: x86_64
- Type: Architecture
  Identifier: i386
- Type: Architecture
  Identifier: Standard
  ArchitectureSetting: ARCHS_STANDARD
  RealArchitectures: [x86_64]
`

// FileTypes classify the files of the project.
const FileTypes = `
- Type: FileType
  Identifier: file
- Type: FileType
  Identifier: folder
  IsFolder: "YES"
- Type: FileType
  Identifier: text
  BasedOn: file
  IsTextFile: "YES"
- Type: FileType
  Identifier: sourcecode
  BasedOn: text
- Type: FileType
  Identifier: sourcecode.c.c
  BasedOn: sourcecode
  Extensions: [c]
  GCCDialectName: c
- Type: FileType
  Identifier: sourcecode.cpp.cpp
  BasedOn: sourcecode
  Extensions: [cpp, cc]
  GCCDialectName: c++
- Type: FileType
  Identifier: sourcecode.c.h
  BasedOn: sourcecode
  Extensions: [h]
- Type: FileType
  Identifier: text.plist
  BasedOn: text
  Extensions: [plist]
- Type: FileType
  Identifier: text.plist.strings
  BasedOn: text
  Extensions: [strings]
- Type: FileType
  Identifier: image.png
  BasedOn: file
  Extensions: [png]
- Type: FileType
  Identifier: archive.ar
  BasedOn: file
  Extensions: [a]
  IsLibrary: "YES"
  IsStaticLibrary: "YES"
- Type: FileType
  Identifier: wrapper.framework
  BasedOn: folder
  Extensions: [framework]
  IsFrameworkWrapper: "YES"
- Type: FileType
  Identifier: folder.assetcatalog
  BasedOn: folder
  Extensions: [xcassets]
`

// Tools are the compilers, linkers and tools the phases resolve to.
const Tools = `
- Type: Compiler
  Identifier: com.apple.compilers.llvm.clang.1_0
  Name: Apple LLVM
  ExecPath: clang
  SourceFileOption: -c
  OutputFileExtension: o
  SynthesizeBuildRule: "YES"
  SupportsHeadermaps: "YES"
  InputFileTypes: [sourcecode.c.c, sourcecode.cpp.cpp]
  ExecCPlusPlusLinkerPath: clang++
  DependencyInfoFile: $(OutputDir)/$(OutputFileBase).d
  DependencyInfoArgs: [-MMD, -MT, dependencies, -MF, $(OutputDir)/$(OutputFileBase).d]
  PatternsOfFlagsNotAffectingPrecomps: [-W*, -DMAIN=*]
  Options:
    - Name: CURRENT_ARCH
      Type: String
      CommandLineArgs: [-arch, $(value)]
    - Name: GCC_OPTIMIZATION_LEVEL
      Type: String
      DefaultValue: "0"
      CommandLinePrefixFlag: -O
    - Name: GCC_PREPROCESSOR_DEFINITIONS
      Type: StringList
      CommandLineArgs: [-D$(value)]
    - Name: GCC_ENABLE_OBJC_EXCEPTIONS
      Type: Boolean
      DefaultValue: "YES"
      CommandLineFlag: -fobjc-exceptions
      CommandLineFlagIfFalse: -fno-objc-exceptions
    - Name: CLANG_ENABLE_OBJC_ARC
      Type: Boolean
      DefaultValue: "NO"
      CommandLineFlag: -fobjc-arc
      AdditionalLinkerArgs:
        "YES": [-fobjc-arc]
        "NO": []
- Type: Compiler
  Identifier: com.apple.compilers.assetcatalog
  ExecPath: actool
  SynthesizeBuildRule: "YES"
  IsArchitectureNeutral: "YES"
  DeeplyStatInputDirectories: "YES"
  InputFileTypes: [folder.assetcatalog]
  InputFileGroupings: [actool]
- Type: Tool
  Identifier: com.apple.build-tasks.copy-strings-file
  ExecPath: builtin-copyStrings
  CommandLine: builtin-copyStrings [options] --outdir $(ProductResourcesDir) [inputs]
  OutputPath: $(ProductResourcesDir)/$(InputFileName)
  RuleName: CopyStringsFile [output] [input]
  SynthesizeBuildRule: "YES"
  IsArchitectureNeutral: "YES"
  InputFileTypes: [text.plist.strings]
  Options:
    - Name: STRINGS_FILE_OUTPUT_ENCODING
      Type: String
      DefaultValue: UTF-16
      CommandLineArgs: [--outputencoding, $(value)]
- Type: Tool
  Identifier: com.apple.compilers.pbxcp
  ExecPath: builtin-copy
  CommandLine: builtin-copy [options] [special-args]
  RuleName: $(pbxcp_rule_name) [output] [input]
  Options:
    - Name: COPY_PHASE_STRIP
      Type: Boolean
      DefaultValue: "NO"
      CommandLineFlag: -strip-debug-symbols
    - Name: PBXCP_EXCLUDES
      Type: StringList
      DefaultValue: .DS_Store
      CommandLineArgs: [-exclude, $(value)]
- Type: Tool
  Identifier: com.apple.commands.shell-script
  ExecPath: /bin/sh
- Type: Tool
  Identifier: com.apple.commands.built-in.headermap-generator
- Type: Tool
  Identifier: com.apple.tools.mkdir
- Type: Tool
  Identifier: com.apple.tools.touch
- Type: Tool
  Identifier: com.apple.tools.symlink
- Type: Tool
  Identifier: com.apple.tools.dsymutil
  ExecPath: dsymutil
  CommandLine: dsymutil [inputs] -o [output]
- Type: Tool
  Identifier: com.apple.compilers.cpp
  ExecPath: cpp
  CommandLine: cpp [options] [input] -o [output]
  Options:
    - Name: CPP_PREPROCESSOR_DEFINITIONS
      Type: StringList
      CommandLineArgs: [-D$(value)]
- Type: Tool
  Identifier: com.apple.tools.info-plist-utility
  ExecPath: builtin-infoPlistUtility
  CommandLine: builtin-infoPlistUtility [input] [options] -o [output]
  Options:
    - Name: INFOPLIST_OUTPUT_FORMAT
      Type: Enumeration
      DefaultValue: same-as-input
      CommandLineArgs: [-format, $(value)]
    - Name: AdditionalContentFilePaths
      Type: PathList
      CommandLineArgs: [-additionalcontentfile, $(value)]
- Type: Linker
  Identifier: com.apple.pbx.linkers.ld
  ExecPath: ld
  CommandLine: "[exec-path] [options] [special-args] [inputs] -o [output]"
  DependencyInfoFile: $(OBJECT_FILE_DIR_$(variant))/$(arch)/$(PRODUCT_NAME)_dependency_info.dat
  Options:
    - Name: CURRENT_ARCH
      Type: String
      CommandLineArgs: [-arch, $(value)]
- Type: Linker
  Identifier: com.apple.pbx.linkers.libtool
  ExecPath: libtool
  CommandLine: "[exec-path] -static -filelist $(LINK_FILE_LIST_$(variant)_$(arch)) [options] [special-args] -o [output]"
  Options:
    - Name: CURRENT_ARCH
      Type: String
      CommandLineArgs: [-arch_only, $(value)]
- Type: Linker
  Identifier: com.apple.xcode.linkers.lipo
  ExecPath: lipo
  CommandLine: "[exec-path] -create [inputs] -output [output]"
`

// Products are the product and package types of the project's targets.
const Products = `
- Type: ProductType
  Identifier: com.apple.product-type.bundle
  IsWrapper: "YES"
  HasInfoPlist: "YES"
- Type: ProductType
  Identifier: com.apple.product-type.application
  BasedOn: com.apple.product-type.bundle
  PackageTypes: [com.apple.package-type.wrapper.application]
  DefaultBuildProperties:
    MACH_O_TYPE: mh_execute
- Type: ProductType
  Identifier: com.apple.product-type.framework
  BasedOn: com.apple.product-type.bundle
  PackageTypes: [com.apple.package-type.wrapper.framework]
  DefaultBuildProperties:
    MACH_O_TYPE: mh_dylib
- Type: ProductType
  Identifier: com.apple.product-type.library.static
  PackageTypes: [com.apple.package-type.static-library]
  DefaultBuildProperties:
    MACH_O_TYPE: staticlib
- Type: ProductType
  Identifier: com.apple.product-type.tool
  PackageTypes: [com.apple.package-type.mach-o-executable]
  DefaultBuildProperties:
    MACH_O_TYPE: mh_execute
- Type: PackageType
  Identifier: com.apple.package-type.mach-o-executable
  DefaultBuildSettings:
    EXECUTABLE_NAME: $(PRODUCT_NAME)
    EXECUTABLE_PATH: $(EXECUTABLE_NAME)
- Type: PackageType
  Identifier: com.apple.package-type.static-library
  DefaultBuildSettings:
    EXECUTABLE_PREFIX: lib
    EXECUTABLE_SUFFIX: .a
    EXECUTABLE_NAME: $(EXECUTABLE_PREFIX)$(PRODUCT_NAME)$(EXECUTABLE_SUFFIX)
    EXECUTABLE_PATH: $(EXECUTABLE_NAME)
    PUBLIC_HEADERS_FOLDER_PATH: usr/local/include
    PRIVATE_HEADERS_FOLDER_PATH: usr/local/include
- Type: PackageType
  Identifier: com.apple.package-type.wrapper.application
  DefaultBuildSettings:
    WRAPPER_NAME: $(PRODUCT_NAME).app
    CONTENTS_FOLDER_PATH: $(WRAPPER_NAME)/Contents
    EXECUTABLE_NAME: $(PRODUCT_NAME)
    EXECUTABLE_FOLDER_PATH: $(CONTENTS_FOLDER_PATH)/MacOS
    EXECUTABLE_PATH: $(EXECUTABLE_FOLDER_PATH)/$(EXECUTABLE_NAME)
    UNLOCALIZED_RESOURCES_FOLDER_PATH: $(CONTENTS_FOLDER_PATH)/Resources
    PUBLIC_HEADERS_FOLDER_PATH: $(CONTENTS_FOLDER_PATH)/Headers
    PRIVATE_HEADERS_FOLDER_PATH: $(CONTENTS_FOLDER_PATH)/PrivateHeaders
    PLUGINS_FOLDER_PATH: $(CONTENTS_FOLDER_PATH)/PlugIns
    INFOPLIST_PATH: $(CONTENTS_FOLDER_PATH)/Info.plist
    DWARF_DSYM_FOLDER_PATH: $(BUILT_PRODUCTS_DIR)
    DWARF_DSYM_FILE_NAME: $(WRAPPER_NAME).dSYM
- Type: PackageType
  Identifier: com.apple.package-type.wrapper.framework
  DefaultBuildSettings:
    WRAPPER_NAME: $(PRODUCT_NAME).framework
    FRAMEWORK_VERSION: A
    CURRENT_VERSION: Current
    VERSIONS_FOLDER_PATH: $(WRAPPER_NAME)/Versions
    CONTENTS_FOLDER_PATH: $(VERSIONS_FOLDER_PATH)/$(FRAMEWORK_VERSION)
    EXECUTABLE_NAME: $(PRODUCT_NAME)
    EXECUTABLE_FOLDER_PATH: $(CONTENTS_FOLDER_PATH)
    EXECUTABLE_PATH: $(EXECUTABLE_FOLDER_PATH)/$(EXECUTABLE_NAME)
    UNLOCALIZED_RESOURCES_FOLDER_PATH: $(CONTENTS_FOLDER_PATH)/Resources
    PUBLIC_HEADERS_FOLDER_PATH: $(CONTENTS_FOLDER_PATH)/Headers
    PRIVATE_HEADERS_FOLDER_PATH: $(CONTENTS_FOLDER_PATH)/PrivateHeaders
    PLUGINS_FOLDER_PATH: $(CONTENTS_FOLDER_PATH)/PlugIns
    XPCSERVICES_FOLDER_PATH: $(CONTENTS_FOLDER_PATH)/XPCServices
    INFOPLIST_PATH: $(UNLOCALIZED_RESOURCES_FOLDER_PATH)/Info.plist
`

// Project builds an application from a static library, with resources,
// a script and an external build tool target.
const Project = `
Name: App
DefaultConfiguration: Debug
Settings:
  SDKROOT: macosx
  SYMROOT: /build/Products
  OBJROOT: /build/Intermediates
Configurations:
  - Name: Debug
    Settings:
      GCC_PREPROCESSOR_DEFINITIONS: DEBUG=1
  - Name: Release
    Settings:
      GCC_OPTIMIZATION_LEVEL: s
Files:
  - Path: Sources
    Children:
      - Path: main.c
      - Path: util.c
      - Path: util.h
  - Path: Core
    Children:
      - Path: core.c
      - Path: core.h
      - Path: internal.h
  - Path: Resources
    Children:
      - Path: icon.png
      - Path: Assets.xcassets
      - Path: Info.plist
      - Name: Localizable.strings
        Kind: variantGroup
        Children:
          - Name: en
            Path: en.lproj/Localizable.strings
          - Name: fr
            Path: fr.lproj/Localizable.strings
  - Path: libCore.a
    SourceTree: BUILT_PRODUCTS_DIR
Targets:
  - Name: Core
    ProductType: com.apple.product-type.library.static
    ProductReference: libCore.a
    Phases:
      - Kind: headers
        Files:
          - File: Core/core.h
            Settings:
              ATTRIBUTES: [Public]
          - File: Core/internal.h
      - Kind: sources
        Files:
          - File: Core/core.c
  - Name: App
    ProductType: com.apple.product-type.application
    ProductReference: App.app
    Dependencies: [Core]
    Settings:
      INFOPLIST_FILE: Resources/Info.plist
    Phases:
      - Kind: sources
        Files:
          - File: Sources/main.c
            Settings:
              COMPILER_FLAGS: -DMAIN=1 "-DNAME=\"my app\""
          - File: Sources/util.c
      - Kind: frameworks
        Files:
          - File: libCore.a
      - Kind: resources
        Files:
          - File: Resources/icon.png
          - File: Resources/Assets.xcassets
          - File: Resources/Localizable.strings
      - Kind: shellScript
        Name: Stamp
        ShellPath: /bin/sh
        ShellScript: touch "$SCRIPT_OUTPUT_FILE_0"
        OutputPaths: [$(DERIVED_FILE_DIR)/stamp]
  - Name: Docs
    Kind: legacy
    BuildToolPath: /usr/bin/make
    BuildArgumentsString: -C docs $(ACTION)
`

// NewFilesystem returns a filesystem holding the developer directory, the
// specifications and the project with its sources.
func NewFilesystem() *filesystem.Memory {
	fs := filesystem.NewMemory()
	fs.AddFile(DeveloperDir+"/Toolchains/XcodeDefault.xctoolchain/ToolchainInfo.yaml", []byte(toolchainInfo), false)
	fs.AddFile(DeveloperDir+"/Platforms/MacOSX.platform/Info.yaml", []byte(platformInfo), false)
	fs.AddFile(DeveloperDir+"/Platforms/MacOSX.platform/Developer/SDKs/MacOSX10.12.sdk/SDKSettings.yaml", []byte(sdkSettings), false)

	fs.AddFile(SpecificationDir+"/Core.yaml", []byte(Core), false)
	fs.AddFile(SpecificationDir+"/FileTypes.yaml", []byte(FileTypes), false)
	fs.AddFile(SpecificationDir+"/Tools.yaml", []byte(Tools), false)
	fs.AddFile(SpecificationDir+"/Products.yaml", []byte(Products), false)

	fs.AddFile(ProjectPath, []byte(Project), false)
	for _, p := range []string{
		"Sources/main.c",
		"Sources/util.c",
		"Sources/util.h",
		"Core/core.c",
		"Core/core.h",
		"Core/internal.h",
		"Resources/icon.png",
		"Resources/Info.plist",
		"Resources/en.lproj/Localizable.strings",
		"Resources/fr.lproj/Localizable.strings",
		"Resources/Assets.xcassets/Contents.json",
	} {
		fs.AddFile(SourceRoot+"/"+p, []byte(p+"\n"), false)
	}
	return fs
}

// Process is the process the fixture builds from.
func Process() *process.Context {
	return &process.Context{
		Environment:   map[string]string{"PATH": "/usr/bin:/bin"},
		UserName:      "builder",
		GroupName:     "staff",
		HomeDirectory: "/home/builder",
	}
}

// A Fixture is a loaded build of the project.
type Fixture struct {
	FS      *filesystem.Memory
	Build   *build.Environment
	Project *project.Project
	Context *build.Context
}

// New loads fs as made by NewFilesystem, for the Debug build of the
// project with overrides on top.
func New(t testing.TB, fs *filesystem.Memory, overrides ...setting.Level) *Fixture {
	be, err := build.Default(fs, Process(), build.Options{
		DeveloperDir:     DeveloperDir,
		SpecificationDir: SpecificationDir,
	})
	require.NoError(t, err)
	p, err := project.Load(fs, ProjectPath)
	require.NoError(t, err)
	return &Fixture{
		FS:      fs,
		Build:   be,
		Project: p,
		Context: build.NewContext(p, build.ActionBuild, "Debug", overrides...),
	}
}

// Target creates the environment of the named target.
func (f *Fixture) Target(t testing.TB, name string) *target.Environment {
	pt := f.Project.Target(name)
	require.NotNil(t, pt, name)
	te, err := target.Create(f.FS, f.Build, f.Context, pt)
	require.NoError(t, err)
	return te
}
