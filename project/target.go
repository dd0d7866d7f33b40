package project

import (
	"github.com/vron/xcbuild/setting"
)

// Kinds of targets.
const (
	TargetNative    = "native"
	TargetLegacy    = "legacy"
	TargetAggregate = "aggregate"
)

// Kinds of build phases.
const (
	PhaseSources     = "sources"
	PhaseFrameworks  = "frameworks"
	PhaseHeaders     = "headers"
	PhaseResources   = "resources"
	PhaseCopyFiles   = "copyFiles"
	PhaseShellScript = "shellScript"
)

// Destinations of copy files phases.
const (
	DestinationAbsolute         = "absolute"
	DestinationWrapper          = "wrapper"
	DestinationExecutables      = "executables"
	DestinationResources        = "resources"
	DestinationPublicHeaders    = "publicHeaders"
	DestinationPrivateHeaders   = "privateHeaders"
	DestinationFrameworks       = "frameworks"
	DestinationSharedFrameworks = "sharedFrameworks"
	DestinationSharedSupport    = "sharedSupport"
	DestinationPlugIns          = "plugins"
	DestinationScripts          = "scripts"
	DestinationJavaResources    = "javaResources"
	DestinationProducts         = "products"
)

// A Target builds one product from its phases.
type Target struct {
	Name                 string
	Kind                 string
	ProductName          string
	ProductType          string
	ProductReference     string
	DefaultConfiguration string
	Settings             map[string]interface{}
	Configurations       []*Configuration
	Dependencies         []string
	BuildRules           []*BuildRule
	Phases               []*Phase

	// Legacy targets run an external build tool.
	BuildToolPath                  string
	BuildArgumentsString           string
	BuildWorkingDirectory          string
	PassBuildSettingsInEnvironment bool

	Project *Project `mapstructure:"-"`
}

// BuildSettings returns the settings the target itself defines.
func (t *Target) BuildSettings() setting.Level {
	settings := []setting.Setting{
		setting.Create("TARGETNAME", t.Name),
		setting.Create("TARGET_NAME", t.Name),
		setting.Create("PRODUCT_NAME", t.ProductName),
	}
	if t.Kind == TargetNative && t.ProductReference != "" {
		settings = append(settings, setting.Create("FULL_PRODUCT_NAME", t.ProductReference))
	}
	return setting.NewLevel(settings...)
}

// Level returns the settings written in the target.
func (t *Target) Level() setting.Level {
	return setting.LevelFromInterface(t.Settings)
}

// Configuration finds the configuration called name, falling back to the
// target's default configuration.
func (t *Target) Configuration(name string) *Configuration {
	return findConfiguration(t.Configurations, name, t.DefaultConfiguration)
}

// Phase returns the first phase of kind, or nil.
func (t *Target) Phase(kind string) *Phase {
	for _, p := range t.Phases {
		if p.Kind == kind {
			return p
		}
	}
	return nil
}

// A BuildRule routes input files matching a file type or name pattern to
// a tool, or to a script producing OutputFiles.
type BuildRule struct {
	Name                     string
	CompilerSpec             string
	FileType                 string
	FilePatterns             string
	Script                   string
	OutputFiles              []string
	OutputFilesCompilerFlags []string
}

// BuildFileSettings are the per file settings of a build file.
type BuildFileSettings struct {
	CompilerFlags string   `mapstructure:"COMPILER_FLAGS"`
	Attributes    []string `mapstructure:"ATTRIBUTES"`
}

// A BuildFile is one entry of a phase, referencing an item of the file
// tree.
type BuildFile struct {
	ID       string
	File     string
	Settings BuildFileSettings

	FileRef *Item `mapstructure:"-"`
}

// A Phase is one step of building a target.
type Phase struct {
	// ID defaults to the target name and the index of the phase.
	ID                                 string
	Kind                               string
	Name                               string
	Files                              []*BuildFile
	RunOnlyForDeploymentPostprocessing bool

	// Copy files phases.
	DstSubfolderSpec string
	DstPath          string

	// Shell script phases.
	ShellPath        string
	ShellScript      string
	InputPaths       []string
	OutputPaths      []string
	ShowEnvVarsInLog bool
}
