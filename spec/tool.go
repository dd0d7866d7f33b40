package spec

import (
	"github.com/vron/xcbuild/setting"
)

// A Tool describes an executable the build can invoke.
type Tool struct {
	Base `mapstructure:",squash"`

	ExecPath            string
	ExecDescription     string
	ProgressDescription string
	CommandLine         string
	RuleName            string
	RuleFormat          string

	FileTypes      []string
	InputFileTypes []string
	Architectures  []string

	Outputs              []string
	OutputPath           string
	DeletedProperties    []string
	EnvironmentVariables map[string]string
	SuccessExitCodes     []int

	Options []PropertyOption

	IsArchitectureNeutral      bool
	SynthesizeBuildRule        bool
	DeeplyStatInputDirectories bool
}

func (t *Tool) Type() string { return TypeTool }

func (t *Tool) Inherit(base Specification) {
	if b, ok := base.(*Tool); ok {
		t.inherit(b)
	}
}

func (t *Tool) inherit(b *Tool) {
	t.Base.inherit(&b.Base)
	inheritString(&t.ExecPath, b.ExecPath)
	inheritString(&t.ExecDescription, b.ExecDescription)
	inheritString(&t.ProgressDescription, b.ProgressDescription)
	inheritString(&t.CommandLine, b.CommandLine)
	inheritString(&t.RuleName, b.RuleName)
	inheritString(&t.RuleFormat, b.RuleFormat)
	inheritList(&t.FileTypes, b.FileTypes)
	inheritList(&t.InputFileTypes, b.InputFileTypes)
	inheritList(&t.Architectures, b.Architectures)
	inheritList(&t.Outputs, b.Outputs)
	inheritString(&t.OutputPath, b.OutputPath)
	inheritList(&t.DeletedProperties, b.DeletedProperties)
	inheritStringMap(&t.EnvironmentVariables, b.EnvironmentVariables)
	if len(t.SuccessExitCodes) == 0 {
		t.SuccessExitCodes = b.SuccessExitCodes
	}
	inheritOptions(&t.Options, b.Options)
	inheritBool(&t.IsArchitectureNeutral, b.IsArchitectureNeutral)
	inheritBool(&t.SynthesizeBuildRule, b.SynthesizeBuildRule)
	inheritBool(&t.DeeplyStatInputDirectories, b.DeeplyStatInputDirectories)
}

// DefaultSettings returns the option defaults of the tool.
func (t *Tool) DefaultSettings() setting.Level {
	return optionsLevel(t.Options)
}

// IsDeleted reports whether the tool removed the named inherited option.
func (t *Tool) IsDeleted(name string) bool {
	for _, d := range t.DeletedProperties {
		if d == name {
			return true
		}
	}
	return false
}

// A Compiler is a tool turning source files into objects or resources.
type Compiler struct {
	Tool `mapstructure:",squash"`

	ExecCPlusPlusLinkerPath string
	SourceFileOption        string
	OutputDir               string
	OutputFileExtension     string
	DependencyInfoFile      string
	DependencyInfoArgs      []string
	Languages               []string
	InputFileGroupings      []string

	PatternsOfFlagsNotAffectingPrecomps []string
	AdditionalDirectoriesToCreate       []string

	SupportsHeadermaps              bool
	DashIFlagAcceptsHeadermaps      bool
	SupportsSeparateUserHeaderPaths bool
	SupportsIsysroot                bool
}

func (c *Compiler) Type() string { return TypeCompiler }

func (c *Compiler) Inherit(base Specification) {
	b, ok := base.(*Compiler)
	if !ok {
		return
	}
	c.Tool.inherit(&b.Tool)
	inheritString(&c.ExecCPlusPlusLinkerPath, b.ExecCPlusPlusLinkerPath)
	inheritString(&c.SourceFileOption, b.SourceFileOption)
	inheritString(&c.OutputDir, b.OutputDir)
	inheritString(&c.OutputFileExtension, b.OutputFileExtension)
	inheritString(&c.DependencyInfoFile, b.DependencyInfoFile)
	inheritList(&c.DependencyInfoArgs, b.DependencyInfoArgs)
	inheritList(&c.Languages, b.Languages)
	inheritList(&c.InputFileGroupings, b.InputFileGroupings)
	inheritList(&c.PatternsOfFlagsNotAffectingPrecomps, b.PatternsOfFlagsNotAffectingPrecomps)
	inheritList(&c.AdditionalDirectoriesToCreate, b.AdditionalDirectoriesToCreate)
	inheritBool(&c.SupportsHeadermaps, b.SupportsHeadermaps)
	inheritBool(&c.DashIFlagAcceptsHeadermaps, b.DashIFlagAcceptsHeadermaps)
	inheritBool(&c.SupportsSeparateUserHeaderPaths, b.SupportsSeparateUserHeaderPaths)
	inheritBool(&c.SupportsIsysroot, b.SupportsIsysroot)
}

// A Linker combines objects into a binary.
type Linker struct {
	Tool `mapstructure:",squash"`

	BinaryFormats         []string
	DependencyInfoFile    string
	SupportsInputFileList bool
}

func (l *Linker) Type() string { return TypeLinker }

func (l *Linker) Inherit(base Specification) {
	b, ok := base.(*Linker)
	if !ok {
		return
	}
	l.Tool.inherit(&b.Tool)
	inheritList(&l.BinaryFormats, b.BinaryFormats)
	inheritString(&l.DependencyInfoFile, b.DependencyInfoFile)
	inheritBool(&l.SupportsInputFileList, b.SupportsInputFileList)
}
