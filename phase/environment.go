// Package phase walks the build phases of a target and resolves each into
// tool invocations.
package phase

import (
	"github.com/vron/xcbuild/build"
	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/project"
	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/target"
)

// An Environment is everything resolving the phases of one target reads.
type Environment struct {
	FS      filesystem.Filesystem
	Build   *build.Environment
	Context *build.Context
	Target  *target.Environment
}

func NewEnvironment(fs filesystem.Filesystem, be *build.Environment, bc *build.Context, te *target.Environment) *Environment {
	return &Environment{FS: fs, Build: be, Context: bc, Target: te}
}

// ProjectTarget is the target being resolved.
func (e *Environment) ProjectTarget() *project.Target {
	return e.Target.Target
}

// Settings is the target's settings environment.
func (e *Environment) Settings() setting.Environment {
	return e.Target.Settings
}

// VariantLevel selects a build variant. Variants other than normal
// suffix the executable name.
func VariantLevel(variant string) setting.Level {
	suffix := ""
	if variant != "normal" {
		suffix = "_" + variant
	}
	return setting.NewLevel(
		setting.Create("CURRENT_VARIANT", variant),
		setting.Create("variant", variant),
		setting.Create("EXECUTABLE_VARIANT_SUFFIX", suffix),
	)
}

// ArchitectureLevel selects an architecture.
func ArchitectureLevel(arch string) setting.Level {
	return setting.NewLevel(
		setting.Create("CURRENT_ARCH", arch),
		setting.Create("arch", arch),
	)
}
