package tool

import (
	"github.com/vron/xcbuild/spec"
	"github.com/vron/xcbuild/target"
)

// An Input is a file given to a tool, with what is known about it from the
// build file it came from.
type Input struct {
	Path      string
	FileType  *spec.FileType
	BuildRule *target.BuildRule
	// Disambiguator replaces the base name of the file in output names.
	Disambiguator string
	// Localization is the region of a file in a variant group, and
	// LocalizationGroup identifies the build file of the group.
	Localization      string
	LocalizationGroup string
	Attributes        []string
	CompilerFlags     []string
}

// PathInput is an input known only by its path.
func PathInput(p string) Input {
	return Input{Path: p}
}

// HasAttribute reports whether the build file carried the attribute a.
func (i Input) HasAttribute(a string) bool {
	for _, x := range i.Attributes {
		if x == a {
			return true
		}
	}
	return false
}

func inputPaths(inputs []Input) []string {
	out := make([]string, 0, len(inputs))
	for _, i := range inputs {
		out = append(out, i.Path)
	}
	return out
}
