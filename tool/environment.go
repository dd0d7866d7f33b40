package tool

import (
	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/spec"
)

// An Environment is the settings a tool runs with, along with its input
// and output paths as given, possibly relative.
type Environment struct {
	Tool     *spec.Tool
	Settings setting.Environment
	Inputs   []string
	Outputs  []string
}

func inputLevel(in Input, wd string) setting.Level {
	abs := resolvePath(in.Path, wd)
	return setting.NewLevel(
		setting.Create("Input", in.Path),
		setting.Create("InputPath", in.Path),
		setting.Create("InputFile", in.Path),
		setting.Define("InputFileName", "$(InputFile:file)"),
		setting.Define("InputFileBase", "$(InputFile:base)"),
		setting.Define("InputFileSuffix", "$(InputFile:suffix)"),
		setting.Create("InputFileRelativePath", relativePath(abs, wd)),
		setting.Create("InputFileBaseUniquefier", in.Disambiguator),
		setting.Create("InputFileTextEncoding", ""),
	)
}

func outputLevel(output string) setting.Level {
	return setting.NewLevel(
		setting.Create("Output", output),
		setting.Create("OutputPath", output),
		setting.Create("OutputFile", output),
		setting.Define("OutputDir", "$(OutputFile:dir)"),
		setting.Define("OutputFileName", "$(OutputFile:file)"),
		setting.Define("OutputFileBase", "$(OutputFile:base)"),
	)
}

// NewEnvironment layers the settings of t over env for running it on
// inputs. Extra levels go between the tool's own settings and the input
// settings. The outputs are the tool's declared outputs if it has any,
// otherwise the given ones.
func NewEnvironment(t *spec.Tool, env setting.Environment, wd string, inputs []Input, outputs []string, extra ...setting.Level) *Environment {
	env = env.InsertFront(t.DefaultSettings(), true)

	products := env.Resolve("TARGET_BUILD_DIR") + "/" + env.Resolve("UNLOCALIZED_RESOURCES_FOLDER_PATH")
	temp := env.Resolve("TARGET_TEMP_DIR")
	if len(inputs) > 0 && inputs[0].Localization != "" {
		lproj := "/" + inputs[0].Localization + ".lproj"
		products += lproj
		temp += lproj
	}
	env = env.InsertFront(setting.NewLevel(
		setting.Define("DerivedFilesDir", "$(DERIVED_FILES_DIR)"),
		setting.Define("ObjectsDir", "$(OBJECT_FILE_DIR_$(variant))/$(arch)"),
		setting.Create("ProductResourcesDir", products),
		setting.Create("TempResourcesDir", temp),
	), false)
	for _, l := range extra {
		env = env.InsertFront(l, false)
	}

	e := &Environment{Tool: t}
	if len(inputs) > 0 {
		env = env.InsertFront(inputLevel(inputs[0], wd), false)
		e.Inputs = inputPaths(inputs)
	}

	switch {
	case len(t.Outputs) > 0:
		if len(outputs) > 0 {
			env = env.InsertFront(outputLevel(outputs[0]), false)
		}
		for i, o := range t.Outputs {
			p := env.Expand(setting.ParseValue(o))
			if i == 0 {
				env = env.InsertFront(outputLevel(p), false)
			}
			e.Outputs = append(e.Outputs, p)
		}
	case t.OutputPath != "":
		p := env.Expand(setting.ParseValue(t.OutputPath))
		env = env.InsertFront(outputLevel(p), false)
		e.Outputs = []string{p}
	case len(outputs) > 0:
		env = env.InsertFront(outputLevel(outputs[0]), false)
		e.Outputs = append([]string(nil), outputs...)
	}
	e.Settings = env
	return e
}

// InputPaths are the inputs made absolute against wd.
func (e *Environment) InputPaths(wd string) []string {
	return resolvePaths(e.Inputs, wd)
}

// OutputPaths are the outputs made absolute against wd.
func (e *Environment) OutputPaths(wd string) []string {
	return resolvePaths(e.Outputs, wd)
}
