package tool

import (
	"strconv"

	"github.com/juju/errgo"
	"github.com/mongodb/grip"

	"github.com/vron/xcbuild/escape"
	"github.com/vron/xcbuild/project"
	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/spec"
)

const shell = "/bin/sh"

// ScriptResolver runs shell scripts of phases, of build rules and of
// external build tool targets.
type ScriptResolver struct {
	Tool *spec.Tool
}

func NewScriptResolver(r *spec.Registry, domains []string) (*ScriptResolver, error) {
	t := r.Tool(ScriptIdentifier, domains)
	if t == nil {
		return nil, errgo.WithCausef(nil, ErrToolNotFound, "shell script tool not found")
	}
	return &ScriptResolver{Tool: t}, nil
}

func scriptFilesLevel(inputs, outputs []string, multiple bool) setting.Level {
	settings := []setting.Setting{
		setting.Create("SCRIPT_OUTPUT_FILE_COUNT", setting.FormatInteger(int64(len(outputs)))),
	}
	for i, o := range outputs {
		settings = append(settings, setting.Create("SCRIPT_OUTPUT_FILE_"+strconv.Itoa(i), o))
	}
	if multiple {
		settings = append(settings, setting.Create("SCRIPT_INPUT_FILE_COUNT", setting.FormatInteger(int64(len(inputs)))))
		for i, in := range inputs {
			settings = append(settings, setting.Create("SCRIPT_INPUT_FILE_"+strconv.Itoa(i), in))
		}
	} else if len(inputs) > 0 {
		settings = append(settings, setting.Create("SCRIPT_INPUT_FILE", inputs[0]))
	}
	return setting.NewLevel(settings...)
}

func (r *ScriptResolver) expandPaths(env setting.Environment, paths []string, wd string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, resolvePath(env.Expand(setting.ParseValue(p)), wd))
	}
	return out
}

// ResolveExternal runs the build tool of an external build tool target.
func (r *ScriptResolver) ResolveExternal(ctx *Context, env setting.Environment, t *project.Target) *Invocation {
	var vars map[string]string
	if t.PassBuildSettingsInEnvironment {
		vars = env.ComputeValues(nil)
	}
	inv := &Invocation{
		Executable:       DetermineExecutable(t.BuildToolPath),
		Arguments:        setting.ParseList(env.Expand(setting.ParseValue(t.BuildArgumentsString))),
		Environment:      vars,
		WorkingDirectory: resolvePath(t.BuildWorkingDirectory, ctx.WorkingDirectory),
		LogMessage:       "ExternalBuildToolExecution " + t.Name,
	}
	if t.BuildWorkingDirectory == "" {
		inv.WorkingDirectory = ctx.WorkingDirectory
	}
	ctx.Add(inv)
	return inv
}

// ResolvePhase runs the script of a shell script phase. The script is
// written to an auxiliary file first.
func (r *ScriptResolver) ResolvePhase(ctx *Context, env setting.Environment, ph *project.Phase) *Invocation {
	wd := ctx.WorkingDirectory
	name := ph.Name
	if name == "" {
		name = "Run Script"
	}
	phaseEnv := env.InsertFront(setting.NewLevel(
		setting.Create("BuildPhaseName", name),
		setting.Create("BuildPhaseIdentifier", ph.ID),
	), false)

	inputs := r.expandPaths(env, ph.InputPaths, wd)
	outputs := r.expandPaths(env, ph.OutputPaths, wd)

	scriptPath := phaseEnv.Expand(setting.ParseValue("$(TEMP_FILES_DIR)/Script-$(BuildPhaseIdentifier).sh"))
	contents := ph.ShellScript
	if ph.ShellPath != "" {
		contents = "#!" + ph.ShellPath + "\n" + contents
	}
	ctx.AddAuxiliary(AuxiliaryFile{Path: scriptPath, Contents: []byte(contents), Executable: true})

	scriptEnv := env.InsertFront(scriptFilesLevel(inputs, outputs, true), false)
	inv := &Invocation{
		Executable:           External(shell),
		Arguments:            []string{"-c", escape.Shell(scriptPath)},
		Environment:          scriptEnv.ComputeValues(nil),
		WorkingDirectory:     wd,
		PhonyInputs:          inputs,
		Outputs:              outputs,
		InputDependencies:    []string{scriptPath},
		LogMessage:           phaseEnv.Expand(setting.ParseValue("PhaseScriptExecution $(BuildPhaseName:quote) ")) + scriptPath,
		ShowEnvironmentInLog: ph.ShowEnvVarsInLog,
	}
	ctx.Add(inv)
	return inv
}

// ResolveRule runs the script of the build rule of input.
func (r *ScriptResolver) ResolveRule(ctx *Context, env setting.Environment, input Input) *Invocation {
	rule := input.BuildRule
	if rule == nil || rule.Script == "" {
		grip.Warningf("invalid or missing build rule for script on '%s'", input.Path)
		return nil
	}
	wd := ctx.WorkingDirectory
	abs := resolvePath(input.Path, wd)
	rel := relativePath(abs, wd)

	ruleEnv := env.InsertFront(setting.NewLevel(
		setting.Create("INPUT_FILE_PATH", abs),
		setting.Define("INPUT_FILE_DIR", "$(INPUT_FILE_PATH:dir)"),
		setting.Define("INPUT_FILE_NAME", "$(INPUT_FILE_PATH:file)"),
		setting.Define("INPUT_FILE_BASE", "$(INPUT_FILE_PATH:base)"),
		setting.Define("INPUT_FILE_SUFFIX", "$(INPUT_FILE_PATH:suffix)"),
		setting.Create("INPUT_FILE_REGION_PATH_COMPONENT", input.Localization),
	), false)

	var outputs []string
	for _, o := range rule.OutputFiles {
		outputs = append(outputs, resolvePath(ruleEnv.Expand(o), wd))
	}
	ruleEnv = ruleEnv.InsertFront(scriptFilesLevel([]string{abs}, outputs, false), false)

	inv := &Invocation{
		Executable:           External(shell),
		Arguments:            []string{"-c", rule.Script},
		Environment:          ruleEnv.ComputeValues(nil),
		WorkingDirectory:     wd,
		Inputs:               []string{abs},
		Outputs:              outputs,
		LogMessage:           ruleEnv.Expand(setting.ParseValue("RuleScriptExecution " + rel + " $(variant) $(arch)")),
		ShowEnvironmentInLog: true,
	}
	ctx.Add(inv)
	return inv
}
