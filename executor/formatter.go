package executor

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mongodb/grip"

	"github.com/vron/xcbuild/build"
	"github.com/vron/xcbuild/project"
	"github.com/vron/xcbuild/tool"
)

// A Formatter describes the steps of a build for the user. Every method
// returns the text to show, which may be empty.
type Formatter interface {
	Begin(bc *build.Context) string
	Success(bc *build.Context) string
	Failure(bc *build.Context, failed []*tool.Invocation) string

	BeginTarget(bc *build.Context, t *project.Target) string
	FinishTarget(bc *build.Context, t *project.Target) string

	BeginCheckDependencies(t *project.Target) string
	FinishCheckDependencies(t *project.Target) string

	BeginWriteAuxiliaryFiles(t *project.Target) string
	CreateAuxiliaryDirectory(dir string) string
	WriteAuxiliaryFile(file string) string
	SetAuxiliaryExecutable(file string) string
	FinishWriteAuxiliaryFiles(t *project.Target) string

	BeginCreateProductStructure(t *project.Target) string
	FinishCreateProductStructure(t *project.Target) string

	// BeginInvocation shows inv run as executable. Simple invocations
	// are shown as their command line alone.
	BeginInvocation(inv *tool.Invocation, executable string, simple bool) string
	FinishInvocation(inv *tool.Invocation, executable string, simple bool) string
}

// DefaultFormatter writes the build log in the style of xcodebuild.
type DefaultFormatter struct {
	Color bool
}

const indent = "    "

func (f *DefaultFormatter) style(code string) string {
	if !f.Color {
		return ""
	}
	return code
}

func (f *DefaultFormatter) bold() string   { return f.style("\033[1m") }
func (f *DefaultFormatter) noBold() string { return f.style("\033[22m") }
func (f *DefaultFormatter) reset() string  { return f.style("\x1b[0m") }
func (f *DefaultFormatter) red() string    { return f.style("\x1b[31m") }
func (f *DefaultFormatter) green() string  { return f.style("\x1b[32m") }
func (f *DefaultFormatter) cyan() string   { return f.style("\x1b[36m") }

// invocation emboldens the first word of the log message.
func (f *DefaultFormatter) invocation(inv *tool.Invocation) string {
	message := Describe(inv)
	title, rest, found := strings.Cut(message, " ")
	if found {
		rest = " " + rest
	}
	return f.bold() + title + f.noBold() + rest
}

func (f *DefaultFormatter) Begin(bc *build.Context) string {
	values := Overrides(bc)
	if len(values) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Build settings from the command line:\n")
	for _, v := range values {
		b.WriteString(indent + v + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (f *DefaultFormatter) Success(bc *build.Context) string {
	return f.bold() + f.green() + "** " + strings.ToUpper(bc.Action) + " SUCCEEDED **" + f.noBold() + f.reset() + "\n"
}

func (f *DefaultFormatter) Failure(bc *build.Context, failed []*tool.Invocation) string {
	var b strings.Builder
	b.WriteString(f.bold() + f.red() + "** " + strings.ToUpper(bc.Action) + " FAILED **" + f.noBold() + f.reset() + "\n")
	if len(failed) == 0 {
		return b.String()
	}
	b.WriteString("\nThe following build commands failed:\n")
	for _, inv := range failed {
		b.WriteString(indent + f.invocation(inv) + "\n")
	}
	b.WriteString("(" + strconv.Itoa(len(failed)) + " failure")
	if len(failed) != 1 {
		b.WriteString("s")
	}
	b.WriteString(")\n")
	return b.String()
}

func (f *DefaultFormatter) BeginTarget(bc *build.Context, t *project.Target) string {
	kind := "TARGET"
	if t.Kind == project.TargetLegacy {
		kind = "LEGACY TARGET"
	}
	configuration := "WITH CONFIGURATION " + bc.Configuration
	if bc.DefaultConfiguration {
		configuration = "WITH THE DEFAULT CONFIGURATION (" + bc.Configuration + ")"
	}
	owner := ""
	if t.Project != nil {
		owner = "OF PROJECT " + t.Project.Name + " "
	}
	return f.bold() + f.cyan() + "=== " + strings.ToUpper(bc.Action) + " " + kind + " " + t.Name + " " +
		owner + configuration + " ===" + f.noBold() + f.reset() + "\n\n"
}

func (f *DefaultFormatter) FinishTarget(bc *build.Context, t *project.Target) string {
	return ""
}

func (f *DefaultFormatter) section(t *project.Target, s string) string {
	if t.Kind != project.TargetNative {
		return ""
	}
	return s
}

func (f *DefaultFormatter) BeginCheckDependencies(t *project.Target) string {
	return f.section(t, "Check dependencies\n")
}

func (f *DefaultFormatter) FinishCheckDependencies(t *project.Target) string {
	return f.section(t, "\n")
}

func (f *DefaultFormatter) BeginWriteAuxiliaryFiles(t *project.Target) string {
	return f.section(t, "Write auxiliary files\n")
}

func (f *DefaultFormatter) CreateAuxiliaryDirectory(dir string) string {
	return "/bin/mkdir -p " + dir + "\n"
}

func (f *DefaultFormatter) WriteAuxiliaryFile(file string) string {
	return "write-file " + file + "\n"
}

func (f *DefaultFormatter) SetAuxiliaryExecutable(file string) string {
	return "chmod 0755 " + file + "\n"
}

func (f *DefaultFormatter) FinishWriteAuxiliaryFiles(t *project.Target) string {
	return f.section(t, "\n")
}

func (f *DefaultFormatter) BeginCreateProductStructure(t *project.Target) string {
	return f.section(t, "Create product structure\n")
}

func (f *DefaultFormatter) FinishCreateProductStructure(t *project.Target) string {
	return f.section(t, "\n")
}

func (f *DefaultFormatter) BeginInvocation(inv *tool.Invocation, executable string, simple bool) string {
	command := executable
	for _, arg := range inv.Arguments {
		command += " " + arg
	}
	if simple {
		return command + "\n"
	}

	var b strings.Builder
	b.WriteString(f.invocation(inv) + "\n")
	b.WriteString(indent + "cd " + inv.WorkingDirectory + "\n")
	if inv.ShowEnvironmentInLog {
		names := make([]string, 0, len(inv.Environment))
		for name := range inv.Environment {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString(indent + "export " + name + "=" + inv.Environment[name] + "\n")
		}
	}
	b.WriteString(indent + command + "\n")
	return b.String()
}

func (f *DefaultFormatter) FinishInvocation(inv *tool.Invocation, executable string, simple bool) string {
	if simple {
		return ""
	}
	return "\n"
}

// show logs the non-empty lines of s.
func show(log grip.Journaler, s string) {
	if s = strings.TrimRight(s, "\n"); s != "" {
		log.Info(s)
	}
}
