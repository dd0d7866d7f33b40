package executor

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"path"
	"sort"
	"strings"

	"github.com/juju/errgo"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"

	"github.com/vron/xcbuild/build"
	"github.com/vron/xcbuild/escape"
	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/ninja"
	"github.com/vron/xcbuild/phase"
	"github.com/vron/xcbuild/process"
	"github.com/vron/xcbuild/project"
	"github.com/vron/xcbuild/target"
	"github.com/vron/xcbuild/tool"
)

// Ninja writes a ninja file for each target and one for the build as a
// whole, then runs ninja on them. The files are only written again when
// the build configuration changed or Generate is set.
type Ninja struct {
	Options

	FS       filesystem.Filesystem
	Process  *process.Context
	Launcher process.Launcher

	// Generate writes the ninja files without running ninja.
	Generate bool
	// Regenerate is the command writing the ninja files of this build
	// again. Ninja runs it when one of Inputs changes.
	Regenerate []string
	Inputs     []string
	// BuiltinCommand runs a builtin tool given its name as the next
	// argument. Without it, builtin tools are looked for as executables
	// next to the executable of Process.
	BuiltinCommand []string
}

var _ Executor = (*Ninja)(nil)

func NewNinja(fs filesystem.Filesystem, pc *process.Context, launcher process.Launcher, o Options) *Ninja {
	o.setDefaults()
	return &Ninja{
		Options:  o,
		FS:       fs,
		Process:  pc,
		Launcher: launcher,
	}
}

const (
	ninjaFile         = "build.ninja"
	configurationFile = ".ninja-configuration"
	invokeRule        = "invoke"
	regenerateRule    = "regenerate"
)

func targetBegin(t *project.Target) string {
	return "begin-target-" + t.Name
}

func targetWriteAuxiliaryFiles(t *project.Target) string {
	return "write-auxiliary-files-" + t.Name
}

func targetFinish(t *project.Target) string {
	return "finish-target-" + t.Name
}

func hash(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// description is the first line of s; ninja shows a single line.
func description(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// ConfigurationHash identifies the configuration the ninja files of a
// build are written for.
func (n *Ninja) ConfigurationHash(bc *build.Context) string {
	parts := []string{bc.Project.Path, bc.Action, bc.Configuration}
	parts = append(parts, n.Regenerate...)

	parts = append(parts, Overrides(bc)...)
	return hash([]byte(strings.Join(parts, "\x00")))
}

func (n *Ninja) shouldGenerate(bc *build.Context, ninjaPath, hashPath string) bool {
	if n.Generate || !n.FS.Exists(ninjaPath) {
		return true
	}
	contents, err := n.FS.Read(hashPath)
	if err != nil {
		return true
	}
	return string(contents) != n.ConfigurationHash(bc)
}

func (n *Ninja) write(p string, contents []byte) error {
	if err := n.FS.CreateDirectory(path.Dir(p)); err != nil {
		return errgo.Notef(err, "cannot create directory %s", path.Dir(p))
	}
	if err := n.FS.Write(p, contents); err != nil {
		return errgo.Notef(err, "cannot write %s", p)
	}
	return nil
}

// Build writes the ninja files if needed and, unless only generating,
// runs ninja on them. Targets that cannot be resolved are reported and
// get empty begin and finish steps; ninja does not run if there are any.
func (n *Ninja) Build(ctx context.Context, be *build.Environment, bc *build.Context, targets []*project.Target) error {
	dir := IntermediatesDirectory(be, bc)
	ninjaPath := dir + "/" + ninjaFile
	hashPath := dir + "/" + configurationFile

	if n.shouldGenerate(bc, ninjaPath, hashPath) {
		n.Logger.Info("Generating Ninja files...")
		if err := n.generate(be, bc, targets, dir, ninjaPath, hashPath); err != nil {
			return err
		}
		if err := n.write(hashPath, []byte(n.ConfigurationHash(bc))); err != nil {
			return err
		}
	}
	if n.Generate {
		return nil
	}
	return n.run(ctx, dir, ninjaPath)
}

func (n *Ninja) run(ctx context.Context, dir, ninjaPath string) error {
	paths := strings.Split(n.Process.Environment["PATH"], ":")
	args := []string{"-f", ninjaPath}
	exe, ok := filesystem.FindExecutable(n.FS, "ninja", paths)
	if !ok {
		if exe, ok = filesystem.FindExecutable(n.FS, "llbuild", paths); !ok {
			return errgo.New("cannot find ninja or llbuild in PATH")
		}
		args = append([]string{"ninja", "build"}, args...)
	}
	if n.DryRun {
		args = append(args, "-n")
	}

	code, err := n.Launcher.Launch(ctx, n.FS, &process.Context{
		ExecutablePath:   exe,
		Arguments:        args,
		Environment:      n.Process.Environment,
		CurrentDirectory: dir,
		UserName:         n.Process.UserName,
		GroupName:        n.Process.GroupName,
		HomeDirectory:    n.Process.HomeDirectory,
	})
	if err != nil {
		return errgo.Notef(err, "cannot run %s", exe)
	}
	if code != 0 {
		return errgo.WithCausef(nil, ErrInvocationFailed, "%s exited with status %d", exe, code)
	}
	return nil
}

func (n *Ninja) generate(be *build.Environment, bc *build.Context, targets []*project.Target, dir, ninjaPath, hashPath string) error {
	var b strings.Builder
	w := ninja.NewWriter(&b)
	w.Comment("xcbuild ninja")
	w.Comment("Action: " + bc.Action)
	w.Comment("Project: " + bc.Project.Path)
	w.Comment("Configuration: " + bc.Configuration)
	w.BlankLine()
	w.Assign("builddir", ninja.EscapeValue(dir))
	w.BlankLine()
	w.Rule(invokeRule)
	w.ScopedAssign("command", "cd $dir && env $env $exec")
	w.BlankLine()

	g := bc.TargetGraph(targets)
	if _, err := g.Ordered(); err != nil {
		return errgo.Mask(err, errgo.Any)
	}

	catcher := grip.NewBasicCatcher()
	produced := map[string]bool{}
	var phonies []string
	for _, t := range g.Nodes() {
		var finished []string
		for _, dep := range g.Dependencies(t) {
			finished = append(finished, targetFinish(dep))
		}
		w.Build("", "phony", []string{targetBegin(t)}, nil, finished, nil, nil)

		te, invs, err := Resolve(n.FS, be, bc, t)
		if err != nil {
			n.Logger.Error(message.WrapError(err, message.Fields{
				"message": "cannot resolve target",
				"target":  t.Name,
			}))
			catcher.Add(err)
			w.Build("", "phony", []string{targetFinish(t)}, nil, []string{targetBegin(t)}, nil, nil)
			w.BlankLine()
			continue
		}

		auxiliary := []string{targetBegin(t)}
		for _, f := range invs.AuxiliaryFiles {
			auxiliary = append(auxiliary, f.Path)
		}
		w.Build("", "phony", []string{targetWriteAuxiliaryFiles(t)}, nil, auxiliary, nil, nil)

		tf, err := n.writeTarget(t, te, invs, catcher)
		if err != nil {
			return errgo.Notef(err, "cannot write ninja file of %s", t.Name)
		}
		w.Subninja(tf.path)

		finish := []string{targetWriteAuxiliaryFiles(t)}
		for out := range tf.outputs {
			produced[out] = true
			finish = append(finish, out)
		}
		sort.Strings(finish[1:])
		phonies = append(phonies, tf.phonyInputs...)

		w.Build("", "phony", []string{targetFinish(t)}, nil, finish, nil, nil)
		w.BlankLine()
	}

	// Phony inputs nothing produces may not exist.
	for _, in := range phonies {
		if !produced[in] {
			produced[in] = true
			w.Build("", "phony", []string{in}, nil, nil, nil, nil)
		}
	}
	w.BlankLine()

	if len(n.Regenerate) > 0 {
		n.writeRegenerate(w, ninjaPath, hashPath)
	}

	if err := n.write(ninjaPath, []byte(b.String())); err != nil {
		return err
	}
	n.Logger.Info("Wrote Ninja: " + ninjaPath)
	return catcher.Resolve()
}

func (n *Ninja) writeRegenerate(w *ninja.Writer, ninjaPath, hashPath string) {
	var exec []string
	for _, arg := range n.Regenerate {
		exec = append(exec, escape.Shell(arg))
	}
	inputs := append([]string{hashPath}, n.Inputs...)

	w.Rule(regenerateRule)
	w.ScopedAssign("command", "cd $dir && $exec")
	w.Build("", regenerateRule, []string{ninjaPath}, nil, inputs, nil, nil)
	w.ScopedAssign("dir", ninja.EscapeValue(escape.Shell(n.Process.CurrentDirectory)))
	w.ScopedAssign("exec", ninja.EscapeValue(strings.Join(exec, " ")))
	w.ScopedAssign("description", "Regenerating Ninja files...")
	w.ScopedAssign("generator", "1")
	w.ScopedAssign("pool", "console")
}

// A targetFile is the ninja file written for a target.
type targetFile struct {
	path        string
	outputs     map[string]bool
	phonyInputs []string
}

// invocationOutputs are the outputs of inv in the ninja file. Ninja needs
// one, so an invocation without outputs gets one that never exists and so
// always runs.
func invocationOutputs(inv *tool.Invocation) []string {
	if len(inv.Outputs) > 0 {
		return inv.Outputs
	}
	key := inv.Executable.String()
	for _, arg := range inv.Arguments {
		key += " " + arg
	}
	return []string{".ninja-phony-output-" + hash([]byte(key))}
}

// command returns the command line running inv, or false if nothing can
// run it outside of this process.
func (n *Ninja) command(te *target.Environment, inv *tool.Invocation) ([]string, bool, error) {
	if inv.Executable.IsBuiltin() {
		name := inv.Executable.Builtin
		if len(n.BuiltinCommand) > 0 {
			return append(append([]string(nil), n.BuiltinCommand...), name), true, nil
		}
		if n.Process.ExecutablePath != "" {
			if p, ok := filesystem.FindExecutable(n.FS, name, []string{path.Dir(n.Process.ExecutablePath)}); ok {
				return []string{p}, true, nil
			}
		}
		return nil, false, nil
	}
	p := inv.Executable.Path
	if path.IsAbs(p) {
		return []string{p}, true, nil
	}
	found, ok := filesystem.FindExecutable(n.FS, p, te.ExecutablePaths)
	if !ok {
		return nil, false, failure(inv, nil, "cannot find executable %s", p)
	}
	return []string{found}, true, nil
}

// writeTarget writes the ninja file of t next to its other intermediates,
// with the chunks holding the inline contents of its auxiliary files.
// Chunks copied from other files are read by ninja itself. Invocations
// that cannot be run from ninja are reported to catcher and left out.
func (n *Ninja) writeTarget(t *project.Target, te *target.Environment, invs *phase.Invocations, catcher grip.Catcher) (*targetFile, error) {
	dir := te.Settings.Resolve("TARGET_TEMP_DIR")
	tf := &targetFile{
		path:    dir + "/" + ninjaFile,
		outputs: map[string]bool{},
	}

	var b strings.Builder
	w := ninja.NewWriter(&b)
	w.Comment("Target: " + t.Name)
	w.BlankLine()

	for _, f := range invs.AuxiliaryFiles {
		var sources, quoted []string
		for _, c := range f.Parts() {
			source := c.From
			if source == "" {
				source = dir + "/.ninja-auxiliary-file-" + hash(c.Data) + ".chunk"
				if err := n.write(source, c.Data); err != nil {
					return nil, err
				}
			}
			sources = append(sources, source)
			quoted = append(quoted, escape.Shell(source))
		}
		exec := "cat " + strings.Join(quoted, " ") + " > " + escape.Shell(f.Path)
		if f.Executable {
			exec += " && chmod 0755 " + escape.Shell(f.Path)
		}
		tf.outputs[f.Path] = true
		w.Build("", invokeRule, []string{f.Path}, nil, sources, nil, []string{targetBegin(t)})
		w.ScopedAssign("description", ninja.EscapeValue(description(n.Formatter.WriteAuxiliaryFile(f.Path))))
		w.ScopedAssign("dir", "/")
		w.ScopedAssign("exec", ninja.EscapeValue(exec))
		w.BlankLine()
	}

	type step struct {
		inv      *tool.Invocation
		args     []string
		implicit []string
		phony    []string
	}
	var steps []step
	for _, inv := range invs.Invocations {
		if inv.Executable.IsEmpty() {
			continue
		}
		args, ok, err := n.command(te, inv)
		if err != nil {
			catcher.Add(err)
			continue
		}
		if !ok {
			n.Logger.Warning(message.Fields{
				"message": "builtin cannot run outside of xcbuild",
				"builtin": inv.Executable.Builtin,
				"target":  t.Name,
			})
			w.Comment("Skipped " + Describe(inv) + ": " + inv.Executable.Builtin + " is not available.")
			continue
		}
		steps = append(steps, step{inv: inv, args: args})
		for _, out := range invocationOutputs(inv) {
			tf.outputs[out] = true
		}
	}

	// A path may only be built once, so phony outputs and output
	// dependencies already built by another step are left out.
	for i := range steps {
		inv := steps[i].inv
		for _, list := range [][]string{inv.PhonyOutputs, inv.OutputDependencies} {
			for _, p := range list {
				if p = normalize(p, inv.WorkingDirectory); p != "" && !tf.outputs[p] {
					tf.outputs[p] = true
					steps[i].implicit = append(steps[i].implicit, p)
				}
			}
		}
		for _, p := range inv.PhonyInputs {
			if p = normalize(p, inv.WorkingDirectory); p != "" {
				steps[i].phony = append(steps[i].phony, p)
				tf.phonyInputs = append(tf.phonyInputs, p)
			}
		}
	}

	for _, s := range steps {
		n.writeInvocation(w, t, s.inv, s.args, s.implicit, s.phony)
	}

	if err := n.write(tf.path, []byte(b.String())); err != nil {
		return nil, err
	}
	return tf, nil
}

// writeInvocation writes the build statement of inv. Phony inputs only
// order it, and implicit outputs are written as a side effect.
func (n *Ninja) writeInvocation(w *ninja.Writer, t *project.Target, inv *tool.Invocation, args, implicit, phony []string) {
	var exec []string
	for _, arg := range append(args, inv.Arguments...) {
		exec = append(exec, escape.Shell(arg))
	}

	names := make([]string, 0, len(inv.Environment))
	for name := range inv.Environment {
		names = append(names, name)
	}
	sort.Strings(names)
	var env []string
	for _, name := range names {
		env = append(env, name+"="+escape.Shell(inv.Environment[name]))
	}

	display := inv.Executable.Builtin
	if display == "" {
		display = args[0]
	}

	orderOnly := append([]string{targetWriteAuxiliaryFiles(t)}, phony...)
	w.Build("", invokeRule, invocationOutputs(inv), implicit, inv.Inputs, inv.InputDependencies, orderOnly)
	w.ScopedAssign("description", ninja.EscapeValue(description(n.Formatter.BeginInvocation(inv, display, false))))
	w.ScopedAssign("dir", ninja.EscapeValue(escape.Shell(inv.WorkingDirectory)))
	w.ScopedAssign("exec", ninja.EscapeValue(strings.Join(exec, " ")))
	if len(env) > 0 {
		w.ScopedAssign("env", ninja.EscapeValue(strings.Join(env, " ")))
	}
	for _, info := range inv.DependencyInfo {
		if info.Format == tool.DependencyMakefile {
			w.ScopedAssign("depfile", ninja.EscapeValue(info.Path))
			w.ScopedAssign("deps", "gcc")
			break
		}
	}
	w.BlankLine()
}
