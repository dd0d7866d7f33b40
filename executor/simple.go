package executor

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/juju/errgo"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"

	"github.com/vron/xcbuild/build"
	"github.com/vron/xcbuild/cache"
	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/phase"
	"github.com/vron/xcbuild/process"
	"github.com/vron/xcbuild/project"
	"github.com/vron/xcbuild/stat"
	"github.com/vron/xcbuild/target"
	"github.com/vron/xcbuild/tool"
)

// Simple builds targets one after the other, running the invocations of
// each in dependency order.
type Simple struct {
	Options

	FS      filesystem.Filesystem
	Process *process.Context
	// Launcher runs external tools and Builtins runs builtin tools in
	// process.
	Launcher process.Launcher
	Builtins process.Launcher
	// Cache, if set, skips invocations whose outputs exist and whose
	// command and inputs did not change since they last succeeded.
	Cache *cache.Cache

	stater *stat.Stater
}

var _ Executor = (*Simple)(nil)

func NewSimple(fs filesystem.Filesystem, pc *process.Context, launcher, builtins process.Launcher, o Options) *Simple {
	o.setDefaults()
	return &Simple{
		Options:  o,
		FS:       fs,
		Process:  pc,
		Launcher: launcher,
		Builtins: builtins,
		stater:   stat.New(fs, false),
	}
}

// Build builds the targets in dependency order. A target whose
// environment or invocations cannot be resolved is reported and skipped,
// and the build goes on with the others. A failing invocation or a
// dependency cycle ends the build.
func (s *Simple) Build(ctx context.Context, be *build.Environment, bc *build.Context, targets []*project.Target) error {
	show(s.Logger, s.Formatter.Begin(bc))
	if s.Cache != nil {
		defer s.checkCache()
	}

	ordered, err := bc.OrderedTargets(targets)
	if err != nil {
		return errgo.Mask(err, errgo.Any)
	}

	catcher := grip.NewBasicCatcher()
	for _, t := range ordered {
		if err := ctx.Err(); err != nil {
			return errgo.Mask(err, errgo.Any)
		}
		show(s.Logger, s.Formatter.BeginTarget(bc, t))

		show(s.Logger, s.Formatter.BeginCheckDependencies(t))
		te, invs, err := Resolve(s.FS, be, bc, t)
		show(s.Logger, s.Formatter.FinishCheckDependencies(t))
		if err != nil {
			s.Logger.Error(message.WrapError(err, message.Fields{
				"message": "cannot resolve target",
				"target":  t.Name,
			}))
			catcher.Add(err)
			show(s.Logger, s.Formatter.FinishTarget(bc, t))
			continue
		}

		failed, err := s.buildTarget(ctx, t, te, invs)
		show(s.Logger, s.Formatter.FinishTarget(bc, t))
		if err != nil {
			show(s.Logger, s.Formatter.Failure(bc, failed))
			return err
		}
	}

	if catcher.HasErrors() {
		show(s.Logger, s.Formatter.Failure(bc, nil))
		return catcher.Resolve()
	}
	show(s.Logger, s.Formatter.Success(bc))
	return nil
}

// checkCache reports a failure to read or update the cache. The build
// itself is not affected: invocations run again when the cache fails.
func (s *Simple) checkCache() {
	if err := s.Cache.Err(); err != nil {
		s.Logger.Warning(message.WrapError(err, message.Fields{
			"message": "cannot use cache",
		}))
	}
}

// buildTarget writes the auxiliary files of t, then creates the product
// structure, then runs everything else. It returns the invocation that
// failed, if any.
func (s *Simple) buildTarget(ctx context.Context, t *project.Target, te *target.Environment, invs *phase.Invocations) ([]*tool.Invocation, error) {
	show(s.Logger, s.Formatter.BeginWriteAuxiliaryFiles(t))
	err := s.writeAuxiliaryFiles(s.FS, invs.AuxiliaryFiles)
	show(s.Logger, s.Formatter.FinishWriteAuxiliaryFiles(t))
	if err != nil {
		return nil, err
	}

	ordered, err := Order(invs.Invocations)
	if err != nil {
		return nil, errgo.Mask(err, errgo.Any)
	}

	show(s.Logger, s.Formatter.BeginCreateProductStructure(t))
	failed, err := s.perform(ctx, te, ordered, true)
	show(s.Logger, s.Formatter.FinishCreateProductStructure(t))
	if err != nil {
		return failed, err
	}
	return s.perform(ctx, te, ordered, false)
}

// perform runs the invocations that create the product structure, or
// those that do not.
func (s *Simple) perform(ctx context.Context, te *target.Environment, ordered []*tool.Invocation, structure bool) ([]*tool.Invocation, error) {
	for _, inv := range ordered {
		if inv.Executable.IsEmpty() || inv.CreatesProductStructure != structure {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, errgo.Mask(err, errgo.Any)
		}
		if err := s.invoke(ctx, te, inv, structure); err != nil {
			return []*tool.Invocation{inv}, err
		}
	}
	return nil, nil
}

func failure(inv *tool.Invocation, underlying error, f string, a ...interface{}) error {
	return errgo.WithCausef(underlying, ErrInvocationFailed, "%s: %s", Describe(inv), fmt.Sprintf(f, a...))
}

// executable finds what runs inv and the launcher running it.
func (s *Simple) executable(te *target.Environment, inv *tool.Invocation) (string, process.Launcher, error) {
	if inv.Executable.IsBuiltin() {
		return inv.Executable.Builtin, s.Builtins, nil
	}
	p := inv.Executable.Path
	if path.IsAbs(p) {
		if !s.FS.IsExecutable(p) {
			return p, s.Launcher, failure(inv, nil, "%s is not executable", p)
		}
		return p, s.Launcher, nil
	}
	found, ok := filesystem.FindExecutable(s.FS, p, te.ExecutablePaths)
	if !ok {
		return p, s.Launcher, failure(inv, nil, "cannot find executable %s", p)
	}
	return found, s.Launcher, nil
}

// environment is the environment of the process running inv. Builtins
// only see the invocation's environment; external tools see it on top of
// the environment of the build.
func (s *Simple) environment(inv *tool.Invocation) map[string]string {
	env := map[string]string{}
	if !inv.Executable.IsBuiltin() && s.Process != nil {
		for k, v := range s.Process.Environment {
			env[k] = v
		}
	}
	for k, v := range inv.Environment {
		env[k] = v
	}
	return env
}

func (s *Simple) invoke(ctx context.Context, te *target.Environment, inv *tool.Invocation, structure bool) error {
	exe, launcher, err := s.executable(te, inv)
	if s.DryRun {
		show(s.Logger, s.Formatter.BeginInvocation(inv, exe, structure))
		show(s.Logger, s.Formatter.FinishInvocation(inv, exe, structure))
		return nil
	}
	if err != nil {
		return err
	}

	for _, out := range inv.Outputs {
		dir := path.Dir(normalize(out, inv.WorkingDirectory))
		if err := s.FS.CreateDirectory(dir); err != nil {
			return failure(inv, err, "cannot create directory %s", dir)
		}
	}

	env := s.environment(inv)
	key, fingerprint := s.fingerprint(inv, exe, env)
	if fingerprint != nil && s.upToDate(inv, key, fingerprint) {
		s.Logger.Debug(message.Fields{
			"message":    "invocation up to date",
			"invocation": Describe(inv),
		})
		return nil
	}

	pc := &process.Context{
		ExecutablePath:   exe,
		Arguments:        inv.Arguments,
		Environment:      env,
		CurrentDirectory: inv.WorkingDirectory,
	}
	if s.Process != nil {
		pc.UserName = s.Process.UserName
		pc.GroupName = s.Process.GroupName
		pc.HomeDirectory = s.Process.HomeDirectory
	}

	show(s.Logger, s.Formatter.BeginInvocation(inv, exe, structure))
	code, err := launcher.Launch(ctx, s.FS, pc)
	show(s.Logger, s.Formatter.FinishInvocation(inv, exe, structure))
	if err != nil {
		return failure(inv, err, "cannot run %s", exe)
	}
	if code != 0 {
		if key != "" {
			s.Cache.Delete(key)
		}
		return failure(inv, nil, "%s exited with status %d", exe, code)
	}
	if fingerprint != nil {
		s.Cache.Set(key, fingerprint)
	}
	return nil
}

// fingerprint identifies inv by its outputs and digests its command and
// the state of its inputs. Invocations without outputs, and all of them
// when there is no cache, get no fingerprint.
func (s *Simple) fingerprint(inv *tool.Invocation, exe string, env map[string]string) (string, []byte) {
	if s.Cache == nil || len(inv.Outputs) == 0 {
		return "", nil
	}

	outputs := make([]string, 0, len(inv.Outputs))
	for _, out := range inv.Outputs {
		outputs = append(outputs, normalize(out, inv.WorkingDirectory))
	}
	key := strings.Join(outputs, "\x00")

	h := sha256.New224()
	write := func(v string) {
		binary.Write(h, binary.BigEndian, int64(len(v)))
		h.Write([]byte(v))
	}
	write(exe)
	write(inv.WorkingDirectory)
	for _, arg := range inv.Arguments {
		write(arg)
	}
	names := make([]string, 0, len(env))
	for k := range env {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		write(k + "=" + env[k])
	}

	var inputs []string
	for _, list := range [][]string{inv.Inputs, inv.InputDependencies} {
		for _, in := range list {
			in = normalize(in, inv.WorkingDirectory)
			inputs = append(inputs, in)
			if s.FS.IsDirectory(in) {
				digest, err := s.stater.Stat(in, "**")
				if err != nil {
					grip.Warning(message.WrapError(err, message.Fields{"input": in}))
					return "", nil
				}
				h.Write(digest)
			}
		}
	}
	digest, err := s.stater.Files(inputs)
	if err != nil {
		grip.Warning(message.WrapError(err, message.Fields{"invocation": Describe(inv)}))
		return "", nil
	}
	h.Write(digest)
	return key, h.Sum(nil)
}

func (s *Simple) upToDate(inv *tool.Invocation, key string, fingerprint []byte) bool {
	for _, out := range inv.Outputs {
		if !s.FS.Exists(normalize(out, inv.WorkingDirectory)) {
			return false
		}
	}
	stored := s.Cache.Get(key)
	return stored != nil && string(stored) == string(fingerprint)
}
