// Package executor builds targets from their invocations. The simple
// executor runs invocations one at a time in dependency order; the ninja
// executor writes ninja files and leaves running them to ninja.
package executor

import (
	"context"
	"sort"

	"github.com/juju/errgo"
	"github.com/mongodb/grip"

	"github.com/vron/xcbuild/build"
	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/phase"
	"github.com/vron/xcbuild/project"
	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/target"
)

// ErrInvocationFailed is the cause of errors from an invocation that could
// not be run or did not succeed.
var ErrInvocationFailed = errgo.New("invocation failed")

// An Executor builds targets, and the targets they depend on, of a build.
// All targets of the project are built when none are given.
type Executor interface {
	Build(ctx context.Context, be *build.Environment, bc *build.Context, targets []*project.Target) error
}

// Options are common to the executors.
type Options struct {
	// Formatter describes the build. It defaults to a DefaultFormatter
	// without color.
	Formatter Formatter
	// Logger receives the build log. It defaults to a journaler named
	// xcbuild.
	Logger grip.Journaler
	// DryRun shows what would be done without doing it.
	DryRun bool
}

func (o *Options) setDefaults() {
	if o.Formatter == nil {
		o.Formatter = &DefaultFormatter{}
	}
	if o.Logger == nil {
		o.Logger = grip.NewJournaler("xcbuild")
	}
}

// Resolve creates the environment of t and resolves the invocations
// building it.
func Resolve(fs filesystem.Filesystem, be *build.Environment, bc *build.Context, t *project.Target) (*target.Environment, *phase.Invocations, error) {
	te, err := target.Create(fs, be, bc, t)
	if err != nil {
		return nil, nil, errgo.Notef(err, "cannot create target environment for %s", t.Name)
	}
	invs, err := phase.Resolve(phase.NewEnvironment(fs, be, bc, te))
	if err != nil {
		return nil, nil, err
	}
	return te, invs, nil
}

// IntermediatesDirectory is where build-wide state goes: the project's
// OBJROOT, without anything specific to a target.
func IntermediatesDirectory(be *build.Environment, bc *build.Context) string {
	p := bc.Project
	env := be.Base.InsertFront(bc.BaseSettings(), false)
	env = env.InsertFront(setting.NewLevel(append(p.BuildSettings().Settings(), p.Level().Settings()...)...), false)
	env = env.InsertFront(bc.ActionSettings(), false)
	for _, l := range bc.Overrides {
		env = env.InsertFront(l, false)
	}
	return env.Resolve("OBJROOT")
}

// Overrides returns the build settings given on the command line as sorted
// NAME=value pairs.
func Overrides(bc *build.Context) []string {
	env := setting.NewEnvironment()
	for _, l := range bc.Overrides {
		env = env.InsertFront(l, false)
	}
	var values []string
	for name, value := range env.ComputeValues(nil) {
		values = append(values, name+"="+value)
	}
	sort.Strings(values)
	return values
}
