// Package builtin runs the tools of a build that are implemented in
// process. A driver gets the same arguments, environment and working
// directory an external tool would and must not keep state between runs.
package builtin

import (
	"context"
	"path"
	"sort"

	"github.com/juju/errgo"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"

	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/process"
)

// ErrUnknownDriver is the cause of launching a builtin nobody registered.
var ErrUnknownDriver = errgo.New("unknown builtin")

// A Driver is one builtin tool.
type Driver interface {
	Name() string
	Run(pc *process.Context, fs filesystem.Filesystem) error
}

// A Registry finds drivers by name. It launches them like processes: the
// base name of the executable path selects the driver.
type Registry struct {
	// Logger receives driver failures. The process logger is used if nil.
	Logger grip.Journaler

	drivers map[string]Driver
}

var _ process.Launcher = (*Registry)(nil)

func NewRegistry(drivers ...Driver) *Registry {
	r := &Registry{drivers: map[string]Driver{}}
	for _, d := range drivers {
		r.Add(d)
	}
	return r
}

// Default returns a registry of all builtins.
func Default() *Registry {
	return NewRegistry(&Copy{}, &CopyStrings{}, &InfoPlistUtility{}, &AssetCatalog{})
}

// Add registers d, replacing a driver of the same name.
func (r *Registry) Add(d Driver) {
	r.drivers[d.Name()] = d
}

func (r *Registry) Driver(name string) (Driver, bool) {
	d, ok := r.drivers[name]
	return d, ok
}

// Names lists the registered drivers, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.drivers))
	for n := range r.drivers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) logError(m message.Composer) {
	if r.Logger != nil {
		r.Logger.Error(m)
		return
	}
	grip.Error(m)
}

// Launch runs the driver named by pc.ExecutablePath. A failing driver
// exits with 1; only an unknown driver is an error.
func (r *Registry) Launch(ctx context.Context, fs filesystem.Filesystem, pc *process.Context) (int, error) {
	name := path.Base(pc.ExecutablePath)
	d, ok := r.drivers[name]
	if !ok {
		return -1, errgo.WithCausef(nil, ErrUnknownDriver, "unknown builtin %q", name)
	}
	if err := ctx.Err(); err != nil {
		return -1, errgo.Mask(err, errgo.Any)
	}
	if err := d.Run(pc, fs); err != nil {
		r.logError(message.WrapError(err, message.Fields{
			"builtin":   name,
			"directory": pc.CurrentDirectory,
		}))
		return 1, nil
	}
	return 0, nil
}

// arguments walks the command line of a driver.
type arguments struct {
	args []string
	i    int
}

func (a *arguments) next() (string, bool) {
	if a.i >= len(a.args) {
		return "", false
	}
	a.i++
	return a.args[a.i-1], true
}

// last reports whether the argument just returned was the final one.
func (a *arguments) last() bool {
	return a.i == len(a.args)
}

// value returns the argument following flag.
func (a *arguments) value(flag string) (string, error) {
	v, ok := a.next()
	if !ok {
		return "", errgo.Newf("missing argument for %s", flag)
	}
	return v, nil
}

// resolve makes p absolute against the working directory of pc.
func resolve(pc *process.Context, p string) string {
	if path.IsAbs(p) {
		return path.Clean(p)
	}
	return path.Join(pc.CurrentDirectory, p)
}
