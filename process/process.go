// Package process describes and launches processes.
package process

import (
	"context"
	"io"
	"os"
	"os/exec"
	"os/user"
	"sort"
	"strings"

	"github.com/juju/errgo"
	"github.com/mitchellh/go-homedir"

	"github.com/vron/xcbuild/filesystem"
)

// A Context is everything a process is started with.
type Context struct {
	ExecutablePath   string
	Arguments        []string
	Environment      map[string]string
	CurrentDirectory string
	UserName         string
	GroupName        string
	HomeDirectory    string
}

// Current describes the running process.
func Current() *Context {
	exe, _ := os.Executable()
	wd, _ := os.Getwd()
	c := &Context{
		ExecutablePath:   exe,
		Arguments:        append([]string(nil), os.Args[1:]...),
		Environment:      map[string]string{},
		CurrentDirectory: wd,
	}
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			c.Environment[kv[:i]] = kv[i+1:]
		}
	}
	if u, err := user.Current(); err == nil {
		c.UserName = u.Username
		if g, err := user.LookupGroupId(u.Gid); err == nil {
			c.GroupName = g.Name
		}
	}
	c.HomeDirectory, _ = homedir.Dir()
	return c
}

// Env formats the environment as sorted KEY=VALUE entries.
func (c *Context) Env() []string {
	env := make([]string, 0, len(c.Environment))
	for k, v := range c.Environment {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

// A Launcher runs a process to completion and returns its exit code. The
// error is only set if the process could not be run.
type Launcher interface {
	Launch(ctx context.Context, fs filesystem.Filesystem, pc *Context) (int, error)
}

// DefaultLauncher starts real processes, writing their output to Stdout
// and Stderr, or to the standard streams when those are nil.
type DefaultLauncher struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (l *DefaultLauncher) Launch(ctx context.Context, fs filesystem.Filesystem, pc *Context) (int, error) {
	if !fs.IsExecutable(pc.ExecutablePath) {
		return -1, errgo.Newf("%s is not executable", pc.ExecutablePath)
	}
	cmd := exec.CommandContext(ctx, pc.ExecutablePath, pc.Arguments...)
	cmd.Dir = pc.CurrentDirectory
	cmd.Env = pc.Env()
	cmd.Stdout, cmd.Stderr = l.Stdout, l.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok {
		return e.ExitCode(), nil
	}
	if err != nil {
		return -1, errgo.Notef(err, "cannot run %s", pc.ExecutablePath)
	}
	return 0, nil
}
