package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"
	"github.com/juju/errgo"
	"github.com/mitchellh/go-homedir"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/logging"
	"github.com/mongodb/grip/message"
	"github.com/urfave/cli"

	"github.com/vron/xcbuild/build"
	"github.com/vron/xcbuild/builtin"
	"github.com/vron/xcbuild/cache"
	"github.com/vron/xcbuild/conf"
	"github.com/vron/xcbuild/executor"
	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/process"
	"github.com/vron/xcbuild/project"
	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/target"
)

func buildFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags,
		cli.StringFlag{
			Name:  projectFlagName,
			Usage: "the project file; defaults to the only .yaml file in the current directory",
		},
		cli.StringSliceFlag{
			Name:  targetFlagName,
			Usage: "build this target; may be given more than once; defaults to all targets",
		},
		cli.StringFlag{
			Name:  configurationFlagName,
			Usage: "the configuration to build; defaults to the project's default configuration",
		},
		cli.StringFlag{
			Name:  actionFlagName,
			Usage: "the action to perform (build, install, clean)",
			Value: build.ActionBuild,
		},
		cli.StringFlag{
			Name:  xcconfigFlagName,
			Usage: "an xcconfig file whose settings override those of every target",
		},
		cli.StringFlag{
			Name:   developerDirFlagName,
			Usage:  "the developer directory holding platforms, SDKs and toolchains",
			EnvVar: "DEVELOPER_DIR",
		},
		cli.StringFlag{
			Name:  specsFlagName,
			Usage: "the directory holding the specification domains",
		},
	)
}

func executorFlags(flags ...cli.Flag) []cli.Flag {
	return append(buildFlags(flags...),
		cli.StringFlag{
			Name:  executorFlagName,
			Usage: "how to run the build: simple or ninja",
			Value: "simple",
		},
		cli.BoolFlag{
			Name:  dryRunFlagName,
			Usage: "show what would be done without doing it",
		},
		cli.BoolFlag{
			Name:  generateFlagName,
			Usage: "only write the ninja files, without running ninja",
		},
		cli.BoolFlag{
			Name:  noCacheFlagName,
			Usage: "run every invocation, even those whose inputs did not change",
		},
		cli.BoolFlag{
			Name:  clearCacheFlagName,
			Usage: "completely wipe the cache and exit",
		},
		cli.BoolFlag{
			Name:  colorFlagName,
			Usage: "color the build log",
		},
	)
}

func buildCommand() cli.Command {
	return cli.Command{
		Name:      "build",
		Usage:     "build targets of a project",
		ArgsUsage: "[NAME=VALUE...]",
		Flags:     executorFlags(),
		Action:    buildAction,
	}
}

func showBuildSettingsCommand() cli.Command {
	return cli.Command{
		Name:      "showBuildSettings",
		Usage:     "show the build settings of targets of a project",
		ArgsUsage: "[NAME=VALUE...]",
		Flags:     buildFlags(),
		Action:    showBuildSettingsAction,
	}
}

func builtinCommand() cli.Command {
	return cli.Command{
		Name:            "builtin",
		Usage:           "run a builtin tool",
		ArgsUsage:       "NAME [ARGS...]",
		SkipFlagParsing: true,
		Action:          builtinAction,
	}
}

// A request is the project, targets and settings a command works on.
type request struct {
	fs      filesystem.OS
	process *process.Context
	path    string
	build   *build.Environment
	project *project.Project
	context *build.Context
	targets []*project.Target
}

func expand(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", errgo.Notef(err, "cannot expand %s", p)
	}
	return filepath.Abs(expanded)
}

// findProject returns the only project file in dir.
func findProject(dir string) (string, error) {
	matches, err := doublestar.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return "", errgo.Mask(err)
	}
	switch len(matches) {
	case 0:
		return "", errgo.Newf("no project file in %s", dir)
	case 1:
		return matches[0], nil
	default:
		return "", errgo.Newf("more than one project file in %s; choose one with --%s", dir, projectFlagName)
	}
}

// overrides parses NAME=VALUE arguments into a level. Names may carry
// conditions, as in xcconfig files.
func overrides(args []string) (setting.Level, error) {
	var settings []setting.Setting
	for _, arg := range args {
		s, ok := setting.ParseLine(arg)
		if !ok || s.Name == "" {
			return setting.Level{}, errgo.Newf("invalid setting %q; expected NAME=VALUE", arg)
		}
		settings = append(settings, s)
	}
	return setting.NewLevel(settings...), nil
}

func load(c *cli.Context) (*request, error) {
	r := &request{process: process.Current()}

	var err error
	if r.path, err = expand(c.String(projectFlagName)); err != nil {
		return nil, err
	}
	if r.path == "" {
		if r.path, err = findProject(r.process.CurrentDirectory); err != nil {
			return nil, err
		}
	}
	developerDir, err := expand(c.String(developerDirFlagName))
	if err != nil {
		return nil, err
	}
	specs, err := expand(c.String(specsFlagName))
	if err != nil {
		return nil, err
	}

	if r.build, err = build.Default(r.fs, r.process, build.Options{
		DeveloperDir:     developerDir,
		SpecificationDir: specs,
	}); err != nil {
		return nil, errgo.Notef(err, "cannot load build environment")
	}
	if r.project, err = project.Load(r.fs, r.path); err != nil {
		return nil, errgo.Notef(err, "cannot load project %s", r.path)
	}

	var levels []setting.Level
	xcconfig, err := expand(c.String(xcconfigFlagName))
	if err != nil {
		return nil, err
	}
	if xcconfig != "" {
		env := setting.NewEnvironment(setting.NewLevel(setting.Create("DEVELOPER_DIR", developerDir)))
		cfg, err := conf.Load(r.fs, env, xcconfig)
		if err != nil {
			return nil, errgo.Notef(err, "cannot load %s", xcconfig)
		}
		levels = append(levels, cfg.Level())
	}
	args, err := overrides(c.Args())
	if err != nil {
		return nil, err
	}
	levels = append(levels, args)

	r.context = build.NewContext(r.project, c.String(actionFlagName), c.String(configurationFlagName), levels...)
	for _, name := range c.StringSlice(targetFlagName) {
		t := r.project.Target(name)
		if t == nil {
			return nil, errgo.Newf("no target %s in project %s", name, r.project.Name)
		}
		r.targets = append(r.targets, t)
	}
	return r, nil
}

func buildAction(c *cli.Context) error {
	if c.Bool(clearCacheFlagName) {
		return cache.Remove(cachePath())
	}

	r, err := load(c)
	if err != nil {
		return err
	}

	o := executor.Options{
		Formatter: &executor.DefaultFormatter{Color: c.Bool(colorFlagName)},
		Logger:    logging.MakeGrip(grip.GetSender()),
		DryRun:    c.Bool(dryRunFlagName),
	}
	launcher := &process.DefaultLauncher{}

	var e executor.Executor
	switch name := c.String(executorFlagName); name {
	case "simple":
		s := executor.NewSimple(r.fs, r.process, launcher, builtin.Default(), o)
		if !c.Bool(noCacheFlagName) && !o.DryRun {
			db, err := cache.Open(cachePath())
			if err != nil {
				return errgo.Notef(err, "cannot open cache")
			}
			defer db.Close()
			s.Cache = db
		}
		e = s
	case "ninja":
		n := executor.NewNinja(r.fs, r.process, launcher, o)
		n.Generate = c.Bool(generateFlagName)
		n.BuiltinCommand = []string{r.process.ExecutablePath, "builtin"}
		n.Regenerate = regenerate(c, r)
		n.Inputs = inputs(c, r)
		e = n
	default:
		return errgo.Newf("unknown executor %q", name)
	}

	ctx, interrupted := interruptible()
	if err := e.Build(ctx, r.build, r.context, r.targets); err != nil {
		if interrupted() {
			return cli.NewExitError("interrupted", 130)
		}
		return err
	}
	return nil
}

// regenerate is the command line writing the ninja files of the build
// again.
func regenerate(c *cli.Context, r *request) []string {
	args := []string{
		r.process.ExecutablePath, "build",
		"--" + executorFlagName, "ninja",
		"--" + generateFlagName,
		"--" + projectFlagName, r.path,
		"--" + actionFlagName, r.context.Action,
	}
	if !r.context.DefaultConfiguration {
		args = append(args, "--"+configurationFlagName, r.context.Configuration)
	}
	for _, name := range []string{developerDirFlagName, specsFlagName, xcconfigFlagName} {
		if p, err := expand(c.String(name)); err == nil && p != "" {
			args = append(args, "--"+name, p)
		}
	}
	for _, t := range r.targets {
		args = append(args, "--"+targetFlagName, t.Name)
	}
	return append(args, c.Args()...)
}

// inputs are the files the ninja files are generated from.
func inputs(c *cli.Context, r *request) []string {
	files := []string{r.path}
	if p, err := expand(c.String(xcconfigFlagName)); err == nil && p != "" {
		files = append(files, p)
	}
	if specs, err := expand(c.String(specsFlagName)); err == nil && specs != "" {
		matches, err := doublestar.Glob(filepath.Join(specs, "**", "*.yaml"))
		if err != nil {
			grip.Warning(message.WrapError(err, message.Fields{"specs": specs}))
		}
		files = append(files, matches...)
	}
	return files
}

func showBuildSettingsAction(c *cli.Context) error {
	r, err := load(c)
	if err != nil {
		return err
	}
	targets := r.targets
	if len(targets) == 0 {
		targets = r.project.Targets
	}

	catcher := grip.NewBasicCatcher()
	for _, t := range targets {
		te, err := target.Create(r.fs, r.build, r.context, t)
		if err != nil {
			catcher.Add(errgo.Notef(err, "cannot create target environment for %s", t.Name))
			continue
		}
		values := te.Settings.ComputeValues(nil)
		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Printf("Build settings for action %s and target %s:\n", r.context.Action, t.Name)
		for _, name := range names {
			fmt.Printf("    %s = %s\n", name, values[name])
		}
		fmt.Println()
	}
	return catcher.Resolve()
}

// builtinAction runs a builtin tool as its own process, exiting with the
// tool's status.
func builtinAction(c *cli.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return errgo.Newf("no builtin given; one of %s", strings.Join(builtin.Default().Names(), ", "))
	}
	pc := process.Current()
	ctx, _ := interruptible()
	code, err := builtin.Default().Launch(ctx, filesystem.OS{}, &process.Context{
		ExecutablePath:   args[0],
		Arguments:        args[1:],
		Environment:      pc.Environment,
		CurrentDirectory: pc.CurrentDirectory,
		UserName:         pc.UserName,
		GroupName:        pc.GroupName,
		HomeDirectory:    pc.HomeDirectory,
	})
	if err != nil {
		return err
	}
	if code != 0 {
		return cli.NewExitError("", code)
	}
	return nil
}
