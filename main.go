// Command xcbuild builds projects the way xcodebuild does.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/juju/errgo"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/level"
	"github.com/mongodb/grip/send"
	"github.com/shibukawa/configdir"
	"github.com/urfave/cli"
)

const (
	projectFlagName       = "project"
	targetFlagName        = "target"
	configurationFlagName = "configuration"
	actionFlagName        = "action"
	executorFlagName      = "executor"
	xcconfigFlagName      = "xcconfig"
	developerDirFlagName  = "developer-dir"
	specsFlagName         = "specs"
	dryRunFlagName        = "dry-run"
	generateFlagName      = "generate"
	noCacheFlagName       = "no-cache"
	clearCacheFlagName    = "clear-cache"
	levelFlagName         = "level"
	colorFlagName         = "color"
)

func main() {
	app := buildApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func buildApp() *cli.App {
	app := cli.NewApp()
	app.Name = "xcbuild"
	app.Usage = "build projects and their targets"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  levelFlagName,
			Usage: "log messages at this level and above (debug, info, warning, error)",
			Value: "info",
		},
	}
	app.Before = setLogger
	app.Commands = []cli.Command{
		buildCommand(),
		showBuildSettingsCommand(),
		builtinCommand(),
	}
	app.Action = buildAction
	app.Flags = executorFlags(app.Flags...)
	return app
}

// setLogger logs plain lines, as the build log is meant to be read.
func setLogger(c *cli.Context) error {
	threshold := level.FromString(c.GlobalString(levelFlagName))
	if !threshold.IsValid() {
		return errgo.Newf("unknown log level %q", c.GlobalString(levelFlagName))
	}
	sender := send.MakePlainLogger()
	if err := sender.SetLevel(send.LevelInfo{Default: level.Info, Threshold: threshold}); err != nil {
		return errgo.Notef(err, "cannot set log level")
	}
	if err := grip.SetSender(sender); err != nil {
		return errgo.Notef(err, "cannot set logger")
	}
	grip.SetName("xcbuild")
	return nil
}

// interruptible returns a context cancelled on the first interrupt, and
// reports whether that happened.
func interruptible() (context.Context, func() bool) {
	ctx, cf := context.WithCancel(context.Background())
	stopped := make(chan struct{}, 1)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cf()
		stopped <- struct{}{}
	}()

	return ctx, func() bool {
		select {
		case <-stopped:
			return true
		default:
			return false
		}
	}
}

func cachePath() string {
	dirs := configdir.New("vron", "xcbuild")
	folder := dirs.QueryCacheFolder()
	return filepath.Join(folder.Path, "cache.db")
}
