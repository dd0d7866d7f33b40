package builtin

import (
	"path"
	"strings"

	"github.com/gobwas/glob"
	"github.com/juju/errgo"
	"github.com/mongodb/grip"

	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/process"
)

// Copy copies files and directories into an output directory:
//
//	builtin-copy [-exclude pattern]... [flags] input... output
//
// Directories are copied recursively, skipping entries whose name matches
// an exclude pattern. Stripping is accepted and not performed.
type Copy struct{}

func (*Copy) Name() string { return "builtin-copy" }

type copyOptions struct {
	verbose             bool
	ignoreMissingInputs bool
	resolveSrcSymlinks  bool
	stripDebugSymbols   bool
	preserveHFSData     bool
	stripTool           string
	bitcodeStrip        string
	bitcodeStripTool    string
	excludes            []string
	inputs              []string
	output              string
}

func parseCopyOptions(args []string) (copyOptions, error) {
	var o copyOptions
	a := &arguments{args: args}
	for {
		arg, ok := a.next()
		if !ok {
			break
		}
		var err error
		switch arg {
		case "-V":
			o.verbose = true
		case "-preserve-hfs-data":
			o.preserveHFSData = true
		case "-ignore-missing-inputs":
			o.ignoreMissingInputs = true
		case "-resolve-src-symlinks":
			o.resolveSrcSymlinks = true
		case "-strip-debug-symbols":
			o.stripDebugSymbols = true
		case "-exclude":
			var v string
			v, err = a.value(arg)
			o.excludes = append(o.excludes, v)
		case "-strip-tool":
			o.stripTool, err = a.value(arg)
		case "-bitcode-strip":
			o.bitcodeStrip, err = a.value(arg)
			switch {
			case err != nil:
			case o.bitcodeStrip == "none", o.bitcodeStrip == "replace-with-marker", o.bitcodeStrip == "all":
			default:
				err = errgo.Newf("unknown bitcode strip mode %q", o.bitcodeStrip)
			}
		case "-bitcode-strip-tool":
			o.bitcodeStripTool, err = a.value(arg)
		default:
			if arg == "" || strings.HasPrefix(arg, "-") {
				return o, errgo.Newf("unknown argument %q", arg)
			}
			if a.last() {
				o.output = arg
			} else {
				o.inputs = append(o.inputs, arg)
			}
		}
		if err != nil {
			return o, err
		}
	}
	return o, nil
}

func (*Copy) Run(pc *process.Context, fs filesystem.Filesystem) error {
	o, err := parseCopyOptions(pc.Arguments)
	if err != nil {
		return err
	}
	if o.output == "" {
		return errgo.New("no output path provided")
	}
	if o.preserveHFSData {
		grip.Warning("preserve HFS data is not supported")
	}

	excludes := make([]glob.Glob, 0, len(o.excludes))
	for _, e := range o.excludes {
		g, err := glob.Compile(e)
		if err != nil {
			return errgo.Notef(err, "invalid exclude %q", e)
		}
		excludes = append(excludes, g)
	}

	output := resolve(pc, o.output)
	for _, in := range o.inputs {
		in = resolve(pc, in)
		if o.resolveSrcSymlinks {
			in = fs.ResolvePath(in)
		}
		if !fs.Exists(in) {
			if o.ignoreMissingInputs {
				continue
			}
			return errgo.Newf("missing input %q", in)
		}
		if o.verbose {
			grip.Infof("copying %s -> %s", in, output)
		}
		if err := copyPath(fs, in, output+"/"+path.Base(in), excludes); err != nil {
			return err
		}
	}
	return nil
}

func excluded(name string, excludes []glob.Glob) bool {
	for _, g := range excludes {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// copyPath copies src to dst, keeping the executable bit of files.
func copyPath(fs filesystem.Filesystem, src, dst string, excludes []glob.Glob) error {
	if fs.IsDirectory(src) {
		if err := fs.CreateDirectory(dst); err != nil {
			return errgo.Notef(err, "cannot create %s", dst)
		}
		names, err := fs.EnumerateDirectory(src)
		if err != nil {
			return errgo.Notef(err, "cannot list %s", src)
		}
		for _, n := range names {
			if excluded(n, excludes) {
				continue
			}
			if err := copyPath(fs, src+"/"+n, dst+"/"+n, excludes); err != nil {
				return err
			}
		}
		return nil
	}

	info, err := fs.Info(src)
	if err != nil {
		return errgo.Notef(err, "cannot stat %s", src)
	}
	data, err := fs.Read(src)
	if err != nil {
		return errgo.Notef(err, "cannot read %s", src)
	}
	if err := fs.CreateDirectory(path.Dir(dst)); err != nil {
		return errgo.Notef(err, "cannot create %s", path.Dir(dst))
	}
	if err := fs.Write(dst, data); err != nil {
		return errgo.Notef(err, "cannot write %s", dst)
	}
	return fs.SetExecutable(dst, info.Executable)
}
