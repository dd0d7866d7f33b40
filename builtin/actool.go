package builtin

import (
	"path"
	"strings"

	"github.com/juju/errgo"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"gopkg.in/yaml.v3"

	"github.com/vron/xcbuild/assets"
	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/process"
)

// AssetCatalog compiles asset catalogs:
//
//	builtin-actool --compile dir --platform name
//	    --output-partial-info-plist file [--minimum-deployment-target v] catalog...
//
// Images of launch image and image sets are copied into dir under their
// compiled names and the information property list entries they need
// are written to the partial property list.
type AssetCatalog struct{}

func (*AssetCatalog) Name() string { return "builtin-actool" }

type actoolOptions struct {
	compile                 string
	platform                string
	partialInfoPlist        string
	minimumDeploymentTarget string
	appIcon                 string
	launchImage             string
	outputFormat            string
	targetDevices           []string
	inputs                  []string
}

func parseActoolOptions(args []string) (actoolOptions, error) {
	var o actoolOptions
	a := &arguments{args: args}
	for {
		arg, ok := a.next()
		if !ok {
			break
		}
		var err error
		switch arg {
		case "--compile":
			o.compile, err = a.value(arg)
		case "--platform":
			o.platform, err = a.value(arg)
		case "--output-partial-info-plist":
			o.partialInfoPlist, err = a.value(arg)
		case "--minimum-deployment-target":
			o.minimumDeploymentTarget, err = a.value(arg)
		case "--app-icon":
			o.appIcon, err = a.value(arg)
		case "--launch-image":
			o.launchImage, err = a.value(arg)
		case "--output-format":
			o.outputFormat, err = a.value(arg)
		case "--target-device":
			var v string
			v, err = a.value(arg)
			o.targetDevices = append(o.targetDevices, v)
		case "--notices", "--warnings", "--errors", "--compress-pngs", "--enable-on-demand-resources":
		default:
			if arg == "" || strings.HasPrefix(arg, "-") {
				return o, errgo.Newf("unknown argument %q", arg)
			}
			o.inputs = append(o.inputs, arg)
		}
		if err != nil {
			return o, err
		}
	}
	return o, nil
}

func (*AssetCatalog) Run(pc *process.Context, fs filesystem.Filesystem) error {
	o, err := parseActoolOptions(pc.Arguments)
	if err != nil {
		return err
	}
	if o.compile == "" {
		return errgo.New("no output directory provided")
	}
	if len(o.inputs) == 0 {
		return errgo.New("no asset catalogs provided")
	}

	var sets []*assets.Set
	for _, in := range o.inputs {
		s, err := assets.LoadCatalog(fs, resolve(pc, in))
		if err != nil {
			return err
		}
		sets = append(sets, s...)
	}

	out := assets.NewOutput(resolve(pc, o.compile))
	if err := assets.Compile(sets, out); err != nil {
		return err
	}

	for _, c := range out.Copies {
		data, err := fs.Read(c.Source)
		if err != nil {
			return errgo.Notef(err, "cannot read %s", c.Source)
		}
		if err := fs.CreateDirectory(path.Dir(c.Destination)); err != nil {
			return errgo.Notef(err, "cannot create %s", path.Dir(c.Destination))
		}
		if err := fs.Write(c.Destination, data); err != nil {
			return errgo.Notef(err, "cannot write %s", c.Destination)
		}
	}
	grip.Debug(message.Fields{
		"builtin":  "actool",
		"platform": o.platform,
		"sets":     len(sets),
		"copies":   len(out.Copies),
	})

	if o.partialInfoPlist != "" {
		data, err := yaml.Marshal(out.AdditionalInfo)
		if err != nil {
			return errgo.Mask(err, errgo.Any)
		}
		p := resolve(pc, o.partialInfoPlist)
		if err := fs.CreateDirectory(path.Dir(p)); err != nil {
			return errgo.Notef(err, "cannot create %s", path.Dir(p))
		}
		if err := fs.Write(p, data); err != nil {
			return errgo.Notef(err, "cannot write %s", p)
		}
	}
	return nil
}
