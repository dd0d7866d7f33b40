package builtin

import (
	"path"
	"strconv"
	"strings"

	"github.com/juju/errgo"
	"github.com/mongodb/grip"
	"gopkg.in/yaml.v3"

	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/process"
	"github.com/vron/xcbuild/setting"
)

// InfoPlistUtility processes the information property list of a product:
//
//	builtin-infoPlistUtility input [-expandbuildsettings] [-format fmt]
//	    [-additionalcontentfile file]... [-genpkginfo file] -o output
//
// Property lists are YAML documents with a mapping at the root. With
// -expandbuildsettings every string value is expanded against the process
// environment. Additional content files are merged into the root,
// replacing existing keys, and entries describing the build are added.
type InfoPlistUtility struct{}

func (*InfoPlistUtility) Name() string { return "builtin-infoPlistUtility" }

type infoPlistOptions struct {
	input                  string
	output                 string
	format                 string
	genPkgInfo             string
	resourceRulesFile      string
	platform               string
	expandBuildSettings    bool
	infoFileKeys           string
	infoFileValues         string
	additionalContentFiles []string
	requiredArchitectures  []string
}

func parseInfoPlistOptions(args []string) (infoPlistOptions, error) {
	var o infoPlistOptions
	a := &arguments{args: args}
	for {
		arg, ok := a.next()
		if !ok {
			break
		}
		var err error
		switch arg {
		case "-o":
			o.output, err = a.value(arg)
		case "-format":
			o.format, err = a.value(arg)
		case "-genpkginfo":
			o.genPkgInfo, err = a.value(arg)
		case "-resourcerulesfile":
			o.resourceRulesFile, err = a.value(arg)
		case "-platform":
			o.platform, err = a.value(arg)
		case "-expandbuildsettings":
			o.expandBuildSettings = true
		case "-infofilekeys":
			o.infoFileKeys, err = a.value(arg)
		case "-infofilevalues":
			o.infoFileValues, err = a.value(arg)
		case "-additionalcontentfile":
			var v string
			v, err = a.value(arg)
			o.additionalContentFiles = append(o.additionalContentFiles, v)
		case "-requiredArchitecture":
			var v string
			v, err = a.value(arg)
			o.requiredArchitectures = append(o.requiredArchitectures, v)
		default:
			if arg == "" || strings.HasPrefix(arg, "-") {
				return o, errgo.Newf("unknown argument %q", arg)
			}
			if o.input != "" {
				return o, errgo.Newf("multiple inputs: %q and %q", o.input, arg)
			}
			o.input = arg
		}
		if err != nil {
			return o, err
		}
	}
	return o, nil
}

func (*InfoPlistUtility) Run(pc *process.Context, fs filesystem.Filesystem) error {
	o, err := parseInfoPlistOptions(pc.Arguments)
	if err != nil {
		return err
	}
	if o.input == "" {
		return errgo.New("no input file specified")
	}
	if o.output == "" {
		return errgo.New("no output file specified")
	}
	switch o.format {
	case "", "same-as-input", "yaml":
	default:
		return errgo.Newf("unknown output format %s", o.format)
	}

	var settings []setting.Setting
	for k, v := range pc.Environment {
		settings = append(settings, setting.Create(k, v))
	}
	env := setting.NewEnvironment(setting.NewLevel(settings...))

	root, err := readPlist(fs, resolve(pc, o.input))
	if err != nil {
		return err
	}
	if o.expandBuildSettings {
		expandStrings(root, env)
	}

	for _, f := range o.additionalContentFiles {
		extra, err := readPlist(fs, resolve(pc, f))
		if err != nil {
			return errgo.Notef(err, "unable to read additional content file")
		}
		for i := 0; i+1 < len(extra.Content); i += 2 {
			setKey(root, extra.Content[i].Value, extra.Content[i+1])
		}
	}

	if o.infoFileKeys != "" || o.infoFileValues != "" {
		grip.Warning("info file keys and values are not supported")
	}
	addBuildEnvironment(root, env)

	if o.genPkgInfo != "" {
		p := resolve(pc, o.genPkgInfo)
		if err := fs.CreateDirectory(path.Dir(p)); err != nil {
			return errgo.Notef(err, "cannot create %s", path.Dir(p))
		}
		if err := fs.Write(p, pkgInfo(root)); err != nil {
			return errgo.Notef(err, "could not write %s", p)
		}
	}

	if o.resourceRulesFile != "" {
		if rules := env.Resolve("CODE_SIGN_RESOURCE_RULES_PATH"); rules != "" {
			data, err := fs.Read(resolve(pc, rules))
			if err != nil {
				return errgo.Notef(err, "unable to read input %s", rules)
			}
			if err := fs.Write(resolve(pc, o.resourceRulesFile), data); err != nil {
				return errgo.Notef(err, "could not write %s", o.resourceRulesFile)
			}
		}
	}

	data, err := yaml.Marshal(root)
	if err != nil {
		return errgo.Mask(err, errgo.Any)
	}
	output := resolve(pc, o.output)
	if err := fs.CreateDirectory(path.Dir(output)); err != nil {
		return errgo.Notef(err, "cannot create %s", path.Dir(output))
	}
	if err := fs.Write(output, data); err != nil {
		return errgo.Notef(err, "could not write %s", o.output)
	}
	return nil
}

// readPlist reads the mapping at the root of the document at p.
func readPlist(fs filesystem.Filesystem, p string) (*yaml.Node, error) {
	data, err := fs.Read(p)
	if err != nil {
		return nil, errgo.Notef(err, "unable to read %s", p)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errgo.Notef(err, "cannot parse %s", p)
	}
	if len(doc.Content) == 0 {
		return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errgo.Newf("%s: root is not a dictionary", p)
	}
	root.Style = 0
	return root, nil
}

// expandStrings expands the string values below n. Keys are not expanded.
func expandStrings(n *yaml.Node, env setting.Environment) {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 1; i < len(n.Content); i += 2 {
			expandStrings(n.Content[i], env)
		}
	case yaml.SequenceNode:
		for _, c := range n.Content {
			expandStrings(c, env)
		}
	case yaml.ScalarNode:
		if n.ShortTag() == "!!str" {
			n.Value = env.Expand(setting.ParseValue(n.Value))
		}
	}
}

func lookupKey(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func setKey(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, value)
}

func stringNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func addBuildEnvironment(root *yaml.Node, env setting.Environment) {
	for _, kv := range [][2]string{
		{"DTCompiler", "DEFAULT_COMPILER"},
		{"DTXcode", "XCODE_VERSION_ACTUAL"},
		{"DTXcodeBuild", "XCODE_PRODUCT_BUILD_VERSION"},
		{"BuildMachineOSBuild", "MAC_OS_X_PRODUCT_BUILD_VERSION"},
		{"DTPlatformName", "PLATFORM_NAME"},
		{"DTPlatformBuild", "PLATFORM_PRODUCT_BUILD_VERSION"},
		{"DTSDKName", "SDK_NAME"},
		{"DTSDKBuild", "SDK_PRODUCT_BUILD_VERSION"},
	} {
		setKey(root, kv[0], stringNode(env.Resolve(kv[1])))
	}

	if v := env.Resolve(env.Resolve("DEPLOYMENT_TARGET_SETTING_NAME")); v != "" {
		setKey(root, "MinimumOSVersion", stringNode(v))
	}

	if families := env.Resolve("TARGETED_DEVICE_FAMILY"); families != "" {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, f := range strings.Split(families, ",") {
			if f = strings.TrimSpace(f); f != "" {
				seq.Content = append(seq.Content, &yaml.Node{
					Kind:  yaml.ScalarNode,
					Tag:   "!!int",
					Value: strconv.FormatInt(setting.ParseInteger(f), 10),
				})
			}
		}
		setKey(root, "UIDeviceFamily", seq)
	}
}

// pkgInfo is the package type and signature of the bundle, each four
// characters, with ???? standing in for missing ones.
func pkgInfo(root *yaml.Node) []byte {
	code := func(key string) string {
		if n := lookupKey(root, key); n != nil && n.Kind == yaml.ScalarNode && len(n.Value) == 4 {
			return n.Value
		}
		return "????"
	}
	return []byte(code("CFBundlePackageType") + code("CFBundleSignature"))
}
