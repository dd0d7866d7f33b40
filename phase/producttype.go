package phase

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/mongodb/grip"

	"github.com/vron/xcbuild/project"
	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/spec"
	"github.com/vron/xcbuild/tool"
)

// Product types with a structure of their own.
const (
	ProductTypeBundle    = "com.apple.product-type.bundle"
	ProductTypeFramework = "com.apple.product-type.framework"
)

func isA(pt *spec.ProductType, id string) bool {
	for s := spec.Specification(pt); s != nil; s = s.Meta().Super() {
		if s.Meta().Identifier == id {
			return true
		}
	}
	return false
}

// populated returns the directories of dirs some invocation writes into.
func populated(invocations []*tool.Invocation, dirs []string) []string {
	found := map[string]bool{}
	for _, inv := range invocations {
		for _, o := range inv.Outputs {
			for _, d := range dirs {
				if strings.HasPrefix(o, d+"/") {
					found[d] = true
				}
			}
		}
	}
	return sortedKeys(found)
}

func relative(p, base string) string {
	rel, err := filepath.Rel(base, p)
	if err != nil {
		return p
	}
	return filepath.ToSlash(rel)
}

// bundleFolders name the folders of a bundle created when something is
// put in them.
var bundleFolders = []string{
	"CONTENTS_FOLDER_PATH",
	"EXECUTABLE_FOLDER_PATH",
	"PUBLIC_HEADERS_FOLDER_PATH",
	"PRIVATE_HEADERS_FOLDER_PATH",
	"UNLOCALIZED_RESOURCES_FOLDER_PATH",
	"PLUGINS_FOLDER_PATH",
}

func (c *Context) resolveBundleStructure(env setting.Environment) {
	build := env.Resolve("TARGET_BUILD_DIR")
	root := build + "/" + env.Resolve("WRAPPER_NAME")

	var dirs []string
	for _, name := range bundleFolders {
		dirs = append(dirs, build+"/"+env.Resolve(name))
	}
	for _, dir := range populated(c.Tool.Invocations, dirs) {
		if dir == root {
			continue
		}
		if _, err := c.StructureResolver().MakeDirectory(c.Tool, dir, true); err != nil {
			grip.Warning(err)
		}
	}
}

// Framework links from the root of the framework into the current
// version.
const (
	linkPublicHeaders  = "PublicHeaders"
	linkPrivateHeaders = "PrivateHeaders"
	linkXPCServices    = "XPCServices"
	linkResources      = "Resources"
	linkPlugins        = "Plugins"
	linkModules        = "Modules"
	linkInfoPlist      = "InfoPlist"
	linkExecutable     = "Executable"
)

var frameworkLinks = []struct {
	name  string
	value setting.Value
}{
	{linkPublicHeaders, setting.Variable("PUBLIC_HEADERS_FOLDER_PATH")},
	{linkPrivateHeaders, setting.Variable("PRIVATE_HEADERS_FOLDER_PATH")},
	{linkXPCServices, setting.Variable("XPCSERVICES_FOLDER_PATH")},
	{linkResources, setting.Variable("UNLOCALIZED_RESOURCES_FOLDER_PATH")},
	{linkPlugins, setting.Variable("PLUGINS_FOLDER_PATH")},
	{linkModules, setting.ParseValue("$(CONTENTS_FOLDER_PATH)/Modules")},
	{linkInfoPlist, setting.Variable("INFOPLIST_PATH")},
	{linkExecutable, setting.Variable("EXECUTABLE_PATH")},
}

// frameworkLinksNeeded decides which links a framework needs from what it
// contains.
func (c *Context) frameworkLinksNeeded(env setting.Environment, t *project.Target) map[string]bool {
	need := map[string]bool{}
	if setting.ParseBoolean(env.Resolve("DEFINES_MODULE")) {
		need[linkModules] = true
	}
	if env.Resolve("INFOPLIST_FILE") != "" {
		need[linkInfoPlist] = true
		need[linkResources] = true
	}
	plugins := env.Resolve("TARGET_BUILD_DIR") + "/" + env.Resolve("PLUGINS_FOLDER_PATH")
	if len(populated(c.Tool.Invocations, []string{plugins})) > 0 {
		need[linkPlugins] = true
	}

	for _, ph := range t.Phases {
		switch ph.Kind {
		case project.PhaseCopyFiles:
			if ph.DstSubfolderSpec == project.DestinationProducts && ph.DstPath == "$(CONTENTS_FOLDER_PATH)/XPCServices" {
				need[linkXPCServices] = true
			}
		case project.PhaseSources:
			if len(ph.Files) > 0 {
				need[linkExecutable] = true
			}
		case project.PhaseResources:
			if len(ph.Files) > 0 {
				need[linkResources] = true
			}
		case project.PhaseHeaders:
			for _, bf := range ph.Files {
				for _, a := range bf.Settings.Attributes {
					switch a {
					case "Public":
						need[linkPublicHeaders] = true
					case "Private":
						need[linkPrivateHeaders] = true
					}
				}
			}
		}
	}
	return need
}

// resolveFrameworkStructure links the folders of a versioned framework
// from its root through Versions/Current.
func (c *Context) resolveFrameworkStructure(env setting.Environment, t *project.Target) error {
	if setting.ParseBoolean(env.Resolve("SHALLOW_BUNDLE")) {
		return nil
	}
	build := env.Resolve("TARGET_BUILD_DIR")
	framework := build + "/" + env.Resolve("WRAPPER_NAME")
	versions := build + "/" + env.Resolve("VERSIONS_FOLDER_PATH")
	current := versions + "/" + env.Resolve("CURRENT_VERSION")
	version := versions + "/" + env.Resolve("FRAMEWORK_VERSION")

	sr := c.StructureResolver()
	need := c.frameworkLinksNeeded(env, t)
	for _, l := range frameworkLinks {
		if !need[l.name] {
			continue
		}
		dir := build + "/" + env.Expand(l.value)
		target := current + "/" + relative(dir, version)
		link := framework + "/" + filepath.Base(dir)
		if _, err := sr.Link(c.Tool, framework, link, relative(target, framework), true); err != nil {
			return err
		}
	}
	_, err := sr.Link(c.Tool, versions, current, relative(version, versions), true)
	return err
}

// resolveInfoPlist processes INFOPLIST_FILE into the product, through the
// preprocessor first if INFOPLIST_PREPROCESS is set.
func (c *Context) resolveInfoPlist(env setting.Environment) {
	file := env.Resolve("INFOPLIST_FILE")
	if file == "" {
		return
	}
	input := tool.PathInput(file)

	if setting.ParseBoolean(env.Resolve("INFOPLIST_PREPROCESS")) {
		if cpp, err := c.ToolResolver(tool.PreprocessIdentifier); err != nil {
			grip.Warningf("cannot find preprocessor tool: %s", err)
		} else {
			intermediate := env.Resolve("TEMP_DIR") + "/Preprocessed-Info.plist"
			penv := env.InsertFront(setting.NewLevel(
				setting.Define("CPP_PREPROCESSOR_DEFINITIONS", "$(INFOPLIST_PREPROCESSOR_DEFINITIONS)"),
				setting.Define("CPP_PREFIX_HEADER", "$(INFOPLIST_PREFIX_HEADER)"),
				setting.Define("CPP_OTHER_PREPROCESSOR_FLAGS", "$(INFOPLIST_OTHER_PREPROCESSOR_FLAGS)"),
			), false)
			cpp.Resolve(c.Tool, penv, []tool.Input{input}, []string{intermediate}, "")
			input = tool.PathInput(intermediate)
		}
	}

	r, err := c.InfoPlistResolver()
	if err != nil {
		grip.Warningf("cannot find info plist tool: %s", err)
		return
	}
	r.Resolve(c.Tool, env, input)
}

// resolveProductType adds the invocations of the product as a whole: the
// bundle structure, the information property list, and a final touch of
// the wrapper once everything inside it is built.
func (c *Context) resolveProductType(pt *spec.ProductType) error {
	env := c.env.Settings()
	t := c.env.ProjectTarget()

	if isA(pt, ProductTypeBundle) {
		c.resolveBundleStructure(env)
		if isA(pt, ProductTypeFramework) {
			if err := c.resolveFrameworkStructure(env, t); err != nil {
				return err
			}
		}
	}

	if pt.HasInfoPlist {
		c.resolveInfoPlist(env)
	}

	if pt.IsWrapper {
		wrapper := env.Resolve("TARGET_BUILD_DIR") + "/" + env.Resolve("WRAPPER_NAME")
		var inside []string
		for _, inv := range c.Tool.Invocations {
			for _, o := range inv.Outputs {
				if strings.HasPrefix(o, wrapper) {
					inside = append(inside, o)
				}
			}
		}
		sort.Strings(inside)
		if _, err := c.StructureResolver().TouchProduct(c.Tool, wrapper, inside); err != nil {
			grip.Warning(err)
		}
	}
	return nil
}
