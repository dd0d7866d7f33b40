package phase

import (
	"path"

	"github.com/mongodb/grip"

	"github.com/vron/xcbuild/project"
	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/tool"
)

// resolveResources processes resources into the unlocalized resources
// folder of the product, copying files no rule applies to.
func (c *Context) resolveResources(ph *project.Phase) error {
	env := c.env.Settings()
	dir := env.Resolve("BUILT_PRODUCTS_DIR") + "/" + env.Resolve("UNLOCALIZED_RESOURCES_FOLDER_PATH")
	groups := Group(c.env.ResolveBuildFiles(env, ph.Files))
	return c.ResolveBuildFiles(env, ph.Kind, groups, dir, tool.CopyIdentifier)
}

// resolveHeaders copies public and private headers into the product.
// Project headers are not copied.
func (c *Context) resolveHeaders(ph *project.Phase) error {
	r, err := c.CopyResolver()
	if err != nil {
		return err
	}
	env := c.env.Settings()
	build := env.Resolve("TARGET_BUILD_DIR")
	public := build + "/" + env.Resolve("PUBLIC_HEADERS_FOLDER_PATH")
	private := build + "/" + env.Resolve("PRIVATE_HEADERS_FOLDER_PATH")

	for _, f := range c.env.ResolveBuildFiles(env, ph.Files) {
		switch {
		case f.HasAttribute("Public"):
			r.Resolve(c.Tool, env, []tool.Input{f}, public, tool.CopyHeaderTitle)
		case f.HasAttribute("Private"):
			r.Resolve(c.Tool, env, []tool.Input{f}, private, tool.CopyHeaderTitle)
		}
	}
	return nil
}

// destinations are the folders copy files phases copy into.
var destinations = map[string]setting.Value{
	project.DestinationAbsolute:         setting.Empty(),
	project.DestinationWrapper:          products("CONTENTS_FOLDER_PATH"),
	project.DestinationExecutables:      products("EXECUTABLES_FOLDER_PATH"),
	project.DestinationResources:        products("UNLOCALIZED_RESOURCES_FOLDER_PATH"),
	project.DestinationPublicHeaders:    products("PUBLIC_HEADERS_FOLDER_PATH"),
	project.DestinationPrivateHeaders:   products("PRIVATE_HEADERS_FOLDER_PATH"),
	project.DestinationFrameworks:       products("FRAMEWORKS_FOLDER_PATH"),
	project.DestinationSharedFrameworks: products("SHARED_FRAMEWORKS_FOLDER_PATH"),
	project.DestinationSharedSupport:    products("SHARED_SUPPORT_FOLDER_PATH"),
	project.DestinationPlugIns:          products("PLUGINS_FOLDER_PATH"),
	project.DestinationScripts:          products("SCRIPTS_FOLDER_PATH"),
	project.DestinationJavaResources:    products("JAVA_FOLDER_PATH"),
	project.DestinationProducts:         setting.Variable("BUILT_PRODUCTS_DIR"),
}

func products(folder string) setting.Value {
	return setting.Variable("BUILT_PRODUCTS_DIR").Concat(setting.String("/")).Concat(setting.Variable(folder))
}

// Destination is the directory a copy files phase copies into.
func Destination(env setting.Environment, ph *project.Phase) (string, bool) {
	root, ok := destinations[ph.DstSubfolderSpec]
	if !ok {
		return "", false
	}
	return path.Clean(env.Expand(root) + "/" + env.Expand(setting.ParseValue(ph.DstPath))), true
}

// resolveCopyFiles copies the files of ph to its destination, applying
// build rules if APPLY_RULES_IN_COPY_FILES is set.
func (c *Context) resolveCopyFiles(ph *project.Phase) error {
	r, err := c.CopyResolver()
	if err != nil {
		return err
	}
	env := c.env.Settings()
	dir, ok := Destination(env, ph)
	if !ok {
		grip.Warningf("unknown copy files destination '%s'", ph.DstSubfolderSpec)
		return nil
	}

	files := c.env.ResolveBuildFiles(env, ph.Files)
	if setting.ParseBoolean(env.Resolve("APPLY_RULES_IN_COPY_FILES")) {
		return c.ResolveBuildFiles(env, ph.Kind, Group(files), dir, tool.CopyIdentifier)
	}
	for _, f := range files {
		r.Resolve(c.Tool, env, []tool.Input{f}, dir, tool.CopyTitle)
	}
	return nil
}

// resolveShellScript runs the script of ph.
func (c *Context) resolveShellScript(ph *project.Phase) error {
	r, err := c.ScriptResolver()
	if err != nil {
		return err
	}
	r.ResolvePhase(c.Tool, c.env.Settings(), ph)
	return nil
}
