package phase

import (
	"github.com/juju/errgo"
	"github.com/mongodb/grip"

	"github.com/vron/xcbuild/project"
	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/tool"
)

// A Context resolves the phases of one target into its tool context.
// Resolvers are created on first use and shared by all phases.
type Context struct {
	Tool *tool.Context

	env          *Environment
	clang        *tool.ClangResolver
	copy         *tool.CopyResolver
	script       *tool.ScriptResolver
	assetCatalog *tool.AssetCatalogResolver
	infoPlist    *tool.InfoPlistResolver
	structure    *tool.StructureResolver
	tools        map[string]*tool.Resolver
}

func NewContext(env *Environment, tc *tool.Context) *Context {
	return &Context{Tool: tc, env: env, tools: map[string]*tool.Resolver{}}
}

func (c *Context) domains() []string {
	return c.env.Target.Domains
}

// ClangResolver uses the compiler named by GCC_VERSION, or clang.
func (c *Context) ClangResolver() (*tool.ClangResolver, error) {
	if c.clang == nil {
		id := c.env.Settings().Resolve("GCC_VERSION")
		r, err := tool.NewClangResolver(c.env.Build.Registry, c.domains(), id)
		if err != nil {
			return nil, errgo.Mask(err, errgo.Any)
		}
		c.clang = r
	}
	return c.clang, nil
}

func (c *Context) CopyResolver() (*tool.CopyResolver, error) {
	if c.copy == nil {
		r, err := tool.NewCopyResolver(c.env.Build.Registry, c.domains())
		if err != nil {
			return nil, errgo.Mask(err, errgo.Any)
		}
		c.copy = r
	}
	return c.copy, nil
}

func (c *Context) ScriptResolver() (*tool.ScriptResolver, error) {
	if c.script == nil {
		r, err := tool.NewScriptResolver(c.env.Build.Registry, c.domains())
		if err != nil {
			return nil, errgo.Mask(err, errgo.Any)
		}
		c.script = r
	}
	return c.script, nil
}

func (c *Context) AssetCatalogResolver() (*tool.AssetCatalogResolver, error) {
	if c.assetCatalog == nil {
		r, err := tool.NewAssetCatalogResolver(c.env.Build.Registry, c.domains())
		if err != nil {
			return nil, errgo.Mask(err, errgo.Any)
		}
		c.assetCatalog = r
	}
	return c.assetCatalog, nil
}

func (c *Context) InfoPlistResolver() (*tool.InfoPlistResolver, error) {
	if c.infoPlist == nil {
		r, err := tool.NewInfoPlistResolver(c.env.Build.Registry, c.domains())
		if err != nil {
			return nil, errgo.Mask(err, errgo.Any)
		}
		c.infoPlist = r
	}
	return c.infoPlist, nil
}

func (c *Context) StructureResolver() *tool.StructureResolver {
	if c.structure == nil {
		c.structure = tool.NewStructureResolver(c.env.Build.Registry, c.domains())
	}
	return c.structure
}

// ToolResolver resolves the tool id from its specification alone.
func (c *Context) ToolResolver(id string) (*tool.Resolver, error) {
	if r, ok := c.tools[id]; ok {
		return r, nil
	}
	r, err := tool.NewResolver(c.env.Build.Registry, c.domains(), id)
	if err != nil {
		return nil, errgo.Mask(err, errgo.Any)
	}
	c.tools[id] = r
	return r, nil
}

// A fileHandler resolves one group of files with the tool it is
// registered for.
type fileHandler func(c *Context, env setting.Environment, kind string, files []tool.Input, outputDir string) error

// fileHandlers are the tools with their own resolvers. Any other tool is
// resolved generically.
var fileHandlers = map[string]fileHandler{
	tool.AssetCatalogIdentifier: (*Context).resolveAssetCatalog,
	tool.ClangIdentifier:        (*Context).resolveClang,
	tool.CopyIdentifier:         (*Context).resolveCopy,
}

func (c *Context) resolveAssetCatalog(env setting.Environment, _ string, files []tool.Input, _ string) error {
	r, err := c.AssetCatalogResolver()
	if err != nil {
		return err
	}
	r.Resolve(c.Tool, env, files)
	return nil
}

func (c *Context) resolveClang(env setting.Environment, _ string, files []tool.Input, outputDir string) error {
	r, err := c.ClangResolver()
	if err != nil {
		return err
	}
	for _, f := range files {
		r.Resolve(c.Tool, env, f, outputDir)
	}
	return nil
}

func copyTitle(kind string) string {
	switch kind {
	case project.PhaseHeaders:
		return tool.CopyHeaderTitle
	case project.PhaseResources:
		return tool.CopyResourceTitle
	}
	return tool.CopyTitle
}

func (c *Context) resolveCopy(env setting.Environment, kind string, files []tool.Input, outputDir string) error {
	r, err := c.CopyResolver()
	if err != nil {
		return err
	}
	r.Resolve(c.Tool, env, files, outputDir, copyTitle(kind))
	return nil
}

func (c *Context) resolveGeneric(env setting.Environment, id string, files []tool.Input) error {
	r, err := c.ToolResolver(id)
	if err != nil {
		return err
	}
	r.Resolve(c.Tool, env, files, nil, "")
	return nil
}

// toolFor picks the tool processing files: the tool of their build rule if
// it accepts their file type, otherwise fallback.
func toolFor(first tool.Input, fallback string) string {
	rule := first.BuildRule
	if rule == nil || rule.Tool == nil {
		return fallback
	}
	t := rule.Tool
	types := append(append([]string(nil), t.FileTypes...), t.InputFileTypes...)
	if len(types) == 0 {
		return t.Identifier
	}
	if first.FileType == nil {
		return fallback
	}
	for _, ft := range types {
		if ft == first.FileType.Identifier {
			return t.Identifier
		}
	}
	return fallback
}

// ResolveBuildFiles resolves each group of files of a phase of kind into
// outputDir, or into its lproj below outputDir for localized files. Files
// without a build rule go to the fallback tool, or are skipped if there is
// none.
func (c *Context) ResolveBuildFiles(env setting.Environment, kind string, groups [][]tool.Input, outputDir, fallback string) error {
	for _, files := range groups {
		if len(files) == 0 {
			continue
		}
		first := files[0]
		dir := outputDir
		if first.Localization != "" {
			dir += "/" + first.Localization + ".lproj"
		}

		rule := first.BuildRule
		if rule == nil && fallback == "" {
			name := "unknown"
			if first.FileType != nil {
				name = first.FileType.Identifier
			}
			grip.Warningf("no matching build rule for %s (type %s)", first.Path, name)
			continue
		}

		if rule != nil && rule.Script != "" {
			r, err := c.ScriptResolver()
			if err != nil {
				return err
			}
			for _, f := range files {
				r.ResolveRule(c.Tool, env, f)
			}
			continue
		}

		id := toolFor(first, fallback)
		if id == "" {
			return errgo.Newf("no tool available for build rule of %s", first.Path)
		}
		var err error
		if h, ok := fileHandlers[id]; ok {
			err = h(c, env, kind, files, dir)
		} else {
			err = c.resolveGeneric(env, id, files)
		}
		if err != nil {
			return errgo.Notef(err, "cannot resolve %s", first.Path)
		}
	}
	return nil
}
