package phase

import (
	"github.com/juju/errgo"

	"github.com/vron/xcbuild/project"
	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/tool"
)

// resolveSources compiles the sources phase. Header maps are written
// first. Files of architecture neutral tools are resolved once into
// OBJECT_FILE_DIR, the others once for every variant and architecture.
func (c *Context) resolveSources(ph *project.Phase) error {
	env := c.env.Settings()
	te := c.env.Target

	clang, err := c.ClangResolver()
	if err != nil {
		return err
	}
	hm, err := tool.NewHeadermapResolver(c.env.FS, c.env.Build.Registry, c.domains(), clang.Compiler)
	if err != nil {
		return errgo.Mask(err, errgo.Any)
	}
	hm.Resolve(c.Tool, env, c.env.ProjectTarget())

	var neutral, perArch []tool.Input
	for _, f := range c.env.ResolveBuildFiles(env, ph.Files) {
		if f.BuildRule != nil && f.BuildRule.Tool != nil && !f.BuildRule.Tool.IsArchitectureNeutral {
			perArch = append(perArch, f)
		} else {
			neutral = append(neutral, f)
		}
	}

	if err := c.ResolveBuildFiles(env, ph.Kind, Group(neutral), env.Resolve("OBJECT_FILE_DIR"), ""); err != nil {
		return err
	}

	groups := Group(perArch)
	for _, variant := range te.Variants {
		for _, arch := range te.Architectures {
			archEnv := env.InsertFront(VariantLevel(variant), false).InsertFront(ArchitectureLevel(arch), false)
			dir := archEnv.Expand(setting.ParseValue("$(OBJECT_FILE_DIR_$(variant))/$(arch)"))
			if err := c.ResolveBuildFiles(archEnv, ph.Kind, groups, dir, ""); err != nil {
				return err
			}
		}
	}
	return nil
}
