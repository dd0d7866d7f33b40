package phase

import (
	"github.com/juju/errgo"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"

	"github.com/vron/xcbuild/project"
	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/tool"
)

// Invocations are everything building one target runs.
type Invocations struct {
	Invocations    []*tool.Invocation
	AuxiliaryFiles []tool.AuxiliaryFile
}

// phases keeps the phases of t to run. Phases only run for deployment
// postprocessing are dropped unless it is on.
func phases(env setting.Environment, t *project.Target) []*project.Phase {
	deployment := setting.ParseBoolean(env.Resolve("DEPLOYMENT_POSTPROCESSING"))
	var out []*project.Phase
	for _, ph := range t.Phases {
		if ph.RunOnlyForDeploymentPostprocessing && !deployment {
			continue
		}
		out = append(out, ph)
	}
	return out
}

// Resolve resolves the phases of the target of env. Sources are compiled
// and linked first, then the other phases run in order, then the product
// as a whole is finished. Every phase gets a priority of its own. A phase
// failing to resolve is logged and skipped; the error returned collects
// all of them.
func Resolve(env *Environment) (*Invocations, error) {
	te := env.Target
	t := te.Target
	settings := te.Settings

	sp := tool.NewSearchPaths(env.FS, settings, te.SDK, te.WorkingDirectory)
	tc := tool.NewContext(te.SDK, te.Toolchains, te.WorkingDirectory, sp)
	c := NewContext(env, tc)
	catcher := grip.NewBasicCatcher()
	step := func(what string, err error) {
		if err != nil {
			catcher.Add(errgo.Notef(err, "cannot resolve %s of %s", what, t.Name))
		}
		tc.NextPhase()
	}

	list := phases(settings, t)
	var sources, frameworks *project.Phase
	for _, ph := range list {
		switch {
		case ph.Kind == project.PhaseSources && sources == nil:
			sources = ph
		case ph.Kind == project.PhaseFrameworks && frameworks == nil:
			frameworks = ph
		}
	}
	if sources != nil {
		step("sources", c.resolveSources(sources))
		if len(sources.Files) > 0 {
			step("linking", c.resolveFrameworks(frameworks))
		}
	}

	for _, ph := range list {
		var err error
		switch ph.Kind {
		case project.PhaseSources, project.PhaseFrameworks:
			continue
		case project.PhaseShellScript:
			err = c.resolveShellScript(ph)
		case project.PhaseCopyFiles:
			err = c.resolveCopyFiles(ph)
		case project.PhaseHeaders:
			err = c.resolveHeaders(ph)
		case project.PhaseResources:
			err = c.resolveResources(ph)
		default:
			grip.Warningf("unhandled phase kind %s of %s", ph.Kind, t.Name)
			continue
		}
		step(ph.Kind+" phase "+ph.ID, err)
	}

	switch t.Kind {
	case project.TargetNative:
		if te.ProductType != nil {
			step("product", c.resolveProductType(te.ProductType))
		}
	case project.TargetLegacy:
		r, err := c.ScriptResolver()
		if err == nil {
			r.ResolveExternal(tc, settings, t)
		}
		step("external build tool", err)
	}

	grip.Debug(message.Fields{
		"message":     "resolved phases",
		"target":      t.Name,
		"invocations": len(tc.Invocations),
		"auxiliary":   len(tc.AuxiliaryFiles),
	})
	return &Invocations{
		Invocations:    tc.Invocations,
		AuxiliaryFiles: tc.AuxiliaryFiles,
	}, catcher.Resolve()
}
