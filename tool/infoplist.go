package tool

import (
	"github.com/juju/errgo"

	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/spec"
)

// InfoPlistResolver processes the information property list of a target
// into its product.
type InfoPlistResolver struct {
	Tool *spec.Tool
}

func NewInfoPlistResolver(r *spec.Registry, domains []string) (*InfoPlistResolver, error) {
	t := r.Tool(InfoPlistIdentifier, domains)
	if t == nil {
		return nil, errgo.WithCausef(nil, ErrToolNotFound, "info plist tool not found")
	}
	return &InfoPlistResolver{Tool: t}, nil
}

// Resolve processes input to $(TARGET_BUILD_DIR)/$(INFOPLIST_PATH). All
// build settings go into the environment for expansion but are kept out
// of the log.
func (r *InfoPlistResolver) Resolve(ctx *Context, env setting.Environment, input Input) *Invocation {
	pkginfo := ""
	if setting.ParseBoolean(env.Resolve("GENERATE_PKGINFO_FILE")) {
		pkginfo = "$(TARGET_BUILD_DIR)/$(PKGINFO_PATH)"
	}
	penv := env.InsertFront(setting.NewLevel(
		setting.Define("GeneratedPkgInfoFile", pkginfo),
		setting.Define("ExpandBuildSettings", "$(INFOPLIST_EXPAND_BUILD_SETTINGS)"),
		setting.Define("OutputFormat", "$(INFOPLIST_OUTPUT_FORMAT)"),
		setting.Create("AdditionalContentFilePaths", setting.FormatList(ctx.AdditionalInfoPlistContents)),
	), false)

	output := env.Resolve("TARGET_BUILD_DIR") + "/" + env.Resolve("INFOPLIST_PATH")
	te := NewEnvironment(r.Tool, penv, ctx.WorkingDirectory, []Input{input}, []string{output})
	opts := NewOptions(r.Tool, te.Settings, ctx.SearchPaths, nil)
	tokens := NewTokens(te, ctx.WorkingDirectory, opts, "", nil)

	vars := map[string]string{}
	for k, v := range env.ComputeValues(nil) {
		vars[k] = v
	}
	for k, v := range opts.Environment {
		vars[k] = v
	}

	inv := newInvocation(ctx, te, tokens, opts)
	inv.Environment = vars
	inv.InputDependencies = append([]string(nil), ctx.AdditionalInfoPlistContents...)
	if pkginfo != "" {
		inv.OutputDependencies = []string{env.Expand(setting.ParseValue(pkginfo))}
	}
	ctx.Add(inv)
	return inv
}
