package tool

import (
	"path"
	"strings"

	"github.com/juju/errgo"

	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/spec"
)

const stringsFileType = "text.plist.strings"

// AssetCatalogResolver compiles asset catalogs into the resources of the
// product.
type AssetCatalogResolver struct {
	Compiler *spec.Compiler
}

func NewAssetCatalogResolver(r *spec.Registry, domains []string) (*AssetCatalogResolver, error) {
	c := r.Compiler(AssetCatalogIdentifier, domains)
	if c == nil {
		return nil, errgo.WithCausef(nil, ErrToolNotFound, "asset catalog compiler not found")
	}
	return &AssetCatalogResolver{Compiler: c}, nil
}

// Resolve compiles the catalogs of inputs in one invocation. Strings
// files among the inputs are passed as sticker pack strings. The partial
// information property list the compile writes is merged into the
// product's.
func (r *AssetCatalogResolver) Resolve(ctx *Context, env setting.Environment, inputs []Input) *Invocation {
	wd := ctx.WorkingDirectory
	var assets, stickers, abs []string
	for _, in := range inputs {
		if in.FileType != nil && in.FileType.Identifier == stringsFileType {
			base := strings.TrimSuffix(path.Base(in.Path), path.Ext(in.Path))
			stickers = append(stickers, base+":"+in.Localization+":"+in.Path)
		} else {
			assets = append(assets, in.Path)
		}
		abs = append(abs, resolvePath(in.Path, wd))
	}

	aenv := env.InsertFront(setting.NewLevel(
		setting.Create("ASSETCATALOG_COMPILER_INPUTS", setting.FormatList(assets)),
		setting.Create("ASSETCATALOG_COMPILER_STICKER_PACK_STRINGS", setting.FormatList(stickers)),
	), false)
	te := NewEnvironment(&r.Compiler.Tool, aenv, wd, nil, nil)
	tenv := te.Settings
	opts := NewOptions(&r.Compiler.Tool, tenv, ctx.SearchPaths, nil)

	outDir := tenv.Expand(setting.ParseValue("$(ProductResourcesDir)"))
	partial := tenv.Expand(setting.ParseValue("$(TARGET_TEMP_DIR)/assetcatalog_generated_info.plist"))
	special := []string{
		"--compile", outDir,
		"--platform", tenv.Resolve("PLATFORM_NAME"),
		"--output-partial-info-plist", partial,
	}
	if name := tenv.Resolve("DEPLOYMENT_TARGET_SETTING_NAME"); name != "" {
		if v := tenv.Resolve(name); v != "" {
			special = append(special, "--minimum-deployment-target", v)
		}
	}
	special = append(special, assets...)
	tokens := NewTokens(te, wd, opts, "", special)

	var args []string
	for _, a := range tokens.Arguments {
		if a != "" {
			args = append(args, a)
		}
	}

	var info []DependencyInfo
	if r.Compiler.DeeplyStatInputDirectories {
		info = directoryDependencies(abs)
	}
	ctx.AdditionalInfoPlistContents = append(ctx.AdditionalInfoPlistContents, partial)

	inv := &Invocation{
		Executable:       DetermineExecutable(tokens.Executable),
		Arguments:        args,
		Environment:      opts.Environment,
		WorkingDirectory: wd,
		Inputs:           abs,
		Outputs:          []string{partial},
		PhonyOutputs:     []string{outDir + "/Assets.car"},
		DependencyInfo:   info,
		LogMessage:       tokens.LogMessage,
	}
	if inv.LogMessage == "" {
		inv.LogMessage = "CompileAssetCatalog " + outDir + " " + strings.Join(assets, " ")
	}
	ctx.Add(inv)
	return inv
}
