package phase

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar"
	"github.com/google/shlex"
	"github.com/mongodb/grip"

	"github.com/vron/xcbuild/project"
	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/target"
	"github.com/vron/xcbuild/tool"
)

// matchesAny reports whether the base name or the whole of p matches one of
// patterns.
func matchesAny(patterns []string, p string) bool {
	base := path.Base(p)
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, base); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, p); err == nil && ok {
			return true
		}
	}
	return false
}

// fileFilter drops files named by EXCLUDED_SOURCE_FILE_NAMES unless
// INCLUDED_SOURCE_FILE_NAMES names them again.
type fileFilter struct {
	excluded, included []string
}

func newFileFilter(env setting.Environment) fileFilter {
	return fileFilter{
		excluded: env.ResolveList("EXCLUDED_SOURCE_FILE_NAMES"),
		included: env.ResolveList("INCLUDED_SOURCE_FILE_NAMES"),
	}
}

func (f fileFilter) skip(p string) bool {
	return len(f.excluded) > 0 && matchesAny(f.excluded, p) && !matchesAny(f.included, p)
}

func compilerFlags(bf *project.BuildFile) []string {
	if bf.Settings.CompilerFlags == "" {
		return nil
	}
	flags, err := shlex.Split(bf.Settings.CompilerFlags)
	if err != nil {
		grip.Warningf("cannot split compiler flags of %s: %s", bf.File, err)
		return strings.Fields(bf.Settings.CompilerFlags)
	}
	return flags
}

// localization is the region of a file in a variant group: the name of the
// file reference, or the name of the lproj directory it is in.
func localization(item *project.Item) string {
	if item.Name != "" && !strings.Contains(item.Name, ".") {
		return item.Name
	}
	dir := path.Base(path.Dir(item.Path))
	if strings.HasSuffix(dir, ".lproj") {
		return strings.TrimSuffix(dir, ".lproj")
	}
	return item.Name
}

func (e *Environment) input(env setting.Environment, bf *project.BuildFile, item *project.Item) tool.Input {
	te := e.Target
	p := env.Expand(item.Resolve())
	ft := target.ResolveFileType(e.FS, e.Build.Registry, te.Domains, item, p)
	in := tool.Input{
		Path:          p,
		FileType:      ft,
		Disambiguator: te.Disambiguation[bf],
		Attributes:    bf.Settings.Attributes,
		CompilerFlags: compilerFlags(bf),
	}
	if te.BuildRules != nil {
		in.BuildRule = te.BuildRules.Resolve(ft, p)
	}
	return in
}

// ResolveBuildFiles turns the build files of a phase into inputs, each with
// its file type and build rule. Variant groups give one input for each of
// their localizations.
func (e *Environment) ResolveBuildFiles(env setting.Environment, files []*project.BuildFile) []tool.Input {
	filter := newFileFilter(env)
	var out []tool.Input
	for _, bf := range files {
		item := bf.FileRef
		if item == nil {
			grip.Warningf("build phase input %s does not reference a file", bf.File)
			continue
		}
		switch item.Kind {
		case project.KindFile, "":
			in := e.input(env, bf, item)
			if filter.skip(in.Path) {
				continue
			}
			out = append(out, in)
		case project.KindVariantGroup:
			for _, child := range item.Children {
				if child.Kind != project.KindFile && child.Kind != "" {
					continue
				}
				in := e.input(env, bf, child)
				if filter.skip(in.Path) {
					continue
				}
				in.Localization = localization(child)
				in.LocalizationGroup = bf.ID
				out = append(out, in)
			}
		default:
			grip.Warningf("unhandled group item kind %s of %s", item.Kind, bf.File)
		}
	}
	return out
}
