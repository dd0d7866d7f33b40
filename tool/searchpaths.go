package tool

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar"

	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/sdk"
	"github.com/vron/xcbuild/setting"
)

// SearchPaths are the directories compilers and linkers search, expanded
// against the filesystem.
type SearchPaths struct {
	Header, UserHeader, Framework, Library []string

	fs  filesystem.Filesystem
	sdk *sdk.Target
	wd  string
}

// NewSearchPaths expands the search path settings of env. Paths are made
// absolute against wd.
func NewSearchPaths(fs filesystem.Filesystem, env setting.Environment, s *sdk.Target, wd string) *SearchPaths {
	sp := &SearchPaths{fs: fs, sdk: s, wd: wd}
	list := func(names ...string) []string {
		var out []string
		for _, n := range names {
			out = append(out, env.ResolveList(n)...)
		}
		return sp.Expand(out, env)
	}
	sp.Header = list("PRODUCT_TYPE_HEADER_SEARCH_PATHS", "HEADER_SEARCH_PATHS")
	sp.UserHeader = list("USER_HEADER_SEARCH_PATHS")
	sp.Framework = list("FRAMEWORK_SEARCH_PATHS", "PRODUCT_TYPE_FRAMEWORK_SEARCH_PATHS")
	sp.Library = list("LIBRARY_SEARCH_PATHS")
	return sp
}

func hasMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

// Expand resolves each of paths. System paths move into the SDK if it
// has them, a trailing ** adds every directory below the path, and other
// patterns match the directories below their fixed prefix.
func (sp *SearchPaths) Expand(paths []string, env setting.Environment) []string {
	var out []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		recursive := false
		if strings.HasSuffix(p, "/**") {
			p = strings.TrimSuffix(p, "/**")
			recursive = true
		} else if p == "**" {
			p, recursive = ".", true
		}
		p = sp.systemPath(p, env)
		p = resolvePath(p, sp.wd)

		switch {
		case hasMeta(p):
			out = append(out, sp.match(p)...)
		case recursive && sp.fs != nil && sp.fs.IsDirectory(p):
			out = append(out, filesystem.Directories(sp.fs, p)...)
		default:
			out = append(out, p)
		}
	}
	return out
}

func (sp *SearchPaths) systemPath(p string, env setting.Environment) string {
	if !strings.HasPrefix(p, "/System") && !strings.HasPrefix(p, "/usr") {
		return p
	}
	root := env.Resolve("SDKROOT")
	if root == "" && sp.sdk != nil {
		root = sp.sdk.Path
	}
	if root == "" || sp.fs == nil {
		return p
	}
	if candidate := path.Join(root, p); sp.fs.IsDirectory(candidate) {
		return candidate
	}
	return p
}

func (sp *SearchPaths) match(pattern string) []string {
	if sp.fs == nil {
		return nil
	}
	prefix := pattern
	if i := strings.IndexAny(prefix, "*?[{"); i >= 0 {
		prefix = path.Dir(prefix[:i+1])
	}
	var out []string
	for _, dir := range filesystem.Directories(sp.fs, prefix) {
		if ok, err := doublestar.PathMatch(pattern, dir); err == nil && ok {
			out = append(out, dir)
		}
	}
	return out
}
