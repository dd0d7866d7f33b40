package tool

import (
	"path"
	"strings"

	"github.com/juju/errgo"

	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/headermap"
	"github.com/vron/xcbuild/project"
	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/spec"
	"github.com/vron/xcbuild/target"
)

const (
	headerFileType    = "sourcecode.c.h"
	cppHeaderFileType = "sourcecode.cpp.h"
)

// HeadermapResolver writes the header maps of a target and tells its
// compilations where they are.
type HeadermapResolver struct {
	Tool     *spec.Tool
	Compiler *spec.Compiler

	fs       filesystem.Filesystem
	registry *spec.Registry
	domains  []string
}

func NewHeadermapResolver(fs filesystem.Filesystem, r *spec.Registry, domains []string, c *spec.Compiler) (*HeadermapResolver, error) {
	t := r.Tool(HeadermapIdentifier, domains)
	if t == nil {
		return nil, errgo.WithCausef(nil, ErrToolNotFound, "headermap tool not found")
	}
	return &HeadermapResolver{Tool: t, Compiler: c, fs: fs, registry: r, domains: domains}, nil
}

func isHeader(ft *spec.FileType) bool {
	return ft != nil && (ft.Identifier == headerFileType || ft.Identifier == cppHeaderFileType)
}

// searchPaths are the directories of the sources of t, then the user
// header and header search paths, each once.
func (r *HeadermapResolver) searchPaths(env setting.Environment, t *project.Target, sp *SearchPaths, wd string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, ph := range t.Phases {
		if ph.Kind != project.PhaseSources {
			continue
		}
		for _, bf := range ph.Files {
			if bf.FileRef != nil {
				add(path.Dir(env.Expand(bf.FileRef.Resolve())))
			}
		}
	}
	if sp != nil {
		for _, p := range sp.UserHeader {
			add(resolvePath(p, wd))
		}
		for _, p := range sp.Header {
			add(resolvePath(p, wd))
		}
	}
	return out
}

func (r *HeadermapResolver) fileType(item *project.Item, p string) *spec.FileType {
	return target.ResolveFileType(r.fs, r.registry, r.domains, item, p)
}

// Resolve builds the header maps for t, unless USE_HEADERMAP is off.
func (r *HeadermapResolver) Resolve(ctx *Context, env setting.Environment, t *project.Target) {
	env = env.InsertFront(r.Compiler.DefaultSettings(), true)
	if !setting.ParseBoolean(env.Resolve("USE_HEADERMAP")) {
		return
	}
	flat := setting.ParseBoolean(env.Resolve("HEADERMAP_INCLUDES_FLAT_ENTRIES_FOR_TARGET_BEING_BUILT"))
	frameworkEntries := setting.ParseBoolean(env.Resolve("HEADERMAP_INCLUDES_FRAMEWORK_ENTRIES_FOR_ALL_PRODUCT_TYPES"))
	includeProject := setting.ParseBoolean(env.Resolve("HEADERMAP_INCLUDES_PROJECT_HEADERS"))

	var (
		targetName      = headermap.New()
		ownTarget       = headermap.New()
		projectHeaders  = headermap.New()
		allTargets      = headermap.New()
		allNonFramework = headermap.New()
		generated       = headermap.New()
	)

	for _, dir := range r.searchPaths(env, t, ctx.SearchPaths, ctx.WorkingDirectory) {
		names, err := r.fs.EnumerateDirectory(dir)
		if err != nil {
			continue
		}
		for _, name := range names {
			if ext := path.Ext(name); ext == ".h" || ext == ".hpp" {
				targetName.Add(name, dir+"/", name)
			}
		}
	}

	p := t.Project
	if p == nil {
		return
	}
	for _, root := range p.Files {
		for item := range root.Walk() {
			if item.Kind != project.KindFile && item.Kind != "" {
				continue
			}
			fp := env.Expand(item.Resolve())
			if !isHeader(r.fileType(item, fp)) {
				continue
			}
			name, dir := path.Base(fp), path.Dir(fp)+"/"
			projectHeaders.Add(name, dir, name)
			if includeProject {
				targetName.Add(name, dir, name)
			}
		}
	}

	for _, pt := range p.Targets {
		for _, ph := range pt.Phases {
			if ph.Kind != project.PhaseHeaders {
				continue
			}
			for _, bf := range ph.Files {
				if bf.FileRef == nil || (bf.FileRef.Kind != project.KindFile && bf.FileRef.Kind != "") {
					continue
				}
				fp := env.Expand(bf.FileRef.Resolve())
				if !isHeader(r.fileType(bf.FileRef, fp)) {
					continue
				}
				name, dir := path.Base(fp), path.Dir(fp)+"/"
				framework := pt.ProductName + "/" + name
				public := contains(bf.Settings.Attributes, "Public")
				private := contains(bf.Settings.Attributes, "Private")

				if pt == t {
					ownTarget.Add(name, dir, name)
					if !public && !private {
						ownTarget.Add(framework, dir, name)
						if flat {
							targetName.Add(framework, dir, name)
						}
					}
				}
				if !public && !private {
					continue
				}
				allTargets.Add(framework, dir, name)
				if frameworkEntries {
					targetName.Add(framework, dir, name)
				}
				if pt.Kind == project.TargetNative && !strings.Contains(pt.ProductType, "framework") {
					allNonFramework.Add(framework, dir, name)
					if !frameworkEntries {
						targetName.Add(framework, dir, name)
					}
				}
			}
		}
	}

	var (
		file                = env.Resolve("CPP_HEADERMAP_FILE")
		fileOwnTarget       = env.Resolve("CPP_HEADERMAP_FILE_FOR_OWN_TARGET_HEADERS")
		fileAllTargets      = env.Resolve("CPP_HEADERMAP_FILE_FOR_ALL_TARGET_HEADERS")
		fileAllNonFramework = env.Resolve("CPP_HEADERMAP_FILE_FOR_ALL_NON_FRAMEWORK_TARGET_HEADERS")
		fileGenerated       = env.Resolve("CPP_HEADERMAP_FILE_FOR_GENERATED_FILES")
		fileProject         = env.Resolve("CPP_HEADERMAP_FILE_FOR_PROJECT_FILES")
	)
	ctx.AddAuxiliary(
		AuxiliaryFile{Path: file, Contents: targetName.Bytes()},
		AuxiliaryFile{Path: fileOwnTarget, Contents: ownTarget.Bytes()},
		AuxiliaryFile{Path: fileAllTargets, Contents: allTargets.Bytes()},
		AuxiliaryFile{Path: fileAllNonFramework, Contents: allNonFramework.Bytes()},
		AuxiliaryFile{Path: fileGenerated, Contents: generated.Bytes()},
		AuxiliaryFile{Path: fileProject, Contents: projectHeaders.Bytes()},
	)

	hm := &ctx.Headermaps
	if setting.ParseBoolean(env.Resolve("ALWAYS_SEARCH_USER_PATHS")) && !setting.ParseBoolean(env.Resolve("ALWAYS_USE_SEPARATE_HEADERMAPS")) {
		hm.SystemHeadermapFiles = append(hm.SystemHeadermapFiles, file)
		return
	}
	if flat {
		hm.SystemHeadermapFiles = append(hm.SystemHeadermapFiles, fileOwnTarget)
	}
	if frameworkEntries {
		hm.SystemHeadermapFiles = append(hm.SystemHeadermapFiles, fileAllTargets)
	} else {
		hm.SystemHeadermapFiles = append(hm.SystemHeadermapFiles, fileAllNonFramework)
	}
	hm.UserHeadermapFiles = append(hm.UserHeadermapFiles, fileGenerated)
	if includeProject {
		hm.UserHeadermapFiles = append(hm.UserHeadermapFiles, fileProject)
	}
}
