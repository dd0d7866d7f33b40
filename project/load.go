package project

import (
	"fmt"
	"path"
	"reflect"
	"strings"

	"github.com/juju/errgo"
	"github.com/mitchellh/mapstructure"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"gopkg.in/yaml.v3"

	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/setting"
)

func decodeHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if s, ok := data.(string); ok && to.Kind() == reflect.Bool {
		return setting.ParseBoolean(s), nil
	}
	return data, nil
}

// Parse decodes a project document. The result is not linked; use Load
// to read a project from disk.
func Parse(data []byte) (*Project, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errgo.Mask(err)
	}
	p := &Project{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       decodeHook,
		WeaklyTypedInput: true,
		Result:           p,
	})
	if err != nil {
		return nil, errgo.Mask(err)
	}
	if err := decoder.Decode(doc); err != nil {
		return nil, errgo.Mask(err)
	}
	return p, nil
}

// Load reads and links the project file at p.
func Load(fs filesystem.Filesystem, p string) (*Project, error) {
	p = fs.ResolvePath(p)
	data, err := fs.Read(p)
	if err != nil {
		return nil, errgo.Notef(err, "cannot read project %s", p)
	}
	proj, err := Parse(data)
	if err != nil {
		return nil, errgo.Notef(err, "cannot decode project %s", p)
	}
	proj.Path = p
	proj.Dir = path.Dir(p)
	if proj.Name == "" {
		proj.Name = strings.TrimSuffix(path.Base(p), path.Ext(p))
	}
	if err := proj.link(); err != nil {
		return nil, errgo.Notef(err, "in project %s", p)
	}
	grip.Debug(message.Fields{
		"message": "loaded project",
		"project": proj.Name,
		"path":    p,
		"targets": len(proj.Targets),
		"files":   len(proj.items),
	})
	return proj, nil
}

// link connects the decoded records: parents of file tree items, the files
// of build files, configuration base files and target owners.
func (p *Project) link() error {
	p.MainGroup = &Item{Kind: KindGroup, SourceTree: SourceTreeGroup, Children: p.Files}
	p.items = map[string]*Item{}
	catcher := grip.NewBasicCatcher()

	for _, c := range p.Files {
		c.Parent = p.MainGroup
	}
	for item := range p.MainGroup.Walk() {
		if item == p.MainGroup {
			continue
		}
		if item.Kind == "" {
			item.Kind = KindFile
			if item.Children != nil {
				item.Kind = KindGroup
			}
		}
		if item.SourceTree == "" {
			item.SourceTree = SourceTreeGroup
		}
		if item.ID == "" {
			item.ID = itemPath(item)
		}
		for _, c := range item.Children {
			c.Parent = item
		}
		if _, ok := p.items[item.ID]; ok {
			catcher.Errorf("duplicate file identifier '%s'", item.ID)
			continue
		}
		p.items[item.ID] = item
	}

	p.linkConfigurations(p.Configurations)
	names := map[string]bool{}
	for _, t := range p.Targets {
		t.Project = p
		if names[t.Name] {
			catcher.Errorf("duplicate target '%s'", t.Name)
		}
		names[t.Name] = true
		if t.Kind == "" {
			t.Kind = TargetNative
		}
		if t.ProductName == "" {
			t.ProductName = t.Name
		}
		p.linkConfigurations(t.Configurations)
		for n, ph := range t.Phases {
			if ph.ID == "" {
				ph.ID = fmt.Sprintf("%s-%d", t.Name, n)
			}
			for i, bf := range ph.Files {
				if bf.ID == "" {
					bf.ID = fmt.Sprintf("%s-%d-%d", t.Name, n, i)
				}
				if bf.FileRef = p.items[bf.File]; bf.FileRef == nil {
					catcher.Errorf("build file '%s' of target '%s' references unknown file '%s'", bf.ID, t.Name, bf.File)
				}
			}
		}
	}
	for _, t := range p.Targets {
		for _, d := range t.Dependencies {
			if !names[d] {
				catcher.Errorf("target '%s' depends on unknown target '%s'", t.Name, d)
			}
		}
	}
	return catcher.Resolve()
}

func (p *Project) linkConfigurations(configs []*Configuration) {
	for _, c := range configs {
		if c.BaseConfiguration == "" {
			continue
		}
		if c.BaseConfigurationRef = p.items[c.BaseConfiguration]; c.BaseConfigurationRef == nil {
			c.BaseConfigurationRef = &Item{Kind: KindFile, Path: c.BaseConfiguration, SourceTree: SourceTreeRoot}
		}
	}
}

// itemPath names an item by the group-relative path leading to it.
func itemPath(i *Item) string {
	name := i.Path
	if name == "" || i.Kind == KindVariantGroup {
		name = i.DisplayName()
	}
	if i.Parent == nil || i.Parent.ID == "" {
		return name
	}
	return i.Parent.ID + "/" + name
}
