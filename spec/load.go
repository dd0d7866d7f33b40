package spec

import (
	"path"
	"reflect"
	"sort"
	"strings"

	"github.com/juju/errgo"
	"github.com/mitchellh/mapstructure"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/setting"
)

var constructors = map[string]func() Specification{
	TypeArchitecture: func() Specification { return &Architecture{} },
	TypeBuildRule:    func() Specification { return &BuildRule{} },
	TypeBuildSystem:  func() Specification { return &BuildSystem{} },
	TypeCompiler:     func() Specification { return &Compiler{} },
	TypeFileType:     func() Specification { return &FileType{} },
	TypeLinker:       func() Specification { return &Linker{} },
	TypePackageType:  func() Specification { return &PackageType{} },
	TypeProductType:  func() Specification { return &ProductType{} },
	TypeTool:         func() Specification { return &Tool{} },
}

var (
	argsTableType   = reflect.TypeOf(ArgsTable{})
	optionValueType = reflect.TypeOf(OptionValue{})
)

func stringList(v interface{}) []string {
	switch t := v.(type) {
	case string:
		return setting.ParseList(t)
	case []interface{}:
		list := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				list = append(list, s)
			}
		}
		return list
	}
	return nil
}

// decodeHook turns the loosely typed document shapes of options into
// their typed form: argument tables may be a list or a map of lists, and
// value tables may list bare strings. Booleans may be spelled YES and NO.
func decodeHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	switch to {
	case argsTableType:
		switch t := data.(type) {
		case map[string]interface{}:
			table := ArgsTable{ByValue: map[string][]string{}}
			for k, v := range t {
				table.ByValue[k] = stringList(v)
			}
			return table, nil
		case []interface{}, string:
			return ArgsTable{List: stringList(t)}, nil
		}
	case optionValueType:
		if s, ok := data.(string); ok {
			return OptionValue{Value: s}, nil
		}
	}
	if s, ok := data.(string); ok && to.Kind() == reflect.Bool {
		return setting.ParseBoolean(s), nil
	}
	return data, nil
}

// Decode converts one decoded document record into a specification. The
// record's Type field selects the concrete type.
func Decode(record map[string]interface{}) (Specification, error) {
	typ, _ := record["Type"].(string)
	construct, ok := constructors[typ]
	if !ok {
		return nil, errgo.Newf("unknown specification type '%s'", typ)
	}
	s := construct()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       decodeHook,
		WeaklyTypedInput: true,
		Result:           s,
	})
	if err != nil {
		return nil, errgo.Mask(err)
	}
	if err := decoder.Decode(record); err != nil {
		return nil, errgo.Notef(err, "cannot decode %s specification", typ)
	}
	return s, nil
}

// Parse decodes a document holding a list of specification records for
// domain.
func Parse(data []byte, domain string) ([]Specification, error) {
	var records []map[string]interface{}
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, errgo.Mask(err)
	}
	specs := make([]Specification, 0, len(records))
	for i, r := range records {
		s, err := Decode(r)
		if err != nil {
			return nil, errgo.Notef(err, "record %d", i)
		}
		s.Meta().Domain = domain
		specs = append(specs, s)
	}
	return specs, nil
}

// A Domain is a directory of specification files registered under a name.
type Domain struct {
	Name string
	Path string
}

// Domains lists the domains below root: files directly in root belong to
// the default domain and every subdirectory is a domain of its own name.
func Domains(fs filesystem.Filesystem, root string) ([]Domain, error) {
	names, err := fs.EnumerateDirectory(root)
	if err != nil {
		return nil, errgo.Notef(err, "cannot list specifications in %s", root)
	}
	domains := []Domain{{Name: DefaultDomain, Path: root}}
	for _, name := range names {
		p := path.Join(root, name)
		if fs.IsDirectory(p) {
			domains = append(domains, Domain{Name: name, Path: p})
		}
	}
	return domains, nil
}

type specFile struct {
	domain string
	path   string
	specs  []Specification
}

// Load reads every .yaml specification file of domains, registers the
// records and applies inheritance. Files are parsed concurrently and
// registered in domain then file name order.
func Load(fs filesystem.Filesystem, domains []Domain) (*Registry, error) {
	var files []*specFile
	for _, d := range domains {
		names, err := fs.EnumerateDirectory(d.Path)
		if err != nil {
			return nil, errgo.Notef(err, "cannot list specifications in %s", d.Path)
		}
		sort.Strings(names)
		for _, name := range names {
			if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
				continue
			}
			p := path.Join(d.Path, name)
			if fs.IsDirectory(p) {
				continue
			}
			files = append(files, &specFile{domain: d.Name, path: p})
		}
	}

	var g errgroup.Group
	for _, f := range files {
		g.Go(func() error {
			data, err := fs.Read(f.path)
			if err != nil {
				return errgo.Notef(err, "cannot read %s", f.path)
			}
			if f.specs, err = Parse(data, f.domain); err != nil {
				return errgo.Notef(err, "in %s", f.path)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r := NewRegistry()
	catcher := grip.NewBasicCatcher()
	count := 0
	for _, f := range files {
		for _, s := range f.specs {
			catcher.Add(r.Add(s))
			count++
		}
	}
	catcher.Add(r.Inherit())
	grip.Debug(message.Fields{
		"message":        "loaded specifications",
		"files":          len(files),
		"specifications": count,
		"domains":        r.Domains(),
	})
	return r, catcher.Resolve()
}
