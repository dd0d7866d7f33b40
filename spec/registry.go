package spec

import (
	"strings"

	"github.com/juju/errgo"
	"github.com/mongodb/grip"
)

type registryKey struct {
	domain string
	typ    string
}

// A Registry indexes specifications by domain and type. It is filled once
// and then only read.
type Registry struct {
	specs   map[registryKey][]Specification
	domains []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: map[registryKey][]Specification{}}
}

// Add registers s. Registering the same identifier twice for one domain and
// type is an error.
func (r *Registry) Add(s Specification) error {
	b := s.Meta()
	if b.Identifier == "" {
		return errgo.Newf("%s specification without identifier in domain %s", s.Type(), b.Domain)
	}
	if b.Domain == "" {
		b.Domain = DefaultDomain
	}
	k := registryKey{b.Domain, s.Type()}
	for _, o := range r.specs[k] {
		if o.Meta().Identifier == b.Identifier {
			return errgo.Newf("registering %s specification '%s' in domain %s twice", s.Type(), b.Identifier, b.Domain)
		}
	}
	if !r.hasDomain(b.Domain) {
		r.domains = append(r.domains, b.Domain)
	}
	r.specs[k] = append(r.specs[k], s)
	return nil
}

func (r *Registry) hasDomain(domain string) bool {
	for _, d := range r.domains {
		if d == domain {
			return true
		}
	}
	return false
}

// Domains returns the registered domains in registration order.
func (r *Registry) Domains() []string {
	return append([]string(nil), r.domains...)
}

// searchDomains appends the default domain to domains if missing.
func searchDomains(domains []string) []string {
	for _, d := range domains {
		if d == DefaultDomain {
			return domains
		}
	}
	return append(append([]string(nil), domains...), DefaultDomain)
}

// Find returns the specification of type typ named identifier. Domains
// are searched in order, then the default domain; within a domain later
// registrations win.
func (r *Registry) Find(typ, identifier string, domains []string) Specification {
	for _, d := range searchDomains(domains) {
		list := r.specs[registryKey{d, typ}]
		for i := len(list) - 1; i >= 0; i-- {
			if list[i].Meta().Identifier == identifier {
				return list[i]
			}
		}
	}
	return nil
}

// All returns the specifications of type typ in domains, in search order.
// Specifications hidden by one with the same identifier in an earlier
// domain are left out.
func (r *Registry) All(typ string, domains []string) []Specification {
	var all []Specification
	seen := map[string]bool{}
	for _, d := range searchDomains(domains) {
		list := r.specs[registryKey{d, typ}]
		for i := len(list) - 1; i >= 0; i-- {
			id := list[i].Meta().Identifier
			if seen[id] {
				continue
			}
			seen[id] = true
			all = append(all, list[i])
		}
	}
	return all
}

func find[T Specification](r *Registry, typ, identifier string, domains []string) T {
	var zero T
	s, ok := r.Find(typ, identifier, domains).(T)
	if !ok {
		return zero
	}
	return s
}

func all[T Specification](r *Registry, typ string, domains []string) []T {
	var list []T
	for _, s := range r.All(typ, domains) {
		if t, ok := s.(T); ok {
			list = append(list, t)
		}
	}
	return list
}

func (r *Registry) Tool(id string, domains []string) *Tool {
	return find[*Tool](r, TypeTool, id, domains)
}

func (r *Registry) Compiler(id string, domains []string) *Compiler {
	return find[*Compiler](r, TypeCompiler, id, domains)
}

func (r *Registry) Linker(id string, domains []string) *Linker {
	return find[*Linker](r, TypeLinker, id, domains)
}

func (r *Registry) FileType(id string, domains []string) *FileType {
	return find[*FileType](r, TypeFileType, id, domains)
}

func (r *Registry) ProductType(id string, domains []string) *ProductType {
	return find[*ProductType](r, TypeProductType, id, domains)
}

func (r *Registry) PackageType(id string, domains []string) *PackageType {
	return find[*PackageType](r, TypePackageType, id, domains)
}

func (r *Registry) BuildSystem(id string, domains []string) *BuildSystem {
	return find[*BuildSystem](r, TypeBuildSystem, id, domains)
}

func (r *Registry) Architecture(id string, domains []string) *Architecture {
	return find[*Architecture](r, TypeArchitecture, id, domains)
}

func (r *Registry) Architectures(domains []string) []*Architecture {
	return all[*Architecture](r, TypeArchitecture, domains)
}

func (r *Registry) FileTypes(domains []string) []*FileType {
	return all[*FileType](r, TypeFileType, domains)
}

func (r *Registry) Compilers(domains []string) []*Compiler {
	return all[*Compiler](r, TypeCompiler, domains)
}

func (r *Registry) BuildRules(domains []string) []*BuildRule {
	return all[*BuildRule](r, TypeBuildRule, domains)
}

// AnyTool finds a tool, compiler or linker and returns its tool part.
func (r *Registry) AnyTool(id string, domains []string) *Tool {
	if c := r.Compiler(id, domains); c != nil {
		return &c.Tool
	}
	if l := r.Linker(id, domains); l != nil {
		return &l.Tool
	}
	return r.Tool(id, domains)
}

// SynthesizedBuildRules returns a build rule for every tool that asks for
// one, routing its input file types to it.
func (r *Registry) SynthesizedBuildRules(domains []string) []*BuildRule {
	var rules []*BuildRule
	add := func(t *Tool) {
		if t.SynthesizeBuildRule && len(t.InputFileTypes) > 0 {
			rules = append(rules, &BuildRule{
				Base:         Base{Identifier: t.Identifier, Name: t.Name, Domain: t.Domain},
				FileTypes:    t.InputFileTypes,
				CompilerSpec: t.Identifier,
			})
		}
	}
	for _, c := range r.Compilers(domains) {
		add(&c.Tool)
	}
	for _, l := range all[*Linker](r, TypeLinker, domains) {
		add(&l.Tool)
	}
	for _, t := range all[*Tool](r, TypeTool, domains) {
		add(t)
	}
	return rules
}

// Inherit applies BasedOn inheritance to every registered specification,
// bases first. A base named "domain:identifier" is looked up in that
// domain, otherwise in the specification's own domain; failing that any
// domain is searched.
func (r *Registry) Inherit() error {
	catcher := grip.NewBasicCatcher()
	for _, d := range r.domains {
		for _, typ := range types {
			for _, s := range r.specs[registryKey{d, typ}] {
				catcher.Add(r.inherit(s, nil))
			}
		}
	}
	return catcher.Resolve()
}

func (r *Registry) baseOf(s Specification) Specification {
	b := s.Meta()
	domain, id := b.Domain, b.BasedOn
	if i := strings.IndexByte(b.BasedOn, ':'); i >= 0 {
		domain, id = b.BasedOn[:i], b.BasedOn[i+1:]
	}
	if base := r.Find(s.Type(), id, []string{domain}); base != nil && base != s {
		return base
	}
	for _, d := range r.domains {
		list := r.specs[registryKey{d, s.Type()}]
		for i := len(list) - 1; i >= 0; i-- {
			if list[i] != s && list[i].Meta().Identifier == id {
				return list[i]
			}
		}
	}
	return nil
}

func (r *Registry) inherit(s Specification, chain []Specification) error {
	b := s.Meta()
	if b.inherited || b.BasedOn == "" {
		return nil
	}
	for _, c := range chain {
		if c == s {
			return errgo.Newf("%s specification '%s' inherits from itself", s.Type(), b.Identifier)
		}
	}
	base := r.baseOf(s)
	if base == nil {
		return errgo.Newf("cannot find base %s specification '%s' of '%s'", s.Type(), b.BasedOn, b.Identifier)
	}
	if err := r.inherit(base, append(chain, s)); err != nil {
		return err
	}
	s.Inherit(base)
	b.base = base
	b.inherited = true
	return nil
}
