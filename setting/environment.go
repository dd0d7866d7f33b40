package setting

import (
	"sort"
	"strings"
)

// An Environment is an ordered stack of levels, highest precedence first.
// Default levels always sit below the other levels. Environments are
// values: inserting a level returns a new environment and leaves the
// receiver untouched.
type Environment struct {
	levels []Level
	offset int // index of the first default level
}

// NewEnvironment creates an environment from levels, highest precedence
// first, none of them default levels.
func NewEnvironment(levels ...Level) Environment {
	return Environment{levels: append([]Level(nil), levels...), offset: len(levels)}
}

func (e Environment) insert(at int, l Level) []Level {
	levels := make([]Level, 0, len(e.levels)+1)
	levels = append(levels, e.levels[:at]...)
	levels = append(levels, l)
	return append(levels, e.levels[at:]...)
}

// InsertFront adds l with the highest precedence of its kind.
func (e Environment) InsertFront(l Level, isDefault bool) Environment {
	if isDefault {
		return Environment{levels: e.insert(e.offset, l), offset: e.offset}
	}
	return Environment{levels: e.insert(0, l), offset: e.offset + 1}
}

// InsertBack adds l with the lowest precedence of its kind.
func (e Environment) InsertBack(l Level, isDefault bool) Environment {
	if isDefault {
		return Environment{levels: e.insert(len(e.levels), l), offset: e.offset}
	}
	return Environment{levels: e.insert(e.offset, l), offset: e.offset + 1}
}

// Levels returns the levels, highest precedence first.
func (e Environment) Levels() []Level {
	return append([]Level(nil), e.levels...)
}

// Resolve expands the setting name. Unknown settings give "".
func (e Environment) Resolve(name string) string {
	return e.ResolveCondition(name, nil)
}

// ResolveCondition expands the setting name under cond, falling back to an
// unconditional lookup.
func (e Environment) ResolveCondition(name string, cond Condition) string {
	r := resolver{env: e, cond: cond, active: map[string]bool{}}
	return r.assignment(name)
}

// ResolveList resolves name and splits it as a list.
func (e Environment) ResolveList(name string) []string {
	return ParseList(e.Resolve(name))
}

// Expand expands v against the environment.
func (e Environment) Expand(v Value) string {
	return e.ExpandCondition(v, nil)
}

// ExpandCondition expands v against the environment under cond.
func (e Environment) ExpandCondition(v Value, cond Condition) string {
	r := resolver{env: e, cond: cond, active: map[string]bool{}}
	return r.value(v, inheritance{})
}

// ComputeValues resolves every setting defined in any level.
func (e Environment) ComputeValues(cond Condition) map[string]string {
	values := map[string]string{}
	for _, l := range e.levels {
		for _, s := range l.settings {
			if _, ok := values[s.Name]; !ok {
				values[s.Name] = e.ResolveCondition(s.Name, cond)
			}
		}
	}
	return values
}

// Names returns the sorted names of all defined settings.
func (e Environment) Names() []string {
	seen := map[string]bool{}
	var names []string
	for _, l := range e.levels {
		for _, s := range l.settings {
			if !seen[s.Name] {
				seen[s.Name] = true
				names = append(names, s.Name)
			}
		}
	}
	sort.Strings(names)
	return names
}

type inheritance struct {
	valid   bool
	setting string
	level   int
}

type resolver struct {
	env    Environment
	cond   Condition
	active map[string]bool // settings being expanded, guards against cycles
}

func (r *resolver) value(v Value, ctx inheritance) string {
	return r.expand(v, ctx, r.cond)
}

func (r *resolver) expand(v Value, ctx inheritance, cond Condition) string {
	var sb strings.Builder
	for _, e := range v.entries {
		if !e.IsValue() {
			sb.WriteString(e.String)
			continue
		}
		ref := r.expand(*e.Value, ctx, cond)
		if ctx.valid && (ref == ctx.setting || ref == "inherited") {
			sb.WriteString(r.inherited(ctx, cond))
			continue
		}
		parts := strings.Split(ref, ":")
		resolved := r.assignmentCondition(parts[0], cond)
		for _, op := range parts[1:] {
			resolved = applyOperation(resolved, op)
		}
		sb.WriteString(resolved)
	}
	return sb.String()
}

func (r *resolver) inherited(ctx inheritance, cond Condition) string {
	for i := ctx.level + 1; i < len(r.env.levels); i++ {
		if v, ok := r.env.levels[i].Get(ctx.setting, cond); ok {
			return r.expand(v, inheritance{valid: true, setting: ctx.setting, level: i}, cond)
		}
	}
	return ""
}

func (r *resolver) assignment(name string) string {
	return r.assignmentCondition(name, r.cond)
}

func (r *resolver) assignmentCondition(name string, cond Condition) string {
	if r.active[name] {
		return ""
	}
	r.active[name] = true
	defer delete(r.active, name)
	return r.lookup(name, cond)
}

func (r *resolver) lookup(name string, cond Condition) string {
	for i, l := range r.env.levels {
		if v, ok := l.Get(name, cond); ok {
			return r.expand(v, inheritance{valid: true, setting: name, level: i}, cond)
		}
	}
	if len(cond) == 0 {
		return ""
	}
	return r.lookup(name, nil)
}
