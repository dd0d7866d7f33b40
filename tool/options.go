package tool

import (
	"strings"

	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/spec"
)

// EvaluateCondition expands expr and evaluates it as either a comparison
// with == or !=, or as a single value that holds unless it is NO.
func EvaluateCondition(env setting.Environment, expr string) bool {
	s := env.Expand(setting.ParseValue(expr))
	if lhs, rhs, ok := strings.Cut(s, " == "); ok {
		return strings.TrimSpace(lhs) == strings.TrimSpace(trimQuotes(rhs))
	}
	if lhs, rhs, ok := strings.Cut(s, " != "); ok {
		return strings.TrimSpace(lhs) != strings.TrimSpace(trimQuotes(rhs))
	}
	return strings.TrimSpace(s) != "NO"
}

func trimQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// Options are the arguments and environment a tool's property options
// produce.
type Options struct {
	Arguments   []string
	Environment map[string]string
	// LinkerArgs are passed on to linking the compiled objects.
	LinkerArgs []string
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// NewOptions evaluates the options of t against env. The file type of the
// input, if known, filters options restricted to certain file types.
func NewOptions(t *spec.Tool, env setting.Environment, sp *SearchPaths, fileType *spec.FileType) *Options {
	o := &Options{Environment: map[string]string{}}
	arch := env.Resolve("arch")

	for _, opt := range t.Options {
		if t.IsDeleted(opt.Name) {
			continue
		}
		if opt.Condition != "" && !EvaluateCondition(env, opt.Condition) {
			continue
		}
		if opt.CommandLineCondition != "" && !EvaluateCondition(env, opt.CommandLineCondition) {
			continue
		}
		if len(opt.Architectures) > 0 && !contains(opt.Architectures, arch) {
			continue
		}
		if len(opt.FileTypes) > 0 && fileType != nil && !contains(opt.FileTypes, fileType.Identifier) {
			continue
		}
		o.add(opt, env, sp)
	}

	for name, v := range t.EnvironmentVariables {
		o.Environment[name] = env.Expand(setting.ParseValue(v))
	}
	o.Environment["PATH"] = env.Resolve("PATH")
	o.Environment["DEVELOPER_DIR"] = env.Resolve("DEVELOPER_DIR")
	return o
}

func (o *Options) add(opt spec.PropertyOption, env setting.Environment, sp *SearchPaths) {
	value := env.Resolve(opt.Name)

	if opt.IsBoolean() {
		flag := opt.CommandLineFlagIfFalse
		if setting.ParseBoolean(value) {
			flag = opt.CommandLineFlag
		}
		if flag != "" {
			o.Arguments = append(o.Arguments, env.Expand(setting.ParseValue(flag)))
		}
	} else if value != "" && opt.CommandLineFlag != "" {
		o.Arguments = append(o.Arguments, optionValues(opt, env, sp, value, []string{opt.CommandLineFlag, "$(value)"})...)
	}

	for _, table := range [][]spec.OptionValue{opt.Values, opt.AllowedValues} {
		for _, v := range table {
			if v.Value != value {
				continue
			}
			args := v.CommandLineArgs
			if v.CommandLineFlag != "" {
				args = []string{v.CommandLineFlag, "$(value)"}
			}
			o.Arguments = append(o.Arguments, optionValues(opt, env, sp, value, args)...)
		}
	}

	if value != "" && opt.CommandLinePrefixFlag != "" {
		o.Arguments = append(o.Arguments, optionValues(opt, env, sp, value, []string{opt.CommandLinePrefixFlag + "$(value)"})...)
	}

	o.Arguments = append(o.Arguments, optionValues(opt, env, sp, value, opt.CommandLineArgs.Lookup(value))...)
	o.LinkerArgs = append(o.LinkerArgs, optionValues(opt, env, sp, value, opt.AdditionalLinkerArgs.Lookup(value))...)

	if opt.SetValueInEnvironmentVariable != "" {
		o.Environment[env.Expand(setting.ParseValue(opt.SetValueInEnvironmentVariable))] = value
	}
}

// optionValues expands args with $(value) bound to value. List options
// expand args once per item.
func optionValues(opt spec.PropertyOption, env setting.Environment, sp *SearchPaths, value string, args []string) []string {
	if len(args) == 0 {
		return nil
	}
	if !opt.IsList() {
		return expandArgs(env, value, args)
	}

	items := setting.ParseList(value)
	if opt.FlattenRecursiveSearchPathsInValue && sp != nil {
		items = sp.Expand(items, env)
	}
	var out []string
	for _, item := range items {
		out = append(out, expandArgs(env, item, args)...)
	}
	return out
}

func expandArgs(env setting.Environment, value string, args []string) []string {
	env = env.InsertFront(setting.NewLevel(setting.Create("value", value)), false)
	out := make([]string, 0, len(args))
	for _, a := range args {
		out = append(out, env.Expand(setting.ParseValue(a)))
	}
	return out
}
