package tool

import (
	"strings"

	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/spec"
)

const defaultCommandLine = "[exec-path] [options] [special-args]"

// Tokens is a tool's command line template filled in.
type Tokens struct {
	Executable string
	Arguments  []string
	LogMessage string
}

// NewTokens fills the command line template of the tool of env. The
// executable replaces the tool's ExecPath when not empty.
func NewTokens(env *Environment, wd string, options *Options, executable string, special []string) *Tokens {
	t := env.Tool
	if executable == "" {
		executable = env.Settings.Expand(setting.ParseValue(t.ExecPath))
	}

	template := t.CommandLine
	if template == "" {
		template = defaultCommandLine
	}
	var opts []string
	if options != nil {
		opts = options.Arguments
	}
	inputs := env.InputPaths(wd)
	outputs := env.OutputPaths(wd)

	var tokens []string
	for _, word := range strings.Fields(template) {
		switch word {
		case "[exec-path]":
			tokens = append(tokens, executable)
		case "[options]":
			tokens = append(tokens, opts...)
		case "[special-args]":
			tokens = append(tokens, special...)
		case "[input]":
			tokens = append(tokens, first(inputs)...)
		case "[inputs]":
			tokens = append(tokens, inputs...)
		case "[output]":
			tokens = append(tokens, first(outputs)...)
		case "[outputs]":
			tokens = append(tokens, outputs...)
		default:
			tokens = append(tokens, env.Settings.Expand(setting.ParseValue(word)))
		}
	}

	out := &Tokens{LogMessage: logMessage(t, env, inputs, outputs)}
	if len(tokens) > 0 {
		out.Executable = tokens[0]
		out.Arguments = tokens[1:]
	}
	return out
}

func first(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s[:1]
}

func logMessage(t *spec.Tool, env *Environment, inputs, outputs []string) string {
	rule := t.RuleName
	if rule == "" {
		rule = t.RuleFormat
	}
	if rule == "" {
		return ""
	}
	var words []string
	for _, w := range strings.Fields(env.Settings.Expand(setting.ParseValue(rule))) {
		switch w {
		case "[input]":
			words = append(words, first(inputs)...)
		case "[inputs]":
			words = append(words, inputs...)
		case "[output]":
			words = append(words, first(outputs)...)
		case "[outputs]":
			words = append(words, outputs...)
		default:
			words = append(words, w)
		}
	}
	return strings.Join(words, " ")
}
