package spec

import (
	"github.com/vron/xcbuild/setting"
)

// Option types.
const (
	OptionBoolean     = "Boolean"
	OptionString      = "String"
	OptionStringList  = "StringList"
	OptionPath        = "Path"
	OptionPathList    = "PathList"
	OptionEnumeration = "Enumeration"
)

// OtherwiseKey is the fallback entry of a per-value argument table.
const OtherwiseKey = "<<otherwise>>"

// A PropertyOption maps one build setting to command-line arguments.
type PropertyOption struct {
	Name         string
	Type         string
	DefaultValue interface{}

	CommandLineFlag        string
	CommandLineFlagIfFalse string
	CommandLinePrefixFlag  string
	CommandLineArgs        ArgsTable
	AdditionalLinkerArgs   ArgsTable

	Values        []OptionValue
	AllowedValues []OptionValue

	Condition            string
	CommandLineCondition string
	Architectures        []string
	FileTypes            []string

	SetValueInEnvironmentVariable      string
	FlattenRecursiveSearchPathsInValue bool
	IsInputDependency                  bool
	IsCommandInput                     bool
	IsCommandOutput                    bool
	OutputDependencies                 string
}

// An OptionValue is one entry of an option's Values or AllowedValues
// table.
type OptionValue struct {
	Value           string
	CommandLineFlag string
	CommandLineArgs []string
}

// An ArgsTable is either a plain list of arguments or a table of
// argument lists keyed by the option's value.
type ArgsTable struct {
	List    []string
	ByValue map[string][]string
}

// Empty reports whether the table holds no arguments at all.
func (a ArgsTable) Empty() bool {
	return a.List == nil && a.ByValue == nil
}

// Lookup returns the arguments for value: the list if the table is a list,
// otherwise the entry for value or the otherwise entry.
func (a ArgsTable) Lookup(value string) []string {
	if a.ByValue == nil {
		return a.List
	}
	if args, ok := a.ByValue[value]; ok {
		return args
	}
	return a.ByValue[OtherwiseKey]
}

// IsBoolean reports whether the option emits a single flag for YES or NO.
func (o PropertyOption) IsBoolean() bool {
	return o.Type == OptionBoolean || o.Type == "bool"
}

// IsList reports whether the option's value is split into list items.
func (o PropertyOption) IsList() bool {
	return o.Type == OptionStringList || o.Type == OptionPathList
}

// DefaultSetting returns the setting defining the option's default value.
func (o PropertyOption) DefaultSetting() (setting.Setting, bool) {
	if o.DefaultValue == nil || o.Name == "" {
		return setting.Setting{}, false
	}
	return setting.Setting{Name: o.Name, Value: setting.FromInterface(o.DefaultValue)}, true
}

// inheritOptions keeps the base order, replacing base options by derived
// ones with the same name and appending new derived options.
func inheritOptions(d *[]PropertyOption, b []PropertyOption) {
	if len(b) == 0 {
		return
	}
	options := append([]PropertyOption(nil), b...)
	index := make(map[string]int, len(options))
	for i, o := range options {
		index[o.Name] = i
	}
	for _, o := range *d {
		if i, ok := index[o.Name]; ok {
			options[i] = o
			continue
		}
		index[o.Name] = len(options)
		options = append(options, o)
	}
	*d = options
}

func optionsLevel(options []PropertyOption) setting.Level {
	var settings []setting.Setting
	for _, o := range options {
		if s, ok := o.DefaultSetting(); ok {
			settings = append(settings, s)
		}
	}
	return setting.NewLevel(settings...)
}
