// Package conf loads xcconfig files into setting levels.
package conf

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/juju/errgo"

	"github.com/vron/xcbuild/conf/parse"
	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/setting"
)

const developerPrefix = "<DEVELOPER_DIR>"

// A Config is a loaded xcconfig file with its includes loaded recursively.
type Config struct {
	Path    string
	Entries []Entry
}

// An Entry is either a setting or an included file.
type Entry struct {
	Pos     Pos
	Setting *setting.Setting
	Include *Include
}

// An Include is an include directive and the file it loaded. Config is nil
// for an optional include that did not exist.
type Include struct {
	Path   setting.Value
	Config *Config
}

type Pos struct {
	Line   int
	Column int // Column in unicode characters
	Length int // Length in unicode characters
}

// A ParseError locates a problem in a file.
type ParseError struct {
	Path string
	Pos  Pos
	Err  string
}

func (pe ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", pe.Path, pe.Pos.Line, pe.Pos.Column, pe.Err)
}

// Load reads the xcconfig at p. Include paths are expanded in env and
// resolved relative to the including file.
func Load(fs filesystem.Filesystem, env setting.Environment, p string) (*Config, error) {
	return load(fs, env, fs.ResolvePath(p), map[string]bool{})
}

func load(fs filesystem.Filesystem, env setting.Environment, p string, loading map[string]bool) (*Config, error) {
	if loading[p] {
		return nil, errgo.Newf("%s includes itself", p)
	}
	loading[p] = true
	defer delete(loading, p)

	data, err := fs.Read(p)
	if err != nil {
		return nil, errgo.Notef(err, "cannot read %s", p)
	}

	c := &Config{Path: p}
	var failed error
	parser := parse.New(bytes.NewReader(data))
	for stm := range parser.Statements {
		if failed != nil {
			continue
		}
		switch s := stm.(type) {
		case parse.SettingStatement:
			set := s.Setting
			c.Entries = append(c.Entries, Entry{Pos: Pos(s.Pos), Setting: &set})
		case parse.IncludeStatement:
			inc, err := c.include(fs, env, s, loading)
			if err != nil {
				failed = err
				continue
			}
			c.Entries = append(c.Entries, Entry{Pos: Pos(s.PathPos), Include: inc})
		case parse.ErrorStatement:
			failed = ParseError{Path: p, Pos: Pos(s.Pos), Err: s.Err}
		default:
			panic("unknown statement type")
		}
	}
	if failed != nil {
		return nil, failed
	}
	return c, nil
}

func (c *Config) include(fs filesystem.Filesystem, env setting.Environment, s parse.IncludeStatement, loading map[string]bool) (*Include, error) {
	value := setting.String(s.Path)
	if strings.HasPrefix(s.Path, developerPrefix) {
		value = setting.Variable("DEVELOPER_DIR").Concat(setting.String(strings.TrimPrefix(s.Path, developerPrefix)))
	}
	p := env.Expand(value)
	if !path.IsAbs(p) {
		p = path.Join(path.Dir(c.Path), p)
	}
	p = fs.ResolvePath(p)

	if s.Optional && !fs.Exists(p) {
		return &Include{Path: value}, nil
	}
	included, err := load(fs, env, p, loading)
	if err != nil {
		return nil, errgo.Notef(err, "%s:%d: included from here", c.Path, s.PathPos.Line)
	}
	return &Include{Path: value, Config: included}, nil
}

// Level flattens the config into a level, inlining included settings at
// the point of their include.
func (c *Config) Level() setting.Level {
	return setting.NewLevel(c.settings()...)
}

func (c *Config) settings() []setting.Setting {
	var settings []setting.Setting
	for _, e := range c.Entries {
		switch {
		case e.Setting != nil:
			settings = append(settings, *e.Setting)
		case e.Include != nil && e.Include.Config != nil:
			settings = append(settings, e.Include.Config.settings()...)
		}
	}
	return settings
}
