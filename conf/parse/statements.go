package parse

import (
	"github.com/vron/xcbuild/conf/lex"
	"github.com/vron/xcbuild/setting"
)

// A Statement represents part of an xcconfig file.
type Statement interface {
	String() string
}

// A SettingStatement assigns a value to a setting.
type SettingStatement struct {
	Setting setting.Setting
	Pos     lex.Pos
}

// An IncludeStatement represents the inclusion of another file.
type IncludeStatement struct {
	Path     string
	PathPos  lex.Pos
	Optional bool
}

// A ErrorStatement reports an error occuring during the parsing
type ErrorStatement struct {
	Err string
	Pos lex.Pos
}

func (es ErrorStatement) String() string {
	return "err:" + es.Err
}

func (ss SettingStatement) String() string {
	return "set:" + ss.Setting.Name + ss.Setting.Condition.String() + " = " + ss.Setting.Value.Raw()
}

func (is IncludeStatement) String() string {
	s := "#include"
	if is.Optional {
		s += "?"
	}
	return "inc:" + s + ` "` + is.Path + `"`
}
