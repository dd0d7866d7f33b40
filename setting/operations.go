package setting

import (
	"path"
	"strings"

	"github.com/mongodb/grip"

	"github.com/vron/xcbuild/escape"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits   = "0123456789"
)

type operation func(string) string

var operations = map[string]operation{
	"identifier":        identifier,
	"c99extidentifier":  identifier,
	"rfc1034identifier": rfc1034Identifier,
	"quote":             escape.Quote,
	"lower":             strings.ToLower,
	"upper":             strings.ToUpper,
	"standardizepath": func(s string) string {
		if s == "" {
			return s
		}
		return path.Clean(s)
	},
	"base": func(s string) string {
		b := fileName(s)
		if i := strings.LastIndexByte(b, '.'); i >= 0 {
			return b[:i]
		}
		return b
	},
	"dir": func(s string) string {
		if i := strings.LastIndexByte(s, '/'); i >= 0 {
			return s[:i]
		}
		return ""
	},
	"file": fileName,
	"suffix": func(s string) string {
		b := fileName(s)
		if i := strings.LastIndexByte(b, '.'); i >= 0 {
			return b[i:]
		}
		return "."
	},
}

func applyOperation(value, op string) string {
	f, ok := operations[op]
	if !ok {
		grip.Warningf("unknown build setting operation '%s'", op)
		return value
	}
	return f(value)
}

func fileName(s string) string {
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}

func identifier(s string) string {
	b := []byte(s)
	for i, c := range b {
		valid := strings.IndexByte(alphabet+"_", c) >= 0
		if i > 0 {
			valid = valid || strings.IndexByte(digits, c) >= 0
		}
		if !valid {
			b[i] = '_'
		}
	}
	return string(b)
}

func rfc1034Identifier(s string) string {
	const (
		begin      = alphabet
		subsequent = alphabet + digits + "-"
		end        = alphabet + digits
	)
	b := []byte(s)
	for i := range b {
		first, last := i == 0, i == len(b)-1
		if (first || last) && b[i] == '.' {
			b[i] = '-'
		}
		switch {
		case first || b[i-1] == '.':
			if strings.IndexByte(begin, b[i]) < 0 {
				b[i] = '-'
			}
		case !last && b[i+1] == '.':
			if strings.IndexByte(subsequent, b[i]) < 0 {
				b[i] = '-'
			}
		default:
			if strings.IndexByte(end, b[i]) < 0 {
				b[i] = '-'
			}
		}
	}
	return string(b)
}
