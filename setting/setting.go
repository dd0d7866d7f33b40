package setting

import (
	"strings"
)

// A Setting binds a name, optionally under a condition, to a value.
type Setting struct {
	Name      string
	Condition Condition
	Value     Value
}

// Create returns an unconditional setting holding the literal s.
func Create(name, s string) Setting {
	return Setting{Name: name, Value: String(s)}
}

// Define returns an unconditional setting with s parsed as a value.
func Define(name, s string) Setting {
	return Setting{Name: name, Value: ParseValue(s)}
}

// ParseLine parses "NAME[k=v][k2=v2] = value" or "NAME[k=v,k2=v2] = value".
// The second result is false if there is no assignment.
func ParseLine(line string) (Setting, bool) {
	cond := Condition{}
	rest := line
	name := ""

	eq := strings.IndexByte(line, '=')
	sq := strings.IndexByte(line, '[')
	if eq < 0 {
		return Setting{}, false
	}
	if sq < 0 || sq > eq {
		name = line[:eq]
		rest = line[eq+1:]
	} else {
		name = line[:sq]
		rest = line[sq:]
		for strings.HasPrefix(rest, "[") {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return Setting{}, false
			}
			for _, part := range strings.Split(rest[1:end], ",") {
				kv := strings.SplitN(part, "=", 2)
				if len(kv) != 2 {
					return Setting{}, false
				}
				cond[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
			}
			rest = strings.TrimLeft(rest[end+1:], " \t")
		}
		if !strings.HasPrefix(rest, "=") {
			return Setting{}, false
		}
		rest = rest[1:]
	}
	s := Setting{
		Name:  strings.TrimSpace(name),
		Value: ParseValue(strings.TrimSpace(rest)),
	}
	if len(cond) > 0 {
		s.Condition = cond
	}
	return s, true
}

func (s Setting) match(name string, cond Condition) bool {
	return s.Name == name && s.Condition.Match(cond)
}
