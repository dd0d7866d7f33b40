package setting

import (
	"sort"
)

// A Level is a set of settings contributed by one source, such as a target,
// an xcconfig file or a platform.
type Level struct {
	settings []Setting
}

// NewLevel creates a level holding settings. Later settings with the same
// name and condition take precedence.
func NewLevel(settings ...Setting) Level {
	return Level{settings: append([]Setting(nil), settings...)}
}

// LevelFromMap creates a level of unconditional settings parsed from m.
func LevelFromMap(m map[string]string) Level {
	names := sortedKeys(m)
	settings := make([]Setting, 0, len(m))
	for _, name := range names {
		settings = append(settings, Define(name, m[name]))
	}
	return Level{settings: settings}
}

// LevelFromInterface creates a level from a decoded document map. Keys may
// carry conditions, as in "OTHER_CFLAGS[arch=arm64]".
func LevelFromInterface(m map[string]interface{}) Level {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	settings := make([]Setting, 0, len(m))
	for _, key := range keys {
		s, ok := ParseLine(key + " =")
		if !ok || s.Name == "" {
			continue
		}
		s.Value = FromInterface(m[key])
		settings = append(settings, s)
	}
	return Level{settings: settings}
}

// Settings returns the settings of the level in definition order.
func (l Level) Settings() []Setting {
	return append([]Setting(nil), l.settings...)
}

// Len returns the number of settings.
func (l Level) Len() int {
	return len(l.settings)
}

// Get returns the value for name under the lookup condition. The most
// specific matching setting wins; on ties the last defined one.
func (l Level) Get(name string, cond Condition) (Value, bool) {
	best := -1
	for i := len(l.settings) - 1; i >= 0; i-- {
		s := l.settings[i]
		if !s.match(name, cond) {
			continue
		}
		if best < 0 || len(s.Condition) > len(l.settings[best].Condition) {
			best = i
		}
	}
	if best < 0 {
		return Value{}, false
	}
	return l.settings[best].Value, true
}
