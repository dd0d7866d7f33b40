package setting

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// ParseBoolean reports if s is YES or TRUE in any case.
func ParseBoolean(s string) bool {
	return strings.EqualFold(s, "yes") || strings.EqualFold(s, "true")
}

// FormatBoolean gives YES or NO.
func FormatBoolean(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

// ParseInteger parses s with base prefix detection, giving 0 on failure.
func ParseInteger(s string) int64 {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0
	}
	return i
}

// FormatInteger formats i in base 10.
func FormatInteger(i int64) string {
	return strconv.FormatInt(i, 10)
}

// ParseList splits s on whitespace. Single or double quotes group words and
// a backslash escapes the next character.
func ParseList(s string) []string {
	var (
		entries []string
		cur     strings.Builder
		quote   rune
		escaped bool
	)
	for _, r := range s {
		if !escaped {
			switch {
			case r == '\'' || r == '"':
				if quote == 0 {
					quote = r
					continue
				}
				if r == quote {
					quote = 0
					continue
				}
			case r == '\\':
				escaped = true
				continue
			case quote == 0 && unicode.IsSpace(r):
				if cur.Len() > 0 {
					entries = append(entries, cur.String())
					cur.Reset()
				}
				continue
			}
		}
		cur.WriteRune(r)
		escaped = false
	}
	if cur.Len() > 0 {
		entries = append(entries, cur.String())
	}
	return entries
}

// FormatList joins entries with spaces, escaping what ParseList would split.
func FormatList(entries []string) string {
	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteByte(' ')
		}
		for _, r := range e {
			if r == '\\' || r == '\'' || r == '"' || unicode.IsSpace(r) {
				sb.WriteByte('\\')
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// FromInterface converts a decoded document value (string, bool, number or
// list of strings) to a setting value.
func FromInterface(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return Empty()
	case string:
		return ParseValue(t)
	case bool:
		return String(FormatBoolean(t))
	case int:
		return String(FormatInteger(int64(t)))
	case int64:
		return String(FormatInteger(t))
	case float64:
		return String(strconv.FormatFloat(t, 'g', -1, 64))
	case []string:
		var all []string
		for _, s := range t {
			all = append(all, ParseList(s)...)
		}
		return ParseValue(FormatList(all))
	case []interface{}:
		var all []string
		for _, e := range t {
			if s, ok := e.(string); ok {
				all = append(all, ParseList(s)...)
			}
		}
		return ParseValue(FormatList(all))
	}
	return Empty()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
