// Package setting implements build setting values, levels of settings and the
// layered environment that expands them.
package setting

import (
	"strings"
)

// An Entry is one part of a Value: either a literal string or a nested Value
// referencing another setting.
type Entry struct {
	String string
	Value  *Value
}

// IsValue reports if the entry is a nested reference rather than a literal.
func (e Entry) IsValue() bool {
	return e.Value != nil
}

func (e Entry) equal(o Entry) bool {
	if e.IsValue() != o.IsValue() {
		return false
	}
	if e.IsValue() {
		return e.Value.Equal(*o.Value)
	}
	return e.String == o.String
}

// A Value is an immutable sequence of entries, as produced by ParseValue.
type Value struct {
	entries []Entry
}

// Empty is the value with no entries.
func Empty() Value {
	return Value{}
}

// String creates a value holding a single literal. The empty string gives the
// empty value.
func String(s string) Value {
	if s == "" {
		return Empty()
	}
	return Value{entries: []Entry{{String: s}}}
}

// Variable creates a value that references the setting name.
func Variable(name string) Value {
	inner := Value{entries: []Entry{{String: name}}}
	return Value{entries: []Entry{{Value: &inner}}}
}

// FromEntries builds a value from explicit entries.
func FromEntries(entries ...Entry) Value {
	return Value{entries: append([]Entry(nil), entries...)}
}

// Entries returns a copy of the entries of v.
func (v Value) Entries() []Entry {
	return append([]Entry(nil), v.entries...)
}

// Equal compares the structure of two values.
func (v Value) Equal(o Value) bool {
	if len(v.entries) != len(o.entries) {
		return false
	}
	for i := range v.entries {
		if !v.entries[i].equal(o.entries[i]) {
			return false
		}
	}
	return true
}

// Concat appends o to v, merging adjacent literals.
func (v Value) Concat(o Value) Value {
	entries := make([]Entry, 0, len(v.entries)+len(o.entries))
	entries = append(entries, v.entries...)
	rest := o.entries
	if len(entries) > 0 && len(rest) > 0 && !entries[len(entries)-1].IsValue() && !rest[0].IsValue() {
		entries[len(entries)-1] = Entry{String: entries[len(entries)-1].String + rest[0].String}
		rest = rest[1:]
	}
	return Value{entries: append(entries, rest...)}
}

// Raw formats the value back to text, writing every reference as $(...).
func (v Value) Raw() string {
	var sb strings.Builder
	for _, e := range v.entries {
		if e.IsValue() {
			sb.WriteString("$(")
			sb.WriteString(e.Value.Raw())
			sb.WriteString(")")
		} else {
			sb.WriteString(e.String)
		}
	}
	return sb.String()
}

type delimiter int

const (
	delimNone delimiter = iota
	delimParen
	delimBrace
	delimIdent
)

const identChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_"

// ParseValue parses the $(NAME), ${NAME} and $NAME references in s. Markers
// without a matching end are kept as literal text.
func ParseValue(s string) Value {
	v, _, _ := parseValue(s, 0, delimNone)
	return v
}

func index(s string, sub string, from int) int {
	if from > len(s) {
		return -1
	}
	i := strings.Index(s[from:], sub)
	if i < 0 {
		return -1
	}
	return i + from
}

// before reports if a is found and comes before b (or b is not found).
func before(a, b int, orEqual bool) bool {
	if a < 0 {
		return false
	}
	if b < 0 {
		return true
	}
	if orEqual {
		return a <= b
	}
	return a < b
}

func parseValue(s string, from int, end delimiter) (Value, int, bool) {
	var entries []Entry
	search, appendFrom := from, from
	for {
		to := -1
		switch end {
		case delimNone:
			to = len(s)
		case delimParen:
			to = index(s, ")", search)
		case delimBrace:
			to = index(s, "}", search)
		case delimIdent:
			to = len(s)
			if i := strings.IndexFunc(s[search:], func(r rune) bool {
				return !strings.ContainsRune(identChars, r)
			}); i >= 0 {
				to = search + i
			}
			if to == search {
				to = -1
			}
		}
		if to < 0 {
			return Value{entries: entries}, from, false
		}

		pno, cbo, ido := index(s, "$(", search), index(s, "${", search), index(s, "$", search)
		open, openLen, start := -1, 0, delimNone
		switch {
		case before(pno, ido, true) && before(pno, cbo, false):
			open, openLen, start = pno, 2, delimParen
		case before(cbo, ido, true) && before(cbo, pno, false):
			open, openLen, start = cbo, 2, delimBrace
		case before(ido, pno, false) && before(ido, cbo, false):
			open, openLen, start = ido, 1, delimIdent
		}

		if open < 0 || open >= to {
			if to > appendFrom {
				entries = append(entries, Entry{String: s[appendFrom:to]})
			}
			return Value{entries: entries}, to, true
		}

		closeLen := 1
		if start == delimIdent {
			closeLen = 0
		}
		nested, stop, found := parseValue(s, open+openLen, start)
		if !found {
			search += openLen
			continue
		}
		if open > appendFrom {
			entries = append(entries, Entry{String: s[appendFrom:open]})
		}
		inner := nested
		entries = append(entries, Entry{Value: &inner})
		appendFrom = stop + closeLen
		search = stop + closeLen
	}
}
