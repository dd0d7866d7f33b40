// Package escape quotes strings for the shell.
package escape

import "strings"

func safe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("@%_-+=:,./", r)
}

// Shell returns s unchanged if it only holds characters the shell does not
// interpret, otherwise s wrapped in single quotes.
func Shell(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, func(r rune) bool { return !safe(r) }) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// Quote is Shell except that the empty string stays empty, as used when
// expanding settings.
func Quote(s string) string {
	if s == "" {
		return s
	}
	return Shell(s)
}
