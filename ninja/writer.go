// Package ninja writes ninja build files.
package ninja

import (
	"io"
	"strings"
	"unicode"
)

const (
	indentWidth    = 4
	maxIndentDepth = 2
	lineWidth      = 80
)

var indentString = strings.Repeat(" ", indentWidth*maxIndentDepth)

var (
	valueEscaper = strings.NewReplacer(
		"$", "$$",
		"\n", "$\n")
	pathEscaper = strings.NewReplacer(
		"$", "$$",
		"\n", "$\n",
		" ", "$ ",
		":", "$:")
)

// EscapeValue escapes s for the right hand side of a variable binding.
func EscapeValue(s string) string {
	return valueEscaper.Replace(s)
}

// EscapePath escapes s for a path in a build statement.
func EscapePath(s string) string {
	return pathEscaper.Replace(s)
}

// A Writer writes the statements of a ninja file. Paths given to Build
// and Default are escaped; values given to Assign and ScopedAssign are
// written as they are so they can refer to variables.
type Writer struct {
	writer io.StringWriter

	justDidBlankLine bool
}

func NewWriter(w io.StringWriter) *Writer {
	return &Writer{writer: w}
}

// Comment writes comment, wrapping long lines at spaces.
func (n *Writer) Comment(comment string) error {
	n.justDidBlankLine = false

	const lineHeaderLen = len("# ")
	const maxLineLen = lineWidth - lineHeaderLen

	var lineStart, lastSplitPoint int
	for i, r := range comment {
		if unicode.IsSpace(r) {
			lastSplitPoint = i + 1
		}

		var line string
		var writeLine bool
		switch {
		case r == '\n':
			line = strings.TrimRightFunc(comment[lineStart:i], unicode.IsSpace)
			writeLine = true
		case (i-lineStart > maxLineLen) && (lastSplitPoint > lineStart):
			line = strings.TrimSpace(comment[lineStart:lastSplitPoint])
			writeLine = true
		}

		if writeLine {
			if _, err := n.writer.WriteString(strings.TrimSpace("# "+line) + "\n"); err != nil {
				return err
			}
			lineStart = lastSplitPoint
		}
	}

	if lineStart != len(comment) {
		line := strings.TrimSpace(comment[lineStart:])
		if _, err := n.writer.WriteString("# " + line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func (n *Writer) Rule(name string) error {
	n.justDidBlankLine = false
	return n.writeStatement("rule", name)
}

// Build writes a build statement. Implicit outputs follow "|" after the
// outputs; implicit and order-only inputs follow "|" and "||" after the
// explicit ones.
func (n *Writer) Build(comment, rule string, outputs, implicitOuts, explicitDeps, implicitDeps, orderOnlyDeps []string) error {
	n.justDidBlankLine = false

	const lineWrapLen = len(" $")
	const maxLineLen = lineWidth - lineWrapLen

	wrapper := writerWithWrap{
		Writer:     n,
		maxLineLen: maxLineLen,
	}

	if comment != "" {
		if err := n.Comment(comment); err != nil {
			return err
		}
	}

	wrapper.WriteString("build")
	for _, output := range outputs {
		wrapper.WriteStringWithSpace(EscapePath(output))
	}
	if len(implicitOuts) > 0 {
		wrapper.WriteStringWithSpace("|")
		for _, out := range implicitOuts {
			wrapper.WriteStringWithSpace(EscapePath(out))
		}
	}

	wrapper.WriteString(":")
	wrapper.WriteStringWithSpace(rule)

	for _, dep := range explicitDeps {
		wrapper.WriteStringWithSpace(EscapePath(dep))
	}
	if len(implicitDeps) > 0 {
		wrapper.WriteStringWithSpace("|")
		for _, dep := range implicitDeps {
			wrapper.WriteStringWithSpace(EscapePath(dep))
		}
	}
	if len(orderOnlyDeps) > 0 {
		wrapper.WriteStringWithSpace("||")
		for _, dep := range orderOnlyDeps {
			wrapper.WriteStringWithSpace(EscapePath(dep))
		}
	}

	return wrapper.Flush()
}

func (n *Writer) Assign(name, value string) error {
	n.justDidBlankLine = false
	_, err := n.writer.WriteString(name + " = " + value + "\n")
	return err
}

// ScopedAssign writes an indented binding belonging to the rule or build
// statement before it.
func (n *Writer) ScopedAssign(name, value string) error {
	n.justDidBlankLine = false
	_, err := n.writer.WriteString(indentString[:indentWidth] + name + " = " + value + "\n")
	return err
}

func (n *Writer) Default(targets ...string) error {
	n.justDidBlankLine = false

	const lineWrapLen = len(" $")
	const maxLineLen = lineWidth - lineWrapLen

	wrapper := writerWithWrap{
		Writer:     n,
		maxLineLen: maxLineLen,
	}

	wrapper.WriteString("default")
	for _, target := range targets {
		wrapper.WriteStringWithSpace(EscapePath(target))
	}
	return wrapper.Flush()
}

func (n *Writer) Subninja(file string) error {
	n.justDidBlankLine = false
	return n.writeStatement("subninja", EscapePath(file))
}

func (n *Writer) Include(file string) error {
	n.justDidBlankLine = false
	return n.writeStatement("include", EscapePath(file))
}

// BlankLine writes an empty line unless the last thing written was one.
func (n *Writer) BlankLine() (err error) {
	if !n.justDidBlankLine {
		n.justDidBlankLine = true
		_, err = n.writer.WriteString("\n")
	}
	return err
}

func (n *Writer) writeStatement(directive, name string) error {
	_, err := n.writer.WriteString(directive + " " + name + "\n")
	return err
}

type writerWithWrap struct {
	*Writer
	maxLineLen int
	writtenLen int
	err        error
}

func (n *writerWithWrap) writeString(s string, space bool) {
	if n.err != nil {
		return
	}

	spaceLen := 0
	if space {
		spaceLen = 1
	}

	if n.writtenLen+len(s)+spaceLen > n.maxLineLen {
		_, n.err = n.writer.WriteString(" $\n" + indentString[:indentWidth*2])
		if n.err != nil {
			return
		}
		n.writtenLen = indentWidth * 2
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
	} else if space {
		_, n.err = n.writer.WriteString(" ")
		if n.err != nil {
			return
		}
		n.writtenLen++
	}

	_, n.err = n.writer.WriteString(s)
	n.writtenLen += len(s)
}

func (n *writerWithWrap) WriteString(s string) {
	n.writeString(s, false)
}

func (n *writerWithWrap) WriteStringWithSpace(s string) {
	n.writeString(s, true)
}

func (n *writerWithWrap) Flush() error {
	if n.err != nil {
		return n.err
	}
	_, err := n.writer.WriteString("\n")
	return err
}
