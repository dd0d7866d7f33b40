package ninja

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var writerTestCases = []struct {
	name   string
	input  func(w *Writer) error
	output string
}{
	{
		name:   "comment",
		input:  func(w *Writer) error { return w.Comment("foo") },
		output: "# foo\n",
	},
	{
		name:   "multiline comment",
		input:  func(w *Writer) error { return w.Comment("foo\nbar") },
		output: "# foo\n# bar\n",
	},
	{
		name:   "rule",
		input:  func(w *Writer) error { return w.Rule("foo") },
		output: "rule foo\n",
	},
	{
		name: "build",
		input: func(w *Writer) error {
			return w.Build("foo comment", "foo", []string{"o1", "o2"}, []string{"io1", "io2"},
				[]string{"e1", "e2"}, []string{"i1", "i2"}, []string{"oo1", "oo2"})
		},
		output: "# foo comment\nbuild o1 o2 | io1 io2: foo e1 e2 | i1 i2 || oo1 oo2\n",
	},
	{
		name: "build escapes paths",
		input: func(w *Writer) error {
			return w.Build("", "phony", []string{"/a b/c:d"}, nil, []string{"$x"}, nil, nil)
		},
		output: "build /a$ b/c$:d: phony $$x\n",
	},
	{
		name: "build wraps long lines",
		input: func(w *Writer) error {
			return w.Build("", "phony", []string{strings.Repeat("o", 40)}, nil, []string{strings.Repeat("i", 40)}, nil, nil)
		},
		output: "build " + strings.Repeat("o", 40) + ": phony $\n        " + strings.Repeat("i", 40) + "\n",
	},
	{
		name:   "default",
		input:  func(w *Writer) error { return w.Default("foo", "bar") },
		output: "default foo bar\n",
	},
	{
		name:   "assign",
		input:  func(w *Writer) error { return w.Assign("foo", "bar") },
		output: "foo = bar\n",
	},
	{
		name:   "scoped assign",
		input:  func(w *Writer) error { return w.ScopedAssign("foo", "bar") },
		output: "    foo = bar\n",
	},
	{
		name:   "subninja",
		input:  func(w *Writer) error { return w.Subninja("build.ninja") },
		output: "subninja build.ninja\n",
	},
	{
		name:   "include",
		input:  func(w *Writer) error { return w.Include("rules.ninja") },
		output: "include rules.ninja\n",
	},
	{
		name: "blank lines",
		input: func(w *Writer) error {
			if err := w.BlankLine(); err != nil {
				return err
			}
			if err := w.BlankLine(); err != nil {
				return err
			}
			return w.Rule("r")
		},
		output: "\nrule r\n",
	},
	{
		name: "rule with bindings",
		input: func(w *Writer) error {
			if err := w.Rule("cc"); err != nil {
				return err
			}
			if err := w.ScopedAssign("command", "cc $in -o $out"); err != nil {
				return err
			}
			return w.ScopedAssign("description", EscapeValue("costs $5"))
		},
		output: "rule cc\n    command = cc $in -o $out\n    description = costs $$5\n",
	},
}

func TestWriter(t *testing.T) {
	for _, tc := range writerTestCases {
		t.Run(tc.name, func(t *testing.T) {
			var b strings.Builder
			require.NoError(t, tc.input(NewWriter(&b)))
			assert.Equal(t, tc.output, b.String())
		})
	}
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "a$$b$\nc d:e", EscapeValue("a$b\nc d:e"))
	assert.Equal(t, "a$$b$\nc$ d$:e", EscapePath("a$b\nc d:e"))
}
