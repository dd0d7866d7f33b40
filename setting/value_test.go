package setting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func nested(entries ...Entry) Entry {
	v := FromEntries(entries...)
	return Entry{Value: &v}
}

func lit(s string) Entry {
	return Entry{String: s}
}

func TestParseValue(t *testing.T) {
	tcs := []struct {
		in  string
		out Value
	}{
		{"", Empty()},
		{"plain string", String("plain string")},
		{"$(VAR)", Variable("VAR")},
		{"${VAR}", Variable("VAR")},
		{"$VAR", Variable("VAR")},
		{"$VAR/rest", FromEntries(nested(lit("VAR")), lit("/rest"))},
		{"a $(B) c", FromEntries(lit("a "), nested(lit("B")), lit(" c"))},
		{"$(open", String("$(open")},
		{"${open", String("${open")},
		{"$", String("$")},
		{"$ end", String("$ end")},
		{"$(A)$(B)", FromEntries(nested(lit("A")), nested(lit("B")))},
		{"ONE_$(TWO_$(THREE))", FromEntries(
			lit("ONE_"),
			nested(lit("TWO_"), nested(lit("THREE"))),
		)},
		{"$(A_${B})", FromEntries(nested(lit("A_"), nested(lit("B"))))},
		{"$(A:quote)", FromEntries(nested(lit("A:quote")))},
		{"$(un $(closed)", FromEntries(lit("$(un "), nested(lit("closed")))},
	}
	for _, tc := range tcs {
		assert.True(t, tc.out.Equal(ParseValue(tc.in)), "%q parsed to %q", tc.in, ParseValue(tc.in).Raw())
	}
}

func TestLiteralRoundTrip(t *testing.T) {
	env := NewEnvironment()
	for _, s := range []string{"", "abc", "with space", "a(b)c", "{}", "-_'hello%."} {
		assert.Equal(t, s, env.Expand(ParseValue(s)))
	}
}

func TestConcat(t *testing.T) {
	v := String("test").Concat(String("string"))
	assert.Equal(t, []Entry{lit("teststring")}, v.Entries())

	v = Empty().Concat(Variable("X"))
	assert.True(t, v.Equal(Variable("X")))
	assert.Len(t, v.Entries(), 1)

	v = String("a").Concat(Variable("B")).Concat(String("c")).Concat(String("d"))
	assert.Equal(t, "a$(B)cd", v.Raw())
	assert.Len(t, v.Entries(), 3)
}

func TestRaw(t *testing.T) {
	assert.Equal(t, "$(A)-$(B_$(C))", ParseValue("${A}-$(B_$C)").Raw())
}

func TestFromInterface(t *testing.T) {
	assert.Equal(t, "YES", FromInterface(true).Raw())
	assert.Equal(t, "12", FromInterface(12).Raw())
	assert.Equal(t, `a b\ c`, FromInterface([]interface{}{"a", `"b c"`}).Raw())
	assert.Equal(t, "$(X)", FromInterface("$(X)").Raw())
}
