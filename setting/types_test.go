package setting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoolean(t *testing.T) {
	for _, s := range []string{"YES", "yes", "True", "TRUE"} {
		assert.True(t, ParseBoolean(s), s)
	}
	for _, s := range []string{"", "NO", "1", "no"} {
		assert.False(t, ParseBoolean(s), s)
	}
	assert.Equal(t, "YES", FormatBoolean(true))
	assert.Equal(t, "NO", FormatBoolean(false))
}

func TestInteger(t *testing.T) {
	assert.Equal(t, int64(42), ParseInteger("42"))
	assert.Equal(t, int64(16), ParseInteger("0x10"))
	assert.Equal(t, int64(0), ParseInteger("x"))
	assert.Equal(t, "-3", FormatInteger(-3))
}

func TestList(t *testing.T) {
	tcs := []struct {
		in  string
		out []string
	}{
		{"", nil},
		{"  a   b ", []string{"a", "b"}},
		{`"a b" c`, []string{"a b", "c"}},
		{`'it"s' x`, []string{`it"s`, "x"}},
		{`a\ b c`, []string{"a b", "c"}},
		{`''`, nil},
	}
	for _, tc := range tcs {
		assert.Equal(t, tc.out, ParseList(tc.in), tc.in)
	}

	entries := []string{"a b", `q"uote`, `back\slash`, "plain"}
	assert.Equal(t, entries, ParseList(FormatList(entries)))
}
