package headermap

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddIgnoresCaseDuplicates(t *testing.T) {
	h := New()
	assert.True(t, h.Add("Foo.h", "/src/", "Foo.h"))
	assert.False(t, h.Add("foo.H", "/other/", "foo.H"))
	assert.False(t, h.Add("", "/src/", "x.h"))
	assert.Equal(t, 1, h.Len())

	p, ok := h.Lookup("FOO.h")
	assert.True(t, ok)
	assert.Equal(t, "/src/Foo.h", p)
}

func TestBytesLayout(t *testing.T) {
	h := New()
	h.Add("a.h", "/x/", "a.h")
	data := h.Bytes()

	le := binary.LittleEndian
	assert.Equal(t, uint32(magic), le.Uint32(data))
	assert.Equal(t, uint16(1), le.Uint16(data[4:]))
	assert.Equal(t, uint32(1), le.Uint32(data[12:]))
	assert.Equal(t, uint32(8), le.Uint32(data[16:]))
	assert.Equal(t, uint32(3), le.Uint32(data[20:]))
	assert.Equal(t, uint32(headerSize+8*bucketSize), le.Uint32(data[8:]))
}

func TestReadWrittenMap(t *testing.T) {
	h := New()
	for i := 0; i < 40; i++ {
		name := fmt.Sprintf("Header%d.h", i)
		require.True(t, h.Add(name, "/include/", name))
	}
	data := h.Bytes()
	assert.Equal(t, uint32(64), binary.LittleEndian.Uint32(data[16:]))

	r, err := Read(data)
	require.NoError(t, err)
	assert.Equal(t, 40, r.Len())
	p, ok := r.Lookup("header17.h")
	assert.True(t, ok)
	assert.Equal(t, "/include/Header17.h", p)
}

func TestReadRejectsGarbage(t *testing.T) {
	_, err := Read([]byte("not a header map at all"))
	assert.Error(t, err)
}
