package filesystem

import (
	"os"
	"testing"

	"github.com/juju/errgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	fs := NewMemory()
	require.NoError(t, fs.CreateDirectory("/a/b"))
	assert.True(t, fs.IsDirectory("/a"))
	assert.True(t, fs.IsDirectory("/a/b"))

	require.NoError(t, fs.Write("/a/b/file", []byte("data")))
	assert.True(t, fs.Exists("/a/b/file"))
	assert.False(t, fs.IsExecutable("/a/b/file"))
	require.NoError(t, fs.SetExecutable("/a/b/file", true))
	assert.True(t, fs.IsExecutable("/a/b/file"))

	data, err := fs.Read("/a/b/file")
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	err = fs.Write("/missing/file", nil)
	assert.Equal(t, os.ErrNotExist, errgo.Cause(err))
	_, err = fs.Read("/a/none")
	assert.Equal(t, os.ErrNotExist, errgo.Cause(err))

	assert.Error(t, fs.CreateDirectory("/a/b/file/sub"))

	names, err := fs.EnumerateDirectory("/a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)

	fs.Cwd = "/a"
	assert.Equal(t, "/a/b/file", fs.ResolvePath("b/../b/file"))
	assert.True(t, fs.Exists("b/file"))

	require.NoError(t, fs.Remove("/a/b"))
	assert.False(t, fs.Exists("/a/b/file"))
	assert.True(t, fs.Exists("/a"))
}

func TestModTimeAdvances(t *testing.T) {
	fs := NewMemory().AddFile("/f", []byte("1"), false)
	before, err := fs.Info("/f")
	require.NoError(t, err)
	require.NoError(t, fs.Write("/f", []byte("22")))
	after, err := fs.Info("/f")
	require.NoError(t, err)
	assert.True(t, after.ModTime.After(before.ModTime))
	assert.Equal(t, int64(2), after.Size)
}

func TestFindExecutable(t *testing.T) {
	fs := NewMemory().
		AddFile("/usr/bin/cc", nil, true).
		AddFile("/opt/bin/cc", nil, true).
		AddFile("/opt/bin/notexec", nil, false)

	p, ok := FindExecutable(fs, "cc", []string{"/opt/bin", "/usr/bin"})
	assert.True(t, ok)
	assert.Equal(t, "/opt/bin/cc", p)

	_, ok = FindExecutable(fs, "notexec", []string{"/opt/bin"})
	assert.False(t, ok)

	p, ok = FindExecutable(fs, "/usr/bin/cc", nil)
	assert.True(t, ok)
	assert.Equal(t, "/usr/bin/cc", p)
}

func TestWalk(t *testing.T) {
	fs := NewMemory().
		AddFile("/r/b/x", nil, false).
		AddFile("/r/a/c/y", nil, false).
		AddFile("/r/z", nil, false)

	var visited []string
	for p, err := range Walk(fs, "/r") {
		require.NoError(t, err)
		visited = append(visited, p)
	}
	assert.Equal(t, []string{"/r", "/r/a", "/r/a/c", "/r/a/c/y", "/r/b", "/r/b/x", "/r/z"}, visited)
	assert.Equal(t, []string{"/r", "/r/a", "/r/a/c", "/r/b"}, Directories(fs, "/r"))

	visited = nil
	for p := range Walk(fs, "/r") {
		visited = append(visited, p)
		if len(visited) == 2 {
			break
		}
	}
	assert.Len(t, visited, 2)
}
