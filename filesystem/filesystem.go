// Package filesystem abstracts the file operations the build performs so
// resolvers and executors can run against memory in tests.
package filesystem

import (
	"iter"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Info describes an existing file or directory.
type Info struct {
	Size       int64
	ModTime    time.Time
	Directory  bool
	Executable bool
}

// A Filesystem performs the file operations of a build.
type Filesystem interface {
	Exists(path string) bool
	IsDirectory(path string) bool
	IsExecutable(path string) bool
	Info(path string) (Info, error)

	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
	SetExecutable(path string, executable bool) error
	Remove(path string) error

	CreateDirectory(path string) error
	// EnumerateDirectory lists the names of the entries in path, sorted.
	EnumerateDirectory(path string) ([]string, error)
	// ResolvePath returns the absolute, cleaned form of path.
	ResolvePath(path string) string
}

// FindExecutable searches paths in order for an executable called name.
// A name containing a slash is only checked as given.
func FindExecutable(fs Filesystem, name string, paths []string) (string, bool) {
	if strings.ContainsRune(name, '/') {
		p := fs.ResolvePath(name)
		return p, fs.IsExecutable(p)
	}
	for _, dir := range paths {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, name)
		if fs.IsExecutable(p) {
			return p, true
		}
	}
	return "", false
}

// Walk visits root and everything below it, parents before children and
// siblings in sorted order. Errors enumerating a directory are yielded
// with its path and the walk continues with the next entry.
func Walk(fs Filesystem, root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		walk(fs, root, yield)
	}
}

func walk(fs Filesystem, path string, yield func(string, error) bool) bool {
	if !yield(path, nil) {
		return false
	}
	if !fs.IsDirectory(path) {
		return true
	}
	names, err := fs.EnumerateDirectory(path)
	if err != nil {
		return yield(path, err)
	}
	sort.Strings(names)
	for _, n := range names {
		if !walk(fs, filepath.Join(path, n), yield) {
			return false
		}
	}
	return true
}

// Directories returns root and all directories below it, as visited by Walk.
func Directories(fs Filesystem, root string) []string {
	var dirs []string
	for p, err := range Walk(fs, root) {
		if err == nil && fs.IsDirectory(p) {
			dirs = append(dirs, p)
		}
	}
	return dirs
}
