// Package stat digests the state of files, to tell whether the inputs of
// an invocation changed since it last ran.
package stat

import (
	"crypto/sha256"
	"encoding/binary"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"
	"github.com/juju/errgo"

	"github.com/vron/xcbuild/filesystem"
)

// Size is the length of a digest.
const Size = sha256.Size224

type Stater struct {
	fs           filesystem.Filesystem
	checkContent bool
}

// New returns a Stater digesting files of fs by their size and
// modification time, or by their contents if checkContent is set.
func New(fs filesystem.Filesystem, checkContent bool) *Stater {
	s := &Stater{
		fs:           fs,
		checkContent: checkContent,
	}
	return s
}

// Stat creates a hash of all the files given by expr, relative to root
// unless absolute. Directories below the pattern are walked.
func (s *Stater) Stat(root string, expr string) (hash []byte, err error) {
	if !path.IsAbs(expr) {
		expr = path.Join(root, expr)
	}
	files, err := s.glob(expr)
	if err != nil {
		return nil, err
	}
	return s.Files(files)
}

// Files hashes the files at paths, in sorted order. A missing file is part
// of the hash, not an error.
func (s *Stater) Files(paths []string) ([]byte, error) {
	files := append([]string(nil), paths...)
	sort.Strings(files)

	h := sha256.New224()
	for _, f := range files {
		binary.Write(h, binary.BigEndian, int64(len(f)))
		h.Write([]byte(f))

		fi, err := s.fs.Info(f)
		if err != nil {
			binary.Write(h, binary.BigEndian, int64(-1))
			continue
		}
		binary.Write(h, binary.BigEndian, fi.Size)
		switch {
		case fi.Directory:
			binary.Write(h, binary.BigEndian, fi.ModTime.UnixNano())
		case s.checkContent:
			data, err := s.fs.Read(f)
			if err != nil {
				return nil, errgo.Notef(err, "cannot read %s", f)
			}
			sum := sha256.Sum224(data)
			h.Write(sum[:])
		default:
			binary.Write(h, binary.BigEndian, fi.ModTime.UnixNano())
		}
	}
	return h.Sum(nil), nil
}

// glob returns the files matching pattern. Only the directory before the
// first pattern character is walked.
func (s *Stater) glob(pattern string) ([]string, error) {
	i := strings.IndexAny(pattern, "*?[{\\")
	if i < 0 {
		if s.fs.Exists(pattern) {
			return []string{pattern}, nil
		}
		return nil, nil
	}
	root := path.Dir(pattern[:i+1])
	if !s.fs.IsDirectory(root) {
		return nil, nil
	}

	var files []string
	for p, err := range filesystem.Walk(s.fs, root) {
		if err != nil {
			return nil, errgo.Notef(err, "cannot walk %s", root)
		}
		ok, err := doublestar.Match(pattern, p)
		if err != nil {
			return nil, errgo.Notef(err, "bad pattern %s", pattern)
		}
		if ok {
			files = append(files, p)
		}
	}
	return files, nil
}
