// Package tool turns files and settings into invocations: the commands a
// target build runs, with the files they read and write.
package tool

import (
	"path"
	"strings"

	"github.com/juju/errgo"

	"github.com/vron/xcbuild/filesystem"
)

// BuiltinPrefix marks executables that run in process.
const BuiltinPrefix = "builtin-"

// An Executable is either an external program or an in-process builtin.
type Executable struct {
	// Path is absolute, or a name to search for in the executable paths.
	Path    string
	Builtin string
}

// DetermineExecutable treats names starting with BuiltinPrefix as builtins.
func DetermineExecutable(s string) Executable {
	if strings.HasPrefix(s, BuiltinPrefix) {
		return Executable{Builtin: s}
	}
	return Executable{Path: s}
}

// External returns the external executable at p.
func External(p string) Executable {
	return Executable{Path: p}
}

func (e Executable) IsBuiltin() bool {
	return e.Builtin != ""
}

// IsEmpty reports whether there is nothing to run.
func (e Executable) IsEmpty() bool {
	return e.Path == "" && e.Builtin == ""
}

func (e Executable) String() string {
	if e.Builtin != "" {
		return e.Builtin
	}
	return e.Path
}

// Formats of dependency info a tool writes about the files it read.
type DependencyFormat int

const (
	DependencyMakefile DependencyFormat = iota
	DependencyBinary
	DependencyDirectory
)

// DependencyInfo points to a record of additional inputs of an invocation.
type DependencyInfo struct {
	Format DependencyFormat
	Path   string
}

// An AuxiliaryFile is written by the build itself before any invocation
// runs. Its contents are Contents followed by each of Chunks.
type AuxiliaryFile struct {
	Path       string
	Contents   []byte
	Chunks     []AuxiliaryChunk
	Executable bool
}

// An AuxiliaryChunk is part of an auxiliary file: Data, or the contents of
// the file at From when From is set.
type AuxiliaryChunk struct {
	Data []byte
	From string
}

// Parts returns the chunks making up f, with Contents as the first one. A
// file with no contents at all has a single empty chunk.
func (f AuxiliaryFile) Parts() []AuxiliaryChunk {
	if len(f.Contents) == 0 && len(f.Chunks) > 0 {
		return f.Chunks
	}
	return append([]AuxiliaryChunk{{Data: f.Contents}}, f.Chunks...)
}

// Data returns the contents of f, reading the chunks copied from other
// files through fs.
func (f AuxiliaryFile) Data(fs filesystem.Filesystem) ([]byte, error) {
	if len(f.Chunks) == 0 {
		return f.Contents, nil
	}
	var data []byte
	for _, c := range f.Parts() {
		if c.From == "" {
			data = append(data, c.Data...)
			continue
		}
		contents, err := fs.Read(c.From)
		if err != nil {
			return nil, errgo.Notef(err, "cannot read %s for %s", c.From, f.Path)
		}
		data = append(data, contents...)
	}
	return data, nil
}

// An Invocation is one command of a target build.
type Invocation struct {
	Executable       Executable
	Arguments        []string
	Environment      map[string]string
	WorkingDirectory string

	Inputs  []string
	Outputs []string
	// Phony inputs may not exist and phony outputs are not created, only
	// updated.
	PhonyInputs  []string
	PhonyOutputs []string
	// Input dependencies must be built first but are not read by the
	// command; output dependencies are produced as a side effect.
	InputDependencies  []string
	OutputDependencies []string
	DependencyInfo     []DependencyInfo

	LogMessage           string
	ShowEnvironmentInLog bool
	// CreatesProductStructure is set on invocations making the bundle
	// layout, which run before all others.
	CreatesProductStructure bool
	Priority                int
}

// resolvePath returns p made absolute against wd.
func resolvePath(p, wd string) string {
	if p == "" || path.IsAbs(p) {
		return path.Clean(p)
	}
	return path.Join(wd, p)
}

func resolvePaths(paths []string, wd string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, resolvePath(p, wd))
	}
	return out
}

// relativePath returns p relative to base, or p if it is not below base.
func relativePath(p, base string) string {
	if p == base {
		return "."
	}
	if rel := strings.TrimPrefix(p, strings.TrimSuffix(base, "/")+"/"); rel != p {
		return rel
	}
	return p
}
