package filesystem

import (
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/juju/errgo"
)

type memoryEntry struct {
	directory  bool
	executable bool
	data       []byte
	modTime    time.Time
}

// Memory is an in-memory Filesystem rooted at "/". Paths are resolved
// against Cwd. It is safe for concurrent use.
type Memory struct {
	Cwd string

	mu      sync.Mutex
	entries map[string]*memoryEntry
	clock   time.Time
}

var _ Filesystem = (*Memory)(nil)

// NewMemory creates an empty memory filesystem holding only "/".
func NewMemory() *Memory {
	m := &Memory{
		Cwd:     "/",
		entries: map[string]*memoryEntry{},
		clock:   time.Unix(1500000000, 0),
	}
	m.entries["/"] = &memoryEntry{directory: true, modTime: m.clock}
	return m
}

// AddFile writes data to p, creating parent directories. It is meant for
// building test fixtures.
func (m *Memory) AddFile(p string, data []byte, executable bool) *Memory {
	p = m.ResolvePath(p)
	if err := m.CreateDirectory(path.Dir(p)); err != nil {
		panic(err)
	}
	if err := m.Write(p, data); err != nil {
		panic(err)
	}
	if executable {
		_ = m.SetExecutable(p, true)
	}
	return m
}

func (m *Memory) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *Memory) get(p string) (*memoryEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[m.ResolvePath(p)]
	return e, ok
}

func (m *Memory) Exists(p string) bool {
	_, ok := m.get(p)
	return ok
}

func (m *Memory) IsDirectory(p string) bool {
	e, ok := m.get(p)
	return ok && e.directory
}

func (m *Memory) IsExecutable(p string) bool {
	e, ok := m.get(p)
	return ok && !e.directory && e.executable
}

func (m *Memory) Info(p string) (Info, error) {
	e, ok := m.get(p)
	if !ok {
		return Info{}, notExist(p)
	}
	return Info{
		Size:       int64(len(e.data)),
		ModTime:    e.modTime,
		Directory:  e.directory,
		Executable: e.executable,
	}, nil
}

func (m *Memory) Read(p string) ([]byte, error) {
	e, ok := m.get(p)
	if !ok || e.directory {
		return nil, notExist(p)
	}
	return append([]byte(nil), e.data...), nil
}

func (m *Memory) Write(p string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = m.ResolvePath(p)
	parent, ok := m.entries[path.Dir(p)]
	if !ok || !parent.directory {
		return notExist(path.Dir(p))
	}
	e, ok := m.entries[p]
	if ok && e.directory {
		return errgo.Newf("%s is a directory", p)
	}
	if !ok {
		e = &memoryEntry{}
		m.entries[p] = e
	}
	e.data = append([]byte(nil), data...)
	e.modTime = m.tick()
	return nil
}

func (m *Memory) SetExecutable(p string, executable bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[m.ResolvePath(p)]
	if !ok {
		return notExist(p)
	}
	e.executable = executable
	return nil
}

func (m *Memory) Remove(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = m.ResolvePath(p)
	for k := range m.entries {
		if k == p || strings.HasPrefix(k, p+"/") {
			delete(m.entries, k)
		}
	}
	return nil
}

func (m *Memory) CreateDirectory(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = m.ResolvePath(p)
	var missing []string
	for cur := p; ; cur = path.Dir(cur) {
		e, ok := m.entries[cur]
		if ok {
			if !e.directory {
				return errgo.Newf("%s is not a directory", cur)
			}
			break
		}
		missing = append(missing, cur)
	}
	for i := len(missing) - 1; i >= 0; i-- {
		m.entries[missing[i]] = &memoryEntry{directory: true, modTime: m.tick()}
	}
	return nil
}

func (m *Memory) EnumerateDirectory(p string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = m.ResolvePath(p)
	if e, ok := m.entries[p]; !ok || !e.directory {
		return nil, notExist(p)
	}
	prefix := strings.TrimSuffix(p, "/") + "/"
	var names []string
	for k := range m.entries {
		if k != p && strings.HasPrefix(k, prefix) && !strings.Contains(k[len(prefix):], "/") {
			names = append(names, k[len(prefix):])
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) ResolvePath(p string) string {
	if !path.IsAbs(p) {
		p = path.Join(m.Cwd, p)
	}
	return path.Clean(p)
}

func notExist(p string) error {
	return errgo.WithCausef(nil, os.ErrNotExist, "%s: no such file or directory", p)
}
