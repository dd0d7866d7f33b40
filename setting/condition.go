package setting

import (
	"sort"
	"strings"
	"sync"

	"github.com/gobwas/glob"
)

// A Condition restricts a setting to lookups where every key is present and
// its value matches the pattern, e.g. sdk=iphoneos* or arch=arm64.
type Condition map[string]string

var (
	globMu    sync.Mutex
	globCache = map[string]glob.Glob{}
)

func compile(pattern string) glob.Glob {
	globMu.Lock()
	defer globMu.Unlock()
	if g, ok := globCache[pattern]; ok {
		return g
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		g = glob.MustCompile(glob.QuoteMeta(pattern))
	}
	globCache[pattern] = g
	return g
}

// Match reports if c applies to a lookup made with the condition other.
func (c Condition) Match(other Condition) bool {
	for k, pattern := range c {
		v, ok := other[k]
		if !ok {
			return false
		}
		if !compile(pattern).Match(v) {
			return false
		}
	}
	return true
}

// String formats the condition as [k=v] groups sorted by key.
func (c Condition) String() string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString("[" + k + "=" + c[k] + "]")
	}
	return sb.String()
}
