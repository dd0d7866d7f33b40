package tool

import (
	"crypto/md5"
	"encoding/hex"
	"path"
	"strings"

	"github.com/gobwas/glob"

	"github.com/vron/xcbuild/setting"
	"github.com/vron/xcbuild/spec"
)

// A PrecompiledHeader is a prefix header compiled once for every source
// sharing the arguments it is compiled with.
type PrecompiledHeader struct {
	PrefixHeader string
	FileType     *spec.FileType
	Arguments    []string
	// RelevantArguments are the arguments that affect the compiled header.
	RelevantArguments []string
	Compiler          string
}

// NewPrecompiledHeader drops the arguments of args matching the patterns
// of flags the compiler lists as not affecting precompiled headers.
func NewPrecompiledHeader(c *spec.Compiler, prefixHeader string, ft *spec.FileType, args []string) *PrecompiledHeader {
	var patterns []glob.Glob
	for _, p := range c.PatternsOfFlagsNotAffectingPrecomps {
		if g, err := glob.Compile(p); err == nil {
			patterns = append(patterns, g)
		}
	}
	h := &PrecompiledHeader{
		PrefixHeader: prefixHeader,
		FileType:     ft,
		Arguments:    args,
		Compiler:     c.Identifier,
	}
outer:
	for _, a := range args {
		for _, g := range patterns {
			if g.Match(a) {
				continue outer
			}
		}
		h.RelevantArguments = append(h.RelevantArguments, a)
	}
	return h
}

// Serialize gives the hash criteria: the relevant arguments and the
// compiler, one per line.
func (h *PrecompiledHeader) Serialize() []byte {
	var b strings.Builder
	for _, a := range h.RelevantArguments {
		b.WriteString(a)
		b.WriteByte('\n')
	}
	b.WriteString(h.Compiler)
	b.WriteByte('\n')
	return []byte(b.String())
}

func (h *PrecompiledHeader) Hash() string {
	sum := md5.Sum(h.Serialize())
	return hex.EncodeToString(sum[:])
}

// LogicalPath is the path sources include the header as.
func (h *PrecompiledHeader) LogicalPath() setting.Value {
	return setting.ParseValue("$(PRECOMP_DESTINATION_DIR)/$(PRODUCT_NAME)-" + h.Hash() + "/" + path.Base(h.PrefixHeader))
}

func (h *PrecompiledHeader) CompilePath() setting.Value {
	return h.LogicalPath().Concat(setting.String(".pch"))
}

func (h *PrecompiledHeader) CriteriaPath() setting.Value {
	return h.LogicalPath().Concat(setting.String(".hash-criteria"))
}
