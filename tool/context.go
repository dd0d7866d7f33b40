package tool

import (
	"github.com/vron/xcbuild/sdk"
)

// Invocation priorities advance by a phase step so commands of earlier
// phases sort first among otherwise unordered ones.
const (
	basePriority = 0x100
	priorityStep = 0x100
)

// A VariantArch names one build variant and architecture pair.
type VariantArch struct {
	Variant, Arch string
}

// HeadermapInfo lists the header maps compilers search.
type HeadermapInfo struct {
	SystemHeadermapFiles []string
	UserHeadermapFiles   []string
}

// CompilationInfo is what compiling tells linking.
type CompilationInfo struct {
	// PrecompiledHeaders are keyed by their hash so a header shared by
	// many sources is only compiled once.
	PrecompiledHeaders map[string]*PrecompiledHeader
	// LinkerDriver is the compiler driver to link with.
	LinkerDriver string
	LinkerArgs   []string
}

func (c *CompilationInfo) addLinkerArgs(args []string) {
	seen := make(map[string]bool, len(c.LinkerArgs))
	for _, a := range c.LinkerArgs {
		seen[a] = true
	}
	for _, a := range args {
		if !seen[a] {
			seen[a] = true
			c.LinkerArgs = append(c.LinkerArgs, a)
		}
	}
}

// A Context collects the invocations and auxiliary files of one target.
type Context struct {
	SDK              *sdk.Target
	Toolchains       []*sdk.Toolchain
	WorkingDirectory string
	SearchPaths      *SearchPaths

	Headermaps  HeadermapInfo
	Compilation CompilationInfo

	Invocations []*Invocation
	// VariantArchitectureInvocations are the compilations of each variant
	// and architecture, the inputs of linking.
	VariantArchitectureInvocations map[VariantArch][]*Invocation
	AuxiliaryFiles                 []AuxiliaryFile
	AdditionalInfoPlistContents    []string

	priority int
}

func NewContext(s *sdk.Target, toolchains []*sdk.Toolchain, wd string, sp *SearchPaths) *Context {
	return &Context{
		SDK:              s,
		Toolchains:       toolchains,
		WorkingDirectory: wd,
		SearchPaths:      sp,
		Compilation: CompilationInfo{
			PrecompiledHeaders: map[string]*PrecompiledHeader{},
		},
		VariantArchitectureInvocations: map[VariantArch][]*Invocation{},
		priority:                       basePriority,
	}
}

// Add records inv with the priority of the current phase.
func (c *Context) Add(inv *Invocation) {
	inv.Priority = c.priority
	c.Invocations = append(c.Invocations, inv)
}

func (c *Context) AddAuxiliary(files ...AuxiliaryFile) {
	c.AuxiliaryFiles = append(c.AuxiliaryFiles, files...)
}

// NextPhase moves later invocations to the next priority.
func (c *Context) NextPhase() {
	c.priority += priorityStep
}

func (c *Context) Priority() int {
	return c.priority
}

// Outputs lists the outputs of all invocations so far.
func (c *Context) Outputs() []string {
	var out []string
	for _, inv := range c.Invocations {
		out = append(out, inv.Outputs...)
	}
	return out
}
