package tool

// A Reason tags a group of arguments with why it is on the command line.
type Reason string

// Reasons of compiler arguments, in the order they are added.
const (
	ReasonDialect      Reason = "dialect"
	ReasonOptions      Reason = "options"
	ReasonPaths        Reason = "paths"
	ReasonCustom       Reason = "custom"
	ReasonPrefixHeader Reason = "prefix-header"
	ReasonNotPrecomps  Reason = "not-used-in-precomps"
	ReasonFile         Reason = "file"
	ReasonDependencies Reason = "dependency-info"
	ReasonInputOutput  Reason = "input-output"
)

// An ArgumentGroup is a batch of arguments added for one reason.
type ArgumentGroup struct {
	Reason    Reason
	Arguments []string
}

// ArgumentBuilder assembles a command line from groups, in the order they
// are added. Later groups override earlier ones for most tools.
type ArgumentBuilder struct {
	groups []ArgumentGroup
}

// Add appends a group of args. Empty groups are dropped.
func (b *ArgumentBuilder) Add(reason Reason, args ...string) *ArgumentBuilder {
	if len(args) > 0 {
		b.groups = append(b.groups, ArgumentGroup{Reason: reason, Arguments: append([]string(nil), args...)})
	}
	return b
}

func (b *ArgumentBuilder) Groups() []ArgumentGroup {
	return append([]ArgumentGroup(nil), b.groups...)
}

// Arguments flattens the groups.
func (b *ArgumentBuilder) Arguments() []string {
	var out []string
	for _, g := range b.groups {
		out = append(out, g.Arguments...)
	}
	return out
}

// Without flattens the groups, leaving out those of the given reasons.
func (b *ArgumentBuilder) Without(reasons ...Reason) []string {
	var out []string
outer:
	for _, g := range b.groups {
		for _, r := range reasons {
			if g.Reason == r {
				continue outer
			}
		}
		out = append(out, g.Arguments...)
	}
	return out
}
