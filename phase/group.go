package phase

import (
	"path"
	"sort"
	"strings"

	"github.com/mongodb/grip"

	"github.com/vron/xcbuild/tool"
)

// Input file groupings a compiler can declare.
const (
	GroupingTool                 = "tool"
	GroupingCommonFileBase       = "common-file-base"
	GroupingAssetCatalog         = "actool"
	GroupingBaseRegionAndStrings = "ib-base-region-and-strings"
)

const (
	baseLocalization = "Base"
	stringsType      = "text.plist.strings"
)

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Group splits files into the sets each invocation processes together.
// Files of a compiler grouping by tool form one set per compiler; files
// grouping by common base form one set per compiler and base name; a Base
// localization forms a set with the strings files of its variant group.
// Every other file is a set of its own. Sets are returned in that order.
func Group(files []tool.Input) [][]tool.Input {
	var (
		ungrouped  []tool.Input
		byTool     = map[string][]tool.Input{}
		byBase     = map[string]map[string][]tool.Input{}
		baseRegion []tool.Input
	)

	for _, f := range files {
		rule := f.BuildRule
		if rule == nil || rule.Compiler == nil {
			ungrouped = append(ungrouped, f)
			continue
		}
		c := rule.Compiler
		if len(c.InputFileGroupings) != 1 {
			if len(c.InputFileGroupings) > 1 {
				grip.Warningf("more than one input file grouping of %s is not supported", c.Identifier)
			}
			ungrouped = append(ungrouped, f)
			continue
		}

		switch g := c.InputFileGroupings[0]; g {
		case GroupingTool, GroupingAssetCatalog:
			byTool[c.Identifier] = append(byTool[c.Identifier], f)
		case GroupingCommonFileBase:
			base := strings.TrimSuffix(path.Base(f.Path), path.Ext(f.Path))
			if byBase[c.Identifier] == nil {
				byBase[c.Identifier] = map[string][]tool.Input{}
			}
			byBase[c.Identifier][base] = append(byBase[c.Identifier][base], f)
		case GroupingBaseRegionAndStrings:
			if f.Localization == baseLocalization {
				baseRegion = append(baseRegion, f)
			} else {
				ungrouped = append(ungrouped, f)
			}
		default:
			grip.Warningf("unknown input file grouping '%s'", g)
			ungrouped = append(ungrouped, f)
		}
	}

	var out [][]tool.Input
	for _, id := range sortedKeys(byTool) {
		out = append(out, byTool[id])
	}
	for _, id := range sortedKeys(byBase) {
		bases := byBase[id]
		for _, base := range sortedKeys(bases) {
			out = append(out, bases[base])
		}
	}
	for _, f := range baseRegion {
		group := []tool.Input{f}
		kept := ungrouped[:0]
		for _, u := range ungrouped {
			if u.FileType != nil && u.FileType.Identifier == stringsType && u.LocalizationGroup == f.LocalizationGroup {
				group = append(group, u)
				continue
			}
			kept = append(kept, u)
		}
		ungrouped = kept
		out = append(out, group)
	}
	for _, f := range ungrouped {
		out = append(out, []tool.Input{f})
	}
	return out
}
