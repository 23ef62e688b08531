package mapping

import (
	"sort"

	"provtrack/internal/artifact"
	"provtrack/internal/index"
)

// LineMapping maps a source line to the ordered target lines it corresponds to.
type LineMapping map[int][]int

// Lines returns the target lines for line, or nil.
func (m LineMapping) Lines(line int) []int {
	return m[line]
}

// SortedKeys returns the source lines in ascending order.
func (m LineMapping) SortedKeys() []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// TranslateStats counts what a translation could and could not resolve.
type TranslateStats struct {
	Entries        int      `json:"entries"`
	Lines          int      `json:"lines"`
	MissingSources []string `json:"missing_sources,omitempty"`
	MissingTargets []string `json:"missing_targets,omitempty"`
}

// Translate turns one name-level channel into a line-level table. Names that
// do not resolve in their index are skipped. Target lines are appended in
// iteration order and never deduplicated.
func Translate(names NameTable, source, target index.LineIndex) (LineMapping, TranslateStats) {
	out := LineMapping{}
	var stats TranslateStats

	for _, e := range names.Entries() {
		stats.Entries++
		sourceLines, ok := source[e.Source]
		if !ok {
			stats.MissingSources = append(stats.MissingSources, e.Source)
			continue
		}

		var resolved [][]int
		for _, name := range e.Targets {
			lines, ok := target[name]
			if !ok {
				stats.MissingTargets = append(stats.MissingTargets, name)
				continue
			}
			resolved = append(resolved, lines)
		}

		for _, l := range sourceLines {
			for _, lines := range resolved {
				if len(lines) == 0 {
					continue
				}
				out[l] = append(out[l], lines...)
			}
		}
	}
	stats.Lines = len(out)
	return out, stats
}

// Tables are the four directed line-level channels of one report. The code
// channels belong to Variant only.
type Tables struct {
	Variant    artifact.Variant
	PreToPost  LineMapping
	PostToPre  LineMapping
	PostToCode LineMapping
	CodeToPost LineMapping
}

// EmptyTables returns tables with no code variant and every channel empty.
func EmptyTables() *Tables {
	return &Tables{
		PreToPost:  LineMapping{},
		PostToPre:  LineMapping{},
		PostToCode: LineMapping{},
		CodeToPost: LineMapping{},
	}
}

// CodeTables returns the post-to-code and code-to-post channels for variant v.
// The inactive variant always gets empty tables.
func (t *Tables) CodeTables(v artifact.Variant) (postToCode, codeToPost LineMapping) {
	if t == nil || v == artifact.VariantNone || v != t.Variant {
		return LineMapping{}, LineMapping{}
	}
	return t.PostToCode, t.CodeToPost
}

// Channel returns the table for the directed pair from -> to, or nil for a
// pair that has no channel.
func (t *Tables) Channel(from, to artifact.Kind) LineMapping {
	if t == nil {
		return nil
	}
	switch {
	case from == artifact.PreGraph && to == artifact.PostGraph:
		return t.PreToPost
	case from == artifact.PostGraph && to == artifact.PreGraph:
		return t.PostToPre
	case from == artifact.PostGraph && to == artifact.GeneratedCode:
		return t.PostToCode
	case from == artifact.GeneratedCode && to == artifact.PostGraph:
		return t.CodeToPost
	}
	return nil
}

// Indices are the per-artifact line indices a set of tables is built from.
type Indices struct {
	Pre  index.LineIndex
	Post index.LineIndex
	Code index.LineIndex
}

// BuildStats reports translation results per channel.
type BuildStats map[string]TranslateStats

// BuildTables translates every channel of nm. The code channels use the index
// of the active variant; with no variant they stay empty.
func BuildTables(nm *NameMapping, idx Indices, variant artifact.Variant) (*Tables, BuildStats) {
	t := EmptyTables()
	stats := BuildStats{}
	t.Variant = variant
	if nm == nil {
		return t, stats
	}

	t.PreToPost, stats["preToPost"] = Translate(nm.PreToPost, idx.Pre, idx.Post)
	t.PostToPre, stats["postToPre"] = Translate(nm.PostToPre, idx.Post, idx.Pre)
	if variant == artifact.VariantNone {
		return t, stats
	}
	t.PostToCode, stats["postToCode"] = Translate(nm.PostToCode, idx.Post, idx.Code)
	t.CodeToPost, stats["codeToPost"] = Translate(nm.CodeToPost, idx.Code, idx.Post)
	return t, stats
}
