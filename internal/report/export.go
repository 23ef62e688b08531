package report

import (
	"encoding/json"
	"strconv"

	"provtrack/internal/artifact"
	"provtrack/internal/mapping"
	"provtrack/internal/provenance"
)

// Export keys of the code channels per variant: code-to-post, post-to-code.
var variantKeys = map[artifact.Variant][2]string{
	artifact.LanguageA: {"pyCodeToPost", "postToPyCode"},
	artifact.LanguageB: {"cppCodeToPost", "postToCppCode"},
}

// LineMappings is the exported form of a report's line tables. Keys are
// decimal line numbers.
type LineMappings map[string]map[string][]int

// ExportLineMappings converts tables into the six-channel export shape. The
// inactive variant's channels are present and empty.
func ExportLineMappings(t *mapping.Tables) LineMappings {
	if t == nil {
		t = mapping.EmptyTables()
	}
	out := LineMappings{
		"preToPost": stringKeys(t.PreToPost),
		"postToPre": stringKeys(t.PostToPre),
	}
	for _, v := range []artifact.Variant{artifact.LanguageA, artifact.LanguageB} {
		postToCode, codeToPost := t.CodeTables(v)
		keys := variantKeys[v]
		out[keys[0]] = stringKeys(codeToPost)
		out[keys[1]] = stringKeys(postToCode)
	}
	return out
}

// LineMappingsJSON marshals ExportLineMappings(t).
func LineMappingsJSON(t *mapping.Tables) ([]byte, error) {
	return json.Marshal(ExportLineMappings(t))
}

// HighlightIndexJSON marshals the precomputed highlight index of c.
func HighlightIndexJSON(c *provenance.Context) ([]byte, error) {
	return json.Marshal(c.HighlightIndex())
}

func stringKeys(m mapping.LineMapping) map[string][]int {
	out := make(map[string][]int, len(m))
	for line, targets := range m {
		out[strconv.Itoa(line)] = targets
	}
	return out
}
