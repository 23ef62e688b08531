package highlight

import (
	"strings"
	"testing"

	"provtrack/internal/artifact"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminal_FlushPrintsHighlightedLines(t *testing.T) {
	color.NoColor = true
	c := testContext()
	var sb strings.Builder
	term := NewTerminal(&sb, c)

	NewSession(c, term).Select(artifact.PreGraph, 1)
	require.NoError(t, term.Flush())

	out := sb.String()
	assert.Contains(t, out, "== pre_graph ==\n      1 a = op()\n")
	assert.Contains(t, out, "== post_graph ==\n      1 x = op()\n      2 y = op()\n")
	assert.Contains(t, out, ">     3 body\n")
	assert.Less(t, strings.Index(out, "pre_graph"), strings.Index(out, "generated_code"))
}

func TestTerminal_ClearDropsPreviousSelection(t *testing.T) {
	color.NoColor = true
	c := testContext()
	var sb strings.Builder
	term := NewTerminal(&sb, c)
	s := NewSession(c, term)

	s.Select(artifact.PreGraph, 1)
	s.Select(artifact.PostGraph, 2)
	require.NoError(t, term.Flush())

	assert.Equal(t, "== post_graph ==\n      2 y = op()\n", sb.String())
}
