package report

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"provtrack/internal/artifact"
	"provtrack/internal/mapping"
	"provtrack/internal/provenance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildContext(t *testing.T, code artifact.Code) *provenance.Context {
	t.Helper()
	nm, err := mapping.Decode([]byte(`{
		"preToPost": {"a": ["x"]},
		"postToPre": {"x": ["a"]},
		"cppCodeToPost": {"k0": ["x"]},
		"postToCppCode": {"x": ["k0"]}
	}`))
	require.NoError(t, err)
	return provenance.Build(provenance.Inputs{
		Name:      "-_0_0_0",
		PreGraph:  artifact.NewText("a = op()\n"),
		PostGraph: artifact.NewText("x = op(a) < 1\n"),
		Code:      code,
		Mapping:   nm,
	}, provenance.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
}

func languageA() artifact.Code {
	return artifact.NewLanguageA(artifact.NewText(
		"k0 = async_compile.triton('k0', '''\nbody\n''', device_str='cuda')\n"))
}

func TestExportLineMappings_ActiveVariantOnly(t *testing.T) {
	c := buildContext(t, languageA())

	out := ExportLineMappings(c.Tables())

	assert.Len(t, out, 6)
	assert.Equal(t, map[string][]int{"1": {1}}, out["preToPost"])
	assert.Equal(t, map[string][]int{"1": {1}}, out["postToPre"])
	assert.Equal(t, map[string][]int{"1": {1}, "2": {1}, "3": {1}}, out["pyCodeToPost"])
	assert.Equal(t, map[string][]int{"1": {1, 2, 3}}, out["postToPyCode"])
	assert.Empty(t, out["cppCodeToPost"])
	assert.Empty(t, out["postToCppCode"])
}

func TestLineMappingsJSON_NilTables(t *testing.T) {
	data, err := LineMappingsJSON(nil)
	require.NoError(t, err)

	var decoded map[string]map[string][]int
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 6)
	for key, table := range decoded {
		assert.Empty(t, table, key)
	}
}

func TestRender_PanelsAndEmbeddedData(t *testing.T) {
	c := buildContext(t, languageA())

	var sb strings.Builder
	require.NoError(t, Render(&sb, c))
	page := sb.String()

	assert.True(t, strings.HasPrefix(page, "<!doctype html>"))
	assert.Contains(t, page, `data-kind="pre_graph"`)
	assert.Contains(t, page, `data-kind="post_graph"`)
	assert.Contains(t, page, `data-kind="generated_code"`)
	assert.Contains(t, page, `<span class="line" data-line="1">a = op()</span>`)
	assert.Contains(t, page, "x = op(a) &lt; 1")
	assert.Contains(t, page, `id="line-mappings"`)
	assert.Contains(t, page, `"pyCodeToPost":{"1":[1],"2":[1],"3":[1]}`)
	assert.Contains(t, page, `id="highlight-index"`)
	assert.Contains(t, page, "Generated Kernels")
}

func TestRender_OmitsMissingCodePanel(t *testing.T) {
	c := buildContext(t, artifact.NoGeneratedCode())

	var sb strings.Builder
	require.NoError(t, Render(&sb, c))

	assert.NotContains(t, sb.String(), `data-kind="generated_code"`)
	assert.Contains(t, sb.String(), `data-kind="post_graph"`)
}

func TestWrite_UsesDirectoryName(t *testing.T) {
	c := buildContext(t, languageA())
	dir := filepath.Join(t.TempDir(), "out")

	path, err := Write(dir, c)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "provenance_tracking_-_0_0_0.html"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Provenance Tracking: -_0_0_0")
}
