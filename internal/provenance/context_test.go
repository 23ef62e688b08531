package provenance

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"provtrack/internal/artifact"
	"provtrack/internal/mapping"
	"provtrack/internal/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietOptions() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// numbered builds a text whose line n is lines[n]; unset lines are comments.
func numbered(count int, lines map[int]string) artifact.Text {
	out := make([]string, count)
	for i := range out {
		out[i] = "# filler"
	}
	for n, l := range lines {
		out[n-1] = l
	}
	return artifact.NewText(strings.Join(out, "\n"))
}

func scenarioInputs(t *testing.T) Inputs {
	t.Helper()
	nm, err := mapping.Decode([]byte(`{
		"preToPost": {"foo": ["foo_1"]},
		"postToPre": {"foo_1": ["foo"]},
		"cppCodeToPost": {"k0": ["foo_1"]}
	}`))
	require.NoError(t, err)

	code := numbered(16, map[int]string{
		10: "k0 = async_compile.triton('k0', '''",
		11: "@triton.jit",
		12: "def k0(in_ptr0):",
		13: "    pass",
		14: "''', device_str='cuda')",
	})
	return Inputs{
		Name:      "-_0_0_0",
		PreGraph:  numbered(4, map[int]string{3: "foo = op(x)"}),
		PostGraph: numbered(6, map[int]string{5: "foo_1 = op2(x)"}),
		Code:      artifact.NewLanguageA(code),
		Mapping:   nm,
	}
}

func TestBuild_Scenario1_PreToPostWithoutCodeEdge(t *testing.T) {
	c := Build(scenarioInputs(t), quietOptions())

	assert.Equal(t, resolver.HighlightResult{
		artifact.PostGraph:     {5},
		artifact.GeneratedCode: {},
	}, c.Resolve(artifact.PreGraph, 3))
}

func TestBuild_Scenario2_CodeChainsThroughPost(t *testing.T) {
	c := Build(scenarioInputs(t), quietOptions())

	assert.Equal(t, resolver.HighlightResult{
		artifact.PostGraph: {5},
		artifact.PreGraph:  {3},
	}, c.Resolve(artifact.GeneratedCode, 12))
	assert.Equal(t, []int{10, 11, 12, 13, 14}, c.Indices().Code["k0"])
}

func TestBuild_Scenario3_UnknownLine(t *testing.T) {
	c := Build(scenarioInputs(t), quietOptions())

	assert.Equal(t, resolver.HighlightResult{
		artifact.PostGraph:     {},
		artifact.GeneratedCode: {},
	}, c.Resolve(artifact.PreGraph, 99))
}

func TestBuild_Scenario4_CallSiteFirstMatch(t *testing.T) {
	nm, err := mapping.Decode([]byte(`{
		"cppCodeToPost": {"kernelAB": ["ab"], "kernelA": ["a"]},
		"postToCppCode": {"ab": ["kernelAB"], "a": ["kernelA"]}
	}`))
	require.NoError(t, err)
	in := Inputs{
		PostGraph: artifact.NewText("ab = op()\na = op()\n"),
		Code:      artifact.NewLanguageB(artifact.NewText("void run() {\n  kernelAB(x); kernelA(y);\n}\n")),
		Mapping:   nm,
	}

	for i := 0; i < 5; i++ {
		c := Build(in, quietOptions())
		assert.Equal(t, []int{2}, c.Indices().Code["kernelAB"])
		assert.NotContains(t, c.Indices().Code, "kernelA")
		assert.Equal(t, []int{1}, c.Resolve(artifact.GeneratedCode, 2).Lines(artifact.PostGraph))
		assert.Equal(t, []int{}, c.Resolve(artifact.PostGraph, 2).Lines(artifact.GeneratedCode))
	}
}

func TestBuild_MissingArtifactsDegrade(t *testing.T) {
	in := scenarioInputs(t)
	in.Code = artifact.NoGeneratedCode()
	in.PreGraph = artifact.NewText("")

	c := Build(in, quietOptions())

	assert.Equal(t, artifact.VariantNone, c.Variant())
	assert.Empty(t, c.Tables().PostToCode)
	assert.Empty(t, c.Tables().CodeToPost)
	assert.True(t, c.Resolve(artifact.PostGraph, 5).Empty())
	assert.True(t, c.Report().HasSignal("missing_generated_code"))
	assert.True(t, c.Report().HasSignal("missing_pre_graph"))
	assert.False(t, c.Report().HasSignal("missing_post_graph"))
	assert.Equal(t, 1.0, c.Report().Counter("translate", "preToPost_unresolved"))
}

func TestBuild_NilMapping(t *testing.T) {
	in := scenarioInputs(t)
	in.Mapping = nil

	c := Build(in, quietOptions())
	assert.True(t, c.Resolve(artifact.PreGraph, 3).Empty())
	assert.Equal(t, artifact.LanguageA, c.Tables().Variant)
}

func TestContext_HighlightIndex(t *testing.T) {
	c := Build(scenarioInputs(t), quietOptions())
	hi := c.HighlightIndex()

	require.Contains(t, hi[artifact.PreGraph], 3)
	assert.Equal(t, []int{5}, hi[artifact.PreGraph][3].Lines(artifact.PostGraph))
	assert.Len(t, hi[artifact.PreGraph], 1)
	assert.Len(t, hi[artifact.PostGraph], 1)
	assert.Len(t, hi[artifact.GeneratedCode], 5)
	assert.Equal(t, []int{3}, hi[artifact.GeneratedCode][14].Lines(artifact.PreGraph))
}

func TestContext_FingerprintTracksInputs(t *testing.T) {
	a := Build(scenarioInputs(t), quietOptions())
	b := Build(scenarioInputs(t), quietOptions())
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotZero(t, a.Fingerprint())

	in := scenarioInputs(t)
	in.PostGraph = artifact.NewText("foo_1 = op3(x)\n")
	assert.NotEqual(t, a.Fingerprint(), Build(in, quietOptions()).Fingerprint())
}

func TestBuildReport_Save(t *testing.T) {
	c := Build(scenarioInputs(t), quietOptions())
	path := filepath.Join(t.TempDir(), "nested", "build_report.json")

	require.NoError(t, c.Report().Save(path))
	assert.FileExists(t, path)
	assert.Len(t, c.Report().Stages, 2)
	assert.Equal(t, 1.0, c.Report().Counter("index", "code_units"))
}
