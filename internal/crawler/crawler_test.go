package crawler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestCrawler_FindCompileDirs(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "-_0_0_0", "inductor_provenance_tracking_node_mappings_1.json"))
	touch(t, filepath.Join(root, "-_1_0_0", "after_post_grad_graph_3.txt"))
	touch(t, filepath.Join(root, "-_2_0_0", "dynamo_output_graph_0.txt"))
	touch(t, filepath.Join(root, ".git", "inductor_output_code_0.html"))
	touch(t, filepath.Join(root, "nested", "-_3_0_0", "inductor_output_code_9.html"))

	c := NewCrawler([]string{"inductor_provenance_tracking_node_mappings", "after_post_grad_graph", "inductor_output_code"})
	dirs, err := c.Find(root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "-_0_0_0"),
		filepath.Join(root, "-_1_0_0"),
		filepath.Join(root, "nested", "-_3_0_0"),
	}, dirs)
}

func TestCrawler_SkipsOutputDir(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "reports")
	touch(t, filepath.Join(root, "-_0_0_0", "inductor_output_code_0.html"))
	touch(t, filepath.Join(out, "inductor_output_code_0.html"))
	touch(t, filepath.Join(root, "provtrack_out", "inductor_output_code_0.html"))

	dirs, err := NewCrawler([]string{"inductor_output_code"}, out).Find(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "-_0_0_0"),
		filepath.Join(root, "provtrack_out"),
	}, dirs)
}

func TestCrawler_RootIsCompileDir(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "before_pre_grad_graph_0.txt"))

	dirs, err := NewCrawler([]string{"before_pre_grad_graph"}).Find(root)
	require.NoError(t, err)
	assert.Equal(t, []string{root}, dirs)
}

func TestCrawler_MissingRoot(t *testing.T) {
	_, err := NewCrawler(nil).Find(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
